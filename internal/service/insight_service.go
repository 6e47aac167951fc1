package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"becomebetter/internal/coach"
	"becomebetter/internal/metrics"
	"becomebetter/internal/models"
	"becomebetter/internal/repository"
	"becomebetter/internal/streak"
)

// Insight generation limits.
const (
	MinUpdatesForInsight = 7
	MaxInsightsPerDay    = 1
	InsightCacheDuration = 24 * time.Hour
)

// ErrInsightFailed is returned when the model could not produce an insight
var ErrInsightFailed = errors.New("failed to generate insight")

// InsufficientDataError reports that a goal has too few updates for an insight
type InsufficientDataError struct {
	Required int
	Provided int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("minimum %d days of data required", e.Required)
}

// InsightRateLimitError reports that today's insight quota for a goal is used up
type InsightRateLimitError struct {
	Limit         int
	NextAvailable time.Time
}

func (e *InsightRateLimitError) Error() string {
	return fmt.Sprintf("maximum %d insight(s) per day allowed", e.Limit)
}

// InsightResult is an insight and whether it came from the cache
type InsightResult struct {
	Insight *models.Insight `json:"insight"`
	Cached  bool            `json:"cached"`
}

// InsightService produces coaching insights for goals
type InsightService struct {
	goalRepo     *repository.GoalRepository
	updateRepo   *repository.UpdateRepository
	insightRepo  *repository.InsightRepository
	settingsRepo *repository.SettingsRepository
	userRepo     *repository.UserRepository
	generator    coach.Generator
	emailService *EmailService
	metrics      *metrics.Metrics
	logger       *zap.Logger
	now          func() time.Time
}

// NewInsightService creates a new insight service
func NewInsightService(
	goalRepo *repository.GoalRepository,
	updateRepo *repository.UpdateRepository,
	insightRepo *repository.InsightRepository,
	settingsRepo *repository.SettingsRepository,
	userRepo *repository.UserRepository,
	generator coach.Generator,
	emailService *EmailService,
	m *metrics.Metrics,
	logger *zap.Logger,
) *InsightService {
	return &InsightService{
		goalRepo:     goalRepo,
		updateRepo:   updateRepo,
		insightRepo:  insightRepo,
		settingsRepo: settingsRepo,
		userRepo:     userRepo,
		generator:    generator,
		emailService: emailService,
		metrics:      m,
		logger:       logger,
		now:          time.Now,
	}
}

// GetInsight returns the cached insight for an active goal, or generates a
// new one when the goal has enough history and today's quota allows it.
func (s *InsightService) GetInsight(ctx context.Context, userID, goalID int64) (*InsightResult, error) {
	goal, err := s.goalRepo.GetActiveGoal(goalID, userID)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, ErrGoalNotFound
	}

	updates, err := s.updateRepo.ListByGoal(goalID, 0)
	if err != nil {
		return nil, err
	}
	if len(updates) < MinUpdatesForInsight {
		return nil, &InsufficientDataError{Required: MinUpdatesForInsight, Provided: len(updates)}
	}

	now := s.now()
	cached, err := s.insightRepo.GetLatestValid(goalID, userID, now)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return &InsightResult{Insight: cached, Cached: true}, nil
	}

	dayStart := time.Date(now.UTC().Year(), now.UTC().Month(), now.UTC().Day(), 0, 0, 0, 0, time.UTC)
	generatedToday, err := s.insightRepo.CountGeneratedSince(goalID, userID, dayStart)
	if err != nil {
		return nil, err
	}
	if generatedToday >= MaxInsightsPerDay {
		return nil, &InsightRateLimitError{Limit: MaxInsightsPerDay, NextAvailable: dayStart.Add(24 * time.Hour)}
	}

	settings, err := s.settingsRepo.GetSettings(userID)
	if err != nil {
		return nil, err
	}
	tz := settings.EffectiveTimezone()
	loc, err := streak.LoadLocation(tz)
	if err != nil {
		return nil, err
	}

	summary, err := streak.CalculateAt(ToRecords(updates), tz, now)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate streak for goal %d: %w", goalID, err)
	}
	s.metrics.StreakCalculated(string(summary.Status))

	prompt := coach.BuildPrompt(coach.Input{
		Goal:     *goal,
		Updates:  updates,
		Summary:  summary,
		Location: loc,
		Now:      now,
	})
	content, err := s.generator.Generate(ctx, coach.SystemPrompt, prompt)
	if err != nil {
		s.logger.Error("insight generation failed", zap.Int64("goal_id", goalID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInsightFailed, err)
	}

	insight, err := s.insightRepo.CreateInsight(&models.Insight{
		GoalID:          goalID,
		UserID:          userID,
		Content:         content,
		VerifiedSources: coach.VerifiedSources(goal.Category),
		GeneratedAt:     now,
		ExpiresAt:       now.Add(InsightCacheDuration),
	})
	if err != nil {
		return nil, err
	}
	s.metrics.InsightGenerated()

	if settings != nil && settings.EmailNotifications {
		s.sendInsightEmail(ctx, userID, *goal, content)
	}

	return &InsightResult{Insight: insight, Cached: false}, nil
}

// sendInsightEmail mails a new insight; failures are logged and ignored
func (s *InsightService) sendInsightEmail(ctx context.Context, userID int64, goal models.Goal, content string) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil || user == nil {
		s.logger.Warn("insight email skipped: user lookup failed", zap.Int64("user_id", userID), zap.Error(err))
		return
	}
	if err := s.emailService.SendInsightEmail(ctx, *user, goal, content); err != nil {
		s.logger.Warn("failed to send insight email", zap.Int64("user_id", userID), zap.Error(err))
	}
}
