package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"becomebetter/internal/metrics"
	"becomebetter/internal/models"
	"becomebetter/internal/repository"
	"becomebetter/internal/streak"
	"becomebetter/internal/validation"
)

var (
	ErrGoalNotFound = errors.New("goal not found")
	ErrFutureDate   = errors.New("cannot record updates for future dates")
	ErrInvalidDate  = errors.New("invalid date")
)

// detailUpdateLimit is how many recent updates a goal detail includes.
const detailUpdateLimit = 30

// CreateGoalInput carries the fields for a new goal
type CreateGoalInput struct {
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	Category          models.Category   `json:"category"`
	Difficulty        models.Difficulty `json:"difficulty"`
	SuccessDefinition string            `json:"successDefinition"`
	Icon              string            `json:"icon"`
}

// UpdateGoalInput carries a partial goal update; nil fields are unchanged
type UpdateGoalInput struct {
	Title             *string            `json:"title"`
	Description       *string            `json:"description"`
	Category          *models.Category   `json:"category"`
	Difficulty        *models.Difficulty `json:"difficulty"`
	SuccessDefinition *string            `json:"successDefinition"`
	Icon              *string            `json:"icon"`
	IsActive          *bool              `json:"isActive"`
}

// LogUpdateInput is one daily check-in. Date is optional and may be a plain
// YYYY-MM-DD day in the user's timezone or an RFC 3339 timestamp.
type LogUpdateInput struct {
	Completed bool    `json:"completed"`
	Date      *string `json:"date"`
	Notes     string  `json:"notes"`
}

// GoalService manages goals, their daily updates and streaks
type GoalService struct {
	goalRepo     *repository.GoalRepository
	updateRepo   *repository.UpdateRepository
	settingsRepo *repository.SettingsRepository
	metrics      *metrics.Metrics
	logger       *zap.Logger
	now          func() time.Time
}

// NewGoalService creates a new goal service
func NewGoalService(goalRepo *repository.GoalRepository, updateRepo *repository.UpdateRepository, settingsRepo *repository.SettingsRepository, m *metrics.Metrics, logger *zap.Logger) *GoalService {
	return &GoalService{
		goalRepo:     goalRepo,
		updateRepo:   updateRepo,
		settingsRepo: settingsRepo,
		metrics:      m,
		logger:       logger,
		now:          time.Now,
	}
}

// CreateGoal validates and stores a new goal for userID
func (s *GoalService) CreateGoal(userID int64, in CreateGoalInput) (*models.Goal, error) {
	if err := validation.ValidateGoalTitle(in.Title); err != nil {
		return nil, err
	}
	if err := validation.ValidateCategory(in.Category); err != nil {
		return nil, err
	}
	if err := validation.ValidateDifficulty(in.Difficulty); err != nil {
		return nil, err
	}

	return s.goalRepo.CreateGoal(&models.Goal{
		UserID:            userID,
		Title:             strings.TrimSpace(in.Title),
		Description:       in.Description,
		Category:          in.Category,
		Difficulty:        in.Difficulty,
		SuccessDefinition: in.SuccessDefinition,
		Icon:              in.Icon,
	})
}

// ListGoals returns the user's active goals, newest first
func (s *GoalService) ListGoals(userID int64) ([]models.Goal, error) {
	return s.goalRepo.ListActiveGoals(userID)
}

// GetGoalDetail returns a goal with its 30 most recent updates. Inactive
// goals are still returned to their owner.
func (s *GoalService) GetGoalDetail(userID, goalID int64) (*models.GoalDetail, error) {
	goal, err := s.goalRepo.GetGoal(goalID, userID)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, ErrGoalNotFound
	}

	updates, err := s.updateRepo.ListByGoal(goalID, detailUpdateLimit)
	if err != nil {
		return nil, err
	}
	return &models.GoalDetail{Goal: *goal, Updates: updates}, nil
}

// UpdateGoal applies a partial update to a goal owned by userID
func (s *GoalService) UpdateGoal(userID, goalID int64, in UpdateGoalInput) (*models.Goal, error) {
	if in.Title != nil {
		if err := validation.ValidateGoalTitle(*in.Title); err != nil {
			return nil, err
		}
		trimmed := strings.TrimSpace(*in.Title)
		in.Title = &trimmed
	}
	if in.Category != nil {
		if err := validation.ValidateCategory(*in.Category); err != nil {
			return nil, err
		}
	}
	if in.Difficulty != nil {
		if err := validation.ValidateDifficulty(*in.Difficulty); err != nil {
			return nil, err
		}
	}

	found, err := s.goalRepo.UpdateGoal(goalID, userID, repository.GoalChanges{
		Title:             in.Title,
		Description:       in.Description,
		Category:          in.Category,
		Difficulty:        in.Difficulty,
		SuccessDefinition: in.SuccessDefinition,
		Icon:              in.Icon,
		IsActive:          in.IsActive,
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrGoalNotFound
	}
	return s.goalRepo.GetGoal(goalID, userID)
}

// DeleteGoal soft-deletes a goal so its history is kept
func (s *GoalService) DeleteGoal(userID, goalID int64) error {
	found, err := s.goalRepo.DeactivateGoal(goalID, userID)
	if err != nil {
		return err
	}
	if !found {
		return ErrGoalNotFound
	}
	return nil
}

// userLocation resolves the user's timezone, falling back to UTC when no
// settings are stored
func (s *GoalService) userLocation(userID int64) (*time.Location, string, error) {
	settings, err := s.settingsRepo.GetSettings(userID)
	if err != nil {
		return nil, "", err
	}
	tz := settings.EffectiveTimezone()
	loc, err := streak.LoadLocation(tz)
	if err != nil {
		return nil, "", err
	}
	return loc, tz, nil
}

// LogUpdate records the check-in for one day of an active goal. created is
// true when no update existed for that day.
func (s *GoalService) LogUpdate(userID, goalID int64, in LogUpdateInput) (*models.GoalUpdate, bool, error) {
	goal, err := s.goalRepo.GetActiveGoal(goalID, userID)
	if err != nil {
		return nil, false, err
	}
	if goal == nil {
		return nil, false, ErrGoalNotFound
	}

	loc, _, err := s.userLocation(userID)
	if err != nil {
		return nil, false, err
	}

	now := s.now()
	today := streak.Today(now, loc)
	day := today
	if in.Date != nil && strings.TrimSpace(*in.Date) != "" {
		day, err = parseUpdateDay(strings.TrimSpace(*in.Date), loc)
		if err != nil {
			return nil, false, err
		}
	}
	if day.After(today) {
		return nil, false, ErrFutureDate
	}

	update, created, err := s.updateRepo.Upsert(goalID, userID, day.Midnight(loc).UTC(), in.Completed, in.Notes)
	if err != nil {
		return nil, false, err
	}

	s.logger.Debug("goal update recorded",
		zap.Int64("goal_id", goalID),
		zap.String("day", day.String()),
		zap.Bool("completed", in.Completed),
		zap.Bool("created", created),
	)
	return update, created, nil
}

// parseUpdateDay reads a client supplied date as a calendar day in loc
func parseUpdateDay(value string, loc *time.Location) (streak.Day, error) {
	if day, err := streak.ParseDay(value); err == nil {
		return day, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return streak.Day{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return streak.DayIn(t, loc), nil
}

// Streak computes the streak summary of a goal owned by userID
func (s *GoalService) Streak(userID, goalID int64) (*streak.Summary, error) {
	goal, err := s.goalRepo.GetGoal(goalID, userID)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, ErrGoalNotFound
	}
	return s.streakFor(goal)
}

// StreakForGoal computes the streak summary of any goal. Used by operator
// tooling, which has no signed-in user.
func (s *GoalService) StreakForGoal(goalID int64) (*streak.Summary, error) {
	goal, err := s.goalRepo.GetGoalByID(goalID)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, ErrGoalNotFound
	}
	return s.streakFor(goal)
}

func (s *GoalService) streakFor(goal *models.Goal) (*streak.Summary, error) {
	updates, err := s.updateRepo.ListByGoal(goal.ID, 0)
	if err != nil {
		return nil, err
	}
	_, tz, err := s.userLocation(goal.UserID)
	if err != nil {
		return nil, err
	}

	summary, err := streak.CalculateAt(ToRecords(updates), tz, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to calculate streak for goal %d: %w", goal.ID, err)
	}
	s.metrics.StreakCalculated(string(summary.Status))
	return &summary, nil
}

// ToRecords converts stored updates into streak records
func ToRecords(updates []models.GoalUpdate) []streak.Record {
	records := make([]streak.Record, len(updates))
	for i, u := range updates {
		records[i] = streak.Record{Date: u.Date, Completed: u.Completed}
	}
	return records
}
