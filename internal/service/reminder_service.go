package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"becomebetter/internal/metrics"
	"becomebetter/internal/models"
	"becomebetter/internal/repository"
	"becomebetter/internal/streak"
)

// reminderConcurrency bounds how many users are processed at once.
const reminderConcurrency = 8

// ReminderResult summarises one reminder sweep
type ReminderResult struct {
	Success       bool      `json:"success"`
	RemindersSent int       `json:"remindersSent"`
	Errors        int       `json:"errors"`
	Timestamp     time.Time `json:"timestamp"`
}

// ReminderService emails users whose reminder time has come and who still
// have goals without an update today
type ReminderService struct {
	settingsRepo *repository.SettingsRepository
	goalRepo     *repository.GoalRepository
	updateRepo   *repository.UpdateRepository
	emailService *EmailService
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// NewReminderService creates a new reminder service
func NewReminderService(settingsRepo *repository.SettingsRepository, goalRepo *repository.GoalRepository, updateRepo *repository.UpdateRepository, emailService *EmailService, m *metrics.Metrics, logger *zap.Logger) *ReminderService {
	return &ReminderService{
		settingsRepo: settingsRepo,
		goalRepo:     goalRepo,
		updateRepo:   updateRepo,
		emailService: emailService,
		metrics:      m,
		logger:       logger,
	}
}

// Run performs one sweep at now. A user counts as reminded when their local
// clock reads their reminder time and at least one active goal has no update
// for their local today. Per-user failures are counted, not returned.
func (s *ReminderService) Run(ctx context.Context, now time.Time) (*ReminderResult, error) {
	users, err := s.settingsRepo.ListUsersWithSettings()
	if err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		sent   int
		failed int
	)

	g := new(errgroup.Group)
	g.SetLimit(reminderConcurrency)

	for _, uws := range users {
		if err := ctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			reminded, err := s.remindUser(ctx, uws, now)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				s.logger.Error("reminder failed", zap.Int64("user_id", uws.User.ID), zap.Error(err))
				return nil
			}
			if reminded {
				sent++
			}
			return nil
		})
	}
	_ = g.Wait()

	s.metrics.RemindersSent(sent)
	s.metrics.ReminderErrors(failed)
	s.logger.Info("reminder sweep finished",
		zap.Int("users", len(users)),
		zap.Int("reminders_sent", sent),
		zap.Int("errors", failed),
	)

	return &ReminderResult{
		Success:       true,
		RemindersSent: sent,
		Errors:        failed,
		Timestamp:     now.UTC(),
	}, nil
}

func (s *ReminderService) remindUser(ctx context.Context, uws models.UserWithSettings, now time.Time) (bool, error) {
	loc, err := streak.LoadLocation(uws.Settings.EffectiveTimezone())
	if err != nil {
		return false, err
	}
	if now.In(loc).Format("15:04") != uws.Settings.ReminderTime {
		return false, nil
	}

	pending, err := s.PendingGoals(uws.User.ID, loc, now)
	if err != nil {
		return false, err
	}
	if len(pending) == 0 {
		return false, nil
	}

	if uws.Settings.EmailNotifications {
		if err := s.emailService.SendReminderEmail(ctx, uws.User, pending); err != nil {
			return false, fmt.Errorf("send reminder to user %d: %w", uws.User.ID, err)
		}
	}
	return true, nil
}

// PendingGoals returns the user's active goals with no update for the
// calendar day now falls on in loc
func (s *ReminderService) PendingGoals(userID int64, loc *time.Location, now time.Time) ([]models.Goal, error) {
	goals, err := s.goalRepo.ListActiveGoals(userID)
	if err != nil {
		return nil, err
	}

	today := streak.StorageDate(now, loc)
	var pending []models.Goal
	for _, goal := range goals {
		update, err := s.updateRepo.GetByGoalAndDate(goal.ID, today)
		if err != nil {
			return nil, err
		}
		if update == nil {
			pending = append(pending, goal)
		}
	}
	return pending, nil
}
