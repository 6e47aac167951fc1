// Package scheduler runs the periodic background jobs: the reminder sweep and
// the purge of expired sessions and password reset tokens.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweep counts the outcome of one reminder run.
type Sweep struct {
	Sent   int
	Errors int
}

// ReminderRunner sends the reminders that are due at now.
type ReminderRunner interface {
	Run(ctx context.Context, now time.Time) (Sweep, error)
}

// ReminderFunc adapts a function to ReminderRunner.
type ReminderFunc func(ctx context.Context, now time.Time) (Sweep, error)

func (f ReminderFunc) Run(ctx context.Context, now time.Time) (Sweep, error) {
	return f(ctx, now)
}

// Cleaner purges expired authentication state.
type Cleaner interface {
	CleanupExpiredSessions() (int64, error)
	CleanupExpiredPasswordResetTokens() (int64, error)
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	cron      *cron.Cron
	reminders ReminderRunner
	cleaner   Cleaner
	logger    *zap.Logger
	ctx       context.Context
	now       func() time.Time
}

// New creates a scheduler with second-precision cron specs. ctx is passed to
// every job run and should be cancelled on shutdown.
func New(ctx context.Context, reminders ReminderRunner, cleaner Cleaner, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		reminders: reminders,
		cleaner:   cleaner,
		logger:    logger,
		ctx:       ctx,
		now:       time.Now,
	}
}

// RegisterAll registers the reminder sweep and the cleanup job.
func (s *Scheduler) RegisterAll(reminderSpec, cleanupSpec string) error {
	if _, err := s.cron.AddFunc(reminderSpec, s.reminderTask); err != nil {
		return fmt.Errorf("register reminder task: %w", err)
	}
	if _, err := s.cron.AddFunc(cleanupSpec, s.cleanupTask); err != nil {
		return fmt.Errorf("register cleanup task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop stops the scheduler and waits for running jobs to finish or ctx to
// expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out", zap.Error(ctx.Err()))
	}
}

func (s *Scheduler) reminderTask() {
	// cron fires on the minute boundary; truncating keeps the HH:MM match stable
	now := s.now().Truncate(time.Minute)
	result, err := s.reminders.Run(s.ctx, now)
	if err != nil {
		s.logger.Error("reminder sweep failed", zap.Error(err))
		return
	}
	if result.Sent > 0 || result.Errors > 0 {
		s.logger.Info("reminder sweep finished",
			zap.Int("sent", result.Sent),
			zap.Int("errors", result.Errors),
		)
	}
}

func (s *Scheduler) cleanupTask() {
	sessions, err := s.cleaner.CleanupExpiredSessions()
	if err != nil {
		s.logger.Error("session cleanup failed", zap.Error(err))
	}
	tokens, err := s.cleaner.CleanupExpiredPasswordResetTokens()
	if err != nil {
		s.logger.Error("reset token cleanup failed", zap.Error(err))
	}
	s.logger.Debug("expired auth state purged", zap.Int64("sessions", sessions), zap.Int64("reset_tokens", tokens))
}
