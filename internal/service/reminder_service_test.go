package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"becomebetter/internal/models"
	"becomebetter/internal/streak"
)

func (e *testEnv) reminderService() *ReminderService {
	return NewReminderService(e.settingsRepo, e.goalRepo, e.updateRepo, e.email, e.metrics, e.logger)
}

func setReminder(t *testing.T, env *testEnv, userID int64, at, tz string, email bool) {
	t.Helper()
	require.NoError(t, env.settingsRepo.UpsertSettings(&models.UserSettings{
		UserID:             userID,
		ReminderTime:       at,
		Timezone:           tz,
		EmailNotifications: email,
	}))
}

func TestReminderSweep(t *testing.T) {
	env := newTestEnv(t)
	// 20:00 UTC is 21:00 in London (BST) and 22:00 in Paris
	now := time.Date(2024, 6, 15, 20, 0, 0, 0, time.UTC)

	due := env.createUser(t, "due@example.com", "Europe/London")
	setReminder(t, env, due.ID, "21:00", "Europe/London", true)
	pendingGoal := env.createGoal(t, due.ID, "Stretch", models.CategoryHealth)
	doneGoal := env.createGoal(t, due.ID, "Read", models.CategoryLearning)
	_, _, err := env.goalService(now).LogUpdate(due.ID, doneGoal.ID, LogUpdateInput{Completed: false})
	require.NoError(t, err)

	allDone := env.createUser(t, "alldone@example.com", "Europe/London")
	setReminder(t, env, allDone.ID, "21:00", "Europe/London", true)
	g := env.createGoal(t, allDone.ID, "Walk", models.CategoryHealth)
	_, _, err = env.goalService(now).LogUpdate(allDone.ID, g.ID, LogUpdateInput{Completed: true})
	require.NoError(t, err)

	notYet := env.createUser(t, "paris@example.com", "Europe/Paris")
	setReminder(t, env, notYet.ID, "21:00", "Europe/Paris", true)
	env.createGoal(t, notYet.ID, "Cook", models.CategoryHealth)

	quiet := env.createUser(t, "quiet@example.com", "Europe/London")
	setReminder(t, env, quiet.ID, "21:00", "Europe/London", false)
	env.createGoal(t, quiet.ID, "Sleep early", models.CategoryBehaviour)

	noGoals := env.createUser(t, "nogoals@example.com", "Europe/London")
	setReminder(t, env, noGoals.ID, "21:00", "Europe/London", true)

	result, err := env.reminderService().Run(context.Background(), now)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.RemindersSent, "due and quiet both have pending goals")
	assert.Equal(t, 0, result.Errors)
	assert.True(t, result.Timestamp.Equal(now))

	assert.Equal(t, []string{"due@example.com"}, env.sender.recipients())
	assert.Equal(t, []string{"Reminder: Update Your Goals - 1 Pending"}, env.sender.subjects())
	assert.Equal(t, 2.0, env.counterValue(t, "reminders_sent_total", ""))

	london, err := streak.LoadLocation("Europe/London")
	require.NoError(t, err)
	pending, err := env.reminderService().PendingGoals(due.ID, london, now)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, pendingGoal.ID, pending[0].ID)
}

func TestReminderSendFailureIsCounted(t *testing.T) {
	env := newTestEnv(t)
	env.sender.err = errBoom
	now := time.Date(2024, 1, 10, 7, 30, 0, 0, time.UTC)

	user := env.createUser(t, "ses@example.com", "UTC")
	setReminder(t, env, user.ID, "07:30", "UTC", true)
	env.createGoal(t, user.ID, "Save", models.CategoryFinancial)

	result, err := env.reminderService().Run(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 0, result.RemindersSent)
	assert.Equal(t, 1, result.Errors)
	assert.Equal(t, 1.0, env.counterValue(t, "reminder_errors_total", ""))
}
