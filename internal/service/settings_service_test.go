package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"becomebetter/internal/models"
	"becomebetter/internal/validation"
)

func TestSettingsService(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSettingsService(env.settingsRepo, env.logger)

	user, err := env.userRepo.CreateUser(&models.User{Email: "prefs@example.com"})
	require.NoError(t, err)

	defaults, err := svc.GetSettings(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "21:00", defaults.ReminderTime)
	assert.Equal(t, "UTC", defaults.Timezone)
	assert.True(t, defaults.EmailNotifications)

	tests := []struct {
		name  string
		input SettingsInput
		field string
	}{
		{"hour out of range", SettingsInput{ReminderTime: strPtr("24:00")}, "reminderTime"},
		{"missing leading zero", SettingsInput{ReminderTime: strPtr("7:30")}, "reminderTime"},
		{"unknown zone", SettingsInput{Timezone: strPtr("Mars/Olympus")}, "timezone"},
		{"empty zone", SettingsInput{Timezone: strPtr("")}, "timezone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateSettings(user.ID, tt.input)
			var verr validation.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	off := false
	on := true
	updated, err := svc.UpdateSettings(user.ID, SettingsInput{
		ReminderTime:       strPtr("07:45"),
		Timezone:           strPtr("Australia/Sydney"),
		DarkMode:           &on,
		EmailNotifications: &off,
	})
	require.NoError(t, err)
	assert.Equal(t, "07:45", updated.ReminderTime)
	assert.Equal(t, "Australia/Sydney", updated.Timezone)
	assert.True(t, updated.DarkMode)
	assert.False(t, updated.EmailNotifications)
	assert.False(t, updated.PushNotifications)

	partial, err := svc.UpdateSettings(user.ID, SettingsInput{PushNotifications: &on})
	require.NoError(t, err)
	assert.Equal(t, "07:45", partial.ReminderTime, "unset fields are kept")
	assert.True(t, partial.PushNotifications)
}
