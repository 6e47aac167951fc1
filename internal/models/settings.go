package models

import "time"

// Defaults applied when a user has no settings row yet.
const (
	DefaultReminderTime = "21:00"
	DefaultTimezone     = "UTC"
)

// UserSettings holds per-user preferences. Timezone is an IANA zone name and
// decides which calendar day an update belongs to.
type UserSettings struct {
	ID                 int64     `json:"id,omitempty"`
	UserID             int64     `json:"userId"`
	ReminderTime       string    `json:"reminderTime"`
	Timezone           string    `json:"timezone"`
	DarkMode           bool      `json:"darkMode"`
	EmailNotifications bool      `json:"emailNotifications"`
	PushNotifications  bool      `json:"pushNotifications"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// DefaultSettings returns the settings a new user starts with.
func DefaultSettings(userID int64) *UserSettings {
	return &UserSettings{
		UserID:             userID,
		ReminderTime:       DefaultReminderTime,
		Timezone:           DefaultTimezone,
		EmailNotifications: true,
	}
}

// EffectiveTimezone returns the configured zone, or UTC when unset.
func (s *UserSettings) EffectiveTimezone() string {
	if s == nil || s.Timezone == "" {
		return DefaultTimezone
	}
	return s.Timezone
}

// UserWithSettings pairs a user with their settings for reminder sweeps.
type UserWithSettings struct {
	User     User
	Settings UserSettings
}
