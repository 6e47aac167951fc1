package service

import (
	"go.uber.org/zap"

	"becomebetter/internal/models"
	"becomebetter/internal/repository"
	"becomebetter/internal/validation"
)

// SettingsInput carries a settings change; nil fields keep their stored value
type SettingsInput struct {
	ReminderTime       *string `json:"reminderTime"`
	Timezone           *string `json:"timezone"`
	DarkMode           *bool   `json:"darkMode"`
	EmailNotifications *bool   `json:"emailNotifications"`
	PushNotifications  *bool   `json:"pushNotifications"`
}

// SettingsService reads and writes per-user preferences
type SettingsService struct {
	settingsRepo *repository.SettingsRepository
	logger       *zap.Logger
}

// NewSettingsService creates a new settings service
func NewSettingsService(settingsRepo *repository.SettingsRepository, logger *zap.Logger) *SettingsService {
	return &SettingsService{settingsRepo: settingsRepo, logger: logger}
}

// GetSettings returns the user's settings, or the defaults when none are stored
func (s *SettingsService) GetSettings(userID int64) (*models.UserSettings, error) {
	settings, err := s.settingsRepo.GetSettings(userID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return models.DefaultSettings(userID), nil
	}
	if settings.Timezone == "" {
		settings.Timezone = models.DefaultTimezone
	}
	return settings, nil
}

// UpdateSettings validates and stores a settings change
func (s *SettingsService) UpdateSettings(userID int64, in SettingsInput) (*models.UserSettings, error) {
	if in.ReminderTime != nil {
		if err := validation.ValidateReminderTime(*in.ReminderTime); err != nil {
			return nil, err
		}
	}
	if in.Timezone != nil {
		if err := validation.ValidateTimezone(*in.Timezone); err != nil {
			return nil, err
		}
	}

	current, err := s.GetSettings(userID)
	if err != nil {
		return nil, err
	}

	if in.ReminderTime != nil {
		current.ReminderTime = *in.ReminderTime
	}
	if in.Timezone != nil {
		current.Timezone = *in.Timezone
	}
	if in.DarkMode != nil {
		current.DarkMode = *in.DarkMode
	}
	if in.EmailNotifications != nil {
		current.EmailNotifications = *in.EmailNotifications
	}
	if in.PushNotifications != nil {
		current.PushNotifications = *in.PushNotifications
	}

	if err := s.settingsRepo.UpsertSettings(current); err != nil {
		return nil, err
	}
	s.logger.Debug("settings updated", zap.Int64("user_id", userID), zap.String("timezone", current.Timezone))
	return s.settingsRepo.GetSettings(userID)
}
