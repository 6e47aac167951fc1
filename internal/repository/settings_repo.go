package repository

import (
	"database/sql"
	"fmt"

	"becomebetter/internal/database"
	"becomebetter/internal/models"
)

// SettingsRepository stores per-user preferences
type SettingsRepository struct {
	db *database.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetSettings retrieves a user's settings, or nil when none are stored
func (r *SettingsRepository) GetSettings(userID int64) (*models.UserSettings, error) {
	query := `
		SELECT id, user_id, reminder_time, timezone, dark_mode, email_notifications, push_notifications, updated_at
		FROM user_settings
		WHERE user_id = ?
	`
	s := &models.UserSettings{}
	err := r.db.QueryRow(query, userID).Scan(
		&s.ID,
		&s.UserID,
		&s.ReminderTime,
		&s.Timezone,
		&s.DarkMode,
		&s.EmailNotifications,
		&s.PushNotifications,
		&s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return s, nil
}

// UpsertSettings inserts or replaces a user's settings
func (r *SettingsRepository) UpsertSettings(s *models.UserSettings) error {
	columns := []string{"user_id", "reminder_time", "timezone", "dark_mode", "email_notifications", "push_notifications"}
	query := r.db.Dialect.UpsertQuery("user_settings", columns, []string{"user_id"}, columns[1:])
	_, err := r.db.Exec(query,
		s.UserID,
		s.ReminderTime,
		s.Timezone,
		s.DarkMode,
		s.EmailNotifications,
		s.PushNotifications,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert settings: %w", err)
	}
	return nil
}

// CreateDefaultSettings stores the default settings for a new user
func (r *SettingsRepository) CreateDefaultSettings(userID int64) (*models.UserSettings, error) {
	s := models.DefaultSettings(userID)
	if err := r.UpsertSettings(s); err != nil {
		return nil, err
	}
	return r.GetSettings(userID)
}

// ListUsersWithSettings returns every user that has a settings row
func (r *SettingsRepository) ListUsersWithSettings() ([]models.UserWithSettings, error) {
	query := `
		SELECT u.id, u.email, u.first_name, u.last_name, u.nickname,
			s.id, s.reminder_time, s.timezone, s.dark_mode, s.email_notifications, s.push_notifications, s.updated_at
		FROM users u
		JOIN user_settings s ON s.user_id = u.id
		ORDER BY u.id
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users with settings: %w", err)
	}
	defer rows.Close()

	var result []models.UserWithSettings
	for rows.Next() {
		var uws models.UserWithSettings
		if err := rows.Scan(
			&uws.User.ID,
			&uws.User.Email,
			&uws.User.FirstName,
			&uws.User.LastName,
			&uws.User.Nickname,
			&uws.Settings.ID,
			&uws.Settings.ReminderTime,
			&uws.Settings.Timezone,
			&uws.Settings.DarkMode,
			&uws.Settings.EmailNotifications,
			&uws.Settings.PushNotifications,
			&uws.Settings.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user settings: %w", err)
		}
		uws.Settings.UserID = uws.User.ID
		result = append(result, uws)
	}

	return result, rows.Err()
}
