package service

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"becomebetter/internal/database"
)

// BackupVersion is written into every export
const BackupVersion = "1.0"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version      string          `json:"version"`
	ExportedAt   time.Time       `json:"exported_at"`
	DatabaseType string          `json:"database_type"`
	Users        []UserBackup    `json:"users"`
	Settings     []SettingBackup `json:"settings"`
	Goals        []GoalBackup    `json:"goals"`
	Updates      []UpdateBackup  `json:"updates"`
	Insights     []InsightBackup `json:"insights"`
}

// UserBackup represents a user record for backup
type UserBackup struct {
	ID            int64      `json:"id"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"password_hash"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Age           *int64     `json:"age"`
	Nickname      string     `json:"nickname"`
	OAuthProvider string     `json:"oauth_provider"`
	OAuthSubject  string     `json:"oauth_subject"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	LastLogin     *time.Time `json:"last_login"`
}

// SettingBackup represents a user_settings row for backup
type SettingBackup struct {
	UserID             int64     `json:"user_id"`
	ReminderTime       string    `json:"reminder_time"`
	Timezone           string    `json:"timezone"`
	DarkMode           bool      `json:"dark_mode"`
	EmailNotifications bool      `json:"email_notifications"`
	PushNotifications  bool      `json:"push_notifications"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// GoalBackup represents a goal for backup
type GoalBackup struct {
	ID                int64     `json:"id"`
	UserID            int64     `json:"user_id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Category          string    `json:"category"`
	Difficulty        string    `json:"difficulty"`
	SuccessDefinition string    `json:"success_definition"`
	Icon              string    `json:"icon"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// UpdateBackup represents a goal update for backup. Date keeps the stored
// instant so the day it represents survives a restore unchanged.
type UpdateBackup struct {
	ID        int64     `json:"id"`
	GoalID    int64     `json:"goal_id"`
	UserID    int64     `json:"user_id"`
	Date      time.Time `json:"date"`
	Completed bool      `json:"completed"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InsightBackup represents a generated insight for backup
type InsightBackup struct {
	ID              int64     `json:"id"`
	GoalID          int64     `json:"goal_id"`
	UserID          int64     `json:"user_id"`
	Content         string    `json:"content"`
	VerifiedSources []string  `json:"verified_sources"`
	GeneratedAt     time.Time `json:"generated_at"`
	ExpiresAt       time.Time `json:"expires_at"`
}

// backupTables lists every table in dependency order
var backupTables = []string{"users", "user_settings", "goals", "goal_updates", "insights"}

// BackupService handles database backup and restore operations
type BackupService struct {
	db     *database.DB
	logger *zap.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB, logger *zap.Logger) *BackupService {
	return &BackupService{db: db, logger: logger}
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) (*BackupData, error) {
	file, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	backup, err := s.ExportToWriter(file)
	if err != nil {
		return nil, err
	}
	s.logger.Info("database exported", zap.String("path", outputPath))
	return backup, nil
}

// ExportToWriter writes the backup as indented JSON
func (s *BackupService) ExportToWriter(w io.Writer) (*BackupData, error) {
	backup, err := s.Snapshot()
	if err != nil {
		return nil, err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return backup, nil
}

// Snapshot reads every backed up table into memory
func (s *BackupService) Snapshot() (*BackupData, error) {
	backup := &BackupData{
		Version:      BackupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.db.Dialect.MigrationsSubdir(),
	}

	steps := []struct {
		name string
		fn   func(*BackupData) error
	}{
		{"users", s.exportUsers},
		{"settings", s.exportSettings},
		{"goals", s.exportGoals},
		{"updates", s.exportUpdates},
		{"insights", s.exportInsights},
	}
	for _, step := range steps {
		if err := step.fn(backup); err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", step.name, err)
		}
	}

	s.logger.Info("backup snapshot taken",
		zap.Int("users", len(backup.Users)),
		zap.Int("goals", len(backup.Goals)),
		zap.Int("updates", len(backup.Updates)),
		zap.Int("insights", len(backup.Insights)),
	)
	return backup, nil
}

// Import restores a database from a backup file
func (s *BackupService) Import(inputPath string, clearExisting bool) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file, clearExisting)
}

// ImportFromReader restores a backup in a single transaction. With clearExisting set
// the existing rows are deleted first.
func (s *BackupService) ImportFromReader(reader io.Reader, clearExisting bool) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	s.logger.Info("importing backup", zap.String("version", backup.Version), zap.Time("exported_at", backup.ExportedAt))

	err := s.db.WithTx(func(tx *database.Tx) error {
		if clearExisting {
			if err := clearTables(tx); err != nil {
				return err
			}
		}
		if err := importUsers(tx, backup.Users); err != nil {
			return fmt.Errorf("failed to import users: %w", err)
		}
		if err := importSettings(tx, backup.Settings); err != nil {
			return fmt.Errorf("failed to import settings: %w", err)
		}
		if err := importGoals(tx, backup.Goals); err != nil {
			return fmt.Errorf("failed to import goals: %w", err)
		}
		if err := importUpdates(tx, backup.Updates); err != nil {
			return fmt.Errorf("failed to import updates: %w", err)
		}
		if err := importInsights(tx, backup.Insights); err != nil {
			return fmt.Errorf("failed to import insights: %w", err)
		}
		return resetSequences(tx)
	})
	if err != nil {
		return err
	}

	s.logger.Info("backup imported",
		zap.Int("users", len(backup.Users)),
		zap.Int("goals", len(backup.Goals)),
		zap.Int("updates", len(backup.Updates)),
	)
	return nil
}

func clearTables(tx *database.Tx) error {
	// sessions and reset tokens reference users and are never backed up
	tables := append(append([]string{}, backupTables...), "sessions", "password_reset_tokens")
	for i := len(tables) - 1; i >= 0; i-- {
		if _, err := tx.Exec("DELETE FROM " + tables[i]); err != nil {
			return fmt.Errorf("failed to clear table %s: %w", tables[i], err)
		}
	}
	return nil
}

// resetSequences moves PostgreSQL serial sequences past the imported ids
func resetSequences(tx *database.Tx) error {
	if tx.GetDialect().MigrationsSubdir() != "postgres" {
		return nil
	}
	for _, table := range backupTables {
		if table == "user_settings" {
			continue
		}
		query := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE(MAX(id), 1)) FROM %s", table, table)
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to reset sequence for %s: %w", table, err)
		}
	}
	return nil
}

func (s *BackupService) exportUsers(backup *BackupData) error {
	query := `SELECT id, email, password_hash, first_name, last_name, age, nickname,
		oauth_provider, oauth_subject, created_at, updated_at, last_login FROM users ORDER BY id`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u UserBackup
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Age, &u.Nickname,
			&u.OAuthProvider, &u.OAuthSubject, &u.CreatedAt, &u.UpdatedAt, &u.LastLogin); err != nil {
			return err
		}
		backup.Users = append(backup.Users, u)
	}
	return rows.Err()
}

func (s *BackupService) exportSettings(backup *BackupData) error {
	query := `SELECT user_id, reminder_time, timezone, dark_mode, email_notifications, push_notifications,
		created_at, updated_at FROM user_settings ORDER BY user_id`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var st SettingBackup
		if err := rows.Scan(&st.UserID, &st.ReminderTime, &st.Timezone, &st.DarkMode, &st.EmailNotifications,
			&st.PushNotifications, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return err
		}
		backup.Settings = append(backup.Settings, st)
	}
	return rows.Err()
}

func (s *BackupService) exportGoals(backup *BackupData) error {
	query := `SELECT id, user_id, title, description, category, difficulty, success_definition, icon,
		is_active, created_at, updated_at FROM goals ORDER BY id`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var g GoalBackup
		if err := rows.Scan(&g.ID, &g.UserID, &g.Title, &g.Description, &g.Category, &g.Difficulty,
			&g.SuccessDefinition, &g.Icon, &g.IsActive, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return err
		}
		backup.Goals = append(backup.Goals, g)
	}
	return rows.Err()
}

func (s *BackupService) exportUpdates(backup *BackupData) error {
	query := `SELECT id, goal_id, user_id, date, completed, notes, created_at, updated_at
		FROM goal_updates ORDER BY id`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u UpdateBackup
		if err := rows.Scan(&u.ID, &u.GoalID, &u.UserID, &u.Date, &u.Completed, &u.Notes, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return err
		}
		backup.Updates = append(backup.Updates, u)
	}
	return rows.Err()
}

func (s *BackupService) exportInsights(backup *BackupData) error {
	query := `SELECT id, goal_id, user_id, content, verified_sources, generated_at, expires_at
		FROM insights ORDER BY id`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var in InsightBackup
		var sources string
		if err := rows.Scan(&in.ID, &in.GoalID, &in.UserID, &in.Content, &sources, &in.GeneratedAt, &in.ExpiresAt); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(sources), &in.VerifiedSources); err != nil {
			return fmt.Errorf("insight %d: %w", in.ID, err)
		}
		backup.Insights = append(backup.Insights, in)
	}
	return rows.Err()
}

func importUsers(tx *database.Tx, users []UserBackup) error {
	query := `INSERT INTO users (id, email, password_hash, first_name, last_name, age, nickname,
		oauth_provider, oauth_subject, created_at, updated_at, last_login)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, u := range users {
		var lastLogin interface{}
		if u.LastLogin != nil {
			lastLogin = u.LastLogin.UTC()
		}
		var age interface{}
		if u.Age != nil {
			age = *u.Age
		}
		_, err := tx.Exec(query, u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, age, u.Nickname,
			u.OAuthProvider, u.OAuthSubject, u.CreatedAt.UTC(), u.UpdatedAt.UTC(), lastLogin)
		if err != nil {
			return fmt.Errorf("user %d: %w", u.ID, err)
		}
	}
	return nil
}

func importSettings(tx *database.Tx, settings []SettingBackup) error {
	query := `INSERT INTO user_settings (user_id, reminder_time, timezone, dark_mode, email_notifications,
		push_notifications, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	for _, st := range settings {
		_, err := tx.Exec(query, st.UserID, st.ReminderTime, st.Timezone, st.DarkMode, st.EmailNotifications,
			st.PushNotifications, st.CreatedAt.UTC(), st.UpdatedAt.UTC())
		if err != nil {
			return fmt.Errorf("settings for user %d: %w", st.UserID, err)
		}
	}
	return nil
}

func importGoals(tx *database.Tx, goals []GoalBackup) error {
	query := `INSERT INTO goals (id, user_id, title, description, category, difficulty, success_definition,
		icon, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, g := range goals {
		_, err := tx.Exec(query, g.ID, g.UserID, g.Title, g.Description, g.Category, g.Difficulty,
			g.SuccessDefinition, g.Icon, g.IsActive, g.CreatedAt.UTC(), g.UpdatedAt.UTC())
		if err != nil {
			return fmt.Errorf("goal %d: %w", g.ID, err)
		}
	}
	return nil
}

func importUpdates(tx *database.Tx, updates []UpdateBackup) error {
	query := `INSERT INTO goal_updates (id, goal_id, user_id, date, completed, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	for _, u := range updates {
		_, err := tx.Exec(query, u.ID, u.GoalID, u.UserID, u.Date.UTC(), u.Completed, u.Notes,
			u.CreatedAt.UTC(), u.UpdatedAt.UTC())
		if err != nil {
			return fmt.Errorf("update %d: %w", u.ID, err)
		}
	}
	return nil
}

func importInsights(tx *database.Tx, insights []InsightBackup) error {
	query := `INSERT INTO insights (id, goal_id, user_id, content, verified_sources, generated_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	for _, in := range insights {
		sources, err := json.Marshal(in.VerifiedSources)
		if err != nil {
			return fmt.Errorf("insight %d: %w", in.ID, err)
		}
		_, err = tx.Exec(query, in.ID, in.GoalID, in.UserID, in.Content, string(sources),
			in.GeneratedAt.UTC(), in.ExpiresAt.UTC())
		if err != nil {
			return fmt.Errorf("insight %d: %w", in.ID, err)
		}
	}
	return nil
}
