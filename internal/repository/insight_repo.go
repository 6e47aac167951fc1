package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"becomebetter/internal/database"
	"becomebetter/internal/models"
)

// InsightRepository handles database operations for generated insights
type InsightRepository struct {
	db *database.DB
}

// NewInsightRepository creates a new insight repository
func NewInsightRepository(db *database.DB) *InsightRepository {
	return &InsightRepository{db: db}
}

// CreateInsight stores a generated insight
func (r *InsightRepository) CreateInsight(insight *models.Insight) (*models.Insight, error) {
	sources, err := json.Marshal(insight.VerifiedSources)
	if err != nil {
		return nil, fmt.Errorf("failed to encode verified sources: %w", err)
	}

	query := `
		INSERT INTO insights (goal_id, user_id, content, verified_sources, generated_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		insight.GoalID,
		insight.UserID,
		insight.Content,
		string(sources),
		insight.GeneratedAt.UTC(),
		insight.ExpiresAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create insight: %w", err)
	}

	stored := *insight
	stored.ID = id
	return &stored, nil
}

// GetLatestValid returns the newest insight for the goal that has not
// expired at now, or nil
func (r *InsightRepository) GetLatestValid(goalID, userID int64, now time.Time) (*models.Insight, error) {
	query := `
		SELECT id, goal_id, user_id, content, verified_sources, generated_at, expires_at
		FROM insights
		WHERE goal_id = ? AND user_id = ? AND expires_at > ?
		ORDER BY generated_at DESC
		LIMIT 1
	`
	insight := &models.Insight{}
	var sources string
	err := r.db.QueryRow(query, goalID, userID, now.UTC()).Scan(
		&insight.ID,
		&insight.GoalID,
		&insight.UserID,
		&insight.Content,
		&sources,
		&insight.GeneratedAt,
		&insight.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get insight: %w", err)
	}
	if err := json.Unmarshal([]byte(sources), &insight.VerifiedSources); err != nil {
		return nil, fmt.Errorf("failed to decode verified sources: %w", err)
	}
	return insight, nil
}

// CountGeneratedSince counts insights generated for the goal at or after since
func (r *InsightRepository) CountGeneratedSince(goalID, userID int64, since time.Time) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM insights WHERE goal_id = ? AND user_id = ? AND generated_at >= ?"
	if err := r.db.QueryRow(query, goalID, userID, since.UTC()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count insights: %w", err)
	}
	return count, nil
}
