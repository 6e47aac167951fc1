package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"becomebetter/internal/database"
	"becomebetter/internal/models"
)

// GoalRepository handles database operations for goals
type GoalRepository struct {
	db *database.DB
}

// NewGoalRepository creates a new goal repository
func NewGoalRepository(db *database.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

// GoalChanges holds the fields of a partial goal update. Nil fields are left
// unchanged.
type GoalChanges struct {
	Title             *string
	Description       *string
	Category          *models.Category
	Difficulty        *models.Difficulty
	SuccessDefinition *string
	Icon              *string
	IsActive          *bool
}

const goalColumns = `g.id, g.user_id, g.title, g.description, g.category, g.difficulty,
	g.success_definition, g.icon, g.is_active, g.created_at, g.updated_at,
	(SELECT COUNT(*) FROM goal_updates gu WHERE gu.goal_id = g.id)`

func scanGoal(row rowScanner) (*models.Goal, error) {
	goal := &models.Goal{}
	err := row.Scan(
		&goal.ID,
		&goal.UserID,
		&goal.Title,
		&goal.Description,
		&goal.Category,
		&goal.Difficulty,
		&goal.SuccessDefinition,
		&goal.Icon,
		&goal.IsActive,
		&goal.CreatedAt,
		&goal.UpdatedAt,
		&goal.UpdateCount,
	)
	if err != nil {
		return nil, err
	}
	return goal, nil
}

// CreateGoal inserts a new active goal
func (r *GoalRepository) CreateGoal(goal *models.Goal) (*models.Goal, error) {
	query := `
		INSERT INTO goals (user_id, title, description, category, difficulty, success_definition, icon, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		goal.UserID,
		goal.Title,
		goal.Description,
		string(goal.Category),
		string(goal.Difficulty),
		goal.SuccessDefinition,
		goal.Icon,
		true,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}
	return r.GetGoal(id, goal.UserID)
}

// GetGoal retrieves a goal owned by userID regardless of its active flag
func (r *GoalRepository) GetGoal(goalID, userID int64) (*models.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals g WHERE g.id = ? AND g.user_id = ?`
	goal, err := scanGoal(r.db.QueryRow(query, goalID, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return goal, nil
}

// GetActiveGoal retrieves an active goal owned by userID
func (r *GoalRepository) GetActiveGoal(goalID, userID int64) (*models.Goal, error) {
	goal, err := r.GetGoal(goalID, userID)
	if err != nil || goal == nil || !goal.IsActive {
		return nil, err
	}
	return goal, nil
}

// GetGoalByID retrieves a goal without an ownership check. Used by operator
// tooling only.
func (r *GoalRepository) GetGoalByID(goalID int64) (*models.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals g WHERE g.id = ?`
	goal, err := scanGoal(r.db.QueryRow(query, goalID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return goal, nil
}

// ListActiveGoals returns a user's active goals, newest first
func (r *GoalRepository) ListActiveGoals(userID int64) ([]models.Goal, error) {
	query := `SELECT ` + goalColumns + `
		FROM goals g
		WHERE g.user_id = ? AND g.is_active = ?
		ORDER BY g.created_at DESC, g.id DESC`
	rows, err := r.db.Query(query, userID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	goals := []models.Goal{}
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, *goal)
	}
	return goals, rows.Err()
}

// UpdateGoal applies a partial update to a goal owned by userID and reports
// whether a row matched
func (r *GoalRepository) UpdateGoal(goalID, userID int64, changes GoalChanges) (bool, error) {
	var sets []string
	var args []interface{}
	add := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if changes.Title != nil {
		add("title", *changes.Title)
	}
	if changes.Description != nil {
		add("description", *changes.Description)
	}
	if changes.Category != nil {
		add("category", string(*changes.Category))
	}
	if changes.Difficulty != nil {
		add("difficulty", string(*changes.Difficulty))
	}
	if changes.SuccessDefinition != nil {
		add("success_definition", *changes.SuccessDefinition)
	}
	if changes.Icon != nil {
		add("icon", *changes.Icon)
	}
	if changes.IsActive != nil {
		add("is_active", *changes.IsActive)
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, goalID, userID)

	query := "UPDATE goals SET " + strings.Join(sets, ", ") + " WHERE id = ? AND user_id = ?"
	result, err := r.db.Exec(query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update goal: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read update result: %w", err)
	}
	return rows > 0, nil
}

// DeactivateGoal soft-deletes a goal
func (r *GoalRepository) DeactivateGoal(goalID, userID int64) (bool, error) {
	inactive := false
	return r.UpdateGoal(goalID, userID, GoalChanges{IsActive: &inactive})
}
