package repository

import (
	"database/sql"
	"fmt"
	"time"

	"becomebetter/internal/database"
	"becomebetter/internal/models"
)

// UpdateRepository handles database operations for goal updates
type UpdateRepository struct {
	db *database.DB
}

// NewUpdateRepository creates a new update repository
func NewUpdateRepository(db *database.DB) *UpdateRepository {
	return &UpdateRepository{db: db}
}

const updateColumns = `id, goal_id, user_id, date, completed, notes, created_at, updated_at`

func scanUpdate(row rowScanner) (*models.GoalUpdate, error) {
	u := &models.GoalUpdate{}
	err := row.Scan(
		&u.ID,
		&u.GoalID,
		&u.UserID,
		&u.Date,
		&u.Completed,
		&u.Notes,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Date = u.Date.UTC()
	return u, nil
}

// Upsert records the update for (goalID, date), replacing the completed flag
// and notes of an existing row. created reports whether a new row was
// inserted. date must already be normalised to a storage date.
func (r *UpdateRepository) Upsert(goalID, userID int64, date time.Time, completed bool, notes string) (update *models.GoalUpdate, created bool, err error) {
	date = date.UTC()
	err = r.db.WithTx(func(tx *database.Tx) error {
		existing, err := getByGoalAndDate(tx, goalID, date)
		if err != nil {
			return err
		}
		created = existing == nil

		columns := []string{"goal_id", "user_id", "date", "completed", "notes"}
		query := tx.GetDialect().UpsertQuery("goal_updates", columns, []string{"goal_id", "date"}, []string{"completed", "notes"})
		if _, err := tx.Exec(query, goalID, userID, date, completed, notes); err != nil {
			return fmt.Errorf("failed to upsert goal update: %w", err)
		}

		update, err = getByGoalAndDate(tx, goalID, date)
		if err != nil {
			return err
		}
		if update == nil {
			return fmt.Errorf("goal update for goal %d on %s vanished after upsert", goalID, date.Format(time.RFC3339))
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return update, created, nil
}

// GetByGoalAndDate retrieves the update for a goal on a storage date
func (r *UpdateRepository) GetByGoalAndDate(goalID int64, date time.Time) (*models.GoalUpdate, error) {
	return getByGoalAndDate(r.db, goalID, date.UTC())
}

func getByGoalAndDate(q database.DBTX, goalID int64, date time.Time) (*models.GoalUpdate, error) {
	query := `SELECT ` + updateColumns + ` FROM goal_updates WHERE goal_id = ? AND date = ?`
	u, err := scanUpdate(q.QueryRow(query, goalID, date))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal update: %w", err)
	}
	return u, nil
}

// ListByGoal returns a goal's updates, most recent date first. A limit of
// zero or less returns all of them.
func (r *UpdateRepository) ListByGoal(goalID int64, limit int) ([]models.GoalUpdate, error) {
	query := `SELECT ` + updateColumns + ` FROM goal_updates WHERE goal_id = ? ORDER BY date DESC`
	args := []interface{}{goalID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query goal updates: %w", err)
	}
	defer rows.Close()

	updates := []models.GoalUpdate{}
	for rows.Next() {
		u, err := scanUpdate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal update: %w", err)
		}
		updates = append(updates, *u)
	}
	return updates, rows.Err()
}

