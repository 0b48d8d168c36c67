package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/lexibot/internal/apperrors"
	"github.com/example/lexibot/pkg/models"
)

// GoalRepository implements goals.GoalStore over SQL
type GoalRepository struct {
	db *sqlx.DB
}

// NewGoalRepository creates a new repository instance
func NewGoalRepository(db *sqlx.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

// GetGoal returns a goal by id
func (r *GoalRepository) GetGoal(ctx context.Context, goalID string) (*models.VocabularyGoal, error) {
	var goal models.VocabularyGoal
	query := r.db.Rebind(`SELECT * FROM vocabulary_goals WHERE id = ?`)
	if err := r.db.GetContext(ctx, &goal, query, goalID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("goal", goalID)
		}
		return nil, storageErr("get goal", err)
	}
	return &goal, nil
}

// GetActiveGoal returns the user's single active goal
func (r *GoalRepository) GetActiveGoal(ctx context.Context, userID string) (*models.VocabularyGoal, error) {
	var goal models.VocabularyGoal
	query := r.db.Rebind(`SELECT * FROM vocabulary_goals
		WHERE user_id = ? AND is_active = true
		ORDER BY created_at DESC LIMIT 1`)
	if err := r.db.GetContext(ctx, &goal, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("active goal for user", userID)
		}
		return nil, storageErr("get active goal", err)
	}
	return &goal, nil
}

// CreateGoal inserts a new goal, deactivating any previously active goal of
// the same user in the same transaction so exclusivity survives a crash
// between the two statements
func (r *GoalRepository) CreateGoal(ctx context.Context, goal *models.VocabularyGoal) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return storageErr("create goal", err)
	}
	defer tx.Rollback()

	deactivate := r.db.Rebind(`UPDATE vocabulary_goals
		SET is_active = false, updated_at = ? WHERE user_id = ? AND is_active = true`)
	if _, err := tx.ExecContext(ctx, deactivate, goal.UpdatedAt, goal.UserID); err != nil {
		return storageErr("deactivate previous goal", err)
	}

	insert := r.db.Rebind(`INSERT INTO vocabulary_goals
		(id, user_id, daily_target, current_progress, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if _, err := tx.ExecContext(ctx, insert,
		goal.ID, goal.UserID, goal.DailyTarget, goal.CurrentProgress,
		goal.IsActive, goal.CreatedAt, goal.UpdatedAt,
	); err != nil {
		return storageErr("insert goal", err)
	}

	if err := tx.Commit(); err != nil {
		return storageErr("create goal", err)
	}
	return nil
}

// ResetAllActiveProgress zeroes the progress of every active goal
func (r *GoalRepository) ResetAllActiveProgress(ctx context.Context, asOf time.Time) error {
	query := r.db.Rebind(`UPDATE vocabulary_goals
		SET current_progress = 0, updated_at = ? WHERE is_active = true`)
	if _, err := r.db.ExecContext(ctx, query, asOf); err != nil {
		return storageErr("reset goal progress", err)
	}
	return nil
}

// UpdateGoal overwrites a goal's mutable fields
func (r *GoalRepository) UpdateGoal(ctx context.Context, goal *models.VocabularyGoal) error {
	query := r.db.Rebind(`UPDATE vocabulary_goals SET
		current_progress = ?, is_active = ?, updated_at = ? WHERE id = ?`)
	result, err := r.db.ExecContext(ctx, query,
		goal.CurrentProgress, goal.IsActive, goal.UpdatedAt, goal.ID)
	if err != nil {
		return storageErr("update goal", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storageErr("update goal", err)
	}
	if affected == 0 {
		return apperrors.NotFound("goal", goal.ID)
	}
	return nil
}
