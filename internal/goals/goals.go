// Package goals tracks daily vocabulary learning goals. A user has at most
// one active goal at a time; creating a new goal retires the previous one.
package goals

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/lexibot/internal/apperrors"
	"github.com/example/lexibot/internal/scheduling"
	"github.com/example/lexibot/pkg/models"
)

// GoalStore is the persistence contract for vocabulary goals
type GoalStore interface {
	// GetGoal returns a goal by id, apperrors.ErrNotFound when absent
	GetGoal(ctx context.Context, goalID string) (*models.VocabularyGoal, error)
	// GetActiveGoal returns the user's active goal, apperrors.ErrNotFound when none
	GetActiveGoal(ctx context.Context, userID string) (*models.VocabularyGoal, error)
	// CreateGoal inserts a new goal and deactivates any previously active
	// goal of the same user in the same transaction
	CreateGoal(ctx context.Context, goal *models.VocabularyGoal) error
	// UpdateGoal overwrites a goal's mutable fields
	UpdateGoal(ctx context.Context, goal *models.VocabularyGoal) error
	// ResetAllActiveProgress zeroes the progress of every active goal,
	// stamping updated_at with asOf
	ResetAllActiveProgress(ctx context.Context, asOf time.Time) error
}

// Tracker manages vocabulary goal creation and progress
type Tracker struct {
	store GoalStore
	clock scheduling.Clock
}

// NewTracker creates a goal tracker over the given store and clock
func NewTracker(store GoalStore, clock scheduling.Clock) *Tracker {
	return &Tracker{store: store, clock: clock}
}

// CreateGoal starts a new daily goal for the user. Any previously active
// goal is deactivated; progress is not carried over.
func (t *Tracker) CreateGoal(ctx context.Context, userID string, dailyTarget int) (*models.VocabularyGoal, error) {
	if userID == "" {
		return nil, apperrors.Validation("userId", "must not be empty")
	}
	if dailyTarget <= 0 {
		return nil, apperrors.Validation("dailyTarget", "must be a positive integer")
	}

	now := t.clock.Now()
	goal := &models.VocabularyGoal{
		ID:          uuid.NewString(),
		UserID:      userID,
		DailyTarget: dailyTarget,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := t.store.CreateGoal(ctx, goal); err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}
	return goal, nil
}

// UpdateProgress adds increment to the goal's progress and reports whether
// the goal is now completed. Progress is not clamped at the target; whether
// the goal is completed is derived on read.
func (t *Tracker) UpdateProgress(ctx context.Context, goalID string, increment int) (*models.VocabularyGoal, bool, error) {
	if increment < 0 {
		return nil, false, apperrors.Validation("increment", "must not be negative")
	}

	goal, err := t.store.GetGoal(ctx, goalID)
	if err != nil {
		return nil, false, err
	}

	goal.CurrentProgress += increment
	goal.UpdatedAt = t.clock.Now()
	if err := t.store.UpdateGoal(ctx, goal); err != nil {
		return nil, false, fmt.Errorf("update goal: %w", err)
	}
	return goal, IsCompleted(goal.CurrentProgress, goal.DailyTarget), nil
}

// StartNewDay zeroes the progress of every active goal. Daily targets count
// per calendar day, so the reminder daemon runs this at midnight.
func (t *Tracker) StartNewDay(ctx context.Context) error {
	if err := t.store.ResetAllActiveProgress(ctx, t.clock.Now()); err != nil {
		return fmt.Errorf("reset daily progress: %w", err)
	}
	return nil
}

// ActiveGoal returns the user's current active goal
func (t *Tracker) ActiveGoal(ctx context.Context, userID string) (*models.VocabularyGoal, error) {
	return t.store.GetActiveGoal(ctx, userID)
}

// IsCompleted reports whether progress has reached the target
func IsCompleted(current, target int) bool {
	return current >= target
}

// ProgressPercentage returns completion as a fraction clamped to [0, 1]
func ProgressPercentage(current, target int) float64 {
	if target <= 0 {
		return 0
	}
	p := float64(current) / float64(target)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
