package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/lexibot/internal/apperrors"
	"github.com/example/lexibot/pkg/models"
)

// ReviewItemRepository implements review.Store over SQL
type ReviewItemRepository struct {
	db *sqlx.DB
}

// NewReviewItemRepository creates a new repository instance
func NewReviewItemRepository(db *sqlx.DB) *ReviewItemRepository {
	return &ReviewItemRepository{db: db}
}

const reviewItemColumns = `id, user_id, item_type, content_ref, content_snapshot,
	next_review_date, last_reviewed_date, ease_factor, interval_days, repetitions,
	lapses, review_history, status, tags, source_lesson, source_course, version,
	created_at, updated_at`

// GetActiveItems returns all active review items for a user
func (r *ReviewItemRepository) GetActiveItems(ctx context.Context, userID string) ([]models.ReviewItem, error) {
	var items []models.ReviewItem
	query := r.db.Rebind(`SELECT ` + reviewItemColumns + ` FROM review_items
		WHERE user_id = ? AND status = ? ORDER BY next_review_date ASC, id ASC`)
	if err := r.db.SelectContext(ctx, &items, query, userID, models.StatusActive); err != nil {
		return nil, storageErr("get active items", err)
	}
	return items, nil
}

// GetItems returns every review item owned by a user regardless of status
func (r *ReviewItemRepository) GetItems(ctx context.Context, userID string) ([]models.ReviewItem, error) {
	var items []models.ReviewItem
	query := r.db.Rebind(`SELECT ` + reviewItemColumns + ` FROM review_items
		WHERE user_id = ? ORDER BY next_review_date ASC, id ASC`)
	if err := r.db.SelectContext(ctx, &items, query, userID); err != nil {
		return nil, storageErr("get items", err)
	}
	return items, nil
}

// GetItem returns one review item regardless of status
func (r *ReviewItemRepository) GetItem(ctx context.Context, userID, itemID string) (*models.ReviewItem, error) {
	var item models.ReviewItem
	query := r.db.Rebind(`SELECT ` + reviewItemColumns + ` FROM review_items
		WHERE user_id = ? AND id = ?`)
	if err := r.db.GetContext(ctx, &item, query, userID, itemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("review item", itemID)
		}
		return nil, storageErr("get item", err)
	}
	return &item, nil
}

// PutItem creates a review item or fully overwrites an existing one
func (r *ReviewItemRepository) PutItem(ctx context.Context, item *models.ReviewItem) error {
	query := r.db.Rebind(`
		INSERT INTO review_items (` + reviewItemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			item_type = EXCLUDED.item_type,
			content_ref = EXCLUDED.content_ref,
			content_snapshot = EXCLUDED.content_snapshot,
			next_review_date = EXCLUDED.next_review_date,
			last_reviewed_date = EXCLUDED.last_reviewed_date,
			ease_factor = EXCLUDED.ease_factor,
			interval_days = EXCLUDED.interval_days,
			repetitions = EXCLUDED.repetitions,
			lapses = EXCLUDED.lapses,
			review_history = EXCLUDED.review_history,
			status = EXCLUDED.status,
			tags = EXCLUDED.tags,
			source_lesson = EXCLUDED.source_lesson,
			source_course = EXCLUDED.source_course,
			version = EXCLUDED.version,
			updated_at = EXCLUDED.updated_at`)

	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.UserID, item.ItemType, item.ContentRef, item.ContentSnapshot,
		item.NextReviewDate, item.LastReviewedDate, item.EaseFactor, item.Interval,
		item.Repetitions, item.Lapses, item.ReviewHistory, item.Status, item.Tags,
		item.SourceLesson, item.SourceCourse, item.Version, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return storageErr("put item", err)
	}
	return nil
}

// UpdateItem overwrites an item's scheduling fields only when its stored
// version still matches expectedVersion. A stale version yields ErrConflict;
// a missing row yields ErrNotFound.
func (r *ReviewItemRepository) UpdateItem(ctx context.Context, item *models.ReviewItem, expectedVersion int64) (*models.ReviewItem, error) {
	query := r.db.Rebind(`
		UPDATE review_items SET
			content_snapshot = ?,
			next_review_date = ?,
			last_reviewed_date = ?,
			ease_factor = ?,
			interval_days = ?,
			repetitions = ?,
			lapses = ?,
			review_history = ?,
			status = ?,
			tags = ?,
			source_lesson = ?,
			source_course = ?,
			version = version + 1,
			updated_at = ?
		WHERE user_id = ? AND id = ? AND version = ?`)

	result, err := r.db.ExecContext(ctx, query,
		item.ContentSnapshot, item.NextReviewDate, item.LastReviewedDate,
		item.EaseFactor, item.Interval, item.Repetitions, item.Lapses,
		item.ReviewHistory, item.Status, item.Tags, item.SourceLesson,
		item.SourceCourse, item.UpdatedAt,
		item.UserID, item.ID, expectedVersion,
	)
	if err != nil {
		return nil, storageErr("update item", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, storageErr("update item", err)
	}
	if affected == 0 {
		// Distinguish a stale version from a missing row
		if _, err := r.GetItem(ctx, item.UserID, item.ID); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("review item %q: %w", item.ID, apperrors.ErrConflict)
	}

	updated := *item
	updated.Version = expectedVersion + 1
	return &updated, nil
}
