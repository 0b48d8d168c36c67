// Package review manages the lifecycle of review items: creation from
// learning content, rating-driven scheduling updates, due-queue reads, and
// progress analytics. Persistence is delegated to a Store implementation.
package review

import (
	"context"

	"github.com/example/lexibot/pkg/models"
)

// Store is the narrow persistence contract the review engine depends on.
// Implementations must return apperrors.ErrNotFound for missing items,
// apperrors.ErrConflict when expectedVersion no longer matches, and
// apperrors.ErrStorageUnavailable for transient failures.
type Store interface {
	// GetActiveItems returns all active review items owned by the user
	GetActiveItems(ctx context.Context, userID string) ([]models.ReviewItem, error)
	// GetItems returns every review item owned by the user regardless of status
	GetItems(ctx context.Context, userID string) ([]models.ReviewItem, error)
	// GetItem returns one item regardless of status
	GetItem(ctx context.Context, userID, itemID string) (*models.ReviewItem, error)
	// PutItem creates an item or fully overwrites an existing one
	PutItem(ctx context.Context, item *models.ReviewItem) error
	// UpdateItem overwrites an item only if its stored version still equals
	// expectedVersion, and returns the updated record
	UpdateItem(ctx context.Context, item *models.ReviewItem, expectedVersion int64) (*models.ReviewItem, error)
}
