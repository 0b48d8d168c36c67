package review

import (
	"context"
	"fmt"
	"sync"

	"github.com/example/lexibot/internal/apperrors"
	"github.com/example/lexibot/pkg/models"
)

// memStore is an in-memory Store with the same version semantics as the SQL
// adapter, used to exercise the lifecycle manager without a database
type memStore struct {
	mu    sync.Mutex
	items map[string]map[string]models.ReviewItem // userID -> itemID -> item

	putErr          error // injected failure for PutItem
	conflictsToFail int   // next N UpdateItem calls fail with ErrConflict
}

func newMemStore() *memStore {
	return &memStore{items: map[string]map[string]models.ReviewItem{}}
}

func (m *memStore) GetActiveItems(_ context.Context, userID string) ([]models.ReviewItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ReviewItem
	for _, item := range m.items[userID] {
		if item.Status == models.StatusActive {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *memStore) GetItems(_ context.Context, userID string) ([]models.ReviewItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ReviewItem
	for _, item := range m.items[userID] {
		out = append(out, item)
	}
	return out, nil
}

func (m *memStore) GetItem(_ context.Context, userID, itemID string) (*models.ReviewItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[userID][itemID]
	if !ok {
		return nil, apperrors.NotFound("review item", itemID)
	}
	copied := item
	return &copied, nil
}

func (m *memStore) PutItem(_ context.Context, item *models.ReviewItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	if m.items[item.UserID] == nil {
		m.items[item.UserID] = map[string]models.ReviewItem{}
	}
	m.items[item.UserID][item.ID] = *item
	return nil
}

func (m *memStore) UpdateItem(_ context.Context, item *models.ReviewItem, expectedVersion int64) (*models.ReviewItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.items[item.UserID][item.ID]
	if !ok {
		return nil, apperrors.NotFound("review item", item.ID)
	}
	if m.conflictsToFail > 0 {
		m.conflictsToFail--
		return nil, fmt.Errorf("review item %q: %w", item.ID, apperrors.ErrConflict)
	}
	if stored.Version != expectedVersion {
		return nil, fmt.Errorf("review item %q: %w", item.ID, apperrors.ErrConflict)
	}
	updated := *item
	updated.Version = expectedVersion + 1
	m.items[item.UserID][item.ID] = updated
	copied := updated
	return &copied, nil
}
