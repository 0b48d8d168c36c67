package review

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/example/lexibot/internal/apperrors"
	"github.com/example/lexibot/internal/scheduling"
	"github.com/example/lexibot/pkg/models"
)

// batchWorkers bounds concurrent creates in CreateReviewItemsFromLesson
const batchWorkers = 8

// Service is the review item lifecycle manager
type Service struct {
	store Store
	clock scheduling.Clock
}

// NewService creates a lifecycle manager over the given store and clock
func NewService(store Store, clock scheduling.Clock) *Service {
	return &Service{store: store, clock: clock}
}

// ReviewMeta carries per-review measurements recorded into item history
type ReviewMeta struct {
	TimeSpentSeconds int
	Confidence       int
}

// CreateReviewItem builds and persists a new review item for a piece of
// learning content. The first review is scheduled one day out.
func (s *Service) CreateReviewItem(ctx context.Context, userID, contentRef string, itemType models.ItemType, snapshot models.ContentSnapshot) (*models.ReviewItem, error) {
	if userID == "" {
		return nil, apperrors.Validation("userId", "must not be empty")
	}
	if contentRef == "" {
		return nil, apperrors.Validation("contentRef", "missing content identifier")
	}
	if !itemType.Valid() {
		return nil, apperrors.Validation("itemType", fmt.Sprintf("unknown item type %q", itemType))
	}

	item := s.newItem(userID, contentRef, itemType, snapshot)
	if err := s.store.PutItem(ctx, item); err != nil {
		return nil, fmt.Errorf("persist review item: %w", err)
	}
	return item, nil
}

// newItem builds an unpersisted review item in the just-created state with
// the first review scheduled one day out
func (s *Service) newItem(userID, contentRef string, itemType models.ItemType, snapshot models.ContentSnapshot) *models.ReviewItem {
	now := s.clock.Now()
	state := scheduling.NewState()
	return &models.ReviewItem{
		ID:              uuid.NewString(),
		UserID:          userID,
		ItemType:        itemType,
		ContentRef:      contentRef,
		ContentSnapshot: snapshot,
		NextReviewDate:  scheduling.NextReviewAt(now, 1),
		EaseFactor:      state.EaseFactor,
		Interval:        state.Interval,
		Repetitions:     state.Repetitions,
		Lapses:          state.Lapses,
		ReviewHistory:   models.ReviewHistory{},
		Status:          models.StatusActive,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// RecordReview applies a performance rating to an item and persists the new
// scheduling state. The update is conditional on the item version; on a
// concurrent-update conflict the rating is re-applied once against fresh
// state before the conflict is surfaced to the caller.
func (s *Service) RecordReview(ctx context.Context, userID, itemID string, rating scheduling.Rating, meta ReviewMeta) (*models.ReviewItem, error) {
	if !rating.Valid() {
		return nil, apperrors.Validation("rating", fmt.Sprintf("unknown rating %q", rating))
	}

	updated, err := s.tryRecordReview(ctx, userID, itemID, rating, meta)
	if errors.Is(err, apperrors.ErrConflict) {
		updated, err = s.tryRecordReview(ctx, userID, itemID, rating, meta)
	}
	return updated, err
}

func (s *Service) tryRecordReview(ctx context.Context, userID, itemID string, rating scheduling.Rating, meta ReviewMeta) (*models.ReviewItem, error) {
	item, err := s.store.GetItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if item.Status != models.StatusActive {
		return nil, apperrors.Validation("status", fmt.Sprintf("cannot review %s item", item.Status))
	}

	now := s.clock.Now()
	next := scheduling.ComputeNextReview(rating, scheduling.State{
		EaseFactor:  item.EaseFactor,
		Interval:    item.Interval,
		Repetitions: item.Repetitions,
		Lapses:      item.Lapses,
	})

	item.EaseFactor = next.EaseFactor
	item.Interval = next.Interval
	item.Repetitions = next.Repetitions
	item.Lapses = next.Lapses
	item.LastReviewedDate = &now
	item.NextReviewDate = scheduling.NextReviewAt(now, next.Interval)
	item.ReviewHistory = appendHistory(item.ReviewHistory, models.HistoryEntry{
		Date:             now,
		Rating:           string(rating),
		TimeSpentSeconds: meta.TimeSpentSeconds,
		Confidence:       meta.Confidence,
	})
	item.UpdatedAt = now

	return s.store.UpdateItem(ctx, item, item.Version)
}

// appendHistory adds an entry and evicts the oldest beyond the cap
func appendHistory(history models.ReviewHistory, entry models.HistoryEntry) models.ReviewHistory {
	history = append(history, entry)
	if len(history) > models.MaxHistoryEntries {
		history = history[len(history)-models.MaxHistoryEntries:]
	}
	return history
}

// CreateReviewItemsFromLesson batch-creates review items for every entry of
// a completed lesson. Creates run concurrently and independently: one
// failure does not roll back the others. The successes are always returned,
// together with the first error encountered (nil when all succeeded).
// Entries the user already tracks are skipped, not duplicated.
func (s *Service) CreateReviewItemsFromLesson(ctx context.Context, userID string, lesson models.Lesson) ([]models.ReviewItem, error) {
	if userID == "" {
		return nil, apperrors.Validation("userId", "must not be empty")
	}
	if lesson.ID == "" {
		return nil, apperrors.Validation("lesson", "missing lesson identifier")
	}

	// Dedup against every item regardless of status: a suspended or retired
	// item still owns its contentRef
	existing, err := s.store.GetItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load existing items: %w", err)
	}
	tracked := make(map[string]bool, len(existing))
	for _, item := range existing {
		tracked[item.ContentRef] = true
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		created  []models.ReviewItem
		firstErr error
	)
	sem := make(chan struct{}, batchWorkers)

	for _, entry := range lesson.Entries {
		if entry.ContentRef == "" || !entry.ItemType.Valid() {
			mu.Lock()
			if firstErr == nil {
				if entry.ContentRef == "" {
					firstErr = apperrors.Validation("contentRef", "missing content identifier")
				} else {
					firstErr = apperrors.Validation("itemType", fmt.Sprintf("unknown item type %q", entry.ItemType))
				}
			}
			mu.Unlock()
			continue
		}
		if tracked[entry.ContentRef] {
			continue
		}
		tracked[entry.ContentRef] = true

		wg.Add(1)
		sem <- struct{}{}
		go func(entry models.LessonEntry) {
			defer wg.Done()
			defer func() { <-sem }()

			item := s.newItem(userID, entry.ContentRef, entry.ItemType, models.ContentSnapshot{
				Title:       entry.Title,
				Description: entry.Description,
				Example:     entry.Example,
				AudioRef:    entry.AudioRef,
			})
			item.Tags = entry.Tags
			item.SourceLesson = lesson.ID
			item.SourceCourse = lesson.CourseID
			err := s.store.PutItem(ctx, item)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			created = append(created, *item)
		}(entry)
	}
	wg.Wait()

	return created, firstErr
}

// DueItems returns the user's review queue: all active items whose next
// review date has passed, earliest-due first. An empty queue is not an error.
func (s *Service) DueItems(ctx context.Context, userID string) ([]models.ReviewItem, error) {
	items, err := s.store.GetActiveItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load active items: %w", err)
	}
	return scheduling.SelectDue(items, s.clock.Now()), nil
}

// ResetProgress returns an item to the just-created scheduling state without
// deleting the record or its provenance
func (s *Service) ResetProgress(ctx context.Context, userID, itemID string) (*models.ReviewItem, error) {
	item, err := s.store.GetItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	state := scheduling.NewState()
	item.EaseFactor = state.EaseFactor
	item.Interval = state.Interval
	item.Repetitions = state.Repetitions
	item.Lapses = state.Lapses
	item.ReviewHistory = models.ReviewHistory{}
	item.LastReviewedDate = nil
	item.NextReviewDate = scheduling.NextReviewAt(now, 1)
	item.Status = models.StatusActive
	item.UpdatedAt = now

	return s.store.UpdateItem(ctx, item, item.Version)
}

// Retire permanently removes an item from scheduling while keeping its record
func (s *Service) Retire(ctx context.Context, userID, itemID string) (*models.ReviewItem, error) {
	return s.setStatus(ctx, userID, itemID, models.StatusRetired)
}

// Suspend temporarily removes an item from the review queue
func (s *Service) Suspend(ctx context.Context, userID, itemID string) (*models.ReviewItem, error) {
	return s.setStatus(ctx, userID, itemID, models.StatusSuspended)
}

// Resume returns a suspended item to the review queue
func (s *Service) Resume(ctx context.Context, userID, itemID string) (*models.ReviewItem, error) {
	return s.setStatus(ctx, userID, itemID, models.StatusActive)
}

func (s *Service) setStatus(ctx context.Context, userID, itemID string, status models.ItemStatus) (*models.ReviewItem, error) {
	item, err := s.store.GetItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	item.Status = status
	item.UpdatedAt = s.clock.Now()
	return s.store.UpdateItem(ctx, item, item.Version)
}
