package review

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lexibot/internal/apperrors"
	"github.com/example/lexibot/internal/scheduling"
	"github.com/example/lexibot/pkg/models"
)

var t0 = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

func newTestService() (*Service, *memStore, *scheduling.FixedClock) {
	store := newMemStore()
	clock := &scheduling.FixedClock{Time: t0}
	return NewService(store, clock), store, clock
}

func TestCreateReviewItemDefaults(t *testing.T) {
	svc, _, _ := newTestService()

	item, err := svc.CreateReviewItem(context.Background(), "user-1", "word-42",
		models.ItemTypeVocabulary, models.ContentSnapshot{Title: "ubiquitous"})
	require.NoError(t, err)

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, scheduling.DefaultEaseFactor, item.EaseFactor)
	assert.Equal(t, 0, item.Interval)
	assert.Equal(t, 0, item.Repetitions)
	assert.Equal(t, 0, item.Lapses)
	assert.Equal(t, models.StatusActive, item.Status)
	assert.True(t, item.NextReviewDate.Equal(t0.AddDate(0, 0, 1)), "first review is one day out")
	assert.Nil(t, item.LastReviewedDate)
	assert.Empty(t, item.ReviewHistory)
}

func TestCreateReviewItemValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateReviewItem(ctx, "user-1", "", models.ItemTypeVocabulary, models.ContentSnapshot{})
	assert.True(t, apperrors.IsValidation(err), "missing contentRef must be a validation error")

	_, err = svc.CreateReviewItem(ctx, "", "word-1", models.ItemTypeVocabulary, models.ContentSnapshot{})
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.CreateReviewItem(ctx, "user-1", "word-1", models.ItemType("poetry"), models.ContentSnapshot{})
	assert.True(t, apperrors.IsValidation(err))
}

func TestRecordReviewEndToEnd(t *testing.T) {
	svc, _, clock := newTestService()
	ctx := context.Background()

	item, err := svc.CreateReviewItem(ctx, "user-1", "word-1", models.ItemTypeVocabulary, models.ContentSnapshot{})
	require.NoError(t, err)
	require.True(t, item.NextReviewDate.Equal(t0.AddDate(0, 0, 1)))

	// First good review one day later
	clock.AdvanceDays(1)
	item, err = svc.RecordReview(ctx, "user-1", item.ID, scheduling.RatingGood, ReviewMeta{})
	require.NoError(t, err)
	assert.Equal(t, 1, item.Interval)
	assert.Equal(t, 1, item.Repetitions)
	assert.True(t, item.NextReviewDate.Equal(t0.AddDate(0, 0, 2)))

	// Second good: the 6-day step
	clock.AdvanceDays(1)
	item, err = svc.RecordReview(ctx, "user-1", item.ID, scheduling.RatingGood, ReviewMeta{})
	require.NoError(t, err)
	assert.Equal(t, 6, item.Interval)
	assert.Equal(t, 2, item.Repetitions)
	assert.True(t, item.NextReviewDate.Equal(clock.Time.AddDate(0, 0, 6)))

	// Forgot: ease drops by 0.2, everything resets, lapse recorded
	clock.AdvanceDays(6)
	item, err = svc.RecordReview(ctx, "user-1", item.ID, scheduling.RatingForgot, ReviewMeta{})
	require.NoError(t, err)
	assert.Equal(t, 2.3, item.EaseFactor)
	assert.Equal(t, 1, item.Interval)
	assert.Equal(t, 0, item.Repetitions)
	assert.Equal(t, 1, item.Lapses)
	require.NotNil(t, item.LastReviewedDate)
	assert.True(t, item.LastReviewedDate.Equal(clock.Time))
}

func TestRecordReviewRejectsUnknownRating(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	item, err := svc.CreateReviewItem(ctx, "user-1", "word-1", models.ItemTypeVocabulary, models.ContentSnapshot{})
	require.NoError(t, err)

	_, err = svc.RecordReview(ctx, "user-1", item.ID, scheduling.Rating("excellent"), ReviewMeta{})
	assert.True(t, apperrors.IsValidation(err), "unknown rating must be rejected at the boundary")

	// Nothing was recorded
	stored, err := svc.store.GetItem(ctx, "user-1", item.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.ReviewHistory)
}

func TestRecordReviewNotFound(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.RecordReview(context.Background(), "user-1", "no-such-item", scheduling.RatingGood, ReviewMeta{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRecordReviewRejectsInactiveItem(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	item, err := svc.CreateReviewItem(ctx, "user-1", "word-1", models.ItemTypeVocabulary, models.ContentSnapshot{})
	require.NoError(t, err)
	_, err = svc.Suspend(ctx, "user-1", item.ID)
	require.NoError(t, err)

	_, err = svc.RecordReview(ctx, "user-1", item.ID, scheduling.RatingGood, ReviewMeta{})
	assert.True(t, apperrors.IsValidation(err))
}

func TestRecordReviewHistoryBound(t *testing.T) {
	svc, _, clock := newTestService()
	ctx := context.Background()

	item, err := svc.CreateReviewItem(ctx, "user-1", "word-1", models.ItemTypeVocabulary, models.ContentSnapshot{})
	require.NoError(t, err)

	for i := 0; i < 15; i++ {
		clock.AdvanceDays(1)
		item, err = svc.RecordReview(ctx, "user-1", item.ID, scheduling.RatingGood, ReviewMeta{TimeSpentSeconds: i})
		require.NoError(t, err)
	}

	require.Len(t, item.ReviewHistory, models.MaxHistoryEntries)
	// The 10 most recent entries, oldest first
	assert.Equal(t, 5, item.ReviewHistory[0].TimeSpentSeconds)
	assert.Equal(t, 14, item.ReviewHistory[9].TimeSpentSeconds)
	for i := 1; i < len(item.ReviewHistory); i++ {
		assert.True(t, item.ReviewHistory[i].Date.After(item.ReviewHistory[i-1].Date),
			"history must stay in chronological order")
	}
}

func TestRecordReviewRetriesOnceOnConflict(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	item, err := svc.CreateReviewItem(ctx, "user-1", "word-1", models.ItemTypeVocabulary, models.ContentSnapshot{})
	require.NoError(t, err)

	store.conflictsToFail = 1
	updated, err := svc.RecordReview(ctx, "user-1", item.ID, scheduling.RatingGood, ReviewMeta{})
	require.NoError(t, err, "a single conflict is retried transparently")
	assert.Len(t, updated.ReviewHistory, 1, "the rating is applied exactly once")

	store.conflictsToFail = 2
	_, err = svc.RecordReview(ctx, "user-1", item.ID, scheduling.RatingGood, ReviewMeta{})
	assert.ErrorIs(t, err, apperrors.ErrConflict, "a second conflict is surfaced")
}

func TestDueItemsOrdering(t *testing.T) {
	svc, _, clock := newTestService()
	ctx := context.Background()

	for _, ref := range []string{"w1", "w2", "w3"} {
		_, err := svc.CreateReviewItem(ctx, "user-1", ref, models.ItemTypeVocabulary, models.ContentSnapshot{})
		require.NoError(t, err)
	}

	// Nothing is due before the first day passes
	due, err := svc.DueItems(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, due)

	clock.AdvanceDays(1)
	due, err = svc.DueItems(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, due, 3)
}

func TestCreateReviewItemsFromLesson(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	lesson := models.Lesson{
		ID:       "lesson-7",
		CourseID: "course-2",
		Entries: []models.LessonEntry{
			{ContentRef: "w1", ItemType: models.ItemTypeVocabulary, Title: "run"},
			{ContentRef: "w2", ItemType: models.ItemTypeVocabulary, Title: "walk"},
			{ContentRef: "g1", ItemType: models.ItemTypeGrammar, Title: "past simple"},
		},
	}

	created, err := svc.CreateReviewItemsFromLesson(ctx, "user-1", lesson)
	require.NoError(t, err)
	require.Len(t, created, 3)
	for _, item := range created {
		assert.Equal(t, "lesson-7", item.SourceLesson)
		assert.Equal(t, "course-2", item.SourceCourse)
	}

	// Completing the same lesson again creates nothing new
	again, err := svc.CreateReviewItemsFromLesson(ctx, "user-1", lesson)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestCreateReviewItemsFromLessonSkipsSuspendedAndRetired(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	lesson := models.Lesson{
		ID: "lesson-9",
		Entries: []models.LessonEntry{
			{ContentRef: "w1", ItemType: models.ItemTypeVocabulary, Title: "run"},
			{ContentRef: "w2", ItemType: models.ItemTypeVocabulary, Title: "walk"},
		},
	}

	created, err := svc.CreateReviewItemsFromLesson(ctx, "user-1", lesson)
	require.NoError(t, err)
	require.Len(t, created, 2)

	for _, item := range created {
		if item.ContentRef == "w1" {
			_, err = svc.Suspend(ctx, "user-1", item.ID)
		} else {
			_, err = svc.Retire(ctx, "user-1", item.ID)
		}
		require.NoError(t, err)
	}

	// A suspended or retired item still owns its contentRef
	again, err := svc.CreateReviewItemsFromLesson(ctx, "user-1", lesson)
	require.NoError(t, err)
	assert.Empty(t, again)

	all, err := store.GetItems(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, all, 2, "no duplicates behind the inactive items")
}

func TestCreateReviewItemsFromLessonAggregatesErrors(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	lesson := models.Lesson{
		ID: "lesson-8",
		Entries: []models.LessonEntry{
			{ContentRef: "w1", ItemType: models.ItemTypeVocabulary},
			{ContentRef: "", ItemType: models.ItemTypeVocabulary}, // bad entry
			{ContentRef: "w2", ItemType: models.ItemTypeVocabulary},
		},
	}

	created, err := svc.CreateReviewItemsFromLesson(ctx, "user-1", lesson)
	assert.True(t, apperrors.IsValidation(err), "first error is reported")
	assert.Len(t, created, 2, "good entries are kept despite the failure")
}

func TestCreateReviewItemsFromLessonStoreFailure(t *testing.T) {
	svc, store, _ := newTestService()
	store.putErr = fmt.Errorf("insert: %w", apperrors.ErrStorageUnavailable)

	created, err := svc.CreateReviewItemsFromLesson(context.Background(), "user-1", models.Lesson{
		ID:      "lesson-9",
		Entries: []models.LessonEntry{{ContentRef: "w1", ItemType: models.ItemTypeVocabulary}},
	})
	assert.ErrorIs(t, err, apperrors.ErrStorageUnavailable)
	assert.Empty(t, created)
}

func TestResetProgress(t *testing.T) {
	svc, _, clock := newTestService()
	ctx := context.Background()

	item, err := svc.CreateReviewItem(ctx, "user-1", "word-1", models.ItemTypeVocabulary, models.ContentSnapshot{})
	require.NoError(t, err)
	clock.AdvanceDays(1)
	item, err = svc.RecordReview(ctx, "user-1", item.ID, scheduling.RatingForgot, ReviewMeta{})
	require.NoError(t, err)
	require.Equal(t, 1, item.Lapses)

	reset, err := svc.ResetProgress(ctx, "user-1", item.ID)
	require.NoError(t, err)
	assert.Equal(t, scheduling.DefaultEaseFactor, reset.EaseFactor)
	assert.Equal(t, 0, reset.Interval)
	assert.Equal(t, 0, reset.Lapses)
	assert.Empty(t, reset.ReviewHistory)
	assert.Nil(t, reset.LastReviewedDate)
	assert.Equal(t, "word-1", reset.ContentRef, "provenance survives a reset")
}

func TestRetireKeepsTheRecord(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	item, err := svc.CreateReviewItem(ctx, "user-1", "word-1", models.ItemTypeVocabulary, models.ContentSnapshot{})
	require.NoError(t, err)

	retired, err := svc.Retire(ctx, "user-1", item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRetired, retired.Status)

	stored, err := store.GetItem(ctx, "user-1", item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRetired, stored.Status)

	due, err := svc.DueItems(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestSuspendAndResume(t *testing.T) {
	svc, _, clock := newTestService()
	ctx := context.Background()

	item, err := svc.CreateReviewItem(ctx, "user-1", "word-1", models.ItemTypeVocabulary, models.ContentSnapshot{})
	require.NoError(t, err)
	clock.AdvanceDays(2)

	_, err = svc.Suspend(ctx, "user-1", item.ID)
	require.NoError(t, err)
	due, err := svc.DueItems(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, due)

	_, err = svc.Resume(ctx, "user-1", item.ID)
	require.NoError(t, err)
	due, err = svc.DueItems(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, due, 1)
}

func TestRecordReviewWrappedNotFound(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.RecordReview(context.Background(), "user-1", "ghost", scheduling.RatingGood, ReviewMeta{})
	var ve *apperrors.ValidationError
	assert.False(t, errors.As(err, &ve), "missing item is not a validation problem")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
