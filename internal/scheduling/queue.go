package scheduling

import (
	"sort"
	"time"

	"github.com/example/lexibot/pkg/models"
)

// SelectDue filters items to those due for review at the given moment and
// orders them earliest-due first. Items that are not active never appear.
// The result is an empty slice, not nil or an error, when nothing is due.
func SelectDue(items []models.ReviewItem, now time.Time) []models.ReviewItem {
	due := make([]models.ReviewItem, 0, len(items))
	for _, item := range items {
		if item.IsDue(now) {
			due = append(due, item)
		}
	}

	// Tie-break on ID so the ordering is deterministic for equal due dates
	sort.Slice(due, func(i, j int) bool {
		if !due[i].NextReviewDate.Equal(due[j].NextReviewDate) {
			return due[i].NextReviewDate.Before(due[j].NextReviewDate)
		}
		return due[i].ID < due[j].ID
	})

	return due
}
