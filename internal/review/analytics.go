package review

import (
	"context"
	"fmt"
	"time"

	"github.com/example/lexibot/internal/scheduling"
	"github.com/example/lexibot/pkg/models"
)

const dayKey = "2006-01-02"

// accuracyScore maps a recorded rating to a recall score in [0, 1]
func accuracyScore(rating string) float64 {
	switch scheduling.Rating(rating) {
	case scheduling.RatingForgot:
		return 0
	case scheduling.RatingHard:
		return 0.3
	case scheduling.RatingGood:
		return 0.7
	case scheduling.RatingEasy:
		return 1
	}
	return 0.7
}

// Analytics aggregates review statistics across the user's active items:
// total recorded reviews, due counts, 30-day accuracy, the current daily
// review streak, and a 7-day activity trend.
func (s *Service) Analytics(ctx context.Context, userID string) (*models.ReviewAnalytics, error) {
	items, err := s.store.GetActiveItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load active items: %w", err)
	}

	now := s.clock.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := today.AddDate(0, 0, 1)
	accuracyCutoff := now.AddDate(0, 0, -30)

	analytics := &models.ReviewAnalytics{
		ActiveItemCount: len(items),
		ReviewTrend:     []models.TrendPoint{},
	}

	var scoreSum float64
	var scoreCount int
	reviewDays := make(map[string]bool)
	trendCounts := make(map[string]int)

	for _, item := range items {
		analytics.TotalReviews += len(item.ReviewHistory)
		if item.NextReviewDate.Before(tomorrow) {
			analytics.ItemsDueToday++
		}
		for _, entry := range item.ReviewHistory {
			if !entry.Date.Before(accuracyCutoff) {
				scoreSum += accuracyScore(entry.Rating)
				scoreCount++
			}
			key := entry.Date.In(now.Location()).Format(dayKey)
			reviewDays[key] = true
			trendCounts[key]++
		}
	}

	// Zero, not NaN, when there is nothing to average
	if scoreCount > 0 {
		analytics.AverageAccuracy = scoreSum / float64(scoreCount) * 100
	}

	analytics.CurrentStreak = streak(reviewDays, today)

	// Oldest day first, today last
	var trendTotal int
	for i := 6; i >= 0; i-- {
		key := today.AddDate(0, 0, -i).Format(dayKey)
		count := trendCounts[key]
		trendTotal += count
		analytics.ReviewTrend = append(analytics.ReviewTrend, models.TrendPoint{Date: key, Count: count})
	}
	analytics.TrendAverage = float64(trendTotal) / 7

	return analytics, nil
}

// streak counts review days walking backward from today. A single missed
// day between review days is tolerated; two consecutive missed days break
// the streak.
func streak(reviewDays map[string]bool, today time.Time) int {
	count := 0
	missed := 0
	for day := today; ; day = day.AddDate(0, 0, -1) {
		if reviewDays[day.Format(dayKey)] {
			count++
			missed = 0
		} else {
			missed++
			if missed > 1 {
				break
			}
		}
	}
	return count
}
