package models

// TrendPoint is the number of reviews performed on one calendar day
type TrendPoint struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// ReviewAnalytics summarizes a user's review activity for display
type ReviewAnalytics struct {
	TotalReviews    int          `json:"total_reviews"`
	ActiveItemCount int          `json:"active_item_count"`
	ItemsDueToday   int          `json:"items_due_today"`
	AverageAccuracy float64      `json:"average_accuracy"` // 0-100, last 30 days
	CurrentStreak   int          `json:"current_streak"`   // consecutive review days
	ReviewTrend     []TrendPoint `json:"review_trend"`     // last 7 calendar days
	TrendAverage    float64      `json:"trend_average"`    // 7-day average
}
