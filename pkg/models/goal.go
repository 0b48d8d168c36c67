package models

import "time"

// VocabularyGoal is a user's daily learning target. A user has at most one
// active goal; creating a new goal deactivates the previous one.
type VocabularyGoal struct {
	ID              string    `json:"id" db:"id"`
	UserID          string    `json:"user_id" db:"user_id"`
	DailyTarget     int       `json:"daily_target" db:"daily_target"`
	CurrentProgress int       `json:"current_progress" db:"current_progress"`
	IsActive        bool      `json:"is_active" db:"is_active"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}
