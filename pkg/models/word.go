package models

import "time"

// Word represents an English word to be learned
type Word struct {
	ID            int64     `json:"id" db:"id"`
	Word          string    `json:"word" db:"word"`
	Translation   string    `json:"translation" db:"translation"`
	Description   string    `json:"description" db:"description"`
	Examples      string    `json:"examples" db:"examples"`
	TopicID       int64     `json:"topic_id" db:"topic_id"`
	Difficulty    int       `json:"difficulty" db:"difficulty"`       // 1-5 scale
	Pronunciation string    `json:"pronunciation" db:"pronunciation"` // URL to audio pronunciation
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
