package models

import "time"

// User is a student account. ChatID links the account to Telegram for
// due-review reminders; it is zero when the user never connected the bot.
type User struct {
	ID                  string    `json:"id" db:"id"`
	ChatID              int64     `json:"chat_id" db:"chat_id"`
	FirstName           string    `json:"first_name" db:"first_name"`
	LastName            string    `json:"last_name" db:"last_name"`
	NotificationEnabled bool      `json:"notification_enabled" db:"notification_enabled"`
	NotificationHour    int       `json:"notification_hour" db:"notification_hour"` // hour of day (0-23)
	WordsPerDay         int       `json:"words_per_day" db:"words_per_day"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}
