package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ItemType identifies the kind of learnable content behind a review item
type ItemType string

const (
	// ItemTypeVocabulary is a single vocabulary word
	ItemTypeVocabulary ItemType = "vocabulary"
	// ItemTypeGrammar is a grammar rule or construction
	ItemTypeGrammar ItemType = "grammar"
	// ItemTypePronunciation is a pronunciation drill
	ItemTypePronunciation ItemType = "pronunciation"
)

// Valid reports whether the item type is one of the known values
func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeVocabulary, ItemTypeGrammar, ItemTypePronunciation:
		return true
	}
	return false
}

// ItemStatus describes where a review item is in its lifecycle
type ItemStatus string

const (
	// StatusActive items participate in the review queue
	StatusActive ItemStatus = "active"
	// StatusSuspended items are temporarily excluded from the queue
	StatusSuspended ItemStatus = "suspended"
	// StatusRetired items are kept for history but never scheduled again
	StatusRetired ItemStatus = "retired"
)

// ContentSnapshot holds display fields copied from the source content at creation
// time, so the queue can be rendered without a join. The copy is never refreshed:
// if the source word is edited later the snapshot keeps the old text.
type ContentSnapshot struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Example     string `json:"example,omitempty"`
	AudioRef    string `json:"audio_ref,omitempty"`
}

// Value implements driver.Valuer so the snapshot is stored as a JSON column
func (s ContentSnapshot) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner
func (s *ContentSnapshot) Scan(src interface{}) error {
	return scanJSON(src, s)
}

// HistoryEntry records a single review event on an item
type HistoryEntry struct {
	Date             time.Time `json:"date"`
	Rating           string    `json:"rating"`
	TimeSpentSeconds int       `json:"time_spent_seconds,omitempty"`
	Confidence       int       `json:"confidence,omitempty"`
}

// ReviewHistory is the bounded per-item history, most recent entry last
type ReviewHistory []HistoryEntry

// Value implements driver.Valuer
func (h ReviewHistory) Value() (driver.Value, error) {
	if h == nil {
		h = ReviewHistory{}
	}
	return json.Marshal(h)
}

// Scan implements sql.Scanner
func (h *ReviewHistory) Scan(src interface{}) error {
	return scanJSON(src, h)
}

// StringList stores a list of strings as a JSON column
type StringList []string

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner
func (l *StringList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

func scanJSON(src, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("cannot scan %T into JSON column", src)
	}
}

// ReviewItem tracks one learnable unit for one user through the spaced
// repetition scheduler
type ReviewItem struct {
	ID               string          `json:"id" db:"id"`
	UserID           string          `json:"user_id" db:"user_id"`
	ItemType         ItemType        `json:"item_type" db:"item_type"`
	ContentRef       string          `json:"content_ref" db:"content_ref"`
	ContentSnapshot  ContentSnapshot `json:"content_snapshot" db:"content_snapshot"`
	NextReviewDate   time.Time       `json:"next_review_date" db:"next_review_date"`
	LastReviewedDate *time.Time      `json:"last_reviewed_date" db:"last_reviewed_date"`
	EaseFactor       float64         `json:"ease_factor" db:"ease_factor"`       // never below 1.3
	Interval         int             `json:"interval" db:"interval_days"`        // days until next review, 0 before first review
	Repetitions      int             `json:"repetitions" db:"repetitions"`       // consecutive non-lapse reviews
	Lapses           int             `json:"lapses" db:"lapses"`                 // total "forgot" events
	ReviewHistory    ReviewHistory   `json:"review_history" db:"review_history"` // capped at MaxHistoryEntries
	Status           ItemStatus      `json:"status" db:"status"`
	Tags             StringList      `json:"tags" db:"tags"`
	SourceLesson     string          `json:"source_lesson" db:"source_lesson"`
	SourceCourse     string          `json:"source_course" db:"source_course"`
	Version          int64           `json:"version" db:"version"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// MaxHistoryEntries bounds ReviewHistory; oldest entries are evicted first
const MaxHistoryEntries = 10

// IsDue reports whether the item should be reviewed at the given moment
func (r *ReviewItem) IsDue(now time.Time) bool {
	return r.Status == StatusActive && !r.NextReviewDate.After(now)
}
