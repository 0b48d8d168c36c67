// Package scheduling implements the spaced repetition algorithm used for
// review items. It is a simplified SM-2 variant driven by a four-value
// performance rating instead of the classic 0-5 quality scale.
package scheduling

import (
	"math"
	"time"
)

// Rating is the user's assessment of how well an item was recalled
type Rating string

const (
	// RatingForgot - could not recall the item at all
	RatingForgot Rating = "forgot"
	// RatingHard - recalled, but with serious difficulty
	RatingHard Rating = "hard"
	// RatingGood - recalled with some hesitation
	RatingGood Rating = "good"
	// RatingEasy - perfect recall with no hesitation
	RatingEasy Rating = "easy"
)

// Valid reports whether the rating is one of the four known values
func (r Rating) Valid() bool {
	switch r {
	case RatingForgot, RatingHard, RatingGood, RatingEasy:
		return true
	}
	return false
}

// DefaultEaseFactor is the initial ease factor for new items
const DefaultEaseFactor = 2.5

// MinEaseFactor is the floor below which the ease factor never drops
const MinEaseFactor = 1.3

// State is the scheduling state carried by a review item
type State struct {
	EaseFactor  float64 // interval growth multiplier, >= MinEaseFactor
	Interval    int     // days until next review, 0 before the first review
	Repetitions int     // consecutive reviews since the last forgot/hard
	Lapses      int     // total forgot events, never decreases
}

// NewState returns the state of a freshly created item
func NewState() State {
	return State{EaseFactor: DefaultEaseFactor}
}

// ComputeNextReview applies one performance rating to the scheduling state
// and returns the updated state. It is a pure function: no clock, no I/O.
//
// The function is total over all Rating values; an unrecognized rating takes
// the "good" path. Callers that want a closed enum validate with
// Rating.Valid before calling.
func ComputeNextReview(rating Rating, s State) State {
	switch rating {
	case RatingForgot:
		s.EaseFactor = math.Max(MinEaseFactor, s.EaseFactor-0.2)
		s.Repetitions = 0
		s.Interval = 1
		s.Lapses++
	case RatingHard:
		s.EaseFactor = math.Max(MinEaseFactor, s.EaseFactor-0.15)
		s.Repetitions = 0
		s.Interval = int(float64(s.Interval) * 1.2)
		if s.Interval < 1 {
			s.Interval = 1
		}
	case RatingEasy:
		s.EaseFactor += 0.15
		s.Repetitions++
		s.Interval = int(math.Round(float64(s.Interval) * s.EaseFactor * 1.3))
		if s.Interval < 1 {
			s.Interval = 1
		}
	default: // RatingGood and anything unrecognized
		s.Repetitions++
		switch s.Repetitions {
		case 1:
			s.Interval = 1
		case 2:
			s.Interval = 6
		default:
			s.Interval = int(math.Round(float64(s.Interval) * s.EaseFactor))
		}
	}
	return s
}

// NextReviewAt returns the next review date for an interval, counted in
// calendar days from now rather than elapsed seconds.
func NextReviewAt(now time.Time, intervalDays int) time.Time {
	return now.AddDate(0, 0, intervalDays)
}
