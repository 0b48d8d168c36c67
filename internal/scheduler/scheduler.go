// Package scheduler runs the hourly reminder sweep: every user who wants a
// notification at the current hour is told how many review items are due.
package scheduler

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/lexibot/internal/goals"
	"github.com/example/lexibot/internal/review"
	"github.com/example/lexibot/internal/scheduling"
	"github.com/example/lexibot/pkg/models"
)

// Default window outside which no reminders are sent
const (
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 22
)

// sweepTimeout bounds one full reminder sweep
const sweepTimeout = 2 * time.Minute

// Notifier delivers a due-item reminder to a student
type Notifier interface {
	SendReminders(chatID int64, count int) error
}

// UserSource looks up notification recipients
type UserSource interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetUsersForNotification(ctx context.Context, hour int) ([]models.User, error)
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	reviews   *review.Service
	goals     *goals.Tracker
	users     UserSource
	notifier  Notifier
	clock     scheduling.Clock
}

// New creates a new scheduler instance
func New(reviews *review.Service, tracker *goals.Tracker, users UserSource, notifier Notifier, clock scheduling.Clock) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		reviews:   reviews,
		goals:     tracker,
		users:     users,
		notifier:  notifier,
		clock:     clock,
	}
}

// Start begins running all scheduled tasks in the background
func (s *Scheduler) Start() {
	s.scheduler.Every(1).Hour().Do(s.checkAndSendReminders)
	s.scheduler.Every(1).Day().At("00:00").Do(s.resetDailyGoals)
	s.scheduler.StartAsync()
}

// resetDailyGoals zeroes active goal progress at the start of each day
func (s *Scheduler) resetDailyGoals() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()
	if err := s.goals.StartNewDay(ctx); err != nil {
		log.Printf("Error resetting daily goal progress: %v", err)
	}
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// checkAndSendReminders finds users due a notification this hour and
// reminds each one with a pending review count
func (s *Scheduler) checkAndSendReminders() {
	currentHour := s.clock.Now().Hour()
	startHour := hourFromEnv("NOTIFICATION_START_HOUR", DefaultNotificationStartHour)
	endHour := hourFromEnv("NOTIFICATION_END_HOUR", DefaultNotificationEndHour)

	if currentHour < startHour || currentHour > endHour {
		log.Printf("Current hour %d is outside notification hours (%d-%d), skipping reminders",
			currentHour, startHour, endHour)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	users, err := s.users.GetUsersForNotification(ctx, currentHour)
	if err != nil {
		log.Printf("Error getting users for notification: %v", err)
		return
	}

	for _, user := range users {
		due, err := s.reviews.DueItems(ctx, user.ID)
		if err != nil {
			log.Printf("Error getting due items for user %s: %v", user.ID, err)
			continue
		}
		if len(due) == 0 {
			continue
		}

		// Don't announce more than the user's daily preference
		count := len(due)
		if user.WordsPerDay > 0 && count > user.WordsPerDay {
			count = user.WordsPerDay
		}
		if err := s.notifier.SendReminders(user.ChatID, count); err != nil {
			log.Printf("Error sending reminder to user %s: %v", user.ID, err)
		}
	}
}

// RunManualCheck forces a reminder check for a specific user
func (s *Scheduler) RunManualCheck(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	due, err := s.reviews.DueItems(ctx, userID)
	if err != nil {
		return err
	}
	if len(due) > 0 {
		return s.notifier.SendReminders(user.ChatID, len(due))
	}
	return nil
}

// hourFromEnv reads an hour-of-day override from the environment
func hourFromEnv(name string, fallback int) int {
	if v := os.Getenv(name); v != "" {
		if h, err := strconv.Atoi(v); err == nil && h >= 0 && h <= 23 {
			return h
		}
	}
	return fallback
}
