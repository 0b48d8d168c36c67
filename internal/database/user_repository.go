package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/lexibot/internal/apperrors"
	"github.com/example/lexibot/pkg/models"
)

// UserRepository handles database operations for student accounts
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new repository instance
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID returns a user by id
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	query := r.db.Rebind("SELECT * FROM users WHERE id = ?")
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("user", id)
		}
		return nil, storageErr("get user", err)
	}
	return &user, nil
}

// Upsert creates the user or overwrites its mutable fields
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	now := time.Now()
	query := r.db.Rebind(`
		INSERT INTO users (id, chat_id, first_name, last_name,
			notification_enabled, notification_hour, words_per_day, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			chat_id = EXCLUDED.chat_id,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			notification_enabled = EXCLUDED.notification_enabled,
			notification_hour = EXCLUDED.notification_hour,
			words_per_day = EXCLUDED.words_per_day,
			updated_at = EXCLUDED.updated_at`)
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.ChatID, user.FirstName, user.LastName,
		user.NotificationEnabled, user.NotificationHour, user.WordsPerDay, now, now)
	if err != nil {
		return storageErr("upsert user", err)
	}
	return nil
}

// GetUsersForNotification returns users who have notifications enabled for
// the given hour and are reachable over Telegram
func (r *UserRepository) GetUsersForNotification(ctx context.Context, hour int) ([]models.User, error) {
	var users []models.User
	query := r.db.Rebind(`SELECT * FROM users
		WHERE notification_enabled = true AND notification_hour = ? AND chat_id != 0`)
	if err := r.db.SelectContext(ctx, &users, query, hour); err != nil {
		return nil, storageErr("get users for notification", err)
	}
	return users, nil
}
