// Package database is the SQL store adapter. It supports SQLite for
// single-node deployments and PostgreSQL when DB_TYPE=postgres, mirroring
// the same repository surface over both.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/example/lexibot/internal/apperrors"
)

// Connect establishes a database connection based on environment settings:
// DB_TYPE selects the driver ("sqlite" by default, "postgres" with
// DATABASE_URL), SQLITE_PATH overrides the default data/lexibot.db location.
func Connect() (*sqlx.DB, error) {
	dbType := os.Getenv("DB_TYPE")
	if dbType == "" {
		dbType = "sqlite"
	}

	if dbType == "postgres" {
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when DB_TYPE=postgres")
		}
		db, err := sqlx.Connect("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if err := initializeSchema(db); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	}

	dbPath := os.Getenv("SQLITE_PATH")
	if dbPath == "" {
		dbPath = filepath.Join("data", "lexibot.db")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// SQLite doesn't support multiple writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.DriverName() == "postgres" {
		serial = "BIGSERIAL PRIMARY KEY"
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			chat_id BIGINT DEFAULT 0,
			first_name TEXT DEFAULT '',
			last_name TEXT DEFAULT '',
			notification_enabled BOOLEAN DEFAULT true,
			notification_hour INTEGER DEFAULT 9,
			words_per_day INTEGER DEFAULT 10,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS topics (
			id %s,
			name TEXT NOT NULL UNIQUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`, serial),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS words (
			id %s,
			word TEXT NOT NULL,
			translation TEXT NOT NULL,
			description TEXT DEFAULT '',
			examples TEXT DEFAULT '',
			topic_id BIGINT NOT NULL,
			difficulty INTEGER DEFAULT 1,
			pronunciation TEXT DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (topic_id) REFERENCES topics(id),
			UNIQUE(word, topic_id)
		)`, serial),
		`CREATE TABLE IF NOT EXISTS review_items (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			item_type TEXT NOT NULL,
			content_ref TEXT NOT NULL,
			content_snapshot TEXT DEFAULT '{}',
			next_review_date TIMESTAMP NOT NULL,
			last_reviewed_date TIMESTAMP,
			ease_factor REAL DEFAULT 2.5,
			interval_days INTEGER DEFAULT 0,
			repetitions INTEGER DEFAULT 0,
			lapses INTEGER DEFAULT 0,
			review_history TEXT DEFAULT '[]',
			status TEXT DEFAULT 'active',
			tags TEXT DEFAULT '[]',
			source_lesson TEXT DEFAULT '',
			source_course TEXT DEFAULT '',
			version BIGINT NOT NULL DEFAULT 1,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, content_ref)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_review_items_due
			ON review_items (user_id, status, next_review_date)`,
		`CREATE TABLE IF NOT EXISTS vocabulary_goals (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			daily_target INTEGER NOT NULL,
			current_progress INTEGER DEFAULT 0,
			is_active BOOLEAN DEFAULT true,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

// storageErr classifies a driver error into the shared taxonomy. Constraint
// violations are permanent and map to ErrConflict; anything else that is not
// a missing row is treated as transient, and the caller must not assume the
// write did or did not apply.
func storageErr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	if isConstraintViolation(err) {
		return fmt.Errorf("%s: %w: %v", op, apperrors.ErrConflict, err)
	}
	return fmt.Errorf("%s: %w: %v", op, apperrors.ErrStorageUnavailable, err)
}

// isConstraintViolation reports whether err is an integrity constraint
// failure from either driver. Retrying such a write can never succeed.
func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// class 23 is integrity_constraint_violation
		return pqErr.Code.Class() == "23"
	}
	return false
}
