package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/lexibot/internal/apperrors"
	"github.com/example/lexibot/pkg/models"
)

// WordRepository handles database operations for vocabulary words
type WordRepository struct {
	db *sqlx.DB
}

// NewWordRepository creates a new repository instance
func NewWordRepository(db *sqlx.DB) *WordRepository {
	return &WordRepository{db: db}
}

// GetByID returns a word by id
func (r *WordRepository) GetByID(ctx context.Context, id int64) (*models.Word, error) {
	var word models.Word
	query := r.db.Rebind("SELECT * FROM words WHERE id = ?")
	if err := r.db.GetContext(ctx, &word, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("word", fmt.Sprint(id))
		}
		return nil, storageErr("get word", err)
	}
	return &word, nil
}

// GetByTopic returns words for a specific topic
func (r *WordRepository) GetByTopic(ctx context.Context, topicID int64) ([]models.Word, error) {
	var words []models.Word
	query := r.db.Rebind("SELECT * FROM words WHERE topic_id = ? ORDER BY word")
	if err := r.db.SelectContext(ctx, &words, query, topicID); err != nil {
		return nil, storageErr("get words by topic", err)
	}
	return words, nil
}

// GetByTextAndTopic returns the word with the given text inside a topic
func (r *WordRepository) GetByTextAndTopic(ctx context.Context, text string, topicID int64) (*models.Word, error) {
	var word models.Word
	query := r.db.Rebind("SELECT * FROM words WHERE word = ? AND topic_id = ?")
	if err := r.db.GetContext(ctx, &word, query, text, topicID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("word", text)
		}
		return nil, storageErr("get word", err)
	}
	return &word, nil
}

// Create inserts a new word and fills in its generated id
func (r *WordRepository) Create(ctx context.Context, word *models.Word) error {
	if r.db.DriverName() == "postgres" {
		query := `INSERT INTO words (word, translation, description, examples, topic_id, difficulty, pronunciation)
			VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
		if err := r.db.QueryRowxContext(ctx, query,
			word.Word, word.Translation, word.Description, word.Examples,
			word.TopicID, word.Difficulty, word.Pronunciation,
		).Scan(&word.ID); err != nil {
			return storageErr("create word", err)
		}
		return nil
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO words (word, translation, description, examples, topic_id, difficulty, pronunciation)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
		word.Word, word.Translation, word.Description, word.Examples,
		word.TopicID, word.Difficulty, word.Pronunciation,
	)
	if err != nil {
		return storageErr("create word", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return storageErr("create word", err)
	}
	word.ID = id
	return nil
}

// Update modifies an existing word
func (r *WordRepository) Update(ctx context.Context, word *models.Word) error {
	query := r.db.Rebind(`UPDATE words SET
		word = ?, translation = ?, description = ?, examples = ?,
		topic_id = ?, difficulty = ?, pronunciation = ?, updated_at = ?
		WHERE id = ?`)
	result, err := r.db.ExecContext(ctx, query,
		word.Word, word.Translation, word.Description, word.Examples,
		word.TopicID, word.Difficulty, word.Pronunciation, time.Now(), word.ID)
	if err != nil {
		return storageErr("update word", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storageErr("update word", err)
	}
	if affected == 0 {
		return apperrors.NotFound("word", fmt.Sprint(word.ID))
	}
	return nil
}
