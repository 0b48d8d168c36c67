package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/example/lexibot/internal/apperrors"
	"github.com/example/lexibot/pkg/models"
)

// TopicRepository handles database operations for topics
type TopicRepository struct {
	db *sqlx.DB
}

// NewTopicRepository creates a new repository instance
func NewTopicRepository(db *sqlx.DB) *TopicRepository {
	return &TopicRepository{db: db}
}

// GetAll returns all topics
func (r *TopicRepository) GetAll(ctx context.Context) ([]models.Topic, error) {
	var topics []models.Topic
	if err := r.db.SelectContext(ctx, &topics, "SELECT * FROM topics ORDER BY name"); err != nil {
		return nil, storageErr("get topics", err)
	}
	return topics, nil
}

// GetByName returns a topic by its unique name
func (r *TopicRepository) GetByName(ctx context.Context, name string) (*models.Topic, error) {
	var topic models.Topic
	query := r.db.Rebind("SELECT * FROM topics WHERE name = ?")
	if err := r.db.GetContext(ctx, &topic, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("topic", name)
		}
		return nil, storageErr("get topic", err)
	}
	return &topic, nil
}

// Create inserts a new topic and fills in its generated id
func (r *TopicRepository) Create(ctx context.Context, topic *models.Topic) error {
	if r.db.DriverName() == "postgres" {
		query := "INSERT INTO topics (name) VALUES ($1) RETURNING id, created_at"
		if err := r.db.QueryRowxContext(ctx, query, topic.Name).Scan(&topic.ID, &topic.CreatedAt); err != nil {
			return storageErr("create topic", err)
		}
		return nil
	}

	result, err := r.db.ExecContext(ctx, "INSERT INTO topics (name) VALUES (?)", topic.Name)
	if err != nil {
		return storageErr("create topic", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return storageErr("create topic", err)
	}
	topic.ID = id
	return nil
}
