package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/preptrack/pkg/models"
)

// TopicRepository handles database operations for the topic taxonomy
type TopicRepository struct{}

// NewTopicRepository creates a new repository instance
func NewTopicRepository() *TopicRepository {
	return &TopicRepository{}
}

// ListAll returns every topic ordered by category and importance
func (r *TopicRepository) ListAll(ctx context.Context) ([]models.Topic, error) {
	var topics []models.Topic
	err := DB.SelectContext(ctx, &topics,
		"SELECT * FROM topics ORDER BY category, importance_score DESC, name")
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %v", err)
	}
	return topics, nil
}

// ListByCategory returns topics for a single category
func (r *TopicRepository) ListByCategory(ctx context.Context, category models.Category) ([]models.Topic, error) {
	var topics []models.Topic
	query := DB.Rebind("SELECT * FROM topics WHERE category = ? ORDER BY importance_score DESC, name")
	err := DB.SelectContext(ctx, &topics, query, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics by category: %v", err)
	}
	return topics, nil
}

// CountByCategory returns the number of topics in a category
func (r *TopicRepository) CountByCategory(ctx context.Context, category models.Category) (int, error) {
	var count int
	query := DB.Rebind("SELECT COUNT(*) FROM topics WHERE category = ?")
	err := DB.GetContext(ctx, &count, query, category)
	if err != nil {
		return 0, fmt.Errorf("failed to count topics: %v", err)
	}
	return count, nil
}

// TopByImportance returns the highest-importance topics of a category
func (r *TopicRepository) TopByImportance(ctx context.Context, category models.Category, limit int) ([]models.Topic, error) {
	var topics []models.Topic
	query := DB.Rebind("SELECT * FROM topics WHERE category = ? ORDER BY importance_score DESC, name LIMIT ?")
	err := DB.SelectContext(ctx, &topics, query, category, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top topics: %v", err)
	}
	return topics, nil
}

// GetByID returns a topic by ID, or nil when it does not exist
func (r *TopicRepository) GetByID(ctx context.Context, id int64) (*models.Topic, error) {
	var topic models.Topic
	query := DB.Rebind("SELECT * FROM topics WHERE id = ?")
	err := DB.GetContext(ctx, &topic, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get topic by ID: %v", err)
	}
	return &topic, nil
}

// FindByName looks a topic up by its name within a category
func (r *TopicRepository) FindByName(ctx context.Context, name string, category models.Category) (*models.Topic, error) {
	var topic models.Topic
	query := DB.Rebind("SELECT * FROM topics WHERE name = ? AND category = ?")
	err := DB.GetContext(ctx, &topic, query, name, category)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find topic by name: %v", err)
	}
	return &topic, nil
}

// Upsert inserts a topic or updates its importance and parent when the
// (name, category) pair already exists. The topic's ID is filled in.
func (r *TopicRepository) Upsert(ctx context.Context, topic *models.Topic) error {
	if DB.DriverName() == "postgres" {
		query := `
			INSERT INTO topics (name, category, importance_score, parent_id)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (name, category) DO UPDATE
			SET importance_score = EXCLUDED.importance_score,
			    parent_id = EXCLUDED.parent_id,
			    updated_at = NOW()
			RETURNING id
		`
		err := DB.QueryRowContext(ctx, query,
			topic.Name, topic.Category, topic.ImportanceScore, topic.ParentID,
		).Scan(&topic.ID)
		if err != nil {
			return fmt.Errorf("failed to upsert topic: %v", err)
		}
		return nil
	}

	query := `
		INSERT INTO topics (name, category, importance_score, parent_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (name, category) DO UPDATE
		SET importance_score = excluded.importance_score,
		    parent_id = excluded.parent_id,
		    updated_at = CURRENT_TIMESTAMP
	`
	_, err := DB.ExecContext(ctx, query,
		topic.Name, topic.Category, topic.ImportanceScore, topic.ParentID)
	if err != nil {
		return fmt.Errorf("failed to upsert topic: %v", err)
	}

	existing, err := r.FindByName(ctx, topic.Name, topic.Category)
	if err != nil {
		return err
	}
	if existing != nil {
		topic.ID = existing.ID
	}
	return nil
}

// Tree loads the full taxonomy as a parent/child arena
func (r *TopicRepository) Tree(ctx context.Context) (*models.TopicTree, error) {
	topics, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return models.NewTopicTree(topics), nil
}
