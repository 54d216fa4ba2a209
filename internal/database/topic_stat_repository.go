package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/preptrack/pkg/models"
)

// TopicStatRepository handles database operations for per-topic mastery state
type TopicStatRepository struct{}

// NewTopicStatRepository creates a new repository instance
func NewTopicStatRepository() *TopicStatRepository {
	return &TopicStatRepository{}
}

// GetByUserAndTopic returns the stat row for a (user, topic) pair, or nil
// when the topic was never attempted
func (r *TopicStatRepository) GetByUserAndTopic(ctx context.Context, userID, topicID int64) (*models.TopicStat, error) {
	var stat models.TopicStat
	query := DB.Rebind("SELECT * FROM topic_stats WHERE user_id = ? AND topic_id = ?")
	err := DB.GetContext(ctx, &stat, query, userID, topicID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get topic stat: %v", err)
	}
	return &stat, nil
}

// ListByUser returns all stat rows for a user
func (r *TopicStatRepository) ListByUser(ctx context.Context, userID int64) ([]models.TopicStat, error) {
	var stats []models.TopicStat
	query := DB.Rebind("SELECT * FROM topic_stats WHERE user_id = ? ORDER BY topic_id")
	err := DB.SelectContext(ctx, &stats, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list topic stats: %v", err)
	}
	return stats, nil
}

// ListByUserAndCategory returns the user's stat rows for topics of one category
func (r *TopicStatRepository) ListByUserAndCategory(ctx context.Context, userID int64, category models.Category) ([]models.TopicStat, error) {
	var stats []models.TopicStat
	query := DB.Rebind(`
		SELECT ts.* FROM topic_stats ts
		JOIN topics t ON t.id = ts.topic_id
		WHERE ts.user_id = ? AND t.category = ?
		ORDER BY ts.topic_id
	`)
	err := DB.SelectContext(ctx, &stats, query, userID, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list topic stats by category: %v", err)
	}
	return stats, nil
}

// CountDue returns how many topics have a revision due at or before now
func (r *TopicStatRepository) CountDue(ctx context.Context, userID int64, now time.Time) (int, error) {
	var count int
	query := DB.Rebind(`
		SELECT COUNT(*) FROM topic_stats
		WHERE user_id = ? AND next_revision_date IS NOT NULL AND next_revision_date <= ?
	`)
	err := DB.GetContext(ctx, &count, query, userID, now)
	if err != nil {
		return 0, fmt.Errorf("failed to count due revisions: %v", err)
	}
	return count, nil
}

// ListDue returns stat rows whose revision is due, most overdue first
func (r *TopicStatRepository) ListDue(ctx context.Context, userID int64, now time.Time, limit int) ([]models.TopicStat, error) {
	var stats []models.TopicStat
	query := DB.Rebind(`
		SELECT * FROM topic_stats
		WHERE user_id = ? AND next_revision_date IS NOT NULL AND next_revision_date <= ?
		ORDER BY next_revision_date
		LIMIT ?
	`)
	err := DB.SelectContext(ctx, &stats, query, userID, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due revisions: %v", err)
	}
	return stats, nil
}
