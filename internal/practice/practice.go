package practice

import (
	"context"
	"time"

	"github.com/example/preptrack/internal/analytics"
	"github.com/example/preptrack/internal/database"
	"github.com/example/preptrack/pkg/models"
)

// PracticeModule builds practice sessions from the user's mastery state
type PracticeModule struct {
	topicRepo *database.TopicRepository
	statRepo  *database.TopicStatRepository
	analytics *analytics.Service
}

// NewPracticeModule creates a new practice module
func NewPracticeModule(svc *analytics.Service) *PracticeModule {
	return &PracticeModule{
		topicRepo: database.NewTopicRepository(),
		statRepo:  database.NewTopicStatRepository(),
		analytics: svc,
	}
}

// Reason explains why a topic landed in the queue
type Reason string

const (
	// RevisionDue means the topic's spaced-repetition date has passed
	RevisionDue Reason = "revision_due"
	// WeakTopic means the topic ranks high on the weakness list
	WeakTopic Reason = "weak_topic"
)

// QueueItem is one topic to practice next
type QueueItem struct {
	TopicID      int64             `json:"topic_id"`
	Name         string            `json:"name"`
	Category     models.Category   `json:"category"`
	Reason       Reason            `json:"reason"`
	MasteryScore float64           `json:"mastery_score"`
	Difficulty   models.Difficulty `json:"difficulty"`
}

// BuildQueue assembles up to limit topics to practice now. Due revisions
// come first, oldest due date first, then the weakest topics fill the
// remaining slots.
func (p *PracticeModule) BuildQueue(ctx context.Context, userID int64, limit int, now time.Time) ([]QueueItem, error) {
	if limit <= 0 {
		limit = 10
	}

	queue := make([]QueueItem, 0, limit)
	seen := make(map[int64]bool)

	due, err := p.statRepo.ListDue(ctx, userID, now, limit)
	if err != nil {
		return nil, err
	}
	for _, stat := range due {
		topic, err := p.topicRepo.GetByID(ctx, stat.TopicID)
		if err != nil {
			return nil, err
		}
		if topic == nil {
			continue
		}
		queue = append(queue, QueueItem{
			TopicID:      topic.ID,
			Name:         topic.Name,
			Category:     topic.Category,
			Reason:       RevisionDue,
			MasteryScore: stat.MasteryScore,
			Difficulty:   suggestedDifficulty(stat.MasteryScore),
		})
		seen[topic.ID] = true
	}

	if len(queue) >= limit {
		return queue[:limit], nil
	}

	weak, err := p.analytics.WeakTopics(ctx, userID, "", limit+len(seen))
	if err != nil {
		return nil, err
	}
	for _, w := range weak {
		if len(queue) >= limit {
			break
		}
		if seen[w.TopicID] {
			continue
		}
		queue = append(queue, QueueItem{
			TopicID:      w.TopicID,
			Name:         w.Name,
			Category:     w.Category,
			Reason:       WeakTopic,
			MasteryScore: w.MasteryScore,
			Difficulty:   suggestedDifficulty(w.MasteryScore),
		})
		seen[w.TopicID] = true
	}

	return queue, nil
}

// suggestedDifficulty eases struggling topics back in and pushes strong
// ones harder
func suggestedDifficulty(mastery float64) models.Difficulty {
	switch {
	case mastery < 40:
		return models.DifficultyEasy
	case mastery < 75:
		return models.DifficultyMed
	default:
		return models.DifficultyHard
	}
}
