package analytics

import (
	"math"
	"sort"

	"github.com/example/preptrack/pkg/models"
)

// WeakTopic is one topic+stat merge scored for remediation priority.
// Topics with no stat row simply carry zero mastery and zero attempts.
type WeakTopic struct {
	TopicID         int64           `json:"topic_id"`
	Name            string          `json:"name"`
	Category        models.Category `json:"category"`
	ImportanceScore float64         `json:"importance_score"`
	MasteryScore    float64         `json:"mastery_score"`
	AttemptsTotal   int             `json:"attempts_total"`
	Priority        float64         `json:"priority"`
}

// WeaknessPriority scores how urgently a topic needs attention:
//
//	importance x (1 - mastery/100) x ln(1 + max(1, attempts))
//
// The attempt floor of 1 keeps never-attempted topics from collapsing to
// zero via ln(1); an important untouched topic must still surface.
// Non-finite or negative inputs degrade to 0 rather than poisoning the sort.
func WeaknessPriority(importanceScore, masteryScore float64, attemptsTotal int) float64 {
	if math.IsNaN(importanceScore) || math.IsInf(importanceScore, 0) {
		importanceScore = 0
	}
	if math.IsNaN(masteryScore) || math.IsInf(masteryScore, 0) {
		masteryScore = 0
	}
	if importanceScore < 0 {
		importanceScore = 0
	}
	mastery := clamp(masteryScore, 0, 100)

	attempts := attemptsTotal
	if attempts < 1 {
		attempts = 1
	}

	priority := importanceScore * (1 - mastery/100) * math.Log(1+float64(attempts))
	if math.IsNaN(priority) || math.IsInf(priority, 0) || priority < 0 {
		return 0
	}
	return math.Round(priority*1000) / 1000
}

// TopWeakTopics scores every input topic and returns the top limit by
// priority, descending. The sort is stable so equal-priority topics keep
// their input order and the result is deterministic for a fixed input.
func TopWeakTopics(topics []WeakTopic, limit int) []WeakTopic {
	scored := make([]WeakTopic, len(topics))
	for i, t := range topics {
		t.Priority = WeaknessPriority(t.ImportanceScore, t.MasteryScore, t.AttemptsTotal)
		scored[i] = t
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Priority > scored[j].Priority
	})

	if limit >= 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}
