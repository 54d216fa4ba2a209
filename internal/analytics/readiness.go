package analytics

import (
	"math"
	"time"

	"github.com/example/preptrack/pkg/models"
)

// Component weights of the readiness composite.
const (
	readAccuracyWeight   = 0.35
	readSpeedWeight      = 0.25
	readCoverageWeight   = 0.20
	readDisciplineWeight = 0.20
)

// BaselineTimeSec is the expected solve time per category, in seconds.
// A DSA problem and a dev project task legitimately take very different
// amounts of time, so speed is always judged relative to these.
var BaselineTimeSec = map[models.Category]int{
	models.CategoryDSA:  15 * 60,
	models.CategoryAPTI: 2 * 60,
	models.CategoryCS:   10 * 60,
	models.CategoryDEV:  30 * 60,
}

// StatRow is the slice of a TopicStat the aggregator reads.
type StatRow struct {
	AttemptsTotal    int
	CorrectTotal     int
	AvgTimeSec       int
	LastPracticedAt  *time.Time
	NextRevisionDate *time.Time
}

// CategoryMetrics breaks a category readiness score into its inputs.
// All four scores are 0..100.
type CategoryMetrics struct {
	Accuracy           float64 `json:"accuracy"`
	Speed              float64 `json:"speed"`
	Coverage           float64 `json:"coverage"`
	RevisionDiscipline float64 `json:"revision_discipline"`
	AttemptsTotal      int     `json:"attempts_total"`
	CorrectTotal       int     `json:"correct_total"`
	AvgTimeSec         int     `json:"avg_time_sec"`
	PracticedTopics    int     `json:"practiced_topics"`
	TotalTopics        int     `json:"total_topics"`
}

// CategoryReadiness is the 0..100 readiness for one category plus the
// metrics it was computed from.
type CategoryReadiness struct {
	Readiness float64         `json:"readiness"`
	Metrics   CategoryMetrics `json:"metrics"`
}

// Breakdown is a user's overall readiness and its per-category parts.
type Breakdown struct {
	Overall float64 `json:"overall"`
	Dsa     float64 `json:"dsa"`
	Apti    float64 `json:"apti"`
	Cs      float64 `json:"cs"`
	Dev     float64 `json:"dev"`
}

// ComputeCategory aggregates a category's stat rows into a readiness score.
// Every ratio has an explicit zero-input fallback, so the result is always a
// finite value in [0,100].
func ComputeCategory(category models.Category, totalTopics int, stats []StatRow) CategoryReadiness {
	var attemptsTotal, correctTotal int
	var totalTimeWeighted float64
	practiced := 0

	for _, s := range stats {
		attemptsTotal += s.AttemptsTotal
		correctTotal += s.CorrectTotal
		totalTimeWeighted += float64(s.AvgTimeSec) * float64(s.AttemptsTotal)
		if s.AttemptsTotal > 0 || s.LastPracticedAt != nil {
			practiced++
		}
	}

	avgTimeSec := 0
	if attemptsTotal > 0 {
		avgTimeSec = int(math.Round(totalTimeWeighted / float64(attemptsTotal)))
	}

	accuracy := 0.0
	if attemptsTotal > 0 {
		accuracy = clamp(float64(correctTotal)/float64(attemptsTotal)*100, 0, 100)
	}

	speed := 0.0
	if attemptsTotal > 0 {
		speed = speedScore(avgTimeSec, BaselineTimeSec[category])
	}

	coverage := 0.0
	if totalTopics > 0 {
		coverage = clamp(float64(practiced)/float64(totalTopics)*100, 0, 100)
	}

	discipline := revisionDiscipline(stats)

	readiness := 100 * (readAccuracyWeight*accuracy/100 +
		readSpeedWeight*speed/100 +
		readCoverageWeight*coverage/100 +
		readDisciplineWeight*discipline/100)

	return CategoryReadiness{
		Readiness: clamp(readiness, 0, 100),
		Metrics: CategoryMetrics{
			Accuracy:           accuracy,
			Speed:              speed,
			Coverage:           coverage,
			RevisionDiscipline: discipline,
			AttemptsTotal:      attemptsTotal,
			CorrectTotal:       correctTotal,
			AvgTimeSec:         avgTimeSec,
			PracticedTopics:    practiced,
			TotalTopics:        totalTopics,
		},
	}
}

// Combine folds per-category readiness into the overall score using the
// goal's weights, renormalized to sum to 1. A missing goal or degenerate
// weights fall back to an equal split; readiness is informational, so unlike
// plan generation this never errors.
func Combine(perCategory map[models.Category]float64, goal *models.Goal) Breakdown {
	weights := models.NormalizedWeights(goal)

	var overall float64
	for _, c := range models.Categories {
		overall += weights[c] * perCategory[c] / 100
	}

	return Breakdown{
		Overall: clamp(overall*100, 0, 100),
		Dsa:     clamp(perCategory[models.CategoryDSA], 0, 100),
		Apti:    clamp(perCategory[models.CategoryAPTI], 0, 100),
		Cs:      clamp(perCategory[models.CategoryCS], 0, 100),
		Dev:     clamp(perCategory[models.CategoryDEV], 0, 100),
	}
}

// speedScore maps the ratio of observed to baseline time onto anchored
// points: twice as fast as baseline scores 100, on baseline 70, 1.5x 40,
// 2.5x or slower 0, linear between anchors.
func speedScore(avgTimeSec, baselineSec int) float64 {
	if baselineSec <= 0 {
		return 0
	}
	ratio := float64(avgTimeSec) / float64(baselineSec)

	switch {
	case ratio <= 0.5:
		return 100
	case ratio >= 2.5:
		return 0
	case ratio <= 1.0:
		t := (ratio - 0.5) / 0.5
		return clamp(100-t*30, 0, 100)
	case ratio <= 1.5:
		t := (ratio - 1.0) / 0.5
		return clamp(70-t*30, 0, 100)
	default:
		t := (ratio - 1.5) / 1.0
		return clamp(40-t*40, 0, 100)
	}
}

// revisionDiscipline is the fraction of due-dated rows whose last practice
// fell on the due day or the day after, at UTC day granularity. Rows without
// a due date are excluded; with no eligible rows the score is 0.
func revisionDiscipline(stats []StatRow) float64 {
	relevant := 0
	disciplined := 0

	for _, s := range stats {
		if s.NextRevisionDate == nil {
			continue
		}
		relevant++
		if s.LastPracticedAt == nil {
			continue
		}

		due := startOfDayUTC(*s.NextRevisionDate)
		last := startOfDayUTC(*s.LastPracticedAt)
		deltaDays := int(last.Sub(due).Hours() / 24)
		if deltaDays >= 0 && deltaDays <= 1 {
			disciplined++
		}
	}

	if relevant == 0 {
		return 0
	}
	return clamp(float64(disciplined)/float64(relevant)*100, 0, 100)
}

func startOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func clamp(n, min, max float64) float64 {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
