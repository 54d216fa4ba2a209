package analytics

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/example/preptrack/pkg/models"
)

// ErrInvalidRange is returned when a requested day range falls outside
// [1,365].
var ErrInvalidRange = errors.New("days must be between 1 and 365")

// Result limits for weak-topic queries.
const (
	defaultWeakLimit = 10
	maxWeakLimit     = 50
)

// TopicSource provides read access to the topic catalog.
type TopicSource interface {
	ListAll(ctx context.Context) ([]models.Topic, error)
	ListByCategory(ctx context.Context, category models.Category) ([]models.Topic, error)
	CountByCategory(ctx context.Context, category models.Category) (int, error)
}

// StatSource provides read access to per-user topic aggregates.
type StatSource interface {
	ListByUser(ctx context.Context, userID int64) ([]models.TopicStat, error)
	ListByUserAndCategory(ctx context.Context, userID int64, category models.Category) ([]models.TopicStat, error)
	CountDue(ctx context.Context, userID int64, now time.Time) (int, error)
}

// GoalSource returns the user's active goal, or nil when none is set.
type GoalSource interface {
	LatestByUser(ctx context.Context, userID int64) (*models.Goal, error)
}

// SnapshotStore persists daily readiness snapshots.
type SnapshotStore interface {
	GetByUserAndDate(ctx context.Context, userID int64, day time.Time) (*models.ReadinessSnapshot, error)
	Upsert(ctx context.Context, snapshot *models.ReadinessSnapshot) error
	Latest(ctx context.Context, userID int64) (*models.ReadinessSnapshot, error)
	History(ctx context.Context, userID int64, from, to time.Time) ([]models.ReadinessSnapshot, error)
}

// DayCount is one day of attempt activity.
type DayCount struct {
	Date     string  `json:"date"` // YYYY-MM-DD
	Attempts int     `json:"attempts"`
	Correct  int     `json:"-"`
	Accuracy float64 `json:"accuracy"`
}

// AttemptSource provides aggregate queries over the attempt log.
type AttemptSource interface {
	DailyCounts(ctx context.Context, userID int64, from time.Time) ([]DayCount, error)
}

// Service wires the pure readiness and weakness computations to storage.
type Service struct {
	topics    TopicSource
	stats     StatSource
	goals     GoalSource
	snapshots SnapshotStore
	attempts  AttemptSource
}

// NewService creates an analytics service over the given sources.
func NewService(topics TopicSource, stats StatSource, goals GoalSource, snapshots SnapshotStore, attempts AttemptSource) *Service {
	return &Service{
		topics:    topics,
		stats:     stats,
		goals:     goals,
		snapshots: snapshots,
		attempts:  attempts,
	}
}

// CategoryReadiness gathers one category's stats and computes its readiness.
func (s *Service) CategoryReadiness(ctx context.Context, userID int64, category models.Category) (CategoryReadiness, error) {
	totalTopics, err := s.topics.CountByCategory(ctx, category)
	if err != nil {
		return CategoryReadiness{}, fmt.Errorf("failed to count topics for %s: %v", category, err)
	}

	stats, err := s.stats.ListByUserAndCategory(ctx, userID, category)
	if err != nil {
		return CategoryReadiness{}, fmt.Errorf("failed to load stats for %s: %v", category, err)
	}

	return ComputeCategory(category, totalTopics, statRows(stats)), nil
}

// UserReadiness computes all four category scores and the weighted overall.
// Categories are independent aggregations, so they run in parallel.
func (s *Service) UserReadiness(ctx context.Context, userID int64) (Breakdown, error) {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)
	perCategory := make(map[models.Category]float64, len(models.Categories))

	for _, category := range models.Categories {
		wg.Add(1)
		go func(category models.Category) {
			defer wg.Done()
			res, err := s.CategoryReadiness(ctx, userID, category)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			perCategory[category] = res.Readiness
		}(category)
	}
	wg.Wait()

	if firstErr != nil {
		return Breakdown{}, firstErr
	}

	goal, err := s.goals.LatestByUser(ctx, userID)
	if err != nil {
		return Breakdown{}, fmt.Errorf("failed to load goal: %v", err)
	}

	return Combine(perCategory, goal), nil
}

// SnapshotToday returns today's readiness snapshot, computing and persisting
// it first when absent. The (user, day) upsert keeps this idempotent.
func (s *Service) SnapshotToday(ctx context.Context, userID int64, now time.Time) (*models.ReadinessSnapshot, error) {
	day := startOfDayUTC(now)

	existing, err := s.snapshots.GetByUserAndDate(ctx, userID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to check today's snapshot: %v", err)
	}
	if existing != nil {
		return existing, nil
	}

	breakdown, err := s.UserReadiness(ctx, userID)
	if err != nil {
		return nil, err
	}

	snapshot := &models.ReadinessSnapshot{
		UserID:  userID,
		Date:    day,
		Overall: breakdown.Overall,
		Dsa:     breakdown.Dsa,
		Apti:    breakdown.Apti,
		Cs:      breakdown.Cs,
		Dev:     breakdown.Dev,
	}
	if err := s.snapshots.Upsert(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to store snapshot: %v", err)
	}
	return snapshot, nil
}

// History returns up to days of snapshots ending today, oldest first,
// computing today's snapshot on demand first.
func (s *Service) History(ctx context.Context, userID int64, days int, now time.Time) ([]models.ReadinessSnapshot, error) {
	if days < 1 || days > 365 {
		return nil, ErrInvalidRange
	}

	if _, err := s.SnapshotToday(ctx, userID, now); err != nil {
		return nil, err
	}

	today := startOfDayUTC(now)
	from := today.AddDate(0, 0, -(days - 1))
	history, err := s.snapshots.History(ctx, userID, from, today)
	if err != nil {
		return nil, fmt.Errorf("failed to load readiness history: %v", err)
	}
	return history, nil
}

// WeakTopics merges the topic catalog with the user's stats (topics without
// a stat row count as mastery 0, attempts 0) and ranks them. category may be
// empty to rank across all tracks.
func (s *Service) WeakTopics(ctx context.Context, userID int64, category models.Category, limit int) ([]WeakTopic, error) {
	if limit < 1 {
		limit = defaultWeakLimit
	}
	if limit > maxWeakLimit {
		limit = maxWeakLimit
	}

	var (
		topics []models.Topic
		err    error
	)
	if category != "" {
		topics, err = s.topics.ListByCategory(ctx, category)
	} else {
		topics, err = s.topics.ListAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load topics: %v", err)
	}

	stats, err := s.stats.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %v", err)
	}

	statsByTopic := make(map[int64]models.TopicStat, len(stats))
	for _, st := range stats {
		statsByTopic[st.TopicID] = st
	}

	merged := make([]WeakTopic, 0, len(topics))
	for _, topic := range topics {
		wt := WeakTopic{
			TopicID:         topic.ID,
			Name:            topic.Name,
			Category:        topic.Category,
			ImportanceScore: topic.ImportanceScore,
		}
		if st, ok := statsByTopic[topic.ID]; ok {
			wt.MasteryScore = st.MasteryScore
			wt.AttemptsTotal = st.AttemptsTotal
		}
		merged = append(merged, wt)
	}

	return TopWeakTopics(merged, limit), nil
}

// Dashboard is the at-a-glance summary for one user.
type Dashboard struct {
	Readiness        *models.ReadinessSnapshot `json:"readiness"`
	WeakTopics       []WeakTopic               `json:"weak_topics"`
	AttemptsTrend    []DayCount                `json:"attempts_trend"`
	RevisionQueue    int                       `json:"revision_queue_size"`
	TotalAttempts14d int                       `json:"total_attempts_14d"`
	AvgAccuracy14d   float64                   `json:"avg_accuracy_14d"`
}

// Dashboard builds the summary: latest snapshot, top-5 weak practiced topics
// still under mastery 80, due-revision queue size and a zero-filled 14-day
// attempt trend.
func (s *Service) Dashboard(ctx context.Context, userID int64, now time.Time) (*Dashboard, error) {
	latest, err := s.snapshots.Latest(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest snapshot: %v", err)
	}

	queue, err := s.stats.CountDue(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to count due revisions: %v", err)
	}

	weak, err := s.weakPracticedTopics(ctx, userID)
	if err != nil {
		return nil, err
	}

	trend, totalAttempts, avgAccuracy, err := s.attemptTrend(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Readiness:        latest,
		WeakTopics:       weak,
		AttemptsTrend:    trend,
		RevisionQueue:    queue,
		TotalAttempts14d: totalAttempts,
		AvgAccuracy14d:   avgAccuracy,
	}, nil
}

// weakPracticedTopics ranks only topics the user has a stat row for, and
// applies the dashboard's mastery<80 cutoff before ranking.
func (s *Service) weakPracticedTopics(ctx context.Context, userID int64) ([]WeakTopic, error) {
	stats, err := s.stats.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %v", err)
	}

	topics, err := s.topics.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load topics: %v", err)
	}
	topicsByID := make(map[int64]models.Topic, len(topics))
	for _, t := range topics {
		topicsByID[t.ID] = t
	}

	candidates := make([]WeakTopic, 0, len(stats))
	for _, st := range stats {
		if st.MasteryScore >= 80 {
			continue
		}
		topic, ok := topicsByID[st.TopicID]
		if !ok {
			continue
		}
		candidates = append(candidates, WeakTopic{
			TopicID:         topic.ID,
			Name:            topic.Name,
			Category:        topic.Category,
			ImportanceScore: topic.ImportanceScore,
			MasteryScore:    st.MasteryScore,
			AttemptsTotal:   st.AttemptsTotal,
		})
	}

	return TopWeakTopics(candidates, 5), nil
}

const trendDays = 14

func (s *Service) attemptTrend(ctx context.Context, userID int64, now time.Time) ([]DayCount, int, float64, error) {
	from := startOfDayUTC(now).AddDate(0, 0, -(trendDays - 1))

	rows, err := s.attempts.DailyCounts(ctx, userID, from)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to load attempt trend: %v", err)
	}

	byDay := make(map[string]DayCount, len(rows))
	for _, r := range rows {
		byDay[r.Date] = r
	}

	trend := make([]DayCount, 0, trendDays)
	totalAttempts, totalCorrect := 0, 0
	for i := 0; i < trendDays; i++ {
		day := from.AddDate(0, 0, i).Format("2006-01-02")
		entry := byDay[day]
		entry.Date = day
		if entry.Attempts > 0 {
			entry.Accuracy = round2(float64(entry.Correct) / float64(entry.Attempts) * 100)
		}
		totalAttempts += entry.Attempts
		totalCorrect += entry.Correct
		trend = append(trend, entry)
	}

	avgAccuracy := 0.0
	if totalAttempts > 0 {
		avgAccuracy = round2(float64(totalCorrect) / float64(totalAttempts) * 100)
	}
	return trend, totalAttempts, avgAccuracy, nil
}

func statRows(stats []models.TopicStat) []StatRow {
	rows := make([]StatRow, 0, len(stats))
	for _, st := range stats {
		row := StatRow{
			AttemptsTotal: st.AttemptsTotal,
			CorrectTotal:  st.CorrectTotal,
			AvgTimeSec:    st.AvgTimeSec,
		}
		if st.LastPracticedAt.Valid {
			t := st.LastPracticedAt.Time
			row.LastPracticedAt = &t
		}
		if st.NextRevisionDate.Valid {
			t := st.NextRevisionDate.Time
			row.NextRevisionDate = &t
		}
		rows = append(rows, row)
	}
	return rows
}

func round2(n float64) float64 {
	return math.Round(n*100) / 100
}
