package analytics

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/preptrack/pkg/models"
)

var svcNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

type fakeTopics struct {
	topics []models.Topic
}

func (f *fakeTopics) ListAll(ctx context.Context) ([]models.Topic, error) {
	return f.topics, nil
}

func (f *fakeTopics) ListByCategory(ctx context.Context, category models.Category) ([]models.Topic, error) {
	var out []models.Topic
	for _, t := range f.topics {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTopics) CountByCategory(ctx context.Context, category models.Category) (int, error) {
	count := 0
	for _, t := range f.topics {
		if t.Category == category {
			count++
		}
	}
	return count, nil
}

type fakeStats struct {
	stats []models.TopicStat
	byCat map[models.Category][]models.TopicStat
	due   int
}

func (f *fakeStats) ListByUser(ctx context.Context, userID int64) ([]models.TopicStat, error) {
	return f.stats, nil
}

func (f *fakeStats) ListByUserAndCategory(ctx context.Context, userID int64, category models.Category) ([]models.TopicStat, error) {
	return f.byCat[category], nil
}

func (f *fakeStats) CountDue(ctx context.Context, userID int64, now time.Time) (int, error) {
	return f.due, nil
}

type fakeGoals struct {
	goal *models.Goal
}

func (f *fakeGoals) LatestByUser(ctx context.Context, userID int64) (*models.Goal, error) {
	return f.goal, nil
}

type fakeSnapshots struct {
	byDate  map[string]*models.ReadinessSnapshot
	upserts int
}

func newFakeSnapshots() *fakeSnapshots {
	return &fakeSnapshots{byDate: make(map[string]*models.ReadinessSnapshot)}
}

func (f *fakeSnapshots) GetByUserAndDate(ctx context.Context, userID int64, day time.Time) (*models.ReadinessSnapshot, error) {
	return f.byDate[day.Format("2006-01-02")], nil
}

func (f *fakeSnapshots) Upsert(ctx context.Context, snapshot *models.ReadinessSnapshot) error {
	f.upserts++
	f.byDate[snapshot.Date.Format("2006-01-02")] = snapshot
	return nil
}

func (f *fakeSnapshots) Latest(ctx context.Context, userID int64) (*models.ReadinessSnapshot, error) {
	var latest *models.ReadinessSnapshot
	for _, s := range f.byDate {
		if latest == nil || s.Date.After(latest.Date) {
			latest = s
		}
	}
	return latest, nil
}

func (f *fakeSnapshots) History(ctx context.Context, userID int64, from, to time.Time) ([]models.ReadinessSnapshot, error) {
	var out []models.ReadinessSnapshot
	for _, s := range f.byDate {
		if !s.Date.Before(from) && !s.Date.After(to) {
			out = append(out, *s)
		}
	}
	return out, nil
}

type fakeAttempts struct {
	rows []DayCount
}

func (f *fakeAttempts) DailyCounts(ctx context.Context, userID int64, from time.Time) ([]DayCount, error) {
	return f.rows, nil
}

func testCatalog() *fakeTopics {
	return &fakeTopics{topics: []models.Topic{
		{ID: 1, Name: "Graphs", Category: models.CategoryDSA, ImportanceScore: 9},
		{ID: 2, Name: "Sorting", Category: models.CategoryDSA, ImportanceScore: 7},
		{ID: 3, Name: "Ratios", Category: models.CategoryAPTI, ImportanceScore: 5},
		{ID: 4, Name: "DBMS", Category: models.CategoryCS, ImportanceScore: 8},
	}}
}

func TestSnapshotToday_ComputesOnceAndReusesExisting(t *testing.T) {
	snapshots := newFakeSnapshots()
	svc := NewService(testCatalog(), &fakeStats{}, &fakeGoals{}, snapshots, &fakeAttempts{})

	first, err := svc.SnapshotToday(context.Background(), 1, svcNow)
	require.NoError(t, err)
	require.Equal(t, 1, snapshots.upserts)
	require.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), first.Date)

	// A second call the same day returns the stored snapshot without
	// recomputing
	second, err := svc.SnapshotToday(context.Background(), 1, svcNow.Add(5*time.Hour))
	require.NoError(t, err)
	require.Equal(t, 1, snapshots.upserts)
	require.Equal(t, first.Overall, second.Overall)
}

func TestHistory_RejectsInvalidRange(t *testing.T) {
	svc := NewService(testCatalog(), &fakeStats{}, &fakeGoals{}, newFakeSnapshots(), &fakeAttempts{})

	for _, days := range []int{0, -5, 366, 10000} {
		_, err := svc.History(context.Background(), 1, days, svcNow)
		require.ErrorIs(t, err, ErrInvalidRange, "days=%d", days)
	}
}

func TestHistory_IncludesTodaysSnapshot(t *testing.T) {
	snapshots := newFakeSnapshots()
	svc := NewService(testCatalog(), &fakeStats{}, &fakeGoals{}, snapshots, &fakeAttempts{})

	history, err := svc.History(context.Background(), 1, 7, svcNow)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), history[0].Date)
}

func TestWeakTopics_ZeroFillsUnpracticedTopics(t *testing.T) {
	stats := &fakeStats{stats: []models.TopicStat{
		{TopicID: 1, MasteryScore: 90, AttemptsTotal: 20},
	}}
	svc := NewService(testCatalog(), stats, &fakeGoals{}, newFakeSnapshots(), &fakeAttempts{})

	weak, err := svc.WeakTopics(context.Background(), 1, "", 10)
	require.NoError(t, err)
	require.Len(t, weak, 4)

	// Unpracticed topics carry mastery 0 and outrank a nearly mastered one
	require.NotEqual(t, int64(1), weak[0].TopicID)
	last := weak[len(weak)-1]
	require.Equal(t, int64(1), last.TopicID)

	for _, w := range weak {
		if w.TopicID != 1 {
			require.Zero(t, w.MasteryScore)
			require.Zero(t, w.AttemptsTotal)
		}
	}
}

func TestWeakTopics_CategoryFilter(t *testing.T) {
	svc := NewService(testCatalog(), &fakeStats{}, &fakeGoals{}, newFakeSnapshots(), &fakeAttempts{})

	weak, err := svc.WeakTopics(context.Background(), 1, models.CategoryDSA, 10)
	require.NoError(t, err)
	require.Len(t, weak, 2)
	for _, w := range weak {
		require.Equal(t, models.CategoryDSA, w.Category)
	}
}

func TestDashboard_TrendZeroFilledAndWeakCutoff(t *testing.T) {
	practiced := svcNow.AddDate(0, 0, -1)
	stats := &fakeStats{
		stats: []models.TopicStat{
			{TopicID: 1, MasteryScore: 85, AttemptsTotal: 10, LastPracticedAt: sql.NullTime{Time: practiced, Valid: true}},
			{TopicID: 2, MasteryScore: 30, AttemptsTotal: 4, LastPracticedAt: sql.NullTime{Time: practiced, Valid: true}},
		},
		due: 3,
	}
	attempts := &fakeAttempts{rows: []DayCount{
		{Date: "2026-03-14", Attempts: 4, Correct: 3},
		{Date: "2026-03-15", Attempts: 6, Correct: 3},
	}}
	svc := NewService(testCatalog(), stats, &fakeGoals{}, newFakeSnapshots(), attempts)

	dash, err := svc.Dashboard(context.Background(), 1, svcNow)
	require.NoError(t, err)

	require.Equal(t, 3, dash.RevisionQueue)
	require.Equal(t, 10, dash.TotalAttempts14d)
	require.Equal(t, 60.0, dash.AvgAccuracy14d)

	// Mastery >= 80 is excluded from the needs-attention list
	require.Len(t, dash.WeakTopics, 1)
	require.Equal(t, int64(2), dash.WeakTopics[0].TopicID)

	require.Len(t, dash.AttemptsTrend, 14)
	require.Equal(t, "2026-03-02", dash.AttemptsTrend[0].Date)
	require.Equal(t, "2026-03-15", dash.AttemptsTrend[13].Date)
	require.Zero(t, dash.AttemptsTrend[0].Attempts)
	require.Equal(t, 75.0, dash.AttemptsTrend[12].Accuracy)
	require.Equal(t, 50.0, dash.AttemptsTrend[13].Accuracy)
}

func TestUserReadiness_UsesGoalWeights(t *testing.T) {
	// Full mastery of DSA only; a DSA-heavy goal must score higher than a
	// CS-heavy one
	now := svcNow
	stats := &fakeStats{byCat: map[models.Category][]models.TopicStat{
		models.CategoryDSA: {
			{TopicID: 1, AttemptsTotal: 10, CorrectTotal: 10, AvgTimeSec: 100,
				LastPracticedAt:  sql.NullTime{Time: now, Valid: true},
				NextRevisionDate: sql.NullTime{Time: now.AddDate(0, 0, 7), Valid: true}},
			{TopicID: 2, AttemptsTotal: 10, CorrectTotal: 10, AvgTimeSec: 100,
				LastPracticedAt:  sql.NullTime{Time: now, Valid: true},
				NextRevisionDate: sql.NullTime{Time: now.AddDate(0, 0, 7), Valid: true}},
		},
	}}

	dsaHeavy := &models.Goal{WDsa: 0.7, WApti: 0.1, WCs: 0.1, WDev: 0.1}
	csHeavy := &models.Goal{WDsa: 0.1, WApti: 0.1, WCs: 0.7, WDev: 0.1}

	svcDsa := NewService(testCatalog(), stats, &fakeGoals{goal: dsaHeavy}, newFakeSnapshots(), &fakeAttempts{})
	svcCs := NewService(testCatalog(), stats, &fakeGoals{goal: csHeavy}, newFakeSnapshots(), &fakeAttempts{})

	a, err := svcDsa.UserReadiness(context.Background(), 1)
	require.NoError(t, err)
	b, err := svcCs.UserReadiness(context.Background(), 1)
	require.NoError(t, err)

	require.Equal(t, a.Dsa, b.Dsa)
	require.Greater(t, a.Overall, b.Overall)
}
