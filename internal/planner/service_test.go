package planner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/preptrack/pkg/models"
)

type fakeGoalSource struct {
	goal *models.Goal
	err  error
}

func (f *fakeGoalSource) LatestByUser(ctx context.Context, userID int64) (*models.Goal, error) {
	return f.goal, f.err
}

type fakeTopicSource struct {
	topics map[models.Category][]models.Topic
}

func (f *fakeTopicSource) TopByImportance(ctx context.Context, category models.Category, limit int) ([]models.Topic, error) {
	pool := f.topics[category]
	if len(pool) > limit {
		pool = pool[:limit]
	}
	return pool, nil
}

type fakeTaskStore struct {
	calls []replaceCall
}

type replaceCall struct {
	userID   int64
	from, to time.Time
	tasks    []models.PlanTask
}

func (f *fakeTaskStore) ReplaceSystemRange(ctx context.Context, userID int64, from, to time.Time, tasks []models.PlanTask) (int, error) {
	f.calls = append(f.calls, replaceCall{userID: userID, from: from, to: to, tasks: tasks})
	return len(tasks), nil
}

func newTestService(goal *models.Goal) (*Service, *fakeTaskStore) {
	store := &fakeTaskStore{}
	svc := NewService(
		&fakeGoalSource{goal: goal},
		&fakeTopicSource{topics: map[models.Category][]models.Topic{
			models.CategoryDSA:  {{ID: 1, Name: "Graphs", Category: models.CategoryDSA}},
			models.CategoryAPTI: {{ID: 2, Name: "Ratios", Category: models.CategoryAPTI}},
			models.CategoryCS:   {{ID: 3, Name: "DBMS", Category: models.CategoryCS}},
			models.CategoryDEV:  {{ID: 4, Name: "Docker", Category: models.CategoryDEV}},
		}},
		store,
	)
	return svc, store
}

func TestGenerate_NoGoal(t *testing.T) {
	svc, _ := newTestService(nil)

	_, err := svc.Generate(context.Background(), 1, 30, time.Time{}, planStart)
	require.ErrorIs(t, err, ErrNoGoal)
}

func TestGenerate_InvalidRange(t *testing.T) {
	goal := testGoal()
	svc, _ := newTestService(&goal)

	for _, days := range []int{0, -1, 366, 1000} {
		_, err := svc.Generate(context.Background(), 1, days, time.Time{}, planStart)
		require.ErrorIs(t, err, ErrInvalidRange, "days=%d", days)
	}
}

func TestGenerate_GoalLoadErrorPropagates(t *testing.T) {
	store := &fakeTaskStore{}
	svc := NewService(&fakeGoalSource{err: errors.New("db down")}, &fakeTopicSource{}, store)

	_, err := svc.Generate(context.Background(), 1, 7, time.Time{}, planStart)
	require.Error(t, err)
	require.Empty(t, store.calls)
}

func TestGenerate_ReplacesExactWindow(t *testing.T) {
	goal := testGoal()
	svc, store := newTestService(&goal)

	days := 14
	res, err := svc.Generate(context.Background(), 1, days, planStart, planStart)
	require.NoError(t, err)
	require.Len(t, store.calls, 1)

	call := store.calls[0]
	require.Equal(t, int64(1), call.userID)
	require.True(t, call.from.Equal(planStart))
	require.True(t, call.to.Equal(planStart.AddDate(0, 0, days)))
	require.Equal(t, len(call.tasks), res.CreatedCount)

	for _, task := range call.tasks {
		require.Equal(t, models.CreatedBySystem, task.CreatedBy)
		require.Equal(t, models.StatusPending, task.Status)
		require.False(t, task.Date.Before(call.from))
		require.True(t, task.Date.Before(call.to))
	}
}

func TestGenerate_ZeroStartAnchorsAtLaterOfGoalAndToday(t *testing.T) {
	goal := testGoal()
	svc, store := newTestService(&goal)

	// Goal starts before "now": the plan anchors at today.
	now := planStart.AddDate(0, 0, 10).Add(15 * time.Hour)
	res, err := svc.Generate(context.Background(), 1, 7, time.Time{}, now)
	require.NoError(t, err)
	require.True(t, res.StartDate.Equal(planStart.AddDate(0, 0, 10)), "got %v", res.StartDate)

	// Goal starts in the future: the plan anchors at the goal start.
	goal.StartDate = planStart.AddDate(0, 0, 30)
	svc, store = newTestService(&goal)
	res, err = svc.Generate(context.Background(), 1, 7, time.Time{}, now)
	require.NoError(t, err)
	require.True(t, res.StartDate.Equal(goal.StartDate))
	_ = store
}

func TestGenerate_DeterministicTaskSet(t *testing.T) {
	goal := testGoal()
	svc, store := newTestService(&goal)

	_, err := svc.Generate(context.Background(), 1, 10, planStart, planStart)
	require.NoError(t, err)
	_, err = svc.Generate(context.Background(), 1, 10, planStart, planStart)
	require.NoError(t, err)

	require.Len(t, store.calls, 2)
	first, second := store.calls[0].tasks, store.calls[1].tasks
	require.Equal(t, len(first), len(second))

	// Same schedule both times; only the generated ids differ.
	for i := range first {
		require.True(t, first[i].Date.Equal(second[i].Date), "task %d date", i)
		require.Equal(t, first[i].Type, second[i].Type, "task %d type", i)
		require.Equal(t, first[i].Title, second[i].Title, "task %d title", i)
		require.Equal(t, first[i].DurationMin, second[i].DurationMin, "task %d duration", i)
		require.Equal(t, first[i].TopicID, second[i].TopicID, "task %d topic", i)
	}
}
