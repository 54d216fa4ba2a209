package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/example/preptrack/pkg/models"
)

// ErrNoGoal is returned when plan generation is requested for a user with no
// goal on file. Generation never silently falls back to defaults.
var ErrNoGoal = errors.New("no active goal")

// ErrInvalidRange is returned for horizons outside [1,365] days.
var ErrInvalidRange = errors.New("days must be between 1 and 365")

// GoalSource returns the user's active goal (latest by start date), or nil
// when none exists.
type GoalSource interface {
	LatestByUser(ctx context.Context, userID int64) (*models.Goal, error)
}

// TopicSource provides the importance-ordered topic pool per category.
type TopicSource interface {
	TopByImportance(ctx context.Context, category models.Category, limit int) ([]models.Topic, error)
}

// TaskStore persists generated tasks. ReplaceSystemRange must atomically
// delete system-authored tasks with from <= date < to and insert the new
// ones; user-authored tasks are never touched.
type TaskStore interface {
	ReplaceSystemRange(ctx context.Context, userID int64, from, to time.Time, tasks []models.PlanTask) (int, error)
}

// Service generates plans and persists them through a TaskStore.
type Service struct {
	goals  GoalSource
	topics TopicSource
	tasks  TaskStore

	// Per-user locks serialize regeneration so two concurrent calls cannot
	// interleave their delete-then-insert sequences.
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewService creates a plan generation service.
func NewService(goals GoalSource, topics TopicSource, tasks TaskStore) *Service {
	return &Service{
		goals:  goals,
		topics: topics,
		tasks:  tasks,
		locks:  make(map[int64]*sync.Mutex),
	}
}

// Result summarizes one generation call.
type Result struct {
	StartDate    time.Time
	Days         int
	CreatedCount int
	Tasks        []models.PlanTask
}

// Generate builds and stores a plan covering days calendar days. startDate
// may be zero, in which case the plan is anchored at the later of the goal's
// start date and today (UTC).
func (s *Service) Generate(ctx context.Context, userID int64, days int, startDate time.Time, now time.Time) (*Result, error) {
	if days < MinDays || days > MaxDays {
		return nil, ErrInvalidRange
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	goal, err := s.goals.LatestByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load goal: %v", err)
	}
	if goal == nil {
		return nil, ErrNoGoal
	}

	start := startOfDayUTC(startDate)
	if startDate.IsZero() {
		start = startOfDayUTC(now)
		if goalStart := startOfDayUTC(goal.StartDate); goalStart.After(start) {
			start = goalStart
		}
	}

	pools, err := s.loadPools(ctx)
	if err != nil {
		return nil, err
	}

	tasks := BuildTasks(*goal, pools, userID, days, start)

	end := start.AddDate(0, 0, days)
	created, err := s.tasks.ReplaceSystemRange(ctx, userID, start, end, tasks)
	if err != nil {
		return nil, fmt.Errorf("failed to store plan: %v", err)
	}

	return &Result{
		StartDate:    start,
		Days:         days,
		CreatedCount: created,
		Tasks:        tasks,
	}, nil
}

func (s *Service) loadPools(ctx context.Context) (Pools, error) {
	pools := make(Pools, len(models.Categories))
	for _, category := range models.Categories {
		topics, err := s.topics.TopByImportance(ctx, category, PoolSize)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s topic pool: %v", category, err)
		}
		refs := make([]TopicRef, 0, len(topics))
		for _, t := range topics {
			refs = append(refs, TopicRef{ID: t.ID, Name: t.Name})
		}
		pools[category] = refs
	}
	return pools, nil
}

func (s *Service) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}
