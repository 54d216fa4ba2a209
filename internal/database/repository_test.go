package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/example/preptrack/pkg/models"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DATA_DIR", t.TempDir())
	require.NoError(t, Connect())
	t.Cleanup(func() {
		Close()
		DB = nil
	})
}

func createTestUser(t *testing.T, telegramID int64) *models.User {
	t.Helper()
	user, err := NewUserRepository().GetOrCreateByTelegramID(context.Background(), telegramID, "tester", "Test", "User")
	require.NoError(t, err)
	return user
}

func createTestTopic(t *testing.T, name string, category models.Category, importance float64) *models.Topic {
	t.Helper()
	topic := &models.Topic{Name: name, Category: category, ImportanceScore: importance}
	require.NoError(t, NewTopicRepository().Upsert(context.Background(), topic))
	require.NotZero(t, topic.ID)
	return topic
}

func TestAttemptRecord_UpdatesStatAndLog(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, 1001)
	topic := createTestTopic(t, "Graphs", models.CategoryDSA, 9)

	repo := NewAttemptRepository()
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	stat, err := repo.Record(ctx, &models.Attempt{
		UserID:       user.ID,
		TopicID:      topic.ID,
		Difficulty:   models.DifficultyHard,
		Correct:      true,
		TimeTakenSec: 50,
		Confidence:   4,
	}, now)
	require.NoError(t, err)
	require.Equal(t, 1, stat.AttemptsTotal)
	require.Equal(t, 1, stat.CorrectTotal)
	require.Equal(t, 100.0, stat.MasteryScore)
	require.True(t, stat.NextRevisionDate.Valid)
	require.Equal(t, now.AddDate(0, 0, 14), stat.NextRevisionDate.Time)

	// An incorrect attempt always pulls the revision back to tomorrow
	later := now.Add(time.Hour)
	stat, err = repo.Record(ctx, &models.Attempt{
		UserID:       user.ID,
		TopicID:      topic.ID,
		Difficulty:   models.DifficultyMed,
		Correct:      false,
		TimeTakenSec: 200,
	}, later)
	require.NoError(t, err)
	require.Equal(t, 2, stat.AttemptsTotal)
	require.Equal(t, 1, stat.CorrectTotal)
	require.Equal(t, later.AddDate(0, 0, 1), stat.NextRevisionDate.Time)

	// Both attempts are in the log and the stat row was updated in place
	attempts, err := repo.ListByUserAndTopic(ctx, user.ID, topic.ID, 10)
	require.NoError(t, err)
	require.Len(t, attempts, 2)

	stats, err := NewTopicStatRepository().ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	require.Equal(t, 2, stats[0].AttemptsTotal)
}

func TestTopicStatRepository_CountDue(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, 1002)
	overdue := createTestTopic(t, "Sorting", models.CategoryDSA, 8)
	fresh := createTestTopic(t, "DP", models.CategoryDSA, 10)

	repo := NewAttemptRepository()
	old := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	_, err := repo.Record(ctx, &models.Attempt{
		UserID: user.ID, TopicID: overdue.ID,
		Difficulty: models.DifficultyEasy, Correct: false, TimeTakenSec: 100,
	}, old)
	require.NoError(t, err)

	recent := time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC)
	_, err = repo.Record(ctx, &models.Attempt{
		UserID: user.ID, TopicID: fresh.ID,
		Difficulty: models.DifficultyHard, Correct: true, TimeTakenSec: 50,
	}, recent)
	require.NoError(t, err)

	statRepo := NewTopicStatRepository()
	count, err := statRepo.CountDue(ctx, user.ID, time.Date(2026, 5, 21, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, 1, count)

	due, err := statRepo.ListDue(ctx, user.ID, time.Date(2026, 5, 21, 0, 0, 0, 0, time.UTC), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.Equal(t, overdue.ID, due[0].TopicID)
}

func TestReplaceSystemRange_PreservesUserTasks(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, 1003)
	topic := createTestTopic(t, "Trees", models.CategoryDSA, 7)

	repo := NewTaskRepository()
	from := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	userTask := &models.PlanTask{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Date:        from.AddDate(0, 0, 2),
		Type:        models.TaskNotes,
		Title:       "Read system design chapter",
		DurationMin: 60,
		Difficulty:  models.DifficultyMed,
		Status:      models.StatusPending,
		CreatedBy:   models.CreatedByUser,
	}
	require.NoError(t, repo.Create(ctx, userTask))

	systemTasks := func(n int) []models.PlanTask {
		tasks := make([]models.PlanTask, n)
		for i := range tasks {
			tasks[i] = models.PlanTask{
				ID:          uuid.NewString(),
				UserID:      user.ID,
				Date:        from.AddDate(0, 0, i),
				Type:        models.TaskSolve,
				TopicID:     nullInt64(topic.ID),
				Title:       "DSA: Trees (solve)",
				DurationMin: 90,
				Difficulty:  models.DifficultyEasy,
				Status:      models.StatusPending,
				CreatedBy:   models.CreatedBySystem,
			}
		}
		return tasks
	}

	created, err := repo.ReplaceSystemRange(ctx, user.ID, from, to, systemTasks(5))
	require.NoError(t, err)
	require.Equal(t, 5, created)

	// Regenerating replaces, not accumulates
	created, err = repo.ReplaceSystemRange(ctx, user.ID, from, to, systemTasks(3))
	require.NoError(t, err)
	require.Equal(t, 3, created)

	all, err := repo.ListByUserAndRange(ctx, user.ID, from, to)
	require.NoError(t, err)
	require.Len(t, all, 4)

	var userTasks, sysTasks int
	for _, task := range all {
		if task.CreatedBy == models.CreatedByUser {
			userTasks++
		} else {
			sysTasks++
		}
	}
	require.Equal(t, 1, userTasks)
	require.Equal(t, 3, sysTasks)
}

func TestReplaceSystemRange_KeepsGeneratorOrderWithinDay(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, 1008)
	repo := NewTaskRepository()
	day := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	titles := []string{
		"DSA: Graphs (solve)",
		"DSA: Graphs (solve)",
		"Aptitude: Ratios (solve)",
		"CS: DBMS (solve)",
		"Dev: Project work (project)",
		"Dev: Project work (project)",
	}
	tasks := make([]models.PlanTask, len(titles))
	for i, title := range titles {
		tasks[i] = models.PlanTask{
			ID:          uuid.NewString(),
			UserID:      user.ID,
			Date:        day,
			Type:        models.TaskSolve,
			Title:       title,
			DurationMin: 30 + i,
			Difficulty:  models.DifficultyMed,
			Status:      models.StatusPending,
			CreatedBy:   models.CreatedBySystem,
		}
	}

	_, err := repo.ReplaceSystemRange(ctx, user.ID, day, day.AddDate(0, 0, 1), tasks)
	require.NoError(t, err)

	got, err := repo.ListByUserAndDate(ctx, user.ID, day)
	require.NoError(t, err)
	require.Len(t, got, len(tasks))
	for i := range got {
		require.Equal(t, tasks[i].ID, got[i].ID, "position %d", i)
		require.Equal(t, 30+i, got[i].DurationMin)
	}
}

func TestTaskRepository_UpdateStatus(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, 1004)
	repo := NewTaskRepository()

	task := &models.PlanTask{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Date:        time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		Type:        models.TaskSolve,
		Title:       "Aptitude: Practice (solve)",
		DurationMin: 45,
		Difficulty:  models.DifficultyEasy,
		Status:      models.StatusPending,
		CreatedBy:   models.CreatedBySystem,
	}
	require.NoError(t, repo.Create(ctx, task))

	updated, err := repo.UpdateStatus(ctx, user.ID, task.ID, models.StatusDone)
	require.NoError(t, err)
	require.True(t, updated)

	got, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, models.StatusDone, got.Status)

	// Another user cannot touch the task
	updated, err = repo.UpdateStatus(ctx, user.ID+1, task.ID, models.StatusSkipped)
	require.NoError(t, err)
	require.False(t, updated)
}

func TestGoalRepository_LatestByUser(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, 1005)
	repo := NewGoalRepository()

	goal, err := repo.LatestByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Nil(t, goal)

	first := &models.Goal{
		UserID: user.ID, TargetRole: "SDE-1", TargetCompanies: models.StringList{"acme"},
		TimelineDays: 60, HoursPerDay: 3,
		StartDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		WDsa:      0.4, WApti: 0.3, WCs: 0.2, WDev: 0.1,
		DifficultyCurve: models.CurveLinear,
	}
	require.NoError(t, repo.Create(ctx, first))

	second := &models.Goal{
		UserID: user.ID, TargetRole: "Backend Engineer", TargetCompanies: models.StringList{},
		TimelineDays: 90, HoursPerDay: 4,
		StartDate: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		WDsa:      0.25, WApti: 0.25, WCs: 0.25, WDev: 0.25,
		DifficultyCurve: models.CurveLinear,
	}
	require.NoError(t, repo.Create(ctx, second))

	goal, err = repo.LatestByUser(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, goal)
	require.Equal(t, "Backend Engineer", goal.TargetRole)
	require.Equal(t, 90, goal.TimelineDays)
}

func TestGoalRepository_LatestByUser_OrdersByStartDate(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, 1007)
	repo := NewGoalRepository()

	laterStart := &models.Goal{
		UserID: user.ID, TargetRole: "SDE-2", TargetCompanies: models.StringList{},
		TimelineDays: 90, HoursPerDay: 3,
		StartDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		WDsa:      0.25, WApti: 0.25, WCs: 0.25, WDev: 0.25,
		DifficultyCurve: models.CurveLinear,
	}
	require.NoError(t, repo.Create(ctx, laterStart))

	// Created after, but starts earlier. It must not become the active goal.
	earlierStart := &models.Goal{
		UserID: user.ID, TargetRole: "Intern", TargetCompanies: models.StringList{},
		TimelineDays: 30, HoursPerDay: 2,
		StartDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		WDsa:      0.25, WApti: 0.25, WCs: 0.25, WDev: 0.25,
		DifficultyCurve: models.CurveLinear,
	}
	require.NoError(t, repo.Create(ctx, earlierStart))

	goal, err := repo.LatestByUser(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, goal)
	require.Equal(t, "SDE-2", goal.TargetRole)
	require.Equal(t, laterStart.ID, goal.ID)
}

func TestReadinessRepository_UpsertOverwritesSameDay(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, 1006)
	repo := NewReadinessRepository()
	day := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Upsert(ctx, &models.ReadinessSnapshot{
		UserID: user.ID, Date: day, Overall: 40, Dsa: 50, Apti: 30, Cs: 40, Dev: 40,
	}))
	require.NoError(t, repo.Upsert(ctx, &models.ReadinessSnapshot{
		UserID: user.ID, Date: day, Overall: 55, Dsa: 60, Apti: 50, Cs: 55, Dev: 55,
	}))

	got, err := repo.GetByUserAndDate(ctx, user.ID, day)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, 55.0, got.Overall)

	history, err := repo.History(ctx, user.ID, day.AddDate(0, 0, -7), day)
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func nullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: true}
}
