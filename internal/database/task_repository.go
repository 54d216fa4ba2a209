package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/preptrack/pkg/models"
)

// TaskRepository handles database operations for plan tasks
type TaskRepository struct{}

// NewTaskRepository creates a new repository instance
func NewTaskRepository() *TaskRepository {
	return &TaskRepository{}
}

// ReplaceSystemRange atomically swaps the system-generated tasks in
// [from, to) for the given set. User-created tasks in the range are left
// untouched. Returns the number of tasks inserted.
func (r *TaskRepository) ReplaceSystemRange(ctx context.Context, userID int64, from, to time.Time, tasks []models.PlanTask) (int, error) {
	tx, err := DB.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	del := tx.Rebind(`
		DELETE FROM plan_tasks
		WHERE user_id = ? AND created_by = ? AND date >= ? AND date < ?
	`)
	if _, err := tx.ExecContext(ctx, del, userID, models.CreatedBySystem, from, to); err != nil {
		return 0, fmt.Errorf("failed to clear plan range: %v", err)
	}

	insert := tx.Rebind(`
		INSERT INTO plan_tasks (id, user_id, date, type, topic_id, title, seq, duration_min, difficulty, status, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	// Generator output order is the display order, so persist it
	for i := range tasks {
		t := &tasks[i]
		t.Seq = i
		if _, err := tx.ExecContext(ctx, insert,
			t.ID, t.UserID, t.Date, t.Type, t.TopicID, t.Title, t.Seq,
			t.DurationMin, t.Difficulty, t.Status, t.CreatedBy); err != nil {
			return 0, fmt.Errorf("failed to insert plan task: %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit plan: %v", err)
	}
	return len(tasks), nil
}

// Create inserts a single (usually user-created) task
func (r *TaskRepository) Create(ctx context.Context, task *models.PlanTask) error {
	query := DB.Rebind(`
		INSERT INTO plan_tasks (id, user_id, date, type, topic_id, title, seq, duration_min, difficulty, status, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := DB.ExecContext(ctx, query,
		task.ID, task.UserID, task.Date, task.Type, task.TopicID, task.Title, task.Seq,
		task.DurationMin, task.Difficulty, task.Status, task.CreatedBy)
	if err != nil {
		return fmt.Errorf("failed to create plan task: %v", err)
	}
	return nil
}

// GetByID returns a task by its ID, or nil when it does not exist
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*models.PlanTask, error) {
	var task models.PlanTask
	query := DB.Rebind("SELECT * FROM plan_tasks WHERE id = ?")
	err := DB.GetContext(ctx, &task, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan task: %v", err)
	}
	return &task, nil
}

// ListByUserAndDate returns a user's tasks for one plan day
func (r *TaskRepository) ListByUserAndDate(ctx context.Context, userID int64, day time.Time) ([]models.PlanTask, error) {
	return r.ListByUserAndRange(ctx, userID, day, day.AddDate(0, 0, 1))
}

// ListByUserAndRange returns a user's tasks with date in [from, to)
func (r *TaskRepository) ListByUserAndRange(ctx context.Context, userID int64, from, to time.Time) ([]models.PlanTask, error) {
	var tasks []models.PlanTask
	query := DB.Rebind(`
		SELECT * FROM plan_tasks
		WHERE user_id = ? AND date >= ? AND date < ?
		ORDER BY date, seq, created_at, id
	`)
	err := DB.SelectContext(ctx, &tasks, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list plan tasks: %v", err)
	}
	return tasks, nil
}

// UpdateStatus marks a task done or skipped. Returns false when no task
// with that ID belongs to the user.
func (r *TaskRepository) UpdateStatus(ctx context.Context, userID int64, id string, status models.TaskStatus) (bool, error) {
	query := DB.Rebind(`
		UPDATE plan_tasks SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?
	`)
	result, err := DB.ExecContext(ctx, query, status, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to update task status: %v", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to update task status: %v", err)
	}
	return affected > 0, nil
}
