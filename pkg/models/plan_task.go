package models

import (
	"database/sql"
	"time"
)

// TaskType is the kind of work a plan task asks for.
type TaskType string

const (
	TaskSolve   TaskType = "solve"
	TaskRevise  TaskType = "revise"
	TaskMock    TaskType = "mock"
	TaskNotes   TaskType = "notes"
	TaskProject TaskType = "project"
)

// TaskStatus tracks a task through its lifecycle.
type TaskStatus string

const (
	StatusPending TaskStatus = "pending"
	StatusDone    TaskStatus = "done"
	StatusSkipped TaskStatus = "skipped"
)

// Task provenance. Only system-authored tasks are eligible for deletion when
// a plan is regenerated over their date range.
const (
	CreatedBySystem = "system"
	CreatedByUser   = "user"
)

// PlanTask is one scheduled unit of work on a user's study plan.
type PlanTask struct {
	ID          string        `json:"id" db:"id"`
	UserID      int64         `json:"user_id" db:"user_id"`
	Date        time.Time     `json:"date" db:"date"` // UTC midnight of the plan day
	Type        TaskType      `json:"type" db:"type"`
	TopicID     sql.NullInt64 `json:"topic_id" db:"topic_id"`
	Title       string        `json:"title" db:"title"`
	Seq         int           `json:"seq" db:"seq"` // position within the plan day
	DurationMin int           `json:"duration_min" db:"duration_min"`
	Difficulty  Difficulty    `json:"difficulty" db:"difficulty"`
	Status      TaskStatus    `json:"status" db:"status"`
	CreatedBy   string        `json:"created_by" db:"created_by"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}
