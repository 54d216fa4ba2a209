package models

import (
	"database/sql"
	"time"
)

// Difficulty grades a practice attempt or a planned task.
type Difficulty string

const (
	DifficultyEasy Difficulty = "easy"
	DifficultyMed  Difficulty = "med"
	DifficultyHard Difficulty = "hard"
)

// Attempt is one recorded practice event. Attempts are immutable once
// written; each one triggers exactly one TopicStat update.
type Attempt struct {
	ID           int64          `json:"id" db:"id"`
	UserID       int64          `json:"user_id" db:"user_id"`
	TopicID      int64          `json:"topic_id" db:"topic_id"`
	TaskID       sql.NullString `json:"task_id" db:"task_id"`
	Difficulty   Difficulty     `json:"difficulty" db:"difficulty"`
	Correct      bool           `json:"correct" db:"correct"`
	TimeTakenSec int            `json:"time_taken_sec" db:"time_taken_sec"`
	Confidence   int            `json:"confidence" db:"confidence"` // 1-5 self rating
	MistakeTag   string         `json:"mistake_tag" db:"mistake_tag"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
}
