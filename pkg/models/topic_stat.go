package models

import (
	"database/sql"
	"time"
)

// TopicStat is the per-user, per-topic attempt aggregate. One row exists per
// (user, topic) pair after the first attempt and is updated in place on every
// subsequent one. CorrectTotal never exceeds AttemptsTotal.
type TopicStat struct {
	ID               int64        `json:"id" db:"id"`
	UserID           int64        `json:"user_id" db:"user_id"`
	TopicID          int64        `json:"topic_id" db:"topic_id"`
	AttemptsTotal    int          `json:"attempts_total" db:"attempts_total"`
	CorrectTotal     int          `json:"correct_total" db:"correct_total"`
	AvgTimeSec       int          `json:"avg_time_sec" db:"avg_time_sec"`
	MasteryScore     float64      `json:"mastery_score" db:"mastery_score"`
	LastPracticedAt  sql.NullTime `json:"last_practiced_at" db:"last_practiced_at"`
	NextRevisionDate sql.NullTime `json:"next_revision_date" db:"next_revision_date"`
	CreatedAt        time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at" db:"updated_at"`
}
