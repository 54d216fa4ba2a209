package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/preptrack/internal/analytics"
	"github.com/example/preptrack/internal/spaced_repetition"
	"github.com/example/preptrack/pkg/models"
)

// AttemptRepository handles the attempt log and the mastery updates it drives
type AttemptRepository struct{}

// NewAttemptRepository creates a new repository instance
func NewAttemptRepository() *AttemptRepository {
	return &AttemptRepository{}
}

// Record appends one attempt and folds it into the topic's aggregate stat
// within a single transaction. The updated stat is returned so callers can
// show the new mastery score immediately.
func (r *AttemptRepository) Record(ctx context.Context, attempt *models.Attempt, now time.Time) (*models.TopicStat, error) {
	tx, err := DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	var prev *spaced_repetition.StatSnapshot
	var stat models.TopicStat
	query := tx.Rebind("SELECT * FROM topic_stats WHERE user_id = ? AND topic_id = ?")
	err = tx.GetContext(ctx, &stat, query, attempt.UserID, attempt.TopicID)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get topic stat: %v", err)
	}
	if err == nil {
		prev = &spaced_repetition.StatSnapshot{
			AttemptsTotal: stat.AttemptsTotal,
			CorrectTotal:  stat.CorrectTotal,
			AvgTimeSec:    stat.AvgTimeSec,
		}
	}

	result := spaced_repetition.Update(prev, spaced_repetition.AttemptInput{
		Correct:      attempt.Correct,
		TimeTakenSec: attempt.TimeTakenSec,
		Difficulty:   attempt.Difficulty,
	}, now)

	if err := upsertStat(ctx, tx, attempt.UserID, attempt.TopicID, result, now); err != nil {
		return nil, err
	}

	insert := tx.Rebind(`
		INSERT INTO attempts (user_id, topic_id, task_id, difficulty, correct, time_taken_sec, confidence, mistake_tag, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if _, err := tx.ExecContext(ctx, insert,
		attempt.UserID, attempt.TopicID, attempt.TaskID, attempt.Difficulty,
		attempt.Correct, attempt.TimeTakenSec, attempt.Confidence,
		attempt.MistakeTag, now); err != nil {
		return nil, fmt.Errorf("failed to insert attempt: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit attempt: %v", err)
	}

	stat.UserID = attempt.UserID
	stat.TopicID = attempt.TopicID
	stat.AttemptsTotal = result.AttemptsTotal
	stat.CorrectTotal = result.CorrectTotal
	stat.AvgTimeSec = result.AvgTimeSec
	stat.MasteryScore = result.MasteryScore
	stat.LastPracticedAt = sql.NullTime{Time: now, Valid: true}
	stat.NextRevisionDate = sql.NullTime{Time: result.NextRevisionDate, Valid: true}
	return &stat, nil
}

func upsertStat(ctx context.Context, tx *sqlx.Tx, userID, topicID int64, result spaced_repetition.Result, now time.Time) error {
	query := `
		INSERT INTO topic_stats (user_id, topic_id, attempts_total, correct_total, avg_time_sec,
			mastery_score, last_practiced_at, next_revision_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, topic_id) DO UPDATE
		SET attempts_total = excluded.attempts_total,
		    correct_total = excluded.correct_total,
		    avg_time_sec = excluded.avg_time_sec,
		    mastery_score = excluded.mastery_score,
		    last_practiced_at = excluded.last_practiced_at,
		    next_revision_date = excluded.next_revision_date,
		    updated_at = CURRENT_TIMESTAMP
	`
	_, err := tx.ExecContext(ctx, tx.Rebind(query),
		userID, topicID, result.AttemptsTotal, result.CorrectTotal,
		result.AvgTimeSec, result.MasteryScore, now, result.NextRevisionDate)
	if err != nil {
		return fmt.Errorf("failed to upsert topic stat: %v", err)
	}
	return nil
}

// ListByUserAndTopic returns a topic's attempt history, newest first
func (r *AttemptRepository) ListByUserAndTopic(ctx context.Context, userID, topicID int64, limit int) ([]models.Attempt, error) {
	var attempts []models.Attempt
	query := DB.Rebind(`
		SELECT * FROM attempts WHERE user_id = ? AND topic_id = ?
		ORDER BY created_at DESC LIMIT ?
	`)
	err := DB.SelectContext(ctx, &attempts, query, userID, topicID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %v", err)
	}
	return attempts, nil
}

// DailyCounts aggregates attempts per calendar day since from. Days with
// no attempts are absent from the result.
func (r *AttemptRepository) DailyCounts(ctx context.Context, userID int64, from time.Time) ([]analytics.DayCount, error) {
	dayExpr := "strftime('%Y-%m-%d', created_at)"
	if DB.DriverName() == "postgres" {
		dayExpr = "to_char(created_at, 'YYYY-MM-DD')"
	}

	query := DB.Rebind(fmt.Sprintf(`
		SELECT %s AS day,
		       COUNT(*) AS attempts,
		       SUM(CASE WHEN correct THEN 1 ELSE 0 END) AS correct
		FROM attempts
		WHERE user_id = ? AND created_at >= ?
		GROUP BY day
		ORDER BY day
	`, dayExpr))

	rows, err := DB.QueryxContext(ctx, query, userID, from)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate attempts: %v", err)
	}
	defer rows.Close()

	var counts []analytics.DayCount
	for rows.Next() {
		var dc analytics.DayCount
		if err := rows.Scan(&dc.Date, &dc.Attempts, &dc.Correct); err != nil {
			return nil, fmt.Errorf("failed to scan attempt counts: %v", err)
		}
		counts = append(counts, dc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read attempt counts: %v", err)
	}
	return counts, nil
}
