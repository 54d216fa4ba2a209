package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/preptrack/pkg/models"
)

// GoalRepository handles database operations for preparation goals
type GoalRepository struct{}

// NewGoalRepository creates a new repository instance
func NewGoalRepository() *GoalRepository {
	return &GoalRepository{}
}

// Create inserts a new goal. Previous goals are kept as history and
// LatestByUser returns the one with the latest start date.
func (r *GoalRepository) Create(ctx context.Context, goal *models.Goal) error {
	if DB.DriverName() == "postgres" {
		query := `
			INSERT INTO goals (user_id, target_role, target_companies, timeline_days, hours_per_day,
				start_date, w_dsa, w_apti, w_cs, w_dev, difficulty_curve)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id, created_at, updated_at
		`
		err := DB.QueryRowContext(ctx, query,
			goal.UserID, goal.TargetRole, goal.TargetCompanies, goal.TimelineDays,
			goal.HoursPerDay, goal.StartDate, goal.WDsa, goal.WApti, goal.WCs,
			goal.WDev, goal.DifficultyCurve,
		).Scan(&goal.ID, &goal.CreatedAt, &goal.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create goal: %v", err)
		}
		return nil
	}

	query := `
		INSERT INTO goals (user_id, target_role, target_companies, timeline_days, hours_per_day,
			start_date, w_dsa, w_apti, w_cs, w_dev, difficulty_curve)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := DB.ExecContext(ctx, query,
		goal.UserID, goal.TargetRole, goal.TargetCompanies, goal.TimelineDays,
		goal.HoursPerDay, goal.StartDate, goal.WDsa, goal.WApti, goal.WCs,
		goal.WDev, goal.DifficultyCurve)
	if err != nil {
		return fmt.Errorf("failed to create goal: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get goal ID: %v", err)
	}
	goal.ID = id
	return nil
}

// LatestByUser returns the user's current goal, or nil when none exists
func (r *GoalRepository) LatestByUser(ctx context.Context, userID int64) (*models.Goal, error) {
	var goal models.Goal
	query := DB.Rebind("SELECT * FROM goals WHERE user_id = ? ORDER BY start_date DESC, id DESC LIMIT 1")
	err := DB.GetContext(ctx, &goal, query, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest goal: %v", err)
	}
	return &goal, nil
}
