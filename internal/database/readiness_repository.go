package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/preptrack/pkg/models"
)

// ReadinessRepository handles database operations for readiness snapshots
type ReadinessRepository struct{}

// NewReadinessRepository creates a new repository instance
func NewReadinessRepository() *ReadinessRepository {
	return &ReadinessRepository{}
}

// GetByUserAndDate returns the snapshot for one calendar day, or nil
func (r *ReadinessRepository) GetByUserAndDate(ctx context.Context, userID int64, day time.Time) (*models.ReadinessSnapshot, error) {
	var snapshot models.ReadinessSnapshot
	query := DB.Rebind("SELECT * FROM readiness_snapshots WHERE user_id = ? AND date = ?")
	err := DB.GetContext(ctx, &snapshot, query, userID, day)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get readiness snapshot: %v", err)
	}
	return &snapshot, nil
}

// Upsert inserts or overwrites the snapshot keyed by (user, date)
func (r *ReadinessRepository) Upsert(ctx context.Context, snapshot *models.ReadinessSnapshot) error {
	query := DB.Rebind(`
		INSERT INTO readiness_snapshots (user_id, date, overall, dsa, apti, cs, dev)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, date) DO UPDATE
		SET overall = excluded.overall,
		    dsa = excluded.dsa,
		    apti = excluded.apti,
		    cs = excluded.cs,
		    dev = excluded.dev
	`)
	_, err := DB.ExecContext(ctx, query,
		snapshot.UserID, snapshot.Date, snapshot.Overall,
		snapshot.Dsa, snapshot.Apti, snapshot.Cs, snapshot.Dev)
	if err != nil {
		return fmt.Errorf("failed to upsert readiness snapshot: %v", err)
	}
	return nil
}

// Latest returns the most recent snapshot for a user, or nil
func (r *ReadinessRepository) Latest(ctx context.Context, userID int64) (*models.ReadinessSnapshot, error) {
	var snapshot models.ReadinessSnapshot
	query := DB.Rebind("SELECT * FROM readiness_snapshots WHERE user_id = ? ORDER BY date DESC LIMIT 1")
	err := DB.GetContext(ctx, &snapshot, query, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest snapshot: %v", err)
	}
	return &snapshot, nil
}

// History returns snapshots with date in [from, to], oldest first
func (r *ReadinessRepository) History(ctx context.Context, userID int64, from, to time.Time) ([]models.ReadinessSnapshot, error) {
	var snapshots []models.ReadinessSnapshot
	query := DB.Rebind(`
		SELECT * FROM readiness_snapshots
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date
	`)
	err := DB.SelectContext(ctx, &snapshots, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshot history: %v", err)
	}
	return snapshots, nil
}
