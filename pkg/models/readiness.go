package models

import "time"

// ReadinessSnapshot is a dated readiness record. At most one exists per user
// per UTC calendar day; the scheduler computes today's snapshot on demand
// when it is missing.
type ReadinessSnapshot struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Date      time.Time `json:"date" db:"date"`
	Overall   float64   `json:"overall" db:"overall"`
	Dsa       float64   `json:"dsa" db:"dsa"`
	Apti      float64   `json:"apti" db:"apti"`
	Cs        float64   `json:"cs" db:"cs"`
	Dev       float64   `json:"dev" db:"dev"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
