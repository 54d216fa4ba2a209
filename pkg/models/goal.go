package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DifficultyCurve names the pacing style a user asked for when setting a
// goal. Only the linear ramp is implemented by the planner; the other values
// are stored as-is.
type DifficultyCurve string

const (
	CurveLinear    DifficultyCurve = "linear"
	CurveEaseIn    DifficultyCurve = "easeIn"
	CurveEaseOut   DifficultyCurve = "easeOut"
	CurveEaseInOut DifficultyCurve = "easeInOut"
)

// StringList stores a list of strings as a JSON column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return fmt.Errorf("cannot scan %T into StringList", src)
}

// Goal is a user's per-period preparation target. The most recent goal by
// start date is the active one and drives plan generation.
type Goal struct {
	ID              int64           `json:"id" db:"id"`
	UserID          int64           `json:"user_id" db:"user_id"`
	TargetRole      string          `json:"target_role" db:"target_role"`
	TargetCompanies StringList      `json:"target_companies" db:"target_companies"`
	TimelineDays    int             `json:"timeline_days" db:"timeline_days"`
	HoursPerDay     int             `json:"hours_per_day" db:"hours_per_day"`
	StartDate       time.Time       `json:"start_date" db:"start_date"`
	WDsa            float64         `json:"w_dsa" db:"w_dsa"`
	WApti           float64         `json:"w_apti" db:"w_apti"`
	WCs             float64         `json:"w_cs" db:"w_cs"`
	WDev            float64         `json:"w_dev" db:"w_dev"`
	DifficultyCurve DifficultyCurve `json:"difficulty_curve" db:"difficulty_curve"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// Weights returns the raw category weights keyed by category.
func (g *Goal) Weights() map[Category]float64 {
	return map[Category]float64{
		CategoryDSA:  g.WDsa,
		CategoryAPTI: g.WApti,
		CategoryCS:   g.WCs,
		CategoryDEV:  g.WDev,
	}
}

// NormalizedWeights returns category weights scaled to sum to 1. A nil goal
// or a non-positive weight sum falls back to an equal 0.25 split, so callers
// never divide by zero.
func NormalizedWeights(g *Goal) map[Category]float64 {
	equal := map[Category]float64{
		CategoryDSA:  0.25,
		CategoryAPTI: 0.25,
		CategoryCS:   0.25,
		CategoryDEV:  0.25,
	}
	if g == nil {
		return equal
	}
	raw := g.Weights()
	var sum float64
	for _, w := range raw {
		sum += w
	}
	if sum <= 0 {
		return equal
	}
	out := make(map[Category]float64, len(raw))
	for c, w := range raw {
		out[c] = w / sum
	}
	return out
}
