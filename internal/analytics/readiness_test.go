package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/example/preptrack/pkg/models"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestComputeCategory_NoData(t *testing.T) {
	got := ComputeCategory(models.CategoryDSA, 0, nil)
	if got.Readiness != 0 {
		t.Errorf("readiness with no data = %v, want 0", got.Readiness)
	}
	m := got.Metrics
	if m.Accuracy != 0 || m.Speed != 0 || m.Coverage != 0 || m.RevisionDiscipline != 0 {
		t.Errorf("metrics with no data = %+v, want all zero", m)
	}
}

func TestComputeCategory_AccuracyAndCoverage(t *testing.T) {
	stats := []StatRow{
		{AttemptsTotal: 8, CorrectTotal: 6, AvgTimeSec: 450},
		{AttemptsTotal: 2, CorrectTotal: 2, AvgTimeSec: 450},
	}
	got := ComputeCategory(models.CategoryDSA, 10, stats)

	if got.Metrics.Accuracy != 80 {
		t.Errorf("accuracy = %v, want 80", got.Metrics.Accuracy)
	}
	if got.Metrics.Coverage != 20 {
		t.Errorf("coverage = %v, want 20", got.Metrics.Coverage)
	}
	// Attempts-weighted avg time is 450s; DSA baseline 900s gives ratio 0.5.
	if got.Metrics.Speed != 100 {
		t.Errorf("speed = %v, want 100", got.Metrics.Speed)
	}
	if got.Readiness < 0 || got.Readiness > 100 {
		t.Errorf("readiness = %v outside [0,100]", got.Readiness)
	}
}

func TestComputeCategory_WeightedAvgTime(t *testing.T) {
	stats := []StatRow{
		{AttemptsTotal: 1, CorrectTotal: 1, AvgTimeSec: 100},
		{AttemptsTotal: 3, CorrectTotal: 3, AvgTimeSec: 500},
	}
	got := ComputeCategory(models.CategoryAPTI, 4, stats)

	// (100*1 + 500*3) / 4 = 400
	if got.Metrics.AvgTimeSec != 400 {
		t.Errorf("avgTimeSec = %d, want 400", got.Metrics.AvgTimeSec)
	}
}

func TestSpeedScore_Anchors(t *testing.T) {
	tests := []struct {
		avg, baseline int
		want          float64
	}{
		{300, 600, 100}, // ratio 0.5
		{600, 600, 70},  // on baseline
		{900, 600, 40},  // ratio 1.5
		{1500, 600, 0},  // ratio 2.5
		{2000, 600, 0},
		{450, 600, 85},  // ratio 0.75, halfway 100->70
		{750, 600, 55},  // ratio 1.25, halfway 70->40
		{1200, 600, 20}, // ratio 2.0, halfway 40->0
		{100, 0, 0},     // guard: zero baseline
	}
	for _, tt := range tests {
		got := speedScore(tt.avg, tt.baseline)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("speedScore(%d, %d) = %v, want %v", tt.avg, tt.baseline, got, tt.want)
		}
	}
}

func TestRevisionDiscipline(t *testing.T) {
	due := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	stats := []StatRow{
		// Practiced on the due day: disciplined (time of day ignored).
		{NextRevisionDate: timePtr(due), LastPracticedAt: timePtr(due.Add(14 * time.Hour))},
		// Practiced the day after: still disciplined.
		{NextRevisionDate: timePtr(due), LastPracticedAt: timePtr(due.AddDate(0, 0, 1))},
		// Two days late: not disciplined.
		{NextRevisionDate: timePtr(due), LastPracticedAt: timePtr(due.AddDate(0, 0, 2))},
		// Practiced before the due day: not disciplined.
		{NextRevisionDate: timePtr(due), LastPracticedAt: timePtr(due.AddDate(0, 0, -1))},
		// Never practiced: not disciplined.
		{NextRevisionDate: timePtr(due)},
		// No due date: excluded from the denominator.
		{LastPracticedAt: timePtr(due)},
	}

	got := revisionDiscipline(stats)
	if got != 40 { // 2 of 5 eligible
		t.Errorf("revisionDiscipline = %v, want 40", got)
	}
}

func TestRevisionDiscipline_NoDueRows(t *testing.T) {
	stats := []StatRow{{AttemptsTotal: 3}}
	if got := revisionDiscipline(stats); got != 0 {
		t.Errorf("revisionDiscipline = %v, want 0", got)
	}
}

func TestCombine_ConvexCombination(t *testing.T) {
	per := map[models.Category]float64{
		models.CategoryDSA:  80,
		models.CategoryAPTI: 60,
		models.CategoryCS:   40,
		models.CategoryDEV:  20,
	}
	goal := &models.Goal{WDsa: 0.4, WApti: 0.3, WCs: 0.2, WDev: 0.1}

	got := Combine(per, goal)
	want := 0.4*80 + 0.3*60 + 0.2*40 + 0.1*20
	if math.Abs(got.Overall-want) > 1e-9 {
		t.Errorf("overall = %v, want %v", got.Overall, want)
	}
	if got.Overall < 20 || got.Overall > 80 {
		t.Errorf("overall %v not bounded by category min/max", got.Overall)
	}
}

func TestCombine_RenormalizesWeights(t *testing.T) {
	per := map[models.Category]float64{
		models.CategoryDSA:  100,
		models.CategoryAPTI: 0,
		models.CategoryCS:   0,
		models.CategoryDEV:  0,
	}
	// Weights sum to 2; DSA's effective share must be 0.5.
	goal := &models.Goal{WDsa: 1, WApti: 1 / 3.0, WCs: 1 / 3.0, WDev: 1 / 3.0}

	got := Combine(per, goal)
	if math.Abs(got.Overall-50) > 1e-9 {
		t.Errorf("overall = %v, want 50", got.Overall)
	}
}

func TestCombine_MissingGoalFallsBackToEqualWeights(t *testing.T) {
	per := map[models.Category]float64{
		models.CategoryDSA:  100,
		models.CategoryAPTI: 50,
		models.CategoryCS:   50,
		models.CategoryDEV:  0,
	}

	for _, goal := range []*models.Goal{nil, {WDsa: 0, WApti: 0, WCs: 0, WDev: 0}} {
		got := Combine(per, goal)
		if math.Abs(got.Overall-50) > 1e-9 {
			t.Errorf("goal=%+v: overall = %v, want 50 (equal split)", goal, got.Overall)
		}
	}
}
