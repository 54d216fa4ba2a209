package analytics

import (
	"math"
	"testing"

	"github.com/example/preptrack/pkg/models"
)

func TestWeaknessPriority_ZeroImportance(t *testing.T) {
	if got := WeaknessPriority(0, 10, 5); got != 0 {
		t.Errorf("priority with zero importance = %v, want 0", got)
	}
}

func TestWeaknessPriority_NeverAttemptedStillSurfaces(t *testing.T) {
	got := WeaknessPriority(8, 0, 0)
	if got <= 0 {
		t.Fatalf("priority for untouched topic = %v, want > 0", got)
	}
	// Floor of 1 attempt: 8 * 1 * ln(2)
	want := math.Round(8*math.Log(2)*1000) / 1000
	if got != want {
		t.Errorf("priority = %v, want %v", got, want)
	}
}

func TestWeaknessPriority_FullMasteryIsZero(t *testing.T) {
	if got := WeaknessPriority(10, 100, 50); got != 0 {
		t.Errorf("priority at mastery 100 = %v, want 0", got)
	}
}

func TestWeaknessPriority_ClampsOutOfRangeInputs(t *testing.T) {
	tests := []struct {
		name       string
		importance float64
		mastery    float64
		attempts   int
	}{
		{"negative importance", -5, 50, 3},
		{"NaN importance", math.NaN(), 50, 3},
		{"Inf mastery", 10, math.Inf(1), 3},
		{"mastery above 100", 10, 250, 3},
		{"negative attempts", 10, 50, -7},
	}
	for _, tt := range tests {
		got := WeaknessPriority(tt.importance, tt.mastery, tt.attempts)
		if math.IsNaN(got) || math.IsInf(got, 0) || got < 0 {
			t.Errorf("%s: priority = %v, want finite non-negative", tt.name, got)
		}
	}
}

func TestTopWeakTopics_SortedAndTruncated(t *testing.T) {
	topics := []WeakTopic{
		{TopicID: 1, Name: "Arrays", Category: models.CategoryDSA, ImportanceScore: 5, MasteryScore: 90, AttemptsTotal: 10},
		{TopicID: 2, Name: "Graphs", Category: models.CategoryDSA, ImportanceScore: 9, MasteryScore: 20, AttemptsTotal: 4},
		{TopicID: 3, Name: "OS", Category: models.CategoryCS, ImportanceScore: 7, MasteryScore: 55, AttemptsTotal: 2},
		{TopicID: 4, Name: "DP", Category: models.CategoryDSA, ImportanceScore: 10, MasteryScore: 0, AttemptsTotal: 0},
	}

	got := TopWeakTopics(topics, 3)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Priority > got[i-1].Priority {
			t.Errorf("result not sorted descending at %d: %v > %v", i, got[i].Priority, got[i-1].Priority)
		}
	}
	if got[0].TopicID != 2 {
		t.Errorf("top weak topic = %d, want 2 (Graphs)", got[0].TopicID)
	}
}

func TestTopWeakTopics_TiesKeepInputOrder(t *testing.T) {
	topics := []WeakTopic{
		{TopicID: 11, ImportanceScore: 4, MasteryScore: 50, AttemptsTotal: 3},
		{TopicID: 12, ImportanceScore: 4, MasteryScore: 50, AttemptsTotal: 3},
		{TopicID: 13, ImportanceScore: 4, MasteryScore: 50, AttemptsTotal: 3},
	}

	got := TopWeakTopics(topics, 10)
	wantOrder := []int64{11, 12, 13}
	for i, id := range wantOrder {
		if got[i].TopicID != id {
			t.Fatalf("tie order broken: position %d = %d, want %d", i, got[i].TopicID, id)
		}
	}
}

func TestTopWeakTopics_LimitLargerThanInput(t *testing.T) {
	topics := []WeakTopic{{TopicID: 1, ImportanceScore: 3, MasteryScore: 10, AttemptsTotal: 1}}
	if got := TopWeakTopics(topics, 50); len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}
}
