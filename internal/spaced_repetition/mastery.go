package spaced_repetition

import (
	"math"
	"time"

	"github.com/example/preptrack/pkg/models"
)

// Component weights of the mastery composite.
const (
	accuracyWeight   = 0.55
	speedWeight      = 0.25
	difficultyWeight = 0.20
)

// Revision ladder: mastery thresholds and the interval (in days) granted at
// each rung. An incorrect attempt ignores the ladder and forces a 1-day
// interval. This is intentionally coarser than SM-2.
const (
	lowMastery  = 40
	midMastery  = 60
	highMastery = 80
)

// StatSnapshot carries the aggregate counters of a topic before an attempt.
type StatSnapshot struct {
	AttemptsTotal int
	CorrectTotal  int
	AvgTimeSec    int
}

// AttemptInput is the slice of an attempt the updater needs.
type AttemptInput struct {
	Correct      bool
	TimeTakenSec int
	Difficulty   models.Difficulty
}

// Result holds the recomputed aggregate after one attempt. The caller is
// responsible for persisting it; Update itself has no side effects.
type Result struct {
	AttemptsTotal    int
	CorrectTotal     int
	AvgTimeSec       int
	MasteryScore     float64
	NextRevisionDate time.Time
}

// Update applies one attempt to a topic's aggregate. prev is nil on the
// first attempt for a (user, topic) pair. now is caller-supplied so the
// function stays deterministic and can run inside a storage transaction.
func Update(prev *StatSnapshot, attempt AttemptInput, now time.Time) Result {
	var prevAttempts, prevCorrect, prevAvg int
	if prev != nil {
		prevAttempts = prev.AttemptsTotal
		prevCorrect = prev.CorrectTotal
		prevAvg = prev.AvgTimeSec
	}

	attempts := prevAttempts + 1
	correct := prevCorrect
	if attempt.Correct {
		correct++
	}

	avgTimeSec := attempt.TimeTakenSec
	if attempts > 1 {
		avgTimeSec = int(math.Round(float64(prevAvg*prevAttempts+attempt.TimeTakenSec) / float64(attempts)))
	}

	mastery := MasteryScore(attempts, correct, avgTimeSec, attempt)

	return Result{
		AttemptsTotal:    attempts,
		CorrectTotal:     correct,
		AvgTimeSec:       avgTimeSec,
		MasteryScore:     mastery,
		NextRevisionDate: NextRevisionDate(mastery, attempt.Correct, now),
	}
}

// MasteryScore combines accuracy, speed and the latest attempt's difficulty
// into a 0-100 score, rounded to 2 decimals so the persisted value is stable
// across platforms.
func MasteryScore(attemptsTotal, correctTotal, avgTimeSec int, last AttemptInput) float64 {
	accuracy := 0.0
	if attemptsTotal > 0 {
		accuracy = float64(correctTotal) / float64(attemptsTotal)
	}

	score := 100 * (accuracyWeight*accuracy +
		speedWeight*SpeedFactor(avgTimeSec) +
		difficultyWeight*DifficultyFactor(last.Difficulty, last.Correct))

	return clamp(math.Round(score*100)/100, 0, 100)
}

// SpeedFactor maps an average solve time to a 0..1 factor:
// 1.0 up to 60s, then linear to 0.6 at 180s, linear to 0.25 at 600s, and a
// 0.1 floor beyond so slow solving never zeroes mastery outright.
func SpeedFactor(avgTimeSec int) float64 {
	t := float64(avgTimeSec)
	if t < 1 {
		t = 1
	}
	switch {
	case t <= 60:
		return 1.0
	case t <= 180:
		return 1.0 - (t-60)/120*(1.0-0.6)
	case t <= 600:
		return 0.6 - (t-180)/420*(0.6-0.25)
	default:
		return 0.1
	}
}

// DifficultyFactor rewards harder correct solves: 0.6 / 0.8 / 1.0 for
// easy / med / hard, halved when the attempt was wrong.
func DifficultyFactor(d models.Difficulty, correct bool) float64 {
	var base float64
	switch d {
	case models.DifficultyEasy:
		base = 0.6
	case models.DifficultyMed:
		base = 0.8
	default:
		base = 1.0
	}
	if !correct {
		return base * 0.5
	}
	return base
}

// NextRevisionDate returns when the topic is due again. A wrong answer is
// always due tomorrow regardless of mastery.
func NextRevisionDate(masteryScore float64, correct bool, now time.Time) time.Time {
	if !correct {
		return now.AddDate(0, 0, 1)
	}

	days := 14
	switch {
	case masteryScore < lowMastery:
		days = 1
	case masteryScore < midMastery:
		days = 3
	case masteryScore < highMastery:
		days = 7
	}
	return now.AddDate(0, 0, days)
}

func clamp(n, min, max float64) float64 {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
