package planner

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/example/preptrack/pkg/models"
)

// Horizon and budget bounds.
const (
	MinDays        = 1
	MaxDays        = 365
	minHours       = 1
	maxHours       = 12
	mockTaskCapMin = 180
	PoolSize       = 30
	maxBlocks      = 3
)

// Default task type per category on a regular day.
var categoryTaskType = map[models.Category]models.TaskType{
	models.CategoryDSA:  models.TaskSolve,
	models.CategoryAPTI: models.TaskSolve,
	models.CategoryCS:   models.TaskNotes,
	models.CategoryDEV:  models.TaskProject,
}

// Human-facing title prefix per category.
var categoryTitlePrefix = map[models.Category]string{
	models.CategoryDSA:  "DSA",
	models.CategoryAPTI: "Aptitude",
	models.CategoryCS:   "CS",
	models.CategoryDEV:  "Dev",
}

// TopicRef is the slice of a topic the planner needs from a pool.
type TopicRef struct {
	ID   int64
	Name string
}

// Pools holds the pre-fetched topic pool per category, each ordered by
// importance and capped at PoolSize entries.
type Pools map[models.Category][]TopicRef

// BuildTasks synthesizes the system-authored tasks for days consecutive
// calendar days starting at startDate. It is pure: the caller persists the
// result. Output is ordered day-ascending, then category order, then block
// order, and never contains a zero-duration task.
func BuildTasks(goal models.Goal, pools Pools, userID int64, days int, startDate time.Time) []models.PlanTask {
	totalDays := clampInt(days, MinDays, MaxDays)
	weights := models.NormalizedWeights(&goal)
	dailyMinutes := dailyBudgetMinutes(goal.HoursPerDay)
	start := startOfDayUTC(startDate)

	// Rotating topic cursor, local to this generation call.
	cursor := map[models.Category]int{}

	var tasks []models.PlanTask

	for dayIndex := 0; dayIndex < totalDays; dayIndex++ {
		date := start.AddDate(0, 0, dayIndex)

		if isMockDay(dayIndex) {
			tasks = append(tasks, buildMockDay(userID, date, dailyMinutes)...)
			continue
		}

		minutesByCat := allocateMinutes(dailyMinutes, weights)
		difficulty := difficultyForDay(dayIndex, totalDays)

		for _, category := range models.Categories {
			catMinutes := minutesByCat[category]
			if catMinutes <= 0 {
				continue
			}

			pool := pools[category]
			for _, blockMin := range splitIntoBlocks(catMinutes) {
				var chosen *TopicRef
				if len(pool) > 0 {
					chosen = &pool[cursor[category]%len(pool)]
				}
				cursor[category]++

				taskType := categoryTaskType[category]
				if isRevisionDay(dayIndex) && blockMin >= 45 && category != models.CategoryDEV {
					taskType = models.TaskRevise
				}

				task := models.PlanTask{
					ID:          uuid.NewString(),
					UserID:      userID,
					Date:        date,
					Type:        taskType,
					DurationMin: blockMin,
					Difficulty:  difficulty,
					Status:      models.StatusPending,
					CreatedBy:   models.CreatedBySystem,
				}
				if chosen != nil {
					task.TopicID.Int64 = chosen.ID
					task.TopicID.Valid = true
					task.Title = fmt.Sprintf("%s: %s (%s)", categoryTitlePrefix[category], chosen.Name, taskType)
				} else {
					task.Title = fmt.Sprintf("%s: Practice (%s)", categoryTitlePrefix[category], taskType)
				}
				tasks = append(tasks, task)
			}
		}
	}

	return tasks
}

// buildMockDay produces the full-length mock test plus, when budget remains,
// one revision block absorbing the rest of the day.
func buildMockDay(userID int64, date time.Time, dailyMinutes int) []models.PlanTask {
	mockMinutes := dailyMinutes
	if mockMinutes > mockTaskCapMin {
		mockMinutes = mockTaskCapMin
	}

	tasks := []models.PlanTask{{
		ID:          uuid.NewString(),
		UserID:      userID,
		Date:        date,
		Type:        models.TaskMock,
		Title:       fmt.Sprintf("Mock Test + Analysis (%s)", date.Format("2006-01-02")),
		DurationMin: mockMinutes,
		Difficulty:  models.DifficultyMed,
		Status:      models.StatusPending,
		CreatedBy:   models.CreatedBySystem,
	}}

	if remaining := dailyMinutes - mockMinutes; remaining > 0 {
		tasks = append(tasks, models.PlanTask{
			ID:          uuid.NewString(),
			UserID:      userID,
			Date:        date,
			Type:        models.TaskRevise,
			Title:       "Revision backlog cleanup",
			DurationMin: remaining,
			Difficulty:  models.DifficultyEasy,
			Status:      models.StatusPending,
			CreatedBy:   models.CreatedBySystem,
		})
	}
	return tasks
}

// dailyBudgetMinutes converts the goal's hours into a sane minute budget.
func dailyBudgetMinutes(hoursPerDay int) int {
	return clampInt(hoursPerDay, minHours, maxHours) * 60
}

// allocateMinutes splits the daily budget across categories proportionally
// to the normalized weights, using largest-remainder rounding: floor every
// share, then hand the leftover minutes out one at a time to categories in
// descending weight order so the budget is consumed exactly.
func allocateMinutes(totalMinutes int, weights map[models.Category]float64) map[models.Category]int {
	result := make(map[models.Category]int, len(models.Categories))
	used := 0
	for _, c := range models.Categories {
		m := int(float64(totalMinutes) * weights[c])
		result[c] = m
		used += m
	}

	// Descending weight; equal weights keep canonical category order.
	order := make([]models.Category, len(models.Categories))
	copy(order, models.Categories)
	sort.SliceStable(order, func(i, j int) bool {
		return weights[order[i]] > weights[order[j]]
	})

	remaining := totalMinutes - used
	for i := 0; remaining > 0; i++ {
		result[order[i%len(order)]]++
		remaining--
	}
	return result
}

// splitIntoBlocks chunks a category's minutes into 1-3 practice blocks,
// preferring 90-, then 60-, then 45-minute sizes. Minutes that do not fit
// into three blocks are folded into the last one.
func splitIntoBlocks(categoryMinutes int) []int {
	var blocks []int
	remaining := categoryMinutes

	for remaining > 0 && len(blocks) < maxBlocks {
		var size int
		switch {
		case remaining >= 90:
			size = 90
		case remaining >= 60:
			size = 60
		case remaining >= 45:
			size = 45
		default:
			size = remaining
		}
		blocks = append(blocks, size)
		remaining -= size
	}

	if remaining > 0 && len(blocks) > 0 {
		blocks[len(blocks)-1] += remaining
	}

	out := blocks[:0]
	for _, b := range blocks {
		if b > 0 {
			out = append(out, b)
		}
	}
	return out
}

// difficultyForDay ramps easy -> med -> hard across the horizon.
func difficultyForDay(dayIndex, totalDays int) models.Difficulty {
	if totalDays <= 0 {
		return models.DifficultyEasy
	}
	t := float64(dayIndex) / float64(totalDays)
	switch {
	case t < 0.33:
		return models.DifficultyEasy
	case t < 0.75:
		return models.DifficultyMed
	default:
		return models.DifficultyHard
	}
}

// isMockDay marks every 7th day of the horizon.
func isMockDay(dayIndex int) bool {
	return (dayIndex+1)%7 == 0
}

// isRevisionDay marks every 4th day of the horizon.
func isRevisionDay(dayIndex int) bool {
	return (dayIndex+1)%4 == 0
}

func startOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func clampInt(n, min, max int) int {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
