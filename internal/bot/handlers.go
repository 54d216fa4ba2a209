package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/preptrack/internal/analytics"
	"github.com/example/preptrack/internal/importer"
	"github.com/example/preptrack/internal/planner"
	"github.com/example/preptrack/pkg/models"
)

const helpText = `I track your interview preparation.

/goal <days> <hours> <role> - set a preparation goal
/goal - show the current goal
/plan [days] - regenerate the study plan
/today - show today's tasks
/done <n> - mark task n from /today as done
/skip <n> - mark task n from /today as skipped
/log <category> <topic> <correct|wrong> <minutes> [easy|med|hard] - log an attempt
/readiness - interview readiness breakdown
/history [days] - readiness trend over recent days
/weak [category] - your weakest topics
/topics [category] - browse the syllabus
/practice - what to practice right now
/stats - dashboard summary
/notify <hour>|off - daily reminder settings
/tip <category> <topic> - get a study tip`

// resolveUser registers the sender on first contact and returns the row
func (b *Bot) resolveUser(msg *tgbotapi.Message) (*models.User, error) {
	return b.userRepo.GetOrCreateByTelegramID(
		context.Background(),
		msg.From.ID,
		msg.From.UserName,
		msg.From.FirstName,
		msg.From.LastName,
	)
}

func (b *Bot) handleStart(msg *tgbotapi.Message) {
	user, err := b.resolveUser(msg)
	if err != nil {
		log.Printf("Error registering user: %v", err)
		b.reply(msg.Chat.ID, "Something went wrong, please try again.")
		return
	}

	name := user.FirstName
	if name == "" {
		name = "there"
	}
	b.reply(msg.Chat.ID, fmt.Sprintf(
		"Hi %s! I build adaptive study plans for interview prep.\n\nStart by setting a goal, for example:\n/goal 90 4 Backend Engineer\n\nThen /plan to generate your schedule. Use /help anytime.", name))
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) {
	b.reply(msg.Chat.ID, helpText)
}

// handleGoal shows the current goal without arguments or creates a new one
// from "<days> <hours> <role...> [weights=dsa,apti,cs,dev]"
func (b *Bot) handleGoal(msg *tgbotapi.Message) {
	user, err := b.resolveUser(msg)
	if err != nil {
		b.reply(msg.Chat.ID, "Something went wrong, please try again.")
		return
	}
	ctx := context.Background()

	args := strings.Fields(msg.CommandArguments())
	if len(args) == 0 {
		goal, err := b.goalRepo.LatestByUser(ctx, user.ID)
		if err != nil {
			b.reply(msg.Chat.ID, "Could not load your goal.")
			return
		}
		if goal == nil {
			b.reply(msg.Chat.ID, "No goal set yet. Example:\n/goal 90 4 Backend Engineer")
			return
		}
		w := models.NormalizedWeights(goal)
		b.reply(msg.Chat.ID, fmt.Sprintf(
			"Current goal: %s\nTimeline: %d days, %dh/day, started %s\nWeights: dsa %.2f, apti %.2f, cs %.2f, dev %.2f",
			goal.TargetRole, goal.TimelineDays, goal.HoursPerDay,
			goal.StartDate.Format("2006-01-02"),
			w[models.CategoryDSA], w[models.CategoryAPTI], w[models.CategoryCS], w[models.CategoryDEV]))
		return
	}

	if len(args) < 3 {
		b.reply(msg.Chat.ID, "Usage: /goal <days> <hours> <role> [weights=0.4,0.3,0.2,0.1]")
		return
	}

	days, err := strconv.Atoi(args[0])
	if err != nil || days < 1 || days > 365 {
		b.reply(msg.Chat.ID, "Days must be a number between 1 and 365.")
		return
	}
	hours, err := strconv.Atoi(args[1])
	if err != nil || hours < 1 || hours > 12 {
		b.reply(msg.Chat.ID, "Hours per day must be a number between 1 and 12.")
		return
	}

	weights := [4]float64{0.25, 0.25, 0.25, 0.25}
	roleParts := make([]string, 0, len(args)-2)
	for _, arg := range args[2:] {
		if strings.HasPrefix(arg, "weights=") {
			parsed, err := parseWeights(strings.TrimPrefix(arg, "weights="))
			if err != nil {
				b.reply(msg.Chat.ID, err.Error())
				return
			}
			weights = parsed
			continue
		}
		roleParts = append(roleParts, arg)
	}
	role := strings.Join(roleParts, " ")
	if role == "" {
		b.reply(msg.Chat.ID, "Please include the target role, e.g. /goal 90 4 Backend Engineer")
		return
	}

	now := time.Now().UTC()
	goal := &models.Goal{
		UserID:          user.ID,
		TargetRole:      role,
		TargetCompanies: models.StringList{},
		TimelineDays:    days,
		HoursPerDay:     hours,
		StartDate:       time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		WDsa:            weights[0],
		WApti:           weights[1],
		WCs:             weights[2],
		WDev:            weights[3],
		DifficultyCurve: models.CurveLinear,
	}
	if err := b.goalRepo.Create(ctx, goal); err != nil {
		log.Printf("Error creating goal for user %d: %v", user.ID, err)
		b.reply(msg.Chat.ID, "Could not save the goal, please try again.")
		return
	}

	b.reply(msg.Chat.ID, fmt.Sprintf(
		"Goal saved: %s in %d days at %dh/day.\nRun /plan to generate your schedule.", role, days, hours))
}

func parseWeights(raw string) ([4]float64, error) {
	var weights [4]float64
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return weights, errors.New("weights need four values: dsa,apti,cs,dev")
	}
	for i, part := range parts {
		val, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || val < 0 {
			return weights, errors.New("weights must be non-negative numbers")
		}
		weights[i] = val
	}
	if weights[0]+weights[1]+weights[2]+weights[3] <= 0 {
		return weights, errors.New("at least one weight must be positive")
	}
	return weights, nil
}

func (b *Bot) handlePlan(msg *tgbotapi.Message) {
	user, err := b.resolveUser(msg)
	if err != nil {
		b.reply(msg.Chat.ID, "Something went wrong, please try again.")
		return
	}

	days := b.config.DefaultPlanDays
	if arg := strings.TrimSpace(msg.CommandArguments()); arg != "" {
		parsed, err := strconv.Atoi(arg)
		if err != nil {
			b.reply(msg.Chat.ID, "Usage: /plan [days]")
			return
		}
		days = parsed
	}

	result, err := b.planner.Generate(context.Background(), user.ID, days, time.Time{}, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, planner.ErrNoGoal):
			b.reply(msg.Chat.ID, "Set a goal first, e.g. /goal 90 4 Backend Engineer")
		case errors.Is(err, planner.ErrInvalidRange):
			b.reply(msg.Chat.ID, fmt.Sprintf("Plan length must be between %d and %d days.", planner.MinDays, planner.MaxDays))
		default:
			log.Printf("Error generating plan for user %d: %v", user.ID, err)
			b.reply(msg.Chat.ID, "Could not generate the plan, please try again.")
		}
		return
	}

	b.reply(msg.Chat.ID, fmt.Sprintf(
		"Plan ready: %d tasks over %d days starting %s.\nUse /today to see what's next.",
		result.CreatedCount, result.Days, result.StartDate.Format("2006-01-02")))
}

func (b *Bot) handleToday(msg *tgbotapi.Message) {
	user, err := b.resolveUser(msg)
	if err != nil {
		b.reply(msg.Chat.ID, "Something went wrong, please try again.")
		return
	}

	now := time.Now().UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	tasks, err := b.taskRepo.ListByUserAndDate(context.Background(), user.ID, day)
	if err != nil {
		log.Printf("Error listing tasks for user %d: %v", user.ID, err)
		b.reply(msg.Chat.ID, "Could not load today's tasks.")
		return
	}
	if len(tasks) == 0 {
		b.reply(msg.Chat.ID, "No tasks for today. Use /plan to generate a schedule.")
		return
	}

	ids := make([]string, len(tasks))
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Today, %s:\n", day.Format("Mon 2 Jan")))
	for i, task := range tasks {
		ids[i] = task.ID
		marker := " "
		switch task.Status {
		case models.StatusDone:
			marker = "x"
		case models.StatusSkipped:
			marker = "-"
		}
		sb.WriteString(fmt.Sprintf("%d. [%s] %s (%d min, %s)\n", i+1, marker, task.Title, task.DurationMin, task.Difficulty))
	}
	sb.WriteString("\nMark progress with /done <n> or /skip <n>.")

	b.mu.Lock()
	b.lastShownTasks[user.ID] = ids
	b.mu.Unlock()

	b.reply(msg.Chat.ID, sb.String())
}

// handleTaskStatus resolves "/done n" and "/skip n" against the last
// /today listing
func (b *Bot) handleTaskStatus(msg *tgbotapi.Message, done bool) {
	user, err := b.resolveUser(msg)
	if err != nil {
		b.reply(msg.Chat.ID, "Something went wrong, please try again.")
		return
	}

	n, err := strconv.Atoi(strings.TrimSpace(msg.CommandArguments()))
	if err != nil || n < 1 {
		b.reply(msg.Chat.ID, "Give me the task number from /today, e.g. /done 2")
		return
	}

	b.mu.Lock()
	ids := b.lastShownTasks[user.ID]
	b.mu.Unlock()

	if n > len(ids) {
		b.reply(msg.Chat.ID, "I don't have that task number. Run /today first.")
		return
	}

	status := models.StatusDone
	if !done {
		status = models.StatusSkipped
	}
	updated, err := b.taskRepo.UpdateStatus(context.Background(), user.ID, ids[n-1], status)
	if err != nil {
		log.Printf("Error updating task status for user %d: %v", user.ID, err)
		b.reply(msg.Chat.ID, "Could not update the task.")
		return
	}
	if !updated {
		b.reply(msg.Chat.ID, "That task no longer exists. Run /today to refresh.")
		return
	}
	if done {
		b.reply(msg.Chat.ID, "Nice, marked as done.")
	} else {
		b.reply(msg.Chat.ID, "Skipped. It stays in your history as skipped.")
	}
}

// handleLog records a practice attempt:
// logRequest is a parsed /log command
type logRequest struct {
	Category   models.Category
	TopicName  string
	Correct    bool
	Minutes    int
	Difficulty models.Difficulty
}

// parseLogArgs parses the /log arguments. On invalid input it returns nil
// and a user-facing message.
func parseLogArgs(raw string) (*logRequest, string) {
	const usage = "Usage: /log <category> <topic> <correct|wrong> <minutes> [easy|med|hard]\nExample: /log dsa Graphs correct 25 hard"
	args := strings.Fields(raw)
	if len(args) < 4 {
		return nil, usage
	}

	category := models.Category(strings.ToUpper(args[0]))
	if !models.IsValidCategory(string(category)) {
		return nil, "Category must be one of: dsa, apti, cs, dev"
	}

	difficulty := models.DifficultyMed
	rest := args[1:]
	if d := models.Difficulty(strings.ToLower(rest[len(rest)-1])); d == models.DifficultyEasy || d == models.DifficultyMed || d == models.DifficultyHard {
		difficulty = d
		rest = rest[:len(rest)-1]
	}
	if len(rest) < 3 {
		return nil, usage
	}

	minutes, err := strconv.Atoi(rest[len(rest)-1])
	if err != nil || minutes < 1 {
		return nil, "Minutes must be a positive number."
	}

	var correct bool
	switch strings.ToLower(rest[len(rest)-2]) {
	case "correct", "right", "yes":
		correct = true
	case "wrong", "incorrect", "no":
		correct = false
	default:
		return nil, usage
	}

	return &logRequest{
		Category:   category,
		TopicName:  strings.Join(rest[:len(rest)-2], " "),
		Correct:    correct,
		Minutes:    minutes,
		Difficulty: difficulty,
	}, ""
}

// /log <category> <topic...> <correct|wrong> <minutes> [easy|med|hard]
func (b *Bot) handleLog(msg *tgbotapi.Message) {
	user, err := b.resolveUser(msg)
	if err != nil {
		b.reply(msg.Chat.ID, "Something went wrong, please try again.")
		return
	}

	req, errMsg := parseLogArgs(msg.CommandArguments())
	if req == nil {
		b.reply(msg.Chat.ID, errMsg)
		return
	}

	ctx := context.Background()
	topic, err := b.findTopic(ctx, req.TopicName, req.Category)
	if err != nil {
		log.Printf("Error finding topic for user %d: %v", user.ID, err)
		b.reply(msg.Chat.ID, "Could not look up the topic.")
		return
	}
	if topic == nil {
		b.reply(msg.Chat.ID, fmt.Sprintf("No topic %q in %s. Check /weak %s for topic names.", req.TopicName, req.Category, req.Category))
		return
	}

	attempt := &models.Attempt{
		UserID:       user.ID,
		TopicID:      topic.ID,
		Difficulty:   req.Difficulty,
		Correct:      req.Correct,
		TimeTakenSec: req.Minutes * 60,
		Confidence:   3,
	}
	stat, err := b.attemptRepo.Record(ctx, attempt, time.Now().UTC())
	if err != nil {
		log.Printf("Error recording attempt for user %d: %v", user.ID, err)
		b.reply(msg.Chat.ID, "Could not record the attempt.")
		return
	}

	verdict := "Correct"
	if !req.Correct {
		verdict = "Incorrect"
	}
	next := ""
	if stat.NextRevisionDate.Valid {
		next = "\nNext revision: " + stat.NextRevisionDate.Time.Format("2006-01-02")
	}
	b.reply(msg.Chat.ID, fmt.Sprintf(
		"%s attempt on %s logged.\nMastery: %.1f (%d/%d correct, avg %ds)%s",
		verdict, topic.Name, stat.MasteryScore, stat.CorrectTotal, stat.AttemptsTotal, stat.AvgTimeSec, next))
}

// findTopic matches a topic name case-insensitively within a category
func (b *Bot) findTopic(ctx context.Context, name string, category models.Category) (*models.Topic, error) {
	topic, err := b.topicRepo.FindByName(ctx, name, category)
	if err != nil || topic != nil {
		return topic, err
	}
	topics, err := b.topicRepo.ListByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	for i := range topics {
		if strings.EqualFold(topics[i].Name, name) {
			return &topics[i], nil
		}
	}
	return nil, nil
}

func (b *Bot) handleReadiness(msg *tgbotapi.Message) {
	user, err := b.resolveUser(msg)
	if err != nil {
		b.reply(msg.Chat.ID, "Something went wrong, please try again.")
		return
	}

	snapshot, err := b.analytics.SnapshotToday(context.Background(), user.ID, time.Now())
	if err != nil {
		log.Printf("Error computing readiness for user %d: %v", user.ID, err)
		b.reply(msg.Chat.ID, "Could not compute readiness.")
		return
	}

	b.reply(msg.Chat.ID, fmt.Sprintf(
		"Interview readiness: %.1f/100\n\ndsa: %.1f\napti: %.1f\ncs: %.1f\ndev: %.1f",
		snapshot.Overall, snapshot.Dsa, snapshot.Apti, snapshot.Cs, snapshot.Dev))
}

func (b *Bot) handleHistory(msg *tgbotapi.Message) {
	user, err := b.resolveUser(msg)
	if err != nil {
		b.reply(msg.Chat.ID, "Something went wrong, please try again.")
		return
	}

	days := 14
	if arg := strings.TrimSpace(msg.CommandArguments()); arg != "" {
		parsed, err := strconv.Atoi(arg)
		if err != nil {
			b.reply(msg.Chat.ID, "Usage: /history [days]")
			return
		}
		days = parsed
	}

	history, err := b.analytics.History(context.Background(), user.ID, days, time.Now())
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidRange) {
			b.reply(msg.Chat.ID, "Days must be between 1 and 365.")
			return
		}
		log.Printf("Error loading history for user %d: %v", user.ID, err)
		b.reply(msg.Chat.ID, "Could not load your history.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Readiness over the last %d day(s):\n", days))
	for _, s := range history {
		sb.WriteString(fmt.Sprintf("%s: %.1f\n", s.Date.Format("2006-01-02"), s.Overall))
	}
	if len(history) > 1 {
		delta := history[len(history)-1].Overall - history[0].Overall
		sb.WriteString(fmt.Sprintf("\nChange: %+.1f", delta))
	}
	b.reply(msg.Chat.ID, sb.String())
}

func (b *Bot) handleWeak(msg *tgbotapi.Message) {
	user, err := b.resolveUser(msg)
	if err != nil {
		b.reply(msg.Chat.ID, "Something went wrong, please try again.")
		return
	}

	var category models.Category
	if arg := strings.ToLower(strings.TrimSpace(msg.CommandArguments())); arg != "" {
		category = models.Category(strings.ToUpper(arg))
		if !models.IsValidCategory(string(category)) {
			b.reply(msg.Chat.ID, "Category must be one of: dsa, apti, cs, dev")
			return
		}
	}

	weak, err := b.analytics.WeakTopics(context.Background(), user.ID, category, b.config.WeakTopicsShown)
	if err != nil {
		log.Printf("Error ranking weak topics for user %d: %v", user.ID, err)
		b.reply(msg.Chat.ID, "Could not rank your topics.")
		return
	}
	if len(weak) == 0 {
		b.reply(msg.Chat.ID, "No topics found. An administrator needs to /import the taxonomy first.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Weakest topics first:\n")
	for i, w := range weak {
		sb.WriteString(fmt.Sprintf("%d. %s (%s) - mastery %.1f, priority %.2f\n",
			i+1, w.Name, w.Category, w.MasteryScore, w.Priority))
	}
	b.reply(msg.Chat.ID, sb.String())
}

// handleTopics renders the syllabus tree, optionally scoped to a category
func (b *Bot) handleTopics(msg *tgbotapi.Message) {
	var category models.Category
	if arg := strings.TrimSpace(msg.CommandArguments()); arg != "" {
		category = models.Category(strings.ToUpper(arg))
		if !models.IsValidCategory(string(category)) {
			b.reply(msg.Chat.ID, "Category must be one of: dsa, apti, cs, dev")
			return
		}
	}

	tree, err := b.topicRepo.Tree(context.Background())
	if err != nil {
		log.Printf("Error loading topic tree: %v", err)
		b.reply(msg.Chat.ID, "Could not load the syllabus.")
		return
	}
	if len(tree.Roots) == 0 {
		b.reply(msg.Chat.ID, "No topics yet. An administrator needs to /import the taxonomy first.")
		return
	}

	var sb strings.Builder
	for _, rootID := range tree.Roots {
		root := tree.ByID[rootID]
		if category != "" && root.Category != category {
			continue
		}
		sb.WriteString(fmt.Sprintf("%s (%s)\n", root.Name, root.Category))
		for _, childID := range tree.Children[rootID] {
			sb.WriteString("  - " + tree.ByID[childID].Name + "\n")
		}
	}
	if sb.Len() == 0 {
		b.reply(msg.Chat.ID, "No topics in that category yet.")
		return
	}
	b.reply(msg.Chat.ID, sb.String())
}

func (b *Bot) handlePractice(msg *tgbotapi.Message) {
	user, err := b.resolveUser(msg)
	if err != nil {
		b.reply(msg.Chat.ID, "Something went wrong, please try again.")
		return
	}

	queue, err := b.practice.BuildQueue(context.Background(), user.ID, b.config.PracticeQueueSize, time.Now())
	if err != nil {
		log.Printf("Error building practice queue for user %d: %v", user.ID, err)
		b.reply(msg.Chat.ID, "Could not build a practice queue.")
		return
	}
	if len(queue) == 0 {
		b.reply(msg.Chat.ID, "Nothing in the queue. Log some attempts with /log first.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Practice next:\n")
	for i, item := range queue {
		reason := "weak topic"
		if item.Reason == "revision_due" {
			reason = "revision due"
		}
		sb.WriteString(fmt.Sprintf("%d. %s (%s) - %s, try %s\n",
			i+1, item.Name, item.Category, reason, item.Difficulty))
	}
	b.reply(msg.Chat.ID, sb.String())
}

func (b *Bot) handleStats(msg *tgbotapi.Message) {
	user, err := b.resolveUser(msg)
	if err != nil {
		b.reply(msg.Chat.ID, "Something went wrong, please try again.")
		return
	}

	dash, err := b.analytics.Dashboard(context.Background(), user.ID, time.Now())
	if err != nil {
		log.Printf("Error building dashboard for user %d: %v", user.ID, err)
		b.reply(msg.Chat.ID, "Could not load your stats.")
		return
	}

	var sb strings.Builder
	if dash.Readiness != nil {
		sb.WriteString(fmt.Sprintf("Readiness: %.1f/100 (as of %s)\n",
			dash.Readiness.Overall, dash.Readiness.Date.Format("2006-01-02")))
	} else {
		sb.WriteString("Readiness: not computed yet, run /readiness\n")
	}
	sb.WriteString(fmt.Sprintf("Last 14 days: %d attempts, %.0f%% accuracy\n",
		dash.TotalAttempts14d, dash.AvgAccuracy14d))
	sb.WriteString(fmt.Sprintf("Revision queue: %d topic(s) due\n", dash.RevisionQueue))
	if len(dash.WeakTopics) > 0 {
		sb.WriteString("\nNeeds attention:\n")
		for _, w := range dash.WeakTopics {
			sb.WriteString(fmt.Sprintf("- %s (%s), mastery %.1f\n", w.Name, w.Category, w.MasteryScore))
		}
	}
	b.reply(msg.Chat.ID, sb.String())
}

func (b *Bot) handleNotify(msg *tgbotapi.Message) {
	user, err := b.resolveUser(msg)
	if err != nil {
		b.reply(msg.Chat.ID, "Something went wrong, please try again.")
		return
	}

	arg := strings.ToLower(strings.TrimSpace(msg.CommandArguments()))
	ctx := context.Background()

	if arg == "off" {
		if err := b.userRepo.SetNotification(ctx, user.ID, false, user.NotificationHour); err != nil {
			b.reply(msg.Chat.ID, "Could not update your settings.")
			return
		}
		b.reply(msg.Chat.ID, "Reminders disabled.")
		return
	}

	hour, err := strconv.Atoi(arg)
	if err != nil || hour < 0 || hour > 23 {
		b.reply(msg.Chat.ID, "Usage: /notify <hour 0-23> or /notify off")
		return
	}
	if err := b.userRepo.SetNotification(ctx, user.ID, true, hour); err != nil {
		b.reply(msg.Chat.ID, "Could not update your settings.")
		return
	}
	b.reply(msg.Chat.ID, fmt.Sprintf("Daily reminder set for %02d:00 UTC.", hour))
}

func (b *Bot) handleTip(msg *tgbotapi.Message) {
	user, err := b.resolveUser(msg)
	if err != nil {
		b.reply(msg.Chat.ID, "Something went wrong, please try again.")
		return
	}
	if b.chatGPT == nil {
		b.reply(msg.Chat.ID, "Study tips are not configured on this bot.")
		return
	}

	args := strings.Fields(msg.CommandArguments())
	if len(args) < 2 {
		b.reply(msg.Chat.ID, "Usage: /tip <category> <topic>\nExample: /tip dsa Graphs")
		return
	}
	category := models.Category(strings.ToUpper(args[0]))
	if !models.IsValidCategory(string(category)) {
		b.reply(msg.Chat.ID, "Category must be one of: dsa, apti, cs, dev")
		return
	}

	ctx := context.Background()
	topic, err := b.findTopic(ctx, strings.Join(args[1:], " "), category)
	if err != nil || topic == nil {
		b.reply(msg.Chat.ID, "Could not find that topic.")
		return
	}

	mastery := 0.0
	if stat, err := b.statRepo.GetByUserAndTopic(ctx, user.ID, topic.ID); err == nil && stat != nil {
		mastery = stat.MasteryScore
	}

	tip, err := b.chatGPT.StudyTip(topic.Name, topic.Category, mastery)
	if err != nil {
		log.Printf("Error generating tip for user %d: %v", user.ID, err)
		b.reply(msg.Chat.ID, "Could not generate a tip right now.")
		return
	}
	b.reply(msg.Chat.ID, tip)
}

func (b *Bot) handleImport(msg *tgbotapi.Message) {
	b.mu.Lock()
	b.awaitingFileUpload[msg.Chat.ID] = true
	b.mu.Unlock()
	b.reply(msg.Chat.ID, "Send me the taxonomy file (.xlsx or .csv) with columns: name, category, importance, parent.")
}

// processTaxonomyFile downloads an uploaded document and imports it
func (b *Bot) processTaxonomyFile(msg *tgbotapi.Message) {
	b.mu.Lock()
	delete(b.awaitingFileUpload, msg.Chat.ID)
	b.mu.Unlock()

	url, err := b.api.GetFileDirectURL(msg.Document.FileID)
	if err != nil {
		log.Printf("Error getting file URL: %v", err)
		b.reply(msg.Chat.ID, "Could not download the file.")
		return
	}

	resp, err := http.Get(url)
	if err != nil {
		log.Printf("Error downloading file: %v", err)
		b.reply(msg.Chat.ID, "Could not download the file.")
		return
	}
	defer resp.Body.Close()

	tmpPath := filepath.Join(os.TempDir(), msg.Document.FileName)
	out, err := os.Create(tmpPath)
	if err != nil {
		log.Printf("Error creating temp file: %v", err)
		b.reply(msg.Chat.ID, "Could not process the file.")
		return
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		log.Printf("Error saving file: %v", err)
		b.reply(msg.Chat.ID, "Could not process the file.")
		return
	}
	out.Close()
	defer os.Remove(tmpPath)

	config := importer.DefaultImportConfig()
	config.FilePath = tmpPath
	result, err := importer.ImportTopics(context.Background(), config)
	if err != nil {
		log.Printf("Error importing taxonomy: %v", err)
		b.reply(msg.Chat.ID, "Import failed: "+err.Error())
		return
	}

	text := fmt.Sprintf("Import finished: %d rows processed, %d created, %d updated.",
		result.TotalProcessed, result.Created, result.Updated)
	if len(result.Errors) > 0 {
		limit := len(result.Errors)
		if limit > 5 {
			limit = 5
		}
		text += "\nProblems:\n" + strings.Join(result.Errors[:limit], "\n")
	}
	b.reply(msg.Chat.ID, text)
}
