package bot

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/preptrack/internal/ai"
	"github.com/example/preptrack/internal/analytics"
	"github.com/example/preptrack/internal/database"
	"github.com/example/preptrack/internal/planner"
	"github.com/example/preptrack/internal/practice"
	"github.com/example/preptrack/internal/scheduler"
)

// Bot represents the Telegram bot application
type Bot struct {
	api              *tgbotapi.BotAPI
	token            string
	analytics        *analytics.Service
	planner          *planner.Service
	practice         *practice.PracticeModule
	userRepo         *database.UserRepository
	goalRepo         *database.GoalRepository
	topicRepo        *database.TopicRepository
	attemptRepo      *database.AttemptRepository
	taskRepo         *database.TaskRepository
	statRepo         *database.TopicStatRepository
	schedulerEnabled bool
	scheduler        *scheduler.Scheduler
	chatGPT          *ai.ChatGPT
	config           *BotConfig
	adminUserIDs     map[int64]bool

	mu sync.Mutex
	// lastShownTasks maps a user to the task IDs last listed by /today,
	// so /done and /skip can address them by position
	lastShownTasks map[int64][]string
	// awaitingFileUpload marks admins who issued /import and owe us a file
	awaitingFileUpload map[int64]bool
}

// New creates a new bot instance
func New(svc *analytics.Service, plan *planner.Service) (*Bot, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	if database.DB == nil {
		return nil, fmt.Errorf("database connection is not established")
	}

	var chatGPT *ai.ChatGPT
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		chatGPT = ai.NewChatGPT(key)
	}

	bot := &Bot{
		token:              token,
		analytics:          svc,
		planner:            plan,
		practice:           practice.NewPracticeModule(svc),
		userRepo:           database.NewUserRepository(),
		goalRepo:           database.NewGoalRepository(),
		topicRepo:          database.NewTopicRepository(),
		attemptRepo:        database.NewAttemptRepository(),
		taskRepo:           database.NewTaskRepository(),
		statRepo:           database.NewTopicStatRepository(),
		schedulerEnabled:   os.Getenv("ENABLE_SCHEDULER") != "false",
		chatGPT:            chatGPT,
		config:             DefaultConfig(),
		adminUserIDs:       make(map[int64]bool),
		lastShownTasks:     make(map[int64][]string),
		awaitingFileUpload: make(map[int64]bool),
	}

	adminIDs := os.Getenv("ADMIN_USER_IDS")
	if adminIDs != "" {
		for _, idStr := range strings.Split(adminIDs, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
			if err != nil {
				log.Printf("Warning: Invalid admin user ID: %s", idStr)
				continue
			}
			bot.adminUserIDs[id] = true
		}
	}

	return bot, nil
}

// Start initializes the Telegram connection and processes updates until
// the updates channel closes
func (b *Bot) Start() error {
	botAPI, err := tgbotapi.NewBotAPI(b.token)
	if err != nil {
		return fmt.Errorf("unable to create bot: %v", err)
	}

	b.api = botAPI
	log.Printf("Authorized on account %s", botAPI.Self.UserName)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := b.api.GetUpdatesChan(updateConfig)

	if b.schedulerEnabled {
		b.scheduler = scheduler.New(b, b.analytics)
		b.scheduler.Start()
		log.Println("Background scheduler started")
	}

	for update := range updates {
		go b.handleUpdate(update)
	}

	return nil
}

// Stop gracefully stops the bot
func (b *Bot) Stop() {
	if b.scheduler != nil {
		b.scheduler.Stop()
	}
	if b.api != nil {
		b.api.StopReceivingUpdates()
	}
	log.Println("Bot stopped")
}

// SendStudyReminder implements the scheduler.Notifier interface
func (b *Bot) SendStudyReminder(userID int64, pendingTasks, dueRevisions int) error {
	user, err := b.userRepo.GetByID(context.Background(), userID)
	if err != nil {
		log.Printf("Error getting user %d: %v", userID, err)
		return err
	}

	var parts []string
	if pendingTasks > 0 {
		parts = append(parts, fmt.Sprintf("%d task(s) pending today", pendingTasks))
	}
	if dueRevisions > 0 {
		parts = append(parts, fmt.Sprintf("%d topic(s) due for revision", dueRevisions))
	}

	text := "Study reminder: " + strings.Join(parts, " and ") + ". Use /today to see your plan."
	msg := tgbotapi.NewMessage(user.TelegramID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending reminder to user %d: %v", userID, err)
		return err
	}
	return nil
}

// isAdmin checks if a user is an admin
func (b *Bot) isAdmin(userID int64) bool {
	return b.adminUserIDs[userID]
}

// handleUpdate dispatches one incoming Telegram update
func (b *Bot) handleUpdate(update tgbotapi.Update) {
	if update.Message == nil {
		return
	}
	msg := update.Message

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.handleStart(msg)
		case "help":
			b.handleHelp(msg)
		case "goal":
			b.handleGoal(msg)
		case "plan":
			b.handlePlan(msg)
		case "today":
			b.handleToday(msg)
		case "done":
			b.handleTaskStatus(msg, true)
		case "skip":
			b.handleTaskStatus(msg, false)
		case "log":
			b.handleLog(msg)
		case "readiness":
			b.handleReadiness(msg)
		case "history":
			b.handleHistory(msg)
		case "weak":
			b.handleWeak(msg)
		case "topics":
			b.handleTopics(msg)
		case "practice":
			b.handlePractice(msg)
		case "stats":
			b.handleStats(msg)
		case "notify":
			b.handleNotify(msg)
		case "tip":
			b.handleTip(msg)
		case "import":
			if b.isAdmin(msg.From.ID) {
				b.handleImport(msg)
			} else {
				b.reply(msg.Chat.ID, "This command is only available for administrators.")
			}
		default:
			b.reply(msg.Chat.ID, "Unknown command. Use /help to see what I can do.")
		}
		return
	}

	b.mu.Lock()
	awaiting := b.awaitingFileUpload[msg.Chat.ID]
	b.mu.Unlock()

	if awaiting {
		if msg.Document != nil {
			b.processTaxonomyFile(msg)
		} else {
			b.reply(msg.Chat.ID, "Please send the taxonomy as an .xlsx or .csv file.")
		}
		return
	}

	b.reply(msg.Chat.ID, "I respond to commands. Use /help to see the list.")
}

// reply sends a plain text message
func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message to chat %d: %v", chatID, err)
	}
}
