package scheduler

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/preptrack/internal/analytics"
	"github.com/example/preptrack/internal/database"
	"github.com/example/preptrack/pkg/models"
)

// Default window within which reminders may be sent
const (
	DefaultNotificationStartHour = 6
	DefaultNotificationEndHour   = 22
)

// Scheduler manages recurring background jobs
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	analytics *analytics.Service
}

// Notifier interface for sending reminders to users
type Notifier interface {
	SendStudyReminder(userID int64, pendingTasks, dueRevisions int) error
}

// New creates a new scheduler instance
func New(notifier Notifier, svc *analytics.Service) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		notifier:  notifier,
		analytics: svc,
	}
}

// Start begins running all scheduled jobs
func (s *Scheduler) Start() {
	// Hourly pass over users whose reminder hour has come
	s.scheduler.Every(1).Hour().Do(s.checkAndSendReminders)

	// Nightly readiness snapshot so history has a point for every day
	s.scheduler.Every(1).Day().At("23:30").Do(s.snapshotReadiness)

	s.scheduler.StartAsync()
}

// Stop terminates all scheduled jobs
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// checkAndSendReminders finds users whose notification hour matches the
// current hour and tells them what is pending today
func (s *Scheduler) checkAndSendReminders() {
	now := time.Now()
	currentHour := now.Hour()

	startHour := envHour("NOTIFICATION_START_HOUR", DefaultNotificationStartHour)
	endHour := envHour("NOTIFICATION_END_HOUR", DefaultNotificationEndHour)

	if currentHour < startHour || currentHour > endHour {
		log.Printf("Current hour %d is outside notification hours (%d-%d), skipping reminders",
			currentHour, startHour, endHour)
		return
	}

	ctx := context.Background()
	userRepo := database.NewUserRepository()
	taskRepo := database.NewTaskRepository()
	statRepo := database.NewTopicStatRepository()

	users, err := userRepo.GetUsersForNotification(ctx, currentHour)
	if err != nil {
		log.Printf("Error getting users for notification: %v", err)
		return
	}

	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for _, user := range users {
		tasks, err := taskRepo.ListByUserAndDate(ctx, user.ID, day)
		if err != nil {
			log.Printf("Error getting tasks for user %d: %v", user.ID, err)
			continue
		}
		pending := 0
		for _, task := range tasks {
			if task.Status == models.StatusPending {
				pending++
			}
		}

		due, err := statRepo.CountDue(ctx, user.ID, now)
		if err != nil {
			log.Printf("Error counting due revisions for user %d: %v", user.ID, err)
			continue
		}

		if pending == 0 && due == 0 {
			continue
		}
		if err := s.notifier.SendStudyReminder(user.ID, pending, due); err != nil {
			log.Printf("Error sending reminder to user %d: %v", user.ID, err)
		}
	}
}

// snapshotReadiness records today's readiness for every user
func (s *Scheduler) snapshotReadiness() {
	ctx := context.Background()
	userRepo := database.NewUserRepository()

	users, err := userRepo.GetAll(ctx)
	if err != nil {
		log.Printf("Error getting users for readiness snapshot: %v", err)
		return
	}

	now := time.Now()
	for _, user := range users {
		if _, err := s.analytics.SnapshotToday(ctx, user.ID, now); err != nil {
			log.Printf("Error snapshotting readiness for user %d: %v", user.ID, err)
		}
	}
}

// RunManualCheck forces a reminder check for a specific user
func (s *Scheduler) RunManualCheck(userID int64) error {
	ctx := context.Background()
	statRepo := database.NewTopicStatRepository()

	now := time.Now()
	due, err := statRepo.CountDue(ctx, userID, now)
	if err != nil {
		return err
	}

	taskRepo := database.NewTaskRepository()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	tasks, err := taskRepo.ListByUserAndDate(ctx, userID, day)
	if err != nil {
		return err
	}
	pending := 0
	for _, task := range tasks {
		if task.Status == models.StatusPending {
			pending++
		}
	}

	if pending == 0 && due == 0 {
		return nil
	}
	return s.notifier.SendStudyReminder(userID, pending, due)
}

func envHour(name string, fallback int) int {
	if raw := os.Getenv(name); raw != "" {
		if h, err := strconv.Atoi(raw); err == nil && h >= 0 && h <= 23 {
			return h
		}
	}
	return fallback
}
