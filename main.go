package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/example/preptrack/internal/analytics"
	"github.com/example/preptrack/internal/bot"
	"github.com/example/preptrack/internal/database"
	"github.com/example/preptrack/internal/planner"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	if err := database.Connect(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	topicRepo := database.NewTopicRepository()
	statRepo := database.NewTopicStatRepository()
	goalRepo := database.NewGoalRepository()
	snapshotRepo := database.NewReadinessRepository()
	attemptRepo := database.NewAttemptRepository()
	taskRepo := database.NewTaskRepository()

	analyticsSvc := analytics.NewService(topicRepo, statRepo, goalRepo, snapshotRepo, attemptRepo)
	plannerSvc := planner.NewService(goalRepo, topicRepo, taskRepo)

	b, err := bot.New(analyticsSvc, plannerSvc)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v", sig)
		b.Stop()
		database.Close()
		os.Exit(0)
	}()

	log.Println("Bot started. Press Ctrl+C to stop.")
	if err := b.Start(); err != nil {
		log.Fatalf("Bot error: %v", err)
	}
}
