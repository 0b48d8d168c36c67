package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/example/lexibot/internal/database"
	"github.com/example/lexibot/internal/goals"
	"github.com/example/lexibot/internal/importer"
	"github.com/example/lexibot/internal/notify"
	"github.com/example/lexibot/internal/review"
	"github.com/example/lexibot/internal/scheduler"
	"github.com/example/lexibot/internal/scheduling"
)

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// "lexibot import <file>" loads vocabulary and exits
	if len(os.Args) > 1 && os.Args[1] == "import" {
		if len(os.Args) < 3 {
			log.Fatal("Usage: lexibot import <file.xlsx|file.csv>")
		}
		runImport(db, os.Args[2])
		return
	}

	clock := scheduling.SystemClock()
	reviews := review.NewService(database.NewReviewItemRepository(db), clock)
	tracker := goals.NewTracker(database.NewGoalRepository(db), clock)
	users := database.NewUserRepository(db)

	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN environment variable is not set")
	}
	notifier, err := notify.NewTelegramNotifier(token)
	if err != nil {
		log.Fatalf("Failed to create notifier: %v", err)
	}

	sched := scheduler.New(reviews, tracker, users, notifier, clock)
	sched.Start()
	defer sched.Stop()

	log.Println("lexibot started. Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	log.Printf("Received signal: %v, shutting down", sig)
}

// runImport loads a vocabulary file into the topic/word tables
func runImport(db *sqlx.DB, path string) {
	im := importer.New(database.NewTopicRepository(db), database.NewWordRepository(db))
	result, err := im.ImportWords(context.Background(), importer.DefaultConfig(path))
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	log.Printf("Import finished: %d processed, %d created, %d updated, %d skipped, %d topics created",
		result.TotalProcessed, result.Created, result.Updated, result.Skipped, result.TopicsCreated)
	for _, rowErr := range result.Errors {
		log.Printf("Import warning: %s", rowErr)
	}
}
