package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/soumyacodes007/social-media-backend/internal/config"
	"github.com/soumyacodes007/social-media-backend/internal/database"
	"github.com/soumyacodes007/social-media-backend/internal/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	var run func(*gorm.DB) error
	switch command {
	case "up":
		run = database.Migrate
	case "down":
		run = database.Rollback
	default:
		fmt.Println("Usage: migrate [up|down]")
		fmt.Println("  up   - Create or update every table")
		fmt.Println("  down - Drop every table (destroys all data)")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	connector := database.NewConnector(database.Options{
		Driver:         cfg.DatabaseDriver,
		DSN:            cfg.DatabaseURL,
		ConnectTimeout: cfg.DBConnectTimeout,
	})
	defer connector.Close()

	logger.Log.Info("Connecting to database...", zap.String("driver", cfg.DatabaseDriver))
	db, err := connector.Get(context.Background())
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := run(db); err != nil {
		logger.Log.Fatal("Migration failed", zap.String("command", command), zap.Error(err))
	}

	logger.Log.Info("Migration completed", zap.String("command", command))
}
