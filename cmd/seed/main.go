package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/soumyacodes007/social-media-backend/internal/config"
	"github.com/soumyacodes007/social-media-backend/internal/database"
	"github.com/soumyacodes007/social-media-backend/internal/logger"
	"github.com/soumyacodes007/social-media-backend/internal/seed"
	"go.uber.org/zap"
)

func main() {
	command := "dev"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	var run func(*seed.Seeder, context.Context) error
	switch command {
	case "dev":
		run = (*seed.Seeder).SeedDev
	case "test":
		run = (*seed.Seeder).SeedTest
	case "clean":
		run = (*seed.Seeder).Clean
	default:
		fmt.Println("Usage: seed [dev|test|clean]")
		fmt.Println("  dev   - Seed development database with realistic data")
		fmt.Println("  test  - Seed the fixed test accounts with minimal data")
		fmt.Println("  clean - Remove all rows from every table (use with caution)")
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

	ctx := context.Background()
	db, err := connector.Get(ctx)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("Failed to run migrations", zap.Error(err))
	}

	logger.Log.Info("Seeding...", zap.String("command", command))
	if err := run(seed.NewSeeder(db), ctx); err != nil {
		logger.Log.Fatal("Seeding failed", zap.String("command", command), zap.Error(err))
	}
	logger.Log.Info("Seeding completed", zap.String("command", command))
}
