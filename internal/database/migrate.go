package database

import (
	"fmt"

	"github.com/soumyacodes007/social-media-backend/internal/logger"
	"github.com/soumyacodes007/social-media-backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate creates or updates every table and the secondary indexes.
func Migrate(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	logger.Log.Info("Database migrations completed")
	return nil
}

// Rollback drops every table. Used by cmd/migrate down.
func Rollback(db *gorm.DB) error {
	all := models.All()
	// reverse so dependents go first
	for i := len(all) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(all[i]); err != nil {
			return fmt.Errorf("failed to drop %T: %w", all[i], err)
		}
	}
	return nil
}

var indexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_posts_created ON posts (created_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_notes_expires_created ON notes (expires_at, created_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_stories_expires_created ON stories (expires_at, created_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_comments_post_created ON comments (post_id, created_at)",
	"CREATE INDEX IF NOT EXISTS idx_shares_post_shared ON shares (post_id, shared_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_chats_updated ON chats (updated_at DESC)",
}

func createIndexes(db *gorm.DB) error {
	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			logger.Log.Warn("Failed to create index", zap.String("statement", stmt), zap.Error(err))
		}
	}
	return nil
}
