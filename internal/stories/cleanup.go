// Package stories runs the background purge of expired notes and stories.
package stories

import (
	"context"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/soumyacodes007/social-media-backend/internal/logger"
	"github.com/soumyacodes007/social-media-backend/internal/metrics"
	"github.com/soumyacodes007/social-media-backend/internal/models"
	"github.com/soumyacodes007/social-media-backend/internal/repository"
	"go.uber.org/zap"
)

// batchSize bounds how many expired stories one pass loads
const batchSize = 200

// FileDeleter deletes a stored blob by key or URL
type FileDeleter interface {
	Delete(ctx context.Context, keyOrURL string) error
}

// CleanupService periodically removes expired notes and stories along with
// the media files of image and video stories.
type CleanupService struct {
	notes       repository.NoteRepository
	stories     repository.StoryRepository
	fileDeleter FileDeleter
	interval    time.Duration
	now         func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Result summarizes one cleanup pass
type Result struct {
	NotesDeleted   int64
	StoriesDeleted int64
	FilesDeleted   int
	FileErrors     int
}

// NewCleanupService creates a new cleanup service. fileDeleter may be nil.
func NewCleanupService(notes repository.NoteRepository, stories repository.StoryRepository, fileDeleter FileDeleter, interval time.Duration) *CleanupService {
	ctx, cancel := context.WithCancel(context.Background())
	if interval <= 0 {
		interval = time.Hour
	}
	return &CleanupService{
		notes:       notes,
		stories:     stories,
		fileDeleter: fileDeleter,
		interval:    interval,
		now:         func() time.Time { return time.Now().UTC() },
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start begins the periodic cleanup process
func (s *CleanupService) Start() {
	logger.Log.Info("Starting expiry cleanup service", zap.Duration("interval", s.interval))
	s.wg.Add(1)
	go s.run()
}

// Stop stops the cleanup service and waits for an in-flight pass to finish
func (s *CleanupService) Stop() {
	s.cancel()
	s.wg.Wait()
	logger.Log.Info("Expiry cleanup service stopped")
}

func (s *CleanupService) run() {
	defer s.wg.Done()

	// Run immediately on startup
	s.RunOnce(s.ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RunOnce(s.ctx)
		case <-s.ctx.Done():
			return
		}
	}
}

// RunOnce performs a single cleanup pass. Errors are logged and the pass
// continues with what it can.
func (s *CleanupService) RunOnce(ctx context.Context) Result {
	start := time.Now()
	now := s.now()
	var result Result

	notes, err := s.notes.DeleteExpired(ctx, now)
	if err != nil {
		logger.WarnWithFields("Failed to purge expired notes", err)
	} else {
		result.NotesDeleted = notes
	}

	for ctx.Err() == nil {
		expired, err := s.stories.FindExpired(ctx, now, batchSize)
		if err != nil {
			logger.WarnWithFields("Failed to query expired stories", err)
			break
		}
		if len(expired) == 0 {
			break
		}

		for _, story := range expired {
			if !hasMediaFile(story) || s.fileDeleter == nil {
				continue
			}
			if err := s.fileDeleter.Delete(ctx, story.MediaURL); err != nil {
				// the row is deleted even when its file is not
				logger.WarnWithFields("Failed to delete story media", err, zap.String("story_id", story.ID))
				result.FileErrors++
				continue
			}
			result.FilesDeleted++
		}

		deleted, err := s.stories.DeleteByIDs(ctx, lo.Map(expired, func(st models.Story, _ int) string { return st.ID }))
		if err != nil {
			logger.WarnWithFields("Failed to delete expired stories", err)
			break
		}
		result.StoriesDeleted += deleted
		if len(expired) < batchSize {
			break
		}
	}

	social := metrics.Get().Social
	social.ExpiredPurged.WithLabelValues("note").Add(float64(result.NotesDeleted))
	social.ExpiredPurged.WithLabelValues("story").Add(float64(result.StoriesDeleted))

	if result.NotesDeleted > 0 || result.StoriesDeleted > 0 {
		logger.Log.Info("Expiry cleanup completed",
			zap.Int64("notes", result.NotesDeleted),
			zap.Int64("stories", result.StoriesDeleted),
			zap.Int("files", result.FilesDeleted),
			zap.Int("file_errors", result.FileErrors),
			zap.Duration("took", time.Since(start)))
	}
	return result
}

func hasMediaFile(story models.Story) bool {
	return story.MediaURL != "" && (story.Type == models.StoryTypeImage || story.Type == models.StoryTypeVideo)
}
