package stories

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/soumyacodes007/social-media-backend/internal/database/dbtest"
	"github.com/soumyacodes007/social-media-backend/internal/logger"
	"github.com/soumyacodes007/social-media-backend/internal/models"
	"github.com/soumyacodes007/social-media-backend/internal/repository"
	"github.com/soumyacodes007/social-media-backend/internal/storage"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	_ = logger.Initialize("error", "")
	os.Exit(m.Run())
}

// CleanupTestSuite contains cleanup service tests
type CleanupTestSuite struct {
	suite.Suite
	db      *gorm.DB
	repos   *repository.Repositories
	blobs   *storage.MemoryStore
	service *CleanupService
	now     time.Time
}

func (suite *CleanupTestSuite) SetupTest() {
	provider, db := dbtest.Provider(suite.T())
	suite.db = db
	suite.repos = repository.New(provider)
	suite.blobs = storage.NewMemoryStore("https://cdn.test")
	suite.now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	suite.service = NewCleanupService(suite.repos.Notes, suite.repos.Stories, suite.blobs, time.Hour)
	suite.service.now = func() time.Time { return suite.now }
}

func TestCleanupSuite(t *testing.T) {
	suite.Run(t, new(CleanupTestSuite))
}

func (suite *CleanupTestSuite) createStory(storyType, media string, expiresAt time.Time) *models.Story {
	story := &models.Story{UserID: "1234567890", MediaURL: media, Type: storyType, ExpiresAt: expiresAt}
	suite.Require().NoError(suite.repos.Stories.Create(context.Background(), story))
	return story
}

func (suite *CleanupTestSuite) upload(name string) string {
	result, err := suite.blobs.Upload(context.Background(), []byte("\x89PNG\r\n\x1a\nfake"), storage.FolderStories, name)
	suite.Require().NoError(err)
	return result.URL
}

func (suite *CleanupTestSuite) TestDeletesExpiredStoriesAndTheirFiles() {
	ctx := context.Background()
	expiredURL := suite.upload("old.png")
	activeURL := suite.upload("new.png")

	expired := suite.createStory(models.StoryTypeImage, expiredURL, suite.now.Add(-time.Minute))
	suite.createStory(models.StoryTypeText, "just words", suite.now.Add(-time.Hour))
	active := suite.createStory(models.StoryTypeImage, activeURL, suite.now.Add(time.Hour))

	result := suite.service.RunOnce(ctx)

	suite.Equal(int64(2), result.StoriesDeleted)
	suite.Equal(1, result.FilesDeleted)
	suite.Zero(result.FileErrors)

	remaining, err := suite.repos.Stories.ListActive(ctx, suite.now.Add(-48*time.Hour))
	suite.Require().NoError(err)
	suite.Require().Len(remaining, 1)
	suite.Equal(active.ID, remaining[0].ID)

	_, ok := suite.blobs.Get(expiredURL)
	suite.False(ok)
	_, ok = suite.blobs.Get(activeURL)
	suite.True(ok)
	suite.Len(suite.blobs.Deleted(), 1)
	suite.NotEqual(expired.ID, remaining[0].ID)
}

func (suite *CleanupTestSuite) TestFileFailureStillDeletesRow() {
	ctx := context.Background()
	suite.createStory(models.StoryTypeVideo, "https://cdn.test/stories/x.mp4", suite.now.Add(-time.Minute))
	suite.blobs.Err = errors.New("s3 down")

	result := suite.service.RunOnce(ctx)

	suite.Equal(int64(1), result.StoriesDeleted)
	suite.Equal(1, result.FileErrors)

	var count int64
	suite.Require().NoError(suite.db.Model(&models.Story{}).Count(&count).Error)
	suite.Zero(count)
}

func (suite *CleanupTestSuite) TestPurgesExpiredNotes() {
	ctx := context.Background()
	suite.Require().NoError(suite.repos.Notes.Create(ctx, &models.Note{Name: "a", Text: "old", ExpiresAt: suite.now.Add(-time.Second)}))
	suite.Require().NoError(suite.repos.Notes.Create(ctx, &models.Note{Name: "b", Text: "new", ExpiresAt: suite.now.Add(time.Hour)}))

	result := suite.service.RunOnce(ctx)
	suite.Equal(int64(1), result.NotesDeleted)

	var count int64
	suite.Require().NoError(suite.db.Model(&models.Note{}).Count(&count).Error)
	suite.Equal(int64(1), count)
}

func (suite *CleanupTestSuite) TestNothingToDo() {
	result := suite.service.RunOnce(context.Background())
	suite.Equal(Result{}, result)
}

func (suite *CleanupTestSuite) TestStartStop() {
	suite.createStory(models.StoryTypeText, "bye", suite.now.Add(-time.Minute))

	suite.service.Start()
	suite.Eventually(func() bool {
		var count int64
		suite.db.Model(&models.Story{}).Count(&count)
		return count == 0
	}, 2*time.Second, 20*time.Millisecond)
	suite.service.Stop()
}
