package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/soumyacodes007/social-media-backend/internal/models"
	"github.com/soumyacodes007/social-media-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// STORIES
// =============================================================================

func (suite *HandlersTestSuite) TestCreateTextStory() {
	t := suite.T()

	w := suite.request(http.MethodPost, "/api/stories", map[string]string{
		"user": "5551234567", "type": "text", "text": "good morning",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	story := decodeBody[models.Story](t, w)
	assert.Equal(t, "good morning", story.MediaURL)
	assert.Equal(t, models.StoryTypeText, story.Type)
	assert.True(t, story.ExpiresAt.Equal(suite.now.Add(24*time.Hour)))
	assert.Equal(t, 0, suite.blobs.Len())
}

func (suite *HandlersTestSuite) TestCreateImageStoryUploadsMedia() {
	t := suite.T()

	w := suite.multipart("/api/stories",
		map[string]string{"user": "5551234567", "type": "image"},
		map[string]testFile{"media": {name: "story.png", data: pngBytes}},
	)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	story := decodeBody[models.Story](t, w)
	assert.True(t, strings.HasPrefix(story.MediaURL, "memory://blobs/stories/"), story.MediaURL)
	_, ok := suite.blobs.Get(story.MediaURL)
	assert.True(t, ok)
}

func (suite *HandlersTestSuite) TestCreateStoryValidation() {
	t := suite.T()

	w := suite.request(http.MethodPost, "/api/stories", map[string]string{"user": "1", "type": "gif", "text": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "type", decodeBody[map[string]interface{}](t, w)["field"])

	w = suite.request(http.MethodPost, "/api/stories", map[string]string{"type": "text", "text": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPost, "/api/stories", map[string]string{"user": "1", "type": "video"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "media", decodeBody[map[string]interface{}](t, w)["field"])

	w = suite.multipart("/api/stories",
		map[string]string{"user": "1", "type": "video"},
		map[string]testFile{"media": {name: "clip.mp4", data: pngBytes}},
	)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestStoriesExpire() {
	t := suite.T()
	created := suite.now

	w := suite.request(http.MethodPost, "/api/stories", map[string]string{"user": "1", "type": "text", "text": "hi"})
	require.Equal(t, http.StatusCreated, w.Code)

	suite.now = created.Add(23 * time.Hour)
	assert.Len(t, decodeBody[[]models.Story](t, suite.request(http.MethodGet, "/api/stories", nil)), 1)

	suite.now = created.Add(25 * time.Hour)
	assert.Empty(t, decodeBody[[]models.Story](t, suite.request(http.MethodGet, "/api/stories", nil)))
}

func (suite *HandlersTestSuite) TestDeleteStoryRemovesMedia() {
	t := suite.T()

	w := suite.multipart("/api/stories",
		map[string]string{"user": "1", "type": "image"},
		map[string]testFile{"media": {name: "story.png", data: pngBytes}},
	)
	story := decodeBody[models.Story](t, w)

	w = suite.request(http.MethodDelete, "/api/stories/"+story.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, suite.blobs.Len())
	assert.Len(t, suite.blobs.Deleted(), 1)

	w = suite.request(http.MethodDelete, "/api/stories/"+story.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestBlobStoreOutageAnswers503() {
	suite.blobs.Err = storage.ErrStoreUnavailable

	w := suite.multipart("/api/stories",
		map[string]string{"user": "1", "type": "image"},
		map[string]testFile{"media": {name: "story.png", data: pngBytes}},
	)
	assert.Equal(suite.T(), http.StatusServiceUnavailable, w.Code)
}

func (suite *HandlersTestSuite) TestBlobStoreFailureAnswers500() {
	suite.blobs.Err = errors.New("bucket gone")

	w := suite.multipart("/api/stories",
		map[string]string{"user": "1", "type": "image"},
		map[string]testFile{"media": {name: "story.png", data: pngBytes}},
	)
	assert.Equal(suite.T(), http.StatusInternalServerError, w.Code)
	body := decodeBody[map[string]interface{}](suite.T(), w)
	assert.Equal(suite.T(), "STORAGE_ERROR", body["code"])
	assert.Equal(suite.T(), "bucket gone", body["error"])
}

// =============================================================================
// UPLOADS
// =============================================================================

func (suite *HandlersTestSuite) TestUploadLifecycle() {
	t := suite.T()

	w := suite.multipart("/api/uploads",
		map[string]string{"caption": "studio day", "music": "lofi"},
		map[string]testFile{"image": {name: "cover.png", data: pngBytes}},
	)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	upload := decodeBody[models.Upload](t, w)
	assert.Equal(t, "studio day", upload.Caption)
	assert.True(t, strings.HasPrefix(upload.ImageURL, "memory://blobs/uploads/"))
	assert.Empty(t, upload.VideoURL)

	w = suite.request(http.MethodGet, "/api/uploads/"+upload.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, upload.ImageURL, decodeBody[models.Upload](t, w).ImageURL)

	assert.Len(t, decodeBody[[]models.Upload](t, suite.request(http.MethodGet, "/api/uploads", nil)), 1)

	w = suite.request(http.MethodDelete, "/api/uploads/"+upload.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, suite.blobs.Len())

	w = suite.request(http.MethodGet, "/api/uploads/"+upload.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestEmptyUploadIsRejected() {
	w := suite.multipart("/api/uploads", map[string]string{"music": "lofi"}, nil)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

type profileImageResponse struct {
	User models.User `json:"user"`
}

func (suite *HandlersTestSuite) TestUploadProfileImage() {
	t := suite.T()

	w := suite.multipart("/api/uploads/profileimage", map[string]string{"phone": "5551234567"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = suite.multipart("/api/uploads/profileimage",
		map[string]string{"phone": "5551234567"},
		map[string]testFile{"image": {name: "me.png", data: pngBytes}},
	)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody[profileImageResponse](t, w)
	assert.True(t, strings.HasPrefix(body.User.ProfileImage, "memory://blobs/profile_images/"))

	w = suite.request(http.MethodGet, "/api/users/5551234567", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, body.User.ProfileImage, decodeBody[models.User](t, w).ProfileImage)
}
