package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/soumyacodes007/social-media-backend/internal/metrics"
	"github.com/soumyacodes007/social-media-backend/internal/models"
	"github.com/soumyacodes007/social-media-backend/internal/storage"
	"github.com/soumyacodes007/social-media-backend/internal/util"
)

// ListStories returns the stories that have not expired yet
// GET /api/stories
func (h *Handlers) ListStories(c *gin.Context) {
	stories, err := h.repos.Stories.ListActive(c.Request.Context(), h.now())
	if util.HandleDBError(c, err, "Story", "fetching stories") {
		return
	}
	util.RespondOK(c, stories)
}

// CreateStory stores an image, video or text story that expires after models.StoryTTL.
// Image and video stories take a multipart "media" file or a mediaUrl.
// POST /api/stories
func (h *Handlers) CreateStory(c *gin.Context) {
	var req struct {
		User     string `form:"user" json:"user"`
		Type     string `form:"type" json:"type"`
		MediaURL string `form:"mediaUrl" json:"mediaUrl"`
		Text     string `form:"text" json:"text"`
	}
	if err := c.ShouldBind(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}
	req.Type = strings.ToLower(strings.TrimSpace(req.Type))
	if util.Blank(req.User) {
		util.RespondValidationError(c, "user", "user is required")
		return
	}
	if !models.IsValidStoryType(req.Type) {
		util.RespondValidationError(c, "type", "type must be one of image, video, text")
		return
	}

	story := &models.Story{
		UserID:    strings.TrimSpace(req.User),
		Type:      req.Type,
		ExpiresAt: h.now().Add(models.StoryTTL),
	}

	if req.Type == models.StoryTypeText {
		story.MediaURL = req.Text
		if util.Blank(story.MediaURL) {
			story.MediaURL = req.MediaURL
		}
		if util.Blank(story.MediaURL) {
			util.RespondValidationError(c, "text", "text is required for text stories")
			return
		}
	} else {
		media, ok := h.uploadFormFile(c, "media", storage.FolderStories, req.Type)
		if !ok {
			return
		}
		switch {
		case media != nil:
			story.MediaURL = media.URL
		case !util.Blank(req.MediaURL):
			story.MediaURL = strings.TrimSpace(req.MediaURL)
		default:
			util.RespondValidationError(c, "media", "a media file is required for "+req.Type+" stories")
			return
		}
	}

	if util.HandleDBError(c, h.repos.Stories.Create(c.Request.Context(), story), "Story", "creating story") {
		return
	}
	metrics.Get().Social.StoriesCreated.WithLabelValues(story.Type).Inc()
	util.RespondCreated(c, story)
}

// DeleteStory removes the story and its stored media
// DELETE /api/stories/:id
func (h *Handlers) DeleteStory(c *gin.Context) {
	story, err := h.repos.Stories.Delete(c.Request.Context(), c.Param("id"))
	if util.HandleDBError(c, err, "Story", "deleting story") {
		return
	}
	if story.Type != models.StoryTypeText {
		h.deleteBlob(c, story.MediaURL)
	}
	util.RespondMessage(c, http.StatusOK, "Story deleted successfully.")
}
