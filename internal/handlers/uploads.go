package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/soumyacodes007/social-media-backend/internal/models"
	"github.com/soumyacodes007/social-media-backend/internal/storage"
	"github.com/soumyacodes007/social-media-backend/internal/util"
)

// ListUploads returns every media bundle, newest first
// GET /api/uploads
func (h *Handlers) ListUploads(c *gin.Context) {
	uploads, err := h.repos.Uploads.List(c.Request.Context())
	if util.HandleDBError(c, err, "Upload", "fetching uploads") {
		return
	}
	util.RespondOK(c, uploads)
}

// CreateUpload stores any mix of image, video and audio files with text fields
// POST /api/uploads
func (h *Handlers) CreateUpload(c *gin.Context) {
	upload := &models.Upload{
		TextContent: c.PostForm("textContent"),
		Caption:     c.PostForm("caption"),
		Music:       c.PostForm("music"),
	}

	for _, media := range []struct {
		field string
		url   *string
	}{
		{"image", &upload.ImageURL},
		{"video", &upload.VideoURL},
		{"audio", &upload.AudioURL},
	} {
		result, ok := h.uploadFormFile(c, media.field, storage.FolderUploads, media.field)
		if !ok {
			return
		}
		if result != nil {
			*media.url = result.URL
		}
	}

	if upload.ImageURL == "" && upload.VideoURL == "" && upload.AudioURL == "" &&
		util.Blank(upload.TextContent) && util.Blank(upload.Caption) {
		util.RespondBadRequest(c, "An upload needs at least one file, textContent or caption.")
		return
	}

	if util.HandleDBError(c, h.repos.Uploads.Create(c.Request.Context(), upload), "Upload", "saving upload") {
		return
	}
	util.RespondCreated(c, upload)
}

// GetUpload returns one media bundle
// GET /api/uploads/:id
func (h *Handlers) GetUpload(c *gin.Context) {
	upload, err := h.repos.Uploads.Get(c.Request.Context(), c.Param("id"))
	if util.HandleDBError(c, err, "Upload", "fetching upload") {
		return
	}
	util.RespondOK(c, upload)
}

// DeleteUpload removes a media bundle and its files
// DELETE /api/uploads/:id
func (h *Handlers) DeleteUpload(c *gin.Context) {
	upload, err := h.repos.Uploads.Delete(c.Request.Context(), c.Param("id"))
	if util.HandleDBError(c, err, "Upload", "deleting upload") {
		return
	}
	for _, url := range []string{upload.ImageURL, upload.VideoURL, upload.AudioURL} {
		h.deleteBlob(c, url)
	}
	util.RespondMessage(c, http.StatusOK, "Upload deleted successfully.")
}

// UploadProfileImage stores an image and sets it as the user's profile image
// POST /api/uploads/profileimage
func (h *Handlers) UploadProfileImage(c *gin.Context) {
	phone := strings.TrimSpace(c.PostForm("phone"))
	if phone == "" {
		util.RespondValidationError(c, "phone", "phone is required")
		return
	}
	if util.OptionalFormFile(c, "image") == nil {
		util.RespondValidationError(c, "image", "image file is required")
		return
	}

	image, ok := h.uploadFormFile(c, "image", storage.FolderProfiles, "image")
	if !ok {
		return
	}

	user, err := h.repos.Users.SetProfileImage(c.Request.Context(), phone, image.URL)
	if util.HandleDBError(c, err, "User", "updating profile image") {
		return
	}
	util.RespondOK(c, gin.H{"message": "Profile image updated.", "user": user})
}
