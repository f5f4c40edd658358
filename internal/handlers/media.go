package handlers

import (
	stderrors "errors"

	"github.com/gin-gonic/gin"
	"github.com/soumyacodes007/social-media-backend/internal/errors"
	"github.com/soumyacodes007/social-media-backend/internal/logger"
	"github.com/soumyacodes007/social-media-backend/internal/storage"
	"github.com/soumyacodes007/social-media-backend/internal/util"
	"go.uber.org/zap"
)

// uploadFormFile stores the multipart file named field under folder.
// kind, when set, is the required top-level media type.
// A nil result with ok=true means the request carried no such file;
// ok=false means an error response was already sent.
func (h *Handlers) uploadFormFile(c *gin.Context, field, folder, kind string) (*storage.UploadResult, bool) {
	header := util.OptionalFormFile(c, field)
	if header == nil {
		return nil, true
	}

	data, err := util.ReadUploadedFile(header, util.MaxUploadSize)
	if err != nil {
		util.RespondValidationError(c, field, err.Error())
		return nil, false
	}
	if kind != "" && len(data) > 0 && !storage.IsMediaType(data, kind) {
		util.RespondValidationError(c, field, "File must be of type "+kind+".")
		return nil, false
	}

	result, err := h.blobs.Upload(c.Request.Context(), data, folder, header.Filename)
	switch {
	case err == nil:
		return result, true
	case stderrors.Is(err, storage.ErrEmptyFile):
		util.RespondValidationError(c, field, "File is empty.")
	case stderrors.Is(err, storage.ErrStoreUnavailable):
		util.RespondServiceUnavailable(c, "Media storage is temporarily unavailable.")
	default:
		util.RespondWithAPIError(c, errors.StorageError("Error uploading file", err))
	}
	return nil, false
}

// deleteBlob removes a stored file. Failures are logged only.
func (h *Handlers) deleteBlob(c *gin.Context, url string) {
	if url == "" {
		return
	}
	if err := h.blobs.Delete(c.Request.Context(), url); err != nil {
		logger.WarnWithFields("Failed to delete stored file", err, zap.String("url", url))
	}
}
