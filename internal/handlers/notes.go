package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/soumyacodes007/social-media-backend/internal/metrics"
	"github.com/soumyacodes007/social-media-backend/internal/models"
	"github.com/soumyacodes007/social-media-backend/internal/util"
)

// ListNotes returns the notes that have not expired yet
// GET /api/notes
func (h *Handlers) ListNotes(c *gin.Context) {
	notes, err := h.repos.Notes.ListActive(c.Request.Context(), h.now())
	if util.HandleDBError(c, err, "Note", "fetching notes") {
		return
	}
	util.RespondOK(c, notes)
}

// CreateNote stores a note that expires after models.NoteTTL
// POST /api/notes
func (h *Handlers) CreateNote(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "Request body must be a JSON object.")
		return
	}
	if util.Blank(req.Name) || util.Blank(req.Text) {
		util.RespondBadRequest(c, "Name and text are required.")
		return
	}

	note := &models.Note{
		Name:      strings.TrimSpace(req.Name),
		Text:      req.Text,
		ExpiresAt: h.now().Add(models.NoteTTL),
	}
	if util.HandleDBError(c, h.repos.Notes.Create(c.Request.Context(), note), "Note", "creating note") {
		return
	}
	metrics.Get().Social.NotesCreated.Inc()
	util.RespondCreated(c, note)
}

// DeleteNote removes one note
// DELETE /api/notes/:id
func (h *Handlers) DeleteNote(c *gin.Context) {
	_, err := h.repos.Notes.Delete(c.Request.Context(), c.Param("id"))
	if util.HandleDBError(c, err, "Note", "deleting note") {
		return
	}
	util.RespondMessage(c, http.StatusOK, "Note deleted successfully.")
}
