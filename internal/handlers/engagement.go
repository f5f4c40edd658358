package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/soumyacodes007/social-media-backend/internal/metrics"
	"github.com/soumyacodes007/social-media-backend/internal/models"
	"github.com/soumyacodes007/social-media-backend/internal/util"
)

type postActionRequest struct {
	PostID string `json:"postId"`
	UserID string `json:"userId"`
}

// bindPostAction reads {postId, userId}. Returns false if a response was sent.
func bindPostAction(c *gin.Context) (postActionRequest, bool) {
	var req postActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "Request body must be a JSON object.")
		return req, false
	}
	if field := util.FirstBlank("postId", req.PostID, "userId", req.UserID); field != "" {
		util.RespondValidationError(c, field, field+" is required")
		return req, false
	}
	req.PostID = strings.TrimSpace(req.PostID)
	req.UserID = strings.TrimSpace(req.UserID)
	return req, true
}

// ListComments lists comments, optionally for one post
// GET /api/comments?postId=
func (h *Handlers) ListComments(c *gin.Context) {
	comments, err := h.repos.Engagement.ListComments(c.Request.Context(), c.Query("postId"))
	if util.HandleDBError(c, err, "Comment", "fetching comments") {
		return
	}
	util.RespondOK(c, comments)
}

// CreateComment adds a comment to a post
// POST /api/comments
func (h *Handlers) CreateComment(c *gin.Context) {
	var req struct {
		PostID  string `json:"postId"`
		UserID  string `json:"userId"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "Request body must be a JSON object.")
		return
	}
	if field := util.FirstBlank("postId", req.PostID, "userId", req.UserID, "comment", req.Comment); field != "" {
		util.RespondValidationError(c, field, field+" is required")
		return
	}

	comment := &models.Comment{
		PostID:  strings.TrimSpace(req.PostID),
		UserID:  strings.TrimSpace(req.UserID),
		Comment: req.Comment,
	}
	if util.HandleDBError(c, h.repos.Engagement.CreateComment(c.Request.Context(), comment), "Comment", "creating comment") {
		return
	}
	metrics.Get().Social.CommentsTotal.Inc()
	util.RespondCreated(c, comment)
}

// ToggleLike likes a post, or unlikes it when the like already exists
// POST /api/like
func (h *Handlers) ToggleLike(c *gin.Context) {
	req, ok := bindPostAction(c)
	if !ok {
		return
	}

	like, liked, err := h.repos.Engagement.ToggleLike(c.Request.Context(), req.PostID, req.UserID)
	if util.HandleDBError(c, err, "Like", "toggling like") {
		return
	}
	if !liked {
		metrics.Get().Social.LikesTotal.WithLabelValues("unlike").Inc()
		util.RespondMessage(c, http.StatusOK, "unliked")
		return
	}
	metrics.Get().Social.LikesTotal.WithLabelValues("like").Inc()
	util.RespondCreated(c, like)
}

// SharePost records a share
// POST /api/share
func (h *Handlers) SharePost(c *gin.Context) {
	req, ok := bindPostAction(c)
	if !ok {
		return
	}

	share := &models.Share{PostID: req.PostID, UserID: req.UserID}
	if util.HandleDBError(c, h.repos.Engagement.CreateShare(c.Request.Context(), share), "Share", "sharing post") {
		return
	}
	metrics.Get().Social.SharesTotal.Inc()
	util.RespondCreated(c, share)
}
