package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/soumyacodes007/social-media-backend/internal/metrics"
	"github.com/soumyacodes007/social-media-backend/internal/models"
	"github.com/soumyacodes007/social-media-backend/internal/util"
)

// UserProfile is a user with follow counts
type UserProfile struct {
	*models.User
	FollowersCount int64 `json:"followersCount"`
	FollowingCount int64 `json:"followingCount"`
}

// ToggleFollow follows a user, or unfollows when already following
// POST /api/users/follow
func (h *Handlers) ToggleFollow(c *gin.Context) {
	var req struct {
		FollowerID  string `json:"followerId"`
		FollowingID string `json:"followingId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "Request body must be a JSON object.")
		return
	}
	if field := util.FirstBlank("followerId", req.FollowerID, "followingId", req.FollowingID); field != "" {
		util.RespondValidationError(c, field, field+" is required")
		return
	}
	follower := strings.TrimSpace(req.FollowerID)
	following := strings.TrimSpace(req.FollowingID)
	if follower == following {
		util.RespondBadRequest(c, "You cannot follow yourself.")
		return
	}

	followed, err := h.repos.Users.ToggleFollow(c.Request.Context(), follower, following)
	if util.HandleDBError(c, err, "User", "updating follow") {
		return
	}

	action := "unfollowed"
	if followed {
		action = "followed"
	}
	metrics.Get().Social.FollowsTotal.WithLabelValues(action).Inc()
	util.RespondOK(c, gin.H{"message": action, "following": followed})
}

// GetFollowers lists the users following :id
// GET /api/users/:id/followers
func (h *Handlers) GetFollowers(c *gin.Context) {
	users, err := h.repos.Users.GetFollowers(c.Request.Context(), c.Param("id"))
	if util.HandleDBError(c, err, "User", "fetching followers") {
		return
	}
	util.RespondOK(c, users)
}

// GetFollowing lists the users :id follows
// GET /api/users/:id/following
func (h *Handlers) GetFollowing(c *gin.Context) {
	users, err := h.repos.Users.GetFollowing(c.Request.Context(), c.Param("id"))
	if util.HandleDBError(c, err, "User", "fetching following") {
		return
	}
	util.RespondOK(c, users)
}

// GetUser returns a user by phone with presence and follow counts.
// A live socket counts as online even before the row is updated.
// GET /api/users/:id
func (h *Handlers) GetUser(c *gin.Context) {
	ctx := c.Request.Context()
	phone := c.Param("id")

	user, err := h.repos.Users.GetByPhone(ctx, phone)
	if util.HandleDBError(c, err, "User", "fetching user") {
		return
	}
	followers, err := h.repos.Users.CountFollowers(ctx, phone)
	if util.HandleDBError(c, err, "User", "counting followers") {
		return
	}
	following, err := h.repos.Users.CountFollowing(ctx, phone)
	if util.HandleDBError(c, err, "User", "counting following") {
		return
	}

	if h.gateway != nil && h.gateway.Presence().IsOnline(phone) {
		user.IsOnline = true
	}
	util.RespondOK(c, UserProfile{User: user, FollowersCount: followers, FollowingCount: following})
}

// UpdateUserStatus records a user's online state, creating the user if needed
// POST /api/user/status
func (h *Handlers) UpdateUserStatus(c *gin.Context) {
	var req struct {
		Phone    string `json:"phone"`
		IsOnline *bool  `json:"isOnline"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "Request body must be a JSON object.")
		return
	}
	if util.Blank(req.Phone) {
		util.RespondValidationError(c, "phone", "phone is required")
		return
	}
	if req.IsOnline == nil {
		util.RespondValidationError(c, "isOnline", "isOnline is required")
		return
	}

	user, err := h.repos.Users.SetPresence(c.Request.Context(), strings.TrimSpace(req.Phone), *req.IsOnline, h.now())
	if util.HandleDBError(c, err, "User", "updating status") {
		return
	}
	util.RespondOK(c, user)
}
