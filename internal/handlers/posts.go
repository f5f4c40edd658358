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

type postRequest struct {
	Username       string `form:"username" json:"username"`
	UserProfileURL string `form:"userProfileUrl" json:"userProfileUrl"`
	ImageURL       string `form:"imageUrl" json:"imageUrl"`
	Caption        string `form:"caption" json:"caption"`
	Name           string `form:"name" json:"name"`
	Bio            string `form:"bio" json:"bio"`
	Interests      string `form:"interests" json:"interests"`
	Website        string `form:"website" json:"website"`
	Music          string `form:"music" json:"music"`
	Phone          string `form:"phone" json:"phone"`
	Password       string `form:"password" json:"password"`
	Email          string `form:"email" json:"email"`
	Gender         string `form:"gender" json:"gender"`
}

// postColumns maps the JSON fields a PATCH may change to their columns.
var postColumns = map[string]string{
	"username":       "username",
	"userProfileUrl": "user_profile_url",
	"imageUrl":       "image_url",
	"caption":        "caption",
	"name":           "name",
	"bio":            "bio",
	"interests":      "interests",
	"website":        "website",
	"music":          "music",
	"phone":          "phone",
	"email":          "email",
	"gender":         "gender",
}

// ListPosts returns every post, newest first
// GET /api/posts
func (h *Handlers) ListPosts(c *gin.Context) {
	posts, err := h.repos.Posts.List(c.Request.Context())
	if util.HandleDBError(c, err, "Post", "fetching posts") {
		return
	}
	util.RespondOK(c, posts)
}

// CreatePost creates a post from a multipart form with an optional image file
// POST /api/posts
func (h *Handlers) CreatePost(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBind(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}
	if util.Blank(req.Username) || util.Blank(req.Caption) {
		util.RespondBadRequest(c, "Username and caption are required.")
		return
	}
	if util.Blank(req.Name) {
		util.RespondValidationError(c, "name", "Name is required.")
		return
	}
	if !util.IsValidPhone(req.Phone) {
		util.RespondValidationError(c, "phone", "Please enter a valid 10-digit phone number.")
		return
	}
	if !util.IsValidEmail(req.Email) {
		util.RespondValidationError(c, "email", "Please enter a valid email address.")
		return
	}

	image, ok := h.uploadFormFile(c, "image", storage.FolderPosts, "image")
	if !ok {
		return
	}

	post := &models.Post{
		Username:       strings.TrimSpace(req.Username),
		UserProfileURL: req.UserProfileURL,
		ImageURL:       req.ImageURL,
		Caption:        req.Caption,
		Name:           strings.TrimSpace(req.Name),
		Bio:            req.Bio,
		Interests:      req.Interests,
		Website:        req.Website,
		Music:          req.Music,
		Phone:          req.Phone,
		Email:          req.Email,
		Gender:         req.Gender,
	}
	if image != nil {
		post.ImageURL = image.URL
	}
	if err := post.SetPassword(req.Password); err != nil {
		util.RespondInternalError(c, "Error creating post", err)
		return
	}

	if util.HandleDBError(c, h.repos.Posts.Create(c.Request.Context(), post), "Post", "creating post") {
		return
	}
	metrics.Get().Social.PostsCreated.Inc()
	util.RespondCreated(c, post)
}

// UpdatePost applies a partial update
// PATCH /api/posts/:id
func (h *Handlers) UpdatePost(c *gin.Context) {
	id := c.Param("id")
	if !models.IsValidID(id) {
		util.RespondBadRequest(c, "Invalid post ID.")
		return
	}

	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		util.RespondBadRequest(c, "Request body must be a JSON object.")
		return
	}

	updates := make(map[string]interface{}, len(body))
	for field, raw := range body {
		value, isString := raw.(string)
		if field == "password" {
			if !isString {
				util.RespondValidationError(c, field, "password must be a string")
				return
			}
			var hashed models.Post
			if err := hashed.SetPassword(value); err != nil {
				util.RespondInternalError(c, "Error updating post", err)
				return
			}
			if hashed.PasswordHash != "" {
				updates["password_hash"] = hashed.PasswordHash
			}
			continue
		}
		column, allowed := postColumns[field]
		if !allowed {
			continue
		}
		if !isString {
			util.RespondValidationError(c, field, field+" must be a string")
			return
		}
		switch field {
		case "phone":
			if !util.IsValidPhone(value) {
				util.RespondValidationError(c, field, "Please enter a valid 10-digit phone number.")
				return
			}
		case "email":
			if !util.IsValidEmail(value) {
				util.RespondValidationError(c, field, "Please enter a valid email address.")
				return
			}
		case "username", "caption", "name":
			if util.Blank(value) {
				util.RespondValidationError(c, field, field+" cannot be empty")
				return
			}
		}
		updates[column] = value
	}

	post, err := h.repos.Posts.Update(c.Request.Context(), id, updates)
	if util.HandleDBError(c, err, "Post", "updating post") {
		return
	}
	util.RespondOK(c, post)
}

// DeletePost removes a post and echoes it back
// DELETE /api/posts/:id
func (h *Handlers) DeletePost(c *gin.Context) {
	id := c.Param("id")
	if !models.IsValidID(id) {
		util.RespondBadRequest(c, "Invalid post ID.")
		return
	}

	post, err := h.repos.Posts.Delete(c.Request.Context(), id)
	if util.HandleDBError(c, err, "Post", "deleting post") {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Post deleted successfully.",
		"deletedPost": post,
	})
}

// GetPostLikes lists the likes of a post
// GET /api/posts/:id/likes
func (h *Handlers) GetPostLikes(c *gin.Context) {
	likes, err := h.repos.Engagement.ListLikes(c.Request.Context(), c.Param("id"))
	if util.HandleDBError(c, err, "Like", "fetching likes") {
		return
	}
	util.RespondOK(c, gin.H{"count": len(likes), "likes": likes})
}

// GetPostShares lists the shares of a post
// GET /api/posts/:id/shares
func (h *Handlers) GetPostShares(c *gin.Context) {
	shares, err := h.repos.Engagement.ListShares(c.Request.Context(), c.Param("id"))
	if util.HandleDBError(c, err, "Share", "fetching shares") {
		return
	}
	util.RespondOK(c, gin.H{"count": len(shares), "shares": shares})
}

// GetPostComments lists the comments of a post
// GET /api/posts/:id/comments
func (h *Handlers) GetPostComments(c *gin.Context) {
	comments, err := h.repos.Engagement.ListComments(c.Request.Context(), c.Param("id"))
	if util.HandleDBError(c, err, "Comment", "fetching comments") {
		return
	}
	util.RespondOK(c, comments)
}
