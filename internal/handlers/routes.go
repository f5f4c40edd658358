package handlers

import "github.com/gin-gonic/gin"

// Register mounts every REST endpoint on api, which is the /api group.
func (h *Handlers) Register(api *gin.RouterGroup) {
	posts := api.Group("/posts")
	{
		posts.GET("", h.ListPosts)
		posts.POST("", h.CreatePost)
		posts.PATCH("/:id", h.UpdatePost)
		posts.DELETE("/:id", h.DeletePost)
		posts.GET("/:id/likes", h.GetPostLikes)
		posts.GET("/:id/shares", h.GetPostShares)
		posts.GET("/:id/comments", h.GetPostComments)
	}

	notes := api.Group("/notes")
	{
		notes.GET("", h.ListNotes)
		notes.POST("", h.CreateNote)
		notes.DELETE("/:id", h.DeleteNote)
	}

	chats := api.Group("/chats")
	{
		chats.POST("", h.SendChatMessage)
		chats.GET("/user/:identity", h.ListUserChats)
		chats.DELETE("/delete-all", h.DeleteAllChats)
		chats.GET("/:user1/:user2", h.GetChatHistory)
		chats.DELETE("/:user1/:user2", h.DeleteChat)
		chats.DELETE("/:user1/:user2/:index", h.DeleteChatMessageAt)
		chats.DELETE("/:user1/:user2/messages/:messageId", h.DeleteChatMessage)
	}

	stories := api.Group("/stories")
	{
		stories.GET("", h.ListStories)
		stories.POST("", h.CreateStory)
		stories.DELETE("/:id", h.DeleteStory)
	}

	uploads := api.Group("/uploads")
	{
		uploads.GET("", h.ListUploads)
		uploads.POST("", h.CreateUpload)
		uploads.POST("/profileimage", h.UploadProfileImage)
		uploads.GET("/:id", h.GetUpload)
		uploads.DELETE("/:id", h.DeleteUpload)
	}

	api.GET("/comments", h.ListComments)
	api.POST("/comments", h.CreateComment)
	api.POST("/like", h.ToggleLike)
	api.POST("/share", h.SharePost)

	users := api.Group("/users")
	{
		users.POST("/follow", h.ToggleFollow)
		users.GET("/:id", h.GetUser)
		users.GET("/:id/followers", h.GetFollowers)
		users.GET("/:id/following", h.GetFollowing)
	}
	api.POST("/user/status", h.UpdateUserStatus)
}

// RegisterProbes mounts / and /health on the engine root.
func (h *Handlers) RegisterProbes(r gin.IRoutes) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
}
