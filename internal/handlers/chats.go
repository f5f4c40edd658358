package handlers

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/soumyacodes007/social-media-backend/internal/chat"
	"github.com/soumyacodes007/social-media-backend/internal/logger"
	"github.com/soumyacodes007/social-media-backend/internal/util"
	"github.com/soumyacodes007/social-media-backend/internal/websocket"
	"go.uber.org/zap"
)

// BulkDeleteConfirmation must be sent as confirm to DELETE /api/chats/delete-all
const BulkDeleteConfirmation = "DELETE_ALL_CHATS"

// handleChatError maps router errors to responses. Returns true if a response was sent.
func handleChatError(c *gin.Context, err error, action string) bool {
	switch {
	case err == nil:
		return false
	case stderrors.Is(err, chat.ErrEmptyIdentity), stderrors.Is(err, chat.ErrEmptyText):
		util.RespondBadRequest(c, err.Error())
	case stderrors.Is(err, chat.ErrChatNotFound):
		util.RespondNotFound(c, "Chat")
	case stderrors.Is(err, chat.ErrMessageNotFound):
		util.RespondNotFound(c, "Message")
	default:
		util.HandleDBError(c, err, "Chat", action)
	}
	return true
}

// GetChatHistory returns the ordered messages between two users
// GET /api/chats/:user1/:user2
func (h *Handlers) GetChatHistory(c *gin.Context) {
	user1, user2 := c.Param("user1"), c.Param("user2")
	messages, err := h.router.LoadHistory(c.Request.Context(), user1, user2)
	if handleChatError(c, err, "fetching chat") {
		return
	}
	util.RespondOK(c, gin.H{
		"roomId":   chat.RoomIDFor(user1, user2),
		"messages": messages,
	})
}

// SendChatMessage appends a message and pushes it to the room's open sockets
// POST /api/chats
func (h *Handlers) SendChatMessage(c *gin.Context) {
	var req websocket.SendMessagePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "Request body must be a JSON object.")
		return
	}
	if field := util.FirstBlank("sender", req.Sender, "receiver", req.Receiver, "text", req.Text); field != "" {
		util.RespondValidationError(c, field, field+" is required")
		return
	}

	sender := strings.TrimSpace(req.Sender)
	receiver := strings.TrimSpace(req.Receiver)
	room, err := h.router.AppendMessage(c.Request.Context(), sender, receiver, sender, req.Text)
	if handleChatError(c, err, "sending message") {
		return
	}

	if h.gateway != nil {
		delivered := h.gateway.DeliverMessage(room)
		logger.Log.Debug("Delivered chat message over HTTP",
			logger.WithRoomID(room.ID),
			zap.Int("connections", delivered),
		)
	}
	util.RespondCreated(c, websocket.ReceiveMessagePayload{
		RoomID:      room.ID,
		ChatMessage: *room.Message,
	})
}

// ListUserChats lists the chats an identity takes part in
// GET /api/chats/user/:identity
func (h *Handlers) ListUserChats(c *gin.Context) {
	chats, err := h.router.ListChats(c.Request.Context(), c.Param("identity"))
	if handleChatError(c, err, "fetching chats") {
		return
	}
	util.RespondOK(c, chats)
}

// DeleteChat removes the chat of a pair in either order
// DELETE /api/chats/:user1/:user2
func (h *Handlers) DeleteChat(c *gin.Context) {
	err := h.router.DeletePair(c.Request.Context(), c.Param("user1"), c.Param("user2"))
	if handleChatError(c, err, "deleting chat") {
		return
	}
	util.RespondMessage(c, http.StatusOK, "Chat deleted successfully.")
}

// DeleteChatMessageAt removes the message at a position of the history
// DELETE /api/chats/:user1/:user2/:index
func (h *Handlers) DeleteChatMessageAt(c *gin.Context) {
	index, err := util.ParseIntParam(c.Param("index"))
	if err != nil || index < 0 {
		util.RespondValidationError(c, "index", "index must be a non-negative integer")
		return
	}

	msg, err := h.router.DeleteMessageAt(c.Request.Context(), c.Param("user1"), c.Param("user2"), index)
	if handleChatError(c, err, "deleting message") {
		return
	}
	util.RespondOK(c, gin.H{"message": "Message deleted successfully.", "deletedMessage": msg})
}

// DeleteChatMessage removes one message by id
// DELETE /api/chats/:user1/:user2/messages/:messageId
func (h *Handlers) DeleteChatMessage(c *gin.Context) {
	msg, err := h.router.DeleteMessage(c.Request.Context(), c.Param("user1"), c.Param("user2"), c.Param("messageId"))
	if handleChatError(c, err, "deleting message") {
		return
	}
	util.RespondOK(c, gin.H{"message": "Message deleted successfully.", "deletedMessage": msg})
}

// DeleteAllChats clears every chat. It needs the bulk delete option and
// confirm=DELETE_ALL_CHATS in the query or body.
// DELETE /api/chats/delete-all
func (h *Handlers) DeleteAllChats(c *gin.Context) {
	if !h.opts.EnableBulkDelete {
		util.RespondForbidden(c, "Bulk chat deletion is disabled.")
		return
	}

	confirm := c.Query("confirm")
	if confirm == "" && c.Request.ContentLength > 0 {
		var body struct {
			Confirm string `json:"confirm"`
		}
		if err := c.ShouldBindJSON(&body); err == nil {
			confirm = body.Confirm
		}
	}
	if confirm != BulkDeleteConfirmation {
		util.RespondValidationError(c, "confirm", "confirm must be "+BulkDeleteConfirmation)
		return
	}

	deleted, err := h.router.DeleteAll(c.Request.Context())
	if handleChatError(c, err, "deleting chats") {
		return
	}
	util.RespondOK(c, gin.H{"message": "All chats deleted.", "deleted": deleted})
}
