// Package chat maps participant pairs to rooms and owns their message history.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/soumyacodes007/social-media-backend/internal/logger"
	"github.com/soumyacodes007/social-media-backend/internal/metrics"
	"github.com/soumyacodes007/social-media-backend/internal/models"
	"github.com/soumyacodes007/social-media-backend/internal/repository"
	"github.com/soumyacodes007/social-media-backend/internal/telemetry"
	"go.uber.org/zap"
)

// RoomSeparator joins the two sorted identities of a room id.
const RoomSeparator = "_"

var (
	ErrChatNotFound    = errors.New("chat not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrEmptyIdentity   = errors.New("sender and receiver are required")
	ErrEmptyText       = errors.New("message text is required")
)

// RoomIDFor returns the room shared by a and b. It does not depend on argument order.
func RoomIDFor(a, b string) string {
	if a == b {
		return a
	}
	return strings.Join(Participants(a, b), RoomSeparator)
}

// Participants returns the normalized participant set of a and b.
func Participants(a, b string) []string {
	if a == b {
		return []string{a}
	}
	if b < a {
		a, b = b, a
	}
	return []string{a, b}
}

// Router is the chat session service used by both the HTTP API and the gateway.
type Router struct {
	chats repository.ChatRepository
	now   func() time.Time
}

// NewRouter creates a Router over chats.
func NewRouter(chats repository.ChatRepository) *Router {
	return &Router{
		chats: chats,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the timestamp source. Used by tests.
func (r *Router) WithClock(now func() time.Time) *Router {
	r.now = now
	return r
}

// Room is the outcome of a successful append.
type Room struct {
	ID      string
	Chat    *models.Chat
	Message *models.ChatMessage
}

func keyFor(a, b string) repository.ChatKey {
	return repository.ChatKey{Key: RoomIDFor(a, b), Participants: Participants(a, b)}
}

// LoadHistory returns the ordered messages between a and b.
// A pair that has never talked gets an empty slice.
func (r *Router) LoadHistory(ctx context.Context, a, b string) ([]models.ChatMessage, error) {
	if a == "" || b == "" {
		return nil, ErrEmptyIdentity
	}
	messages, err := r.chats.Messages(ctx, RoomIDFor(a, b))
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if messages == nil {
		messages = []models.ChatMessage{}
	}
	return messages, nil
}

// AppendMessage stores text from sender in the chat of a and b.
func (r *Router) AppendMessage(ctx context.Context, a, b, sender, text string) (room *Room, err error) {
	if a == "" || b == "" || sender == "" {
		return nil, ErrEmptyIdentity
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	key := keyFor(a, b)
	ctx, span := telemetry.StartChatSpan(ctx, "append", key.Key)
	defer func() { telemetry.End(span, err) }()

	start := time.Now()
	chat, msg, err := r.chats.Append(ctx, key, sender, text, r.now())
	metrics.RecordChatAppend(time.Since(start), err)
	if err != nil {
		logger.Log.Error("Failed to append chat message",
			logger.WithRoomID(key.Key),
			logger.WithIdentity(sender),
			zap.Error(err),
		)
		return nil, fmt.Errorf("append message: %w", err)
	}

	return &Room{ID: key.Key, Chat: chat, Message: msg}, nil
}

// DeletePair removes the chat of a and b in either argument order.
func (r *Router) DeletePair(ctx context.Context, a, b string) error {
	err := r.chats.DeleteByKey(ctx, RoomIDFor(a, b))
	if errors.Is(err, repository.ErrNotFound) {
		return ErrChatNotFound
	}
	return err
}

// DeleteAll clears every chat. Callers gate this behind an explicit trigger.
func (r *Router) DeleteAll(ctx context.Context) (int64, error) {
	deleted, err := r.chats.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	logger.Log.Warn("All chats deleted", zap.Int64("count", deleted))
	return deleted, nil
}

// DeleteMessageAt removes the message at position index of the history.
// Positions shift when other messages are appended or removed concurrently.
func (r *Router) DeleteMessageAt(ctx context.Context, a, b string, index int) (*models.ChatMessage, error) {
	msg, err := r.chats.DeleteMessageAt(ctx, RoomIDFor(a, b), index)
	return msg, notFoundAs(err, ErrMessageNotFound)
}

// DeleteMessage removes one message by id.
func (r *Router) DeleteMessage(ctx context.Context, a, b, messageID string) (*models.ChatMessage, error) {
	msg, err := r.chats.DeleteMessage(ctx, RoomIDFor(a, b), messageID)
	return msg, notFoundAs(err, ErrMessageNotFound)
}

// Summary is one entry of a chat list.
type Summary struct {
	RoomID       string    `json:"roomId"`
	Participants []string  `json:"participants"`
	With         string    `json:"with"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ListChats returns the chats identity takes part in, most recent first.
func (r *Router) ListChats(ctx context.Context, identity string) ([]Summary, error) {
	chats, err := r.chats.ListForIdentity(ctx, identity)
	if err != nil {
		return nil, err
	}
	return lo.Map(chats, func(c models.Chat, _ int) Summary {
		other, ok := lo.Find(c.Participants, func(p string) bool { return p != identity })
		if !ok {
			other = identity
		}
		return Summary{
			RoomID:       c.Key,
			Participants: c.Participants,
			With:         other,
			UpdatedAt:    c.UpdatedAt,
		}
	}), nil
}

func notFoundAs(err, target error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return target
	}
	return err
}
