package websocket

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/soumyacodes007/social-media-backend/internal/chat"
	"github.com/soumyacodes007/social-media-backend/internal/logger"
	"go.uber.org/zap"
)

// ErrInvalidPayload is returned for events whose payload fails validation
var ErrInvalidPayload = errors.New("invalid payload")

// Gateway binds the chat events to the hub, presence and chat router.
type Gateway struct {
	hub      *Hub
	presence *Presence
	router   *chat.Router
	validate *validator.Validate
}

// NewGateway creates a Gateway and registers its event handlers on hub.
func NewGateway(hub *Hub, presence *Presence, router *chat.Router) *Gateway {
	g := &Gateway{
		hub:      hub,
		presence: presence,
		router:   router,
		validate: validator.New(),
	}
	g.registerHandlers()
	return g
}

// Hub returns the connection hub
func (g *Gateway) Hub() *Hub { return g.hub }

// Presence returns the presence directory
func (g *Gateway) Presence() *Presence { return g.presence }

func (g *Gateway) registerHandlers() {
	g.hub.RegisterHandler(MessageTypeJoin, g.handleJoin)
	g.hub.RegisterHandler(MessageTypeLeave, g.handleLeave)
	g.hub.RegisterHandler(MessageTypeJoinChat, g.handleJoinChat)
	g.hub.RegisterHandler(MessageTypeSendMessage, g.handleSendMessage)
	g.hub.RegisterHandler(MessageTypeSendMessageAlias, g.handleSendMessage)
	g.hub.RegisterHandler(MessageTypeUserOnline, g.handleUserOnline)
}

// decode parses the payload into target and validates it.
func (g *Gateway) decode(message *Message, target interface{}) error {
	if err := message.ParsePayload(target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := g.validate.Struct(target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

func (g *Gateway) roomPayload(message *Message) (JoinPayload, error) {
	if roomID, ok := message.PayloadString(); ok {
		roomID = strings.TrimSpace(roomID)
		if roomID == "" {
			return JoinPayload{}, fmt.Errorf("%w: roomId is required", ErrInvalidPayload)
		}
		return JoinPayload{RoomID: roomID}, nil
	}
	var payload JoinPayload
	err := g.decode(message, &payload)
	return payload, err
}

func (g *Gateway) handleJoin(_ context.Context, client *Client, message *Message) (interface{}, error) {
	payload, err := g.roomPayload(message)
	if err != nil {
		return nil, err
	}
	g.hub.Join(client, payload.RoomID)
	logger.Log.Debug("Client joined room", logger.WithClientID(client.ID), logger.WithRoomID(payload.RoomID))
	return payload, nil
}

func (g *Gateway) handleLeave(_ context.Context, client *Client, message *Message) (interface{}, error) {
	payload, err := g.roomPayload(message)
	if err != nil {
		return nil, err
	}
	g.hub.Leave(client, payload.RoomID)
	return payload, nil
}

// handleJoinChat joins the pair's room and pushes its history to the caller only.
func (g *Gateway) handleJoinChat(ctx context.Context, client *Client, message *Message) (interface{}, error) {
	var payload ChatPairPayload
	if err := g.decode(message, &payload); err != nil {
		return nil, err
	}

	roomID := chat.RoomIDFor(payload.Sender, payload.Receiver)
	g.hub.Join(client, roomID)

	messages, err := g.router.LoadHistory(ctx, payload.Sender, payload.Receiver)
	if err != nil {
		return nil, err
	}

	if err := client.Send(NewReply(message, MessageTypeLoadMessages, LoadMessagesPayload{
		RoomID:   roomID,
		Messages: messages,
	})); err != nil {
		return nil, err
	}
	return JoinPayload{RoomID: roomID}, nil
}

// handleSendMessage persists the message, then fans it out to the room.
// Nothing is broadcast when the append fails.
func (g *Gateway) handleSendMessage(ctx context.Context, client *Client, message *Message) (interface{}, error) {
	var payload SendMessagePayload
	if err := g.decode(message, &payload); err != nil {
		return nil, err
	}

	room, err := g.router.AppendMessage(ctx, payload.Sender, payload.Receiver, payload.Sender, payload.Text)
	if err != nil {
		return nil, err
	}

	delivered := g.DeliverMessage(room)
	logger.Log.Debug("Chat message delivered",
		logger.WithRoomID(room.ID),
		logger.WithClientID(client.ID),
		zap.Int("recipients", delivered))

	return ReceiveMessagePayload{RoomID: room.ID, ChatMessage: *room.Message}, nil
}

// DeliverMessage broadcasts a stored message to its room and returns the
// number of connections it reached.
func (g *Gateway) DeliverMessage(room *chat.Room) int {
	if room == nil || room.Message == nil {
		return 0
	}
	return g.hub.BroadcastToRoom(room.ID, NewMessage(MessageTypeReceiveMessage, ReceiveMessagePayload{
		RoomID:      room.ID,
		ChatMessage: *room.Message,
	}))
}

func (g *Gateway) handleUserOnline(ctx context.Context, client *Client, message *Message) (interface{}, error) {
	var payload UserOnlinePayload
	if identity, ok := message.PayloadString(); ok {
		payload.Identity = strings.TrimSpace(identity)
	} else if err := message.ParsePayload(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := g.validate.Struct(payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	g.presence.SetOnline(ctx, payload.Identity, client)
	return payload, nil
}
