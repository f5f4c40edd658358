package websocket

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/soumyacodes007/social-media-backend/internal/models"
)

// FlexibleTime accepts Unix millisecond timestamps or RFC3339 strings
type FlexibleTime struct {
	time.Time
}

// UnmarshalJSON implements custom unmarshaling for timestamps
func (ft *FlexibleTime) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}

	var ms int64
	if err := json.Unmarshal(b, &ms); err == nil {
		ft.Time = time.UnixMilli(ms).UTC()
		return nil
	}

	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return fmt.Errorf("timestamp must be Unix milliseconds (integer) or RFC3339 string")
	}
	t, err := time.Parse(time.RFC3339, str)
	if err != nil {
		return err
	}
	ft.Time = t
	return nil
}

// MarshalJSON always writes RFC3339
func (ft FlexibleTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(ft.Time)
}

// Message types
const (
	MessageTypeSystem = "system"
	MessageTypePing   = "ping"
	MessageTypePong   = "pong"
	MessageTypeError  = "error"
	MessageTypeAck    = "ack"

	// Rooms
	MessageTypeJoin     = "join"
	MessageTypeLeave    = "leave"
	MessageTypeJoinChat = "join_chat"

	// Chat
	MessageTypeSendMessage      = "send_message"
	MessageTypeSendMessageAlias = "sendMessage"
	MessageTypeLoadMessages     = "load_messages"
	MessageTypeReceiveMessage   = "receive_message"

	// Presence
	MessageTypeUserOnline     = "user_online"
	MessageTypePresenceUpdate = "presence_update"
)

// Message is the envelope of every frame in both directions
type Message struct {
	Type string `json:"type"`

	Payload interface{} `json:"payload,omitempty"`

	// ID is chosen by the client; acks and replies echo it in ReplyTo.
	ID      string `json:"id,omitempty"`
	ReplyTo string `json:"reply_to,omitempty"`

	Timestamp FlexibleTime `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType string, payload interface{}) *Message {
	return &Message{
		Type:      msgType,
		Payload:   payload,
		Timestamp: FlexibleTime{Time: time.Now().UTC()},
	}
}

// NewReply creates a message answering original
func NewReply(original *Message, msgType string, payload interface{}) *Message {
	msg := NewMessage(msgType, payload)
	msg.ReplyTo = original.ID
	return msg
}

// NewErrorMessage creates an error frame
func NewErrorMessage(code string, message string) *Message {
	return NewMessage(MessageTypeError, ErrorPayload{Code: code, Message: message})
}

// NewAck reports the outcome of original back to its sender.
func NewAck(original *Message, data interface{}, err error) *Message {
	ack := AckPayload{Event: original.Type, OK: err == nil, Data: data}
	if err != nil {
		ack.Error = err.Error()
		ack.Data = nil
	}
	return NewReply(original, MessageTypeAck, ack)
}

// ParsePayload decodes the payload into target
func (m *Message) ParsePayload(target interface{}) error {
	if m.Payload == nil {
		return nil
	}
	data, err := json.Marshal(m.Payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}

// PayloadString returns the payload when the client sent a bare string.
func (m *Message) PayloadString() (string, bool) {
	s, ok := m.Payload.(string)
	return s, ok
}

// ErrorPayload is the body of an error frame
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AckPayload is the tagged result of one client event
type AckPayload struct {
	Event string      `json:"event"`
	OK    bool        `json:"ok"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// PingPayload represents a ping message payload
type PingPayload struct {
	ClientTime int64 `json:"client_time"`
}

// PongPayload represents a pong message payload
type PongPayload struct {
	ClientTime int64 `json:"client_time"`
	ServerTime int64 `json:"server_time"`
	Latency    int64 `json:"latency_ms"`
}

// SystemPayload carries connection lifecycle events
type SystemPayload struct {
	Event   string                 `json:"event"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// JoinPayload names a room to join or leave
type JoinPayload struct {
	RoomID string `json:"roomId" validate:"required,max=256"`
}

// ChatPairPayload names both sides of a chat
type ChatPairPayload struct {
	Sender   string `json:"sender" validate:"required,max=64"`
	Receiver string `json:"receiver" validate:"required,max=64"`
}

// SendMessagePayload is a chat message from a client
type SendMessagePayload struct {
	Sender   string `json:"sender" validate:"required,max=64"`
	Receiver string `json:"receiver" validate:"required,max=64"`
	Text     string `json:"text" validate:"required,max=4000"`
}

// UserOnlinePayload announces the identity behind a connection
type UserOnlinePayload struct {
	Identity string `json:"identity" validate:"required,max=64"`
}

// LoadMessagesPayload is the history pushed to a joining connection
type LoadMessagesPayload struct {
	RoomID   string               `json:"roomId"`
	Messages []models.ChatMessage `json:"messages"`
}

// ReceiveMessagePayload is a newly stored message fanned out to a room
type ReceiveMessagePayload struct {
	RoomID string `json:"roomId"`
	models.ChatMessage
}

// PresenceUpdatePayload reports an identity going online or offline
type PresenceUpdatePayload struct {
	Identity string     `json:"identity"`
	IsOnline bool       `json:"isOnline"`
	LastSeen *time.Time `json:"lastSeen,omitempty"`
}
