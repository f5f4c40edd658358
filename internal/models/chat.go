package models

import (
	"time"

	"gorm.io/gorm"
)

// Chat is the conversation between a normalized participant set.
// Key is the room id and is unique, so a participant set maps to one chat.
// LastSeq only grows; it hands out message positions and is never reused.
type Chat struct {
	ID           string        `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Key          string        `gorm:"column:room_key;uniqueIndex;not null" json:"roomId"`
	UserA        string        `gorm:"not null;index" json:"-"`
	UserB        string        `gorm:"not null;index" json:"-"`
	Participants []string      `gorm:"type:text;serializer:json" json:"participants"`
	LastSeq      int64         `gorm:"not null;default:0" json:"-"`
	Messages     []ChatMessage `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE" json:"messages"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// ChatMessage is one appended message. Seq is its append position within the chat.
type ChatMessage struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ChatID    string    `gorm:"not null;uniqueIndex:idx_chat_messages_seq" json:"chatId"`
	Seq       int64     `gorm:"not null;uniqueIndex:idx_chat_messages_seq" json:"seq"`
	Sender    string    `gorm:"not null" json:"sender"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c *Chat) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = generateUUID()
	}
	return nil
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = generateUUID()
	}
	return nil
}
