package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment on a post
type Comment struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PostID    string    `gorm:"not null;index" json:"postId"`
	UserID    string    `gorm:"not null;index" json:"userId"`
	Comment   string    `gorm:"type:text;not null" json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// Like is unique per (post, user)
type Like struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PostID    string    `gorm:"not null;uniqueIndex:idx_likes_post_user" json:"postId"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_likes_post_user" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Share records a user sharing a post
type Share struct {
	ID       string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PostID   string    `gorm:"not null;index" json:"postId"`
	UserID   string    `gorm:"not null;index" json:"userId"`
	SharedAt time.Time `gorm:"autoCreateTime" json:"sharedAt"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = generateUUID()
	}
	return nil
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = generateUUID()
	}
	return nil
}

func (s *Share) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = generateUUID()
	}
	return nil
}

// All lists every persisted model, in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&Follow{},
		&Chat{},
		&ChatMessage{},
		&Post{},
		&Upload{},
		&Note{},
		&Story{},
		&Comment{},
		&Like{},
		&Share{},
	}
}
