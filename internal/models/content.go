package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Post is a profile-style feed post
type Post struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Username       string    `json:"username"`
	UserProfileURL string    `json:"userProfileUrl"`
	ImageURL       string    `json:"imageUrl"`
	Caption        string    `gorm:"type:text" json:"caption"`
	Name           string    `json:"name"`
	Bio            string    `gorm:"type:text" json:"bio"`
	Interests      string    `json:"interests"`
	Website        string    `json:"website"`
	Music          string    `json:"music"`
	Phone          string    `json:"phone"`
	PasswordHash   string    `json:"-"`
	Email          string    `json:"email"`
	Gender         string    `json:"gender"`
	CreatedAt      time.Time `gorm:"index" json:"createdAt"`
}

// SetPassword stores a bcrypt hash of plain. Empty plain clears nothing.
func (p *Post) SetPassword(plain string) error {
	if plain == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether plain matches the stored hash.
func (p *Post) CheckPassword(plain string) bool {
	if p.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(plain)) == nil
}

// Upload is a media bundle: any mix of image, video, audio and text
type Upload struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ImageURL    string    `json:"imageUrl"`
	VideoURL    string    `json:"videoUrl"`
	AudioURL    string    `json:"audioUrl"`
	TextContent string    `gorm:"type:text" json:"textContent"`
	Caption     string    `gorm:"type:text" json:"caption"`
	Music       string    `json:"music"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
}

// NoteTTL is how long a note stays visible
const NoteTTL = 12 * time.Hour

// Note is a short status that stops being listed after ExpiresAt
type Note struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StoryTTL is how long a story stays visible
const StoryTTL = 24 * time.Hour

// Story media types
const (
	StoryTypeImage = "image"
	StoryTypeVideo = "video"
	StoryTypeText  = "text"
)

// Story is an expiring image, video or text item.
// For text stories MediaURL holds the text itself.
type Story struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    string    `gorm:"not null;index" json:"user"`
	MediaURL  string    `gorm:"type:text;not null" json:"mediaUrl"`
	Type      string    `gorm:"not null" json:"type"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsValidStoryType reports whether t is one of the story media types
func IsValidStoryType(t string) bool {
	switch t {
	case StoryTypeImage, StoryTypeVideo, StoryTypeText:
		return true
	}
	return false
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = generateUUID()
	}
	return nil
}

func (u *Upload) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = generateUUID()
	}
	return nil
}

func (n *Note) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = generateUUID()
	}
	return nil
}

func (s *Story) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = generateUUID()
	}
	return nil
}
