package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a phone-identified account. Presence fields are written by the
// realtime gateway and the /api/user/status endpoint.
type User struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Phone        string    `gorm:"uniqueIndex;not null" json:"phone"`
	Name         string    `json:"name"`
	ProfileImage string    `json:"profileImage"`
	IsOnline     bool      `gorm:"default:false;index" json:"isOnline"`
	LastSeen     time.Time `json:"lastSeen"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Follow is a directed follower -> following edge between two users
type Follow struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	FollowerID  string    `gorm:"not null;uniqueIndex:idx_follows_pair;index" json:"followerId"`
	FollowingID string    `gorm:"not null;uniqueIndex:idx_follows_pair;index" json:"followingId"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = generateUUID()
	}
	if u.LastSeen.IsZero() {
		u.LastSeen = tx.NowFunc()
	}
	return nil
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = generateUUID()
	}
	return nil
}

func generateUUID() string {
	return uuid.New().String()
}

// IsValidID reports whether id has the shape of a generated record id.
func IsValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
