package repository

import (
	"context"
	"errors"

	"github.com/soumyacodes007/social-media-backend/internal/database"
	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicate    = errors.New("record already exists")
	ErrInvalidInput = errors.New("invalid input")
)

// base resolves the shared handle for every call so a lost database
// surfaces as database.ErrUnavailable instead of a stale pointer.
type base struct {
	provider database.Provider
}

func (b base) conn(ctx context.Context) (*gorm.DB, error) {
	db, err := b.provider.Get(ctx)
	if err != nil {
		return nil, err
	}
	return db.WithContext(ctx), nil
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

// Repositories bundles every repository over one provider.
type Repositories struct {
	Users      UserRepository
	Chats      ChatRepository
	Posts      PostRepository
	Notes      NoteRepository
	Stories    StoryRepository
	Uploads    UploadRepository
	Engagement EngagementRepository
}

// New builds all repositories on provider.
func New(provider database.Provider) *Repositories {
	return &Repositories{
		Users:      NewUserRepository(provider),
		Chats:      NewChatRepository(provider),
		Posts:      NewPostRepository(provider),
		Notes:      NewNoteRepository(provider),
		Stories:    NewStoryRepository(provider),
		Uploads:    NewUploadRepository(provider),
		Engagement: NewEngagementRepository(provider),
	}
}
