package repository

import (
	"context"
	"time"

	"github.com/soumyacodes007/social-media-backend/internal/database"
	"github.com/soumyacodes007/social-media-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChatKey identifies a chat row: the room key plus its normalized participants.
type ChatKey struct {
	Key          string
	Participants []string
}

// ChatRepository persists chats and their messages.
type ChatRepository interface {
	// Append adds one message, creating the chat on first use. It is atomic
	// with respect to other appends on the same chat.
	Append(ctx context.Context, key ChatKey, sender, text string, at time.Time) (*models.Chat, *models.ChatMessage, error)
	FindByKey(ctx context.Context, key string) (*models.Chat, error)
	Messages(ctx context.Context, key string) ([]models.ChatMessage, error)
	ListForIdentity(ctx context.Context, identity string) ([]models.Chat, error)
	DeleteByKey(ctx context.Context, key string) error
	DeleteAll(ctx context.Context) (int64, error)
	DeleteMessageAt(ctx context.Context, key string, index int) (*models.ChatMessage, error)
	DeleteMessage(ctx context.Context, key, messageID string) (*models.ChatMessage, error)
}

type chatRepository struct {
	base
}

// NewChatRepository creates a new chat repository
func NewChatRepository(provider database.Provider) ChatRepository {
	return &chatRepository{base{provider}}
}

func (r *chatRepository) Append(ctx context.Context, key ChatKey, sender, text string, at time.Time) (*models.Chat, *models.ChatMessage, error) {
	if key.Key == "" || len(key.Participants) == 0 {
		return nil, nil, ErrInvalidInput
	}
	db, err := r.conn(ctx)
	if err != nil {
		return nil, nil, err
	}

	userA := key.Participants[0]
	userB := key.Participants[len(key.Participants)-1]

	var (
		chat models.Chat
		msg  models.ChatMessage
	)
	err = db.Transaction(func(tx *gorm.DB) error {
		fresh := models.Chat{
			Key:          key.Key,
			UserA:        userA,
			UserB:        userB,
			Participants: key.Participants,
			CreatedAt:    at,
			UpdatedAt:    at,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "room_key"}},
			DoNothing: true,
		}).Create(&fresh).Error; err != nil {
			return err
		}

		// The increment takes the row lock; concurrent appenders queue here
		// and each leaves with a distinct sequence number.
		res := tx.Model(&models.Chat{}).
			Where("room_key = ?", key.Key).
			Updates(map[string]interface{}{
				"last_seq":   gorm.Expr("last_seq + 1"),
				"updated_at": at,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Where("room_key = ?", key.Key).First(&chat).Error; err != nil {
			return err
		}

		msg = models.ChatMessage{
			ChatID:    chat.ID,
			Seq:       chat.LastSeq,
			Sender:    sender,
			Text:      text,
			CreatedAt: at,
		}
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}

		return tx.Where("chat_id = ?", chat.ID).Order("seq ASC").Find(&chat.Messages).Error
	})
	if err != nil {
		return nil, nil, translate(err)
	}
	return &chat, &msg, nil
}

func (r *chatRepository) FindByKey(ctx context.Context, key string) (*models.Chat, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	var chat models.Chat
	err = db.Preload("Messages", func(db *gorm.DB) *gorm.DB {
		return db.Order("seq ASC")
	}).Where("room_key = ?", key).First(&chat).Error
	if err != nil {
		return nil, translate(err)
	}
	return &chat, nil
}

// Messages returns the ordered history, or an empty slice when the chat does not exist.
func (r *chatRepository) Messages(ctx context.Context, key string) ([]models.ChatMessage, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	messages := []models.ChatMessage{}
	err = db.Joins("JOIN chats ON chats.id = chat_messages.chat_id").
		Where("chats.room_key = ?", key).
		Order("chat_messages.seq ASC").
		Find(&messages).Error
	return messages, err
}

func (r *chatRepository) ListForIdentity(ctx context.Context, identity string) ([]models.Chat, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	chats := []models.Chat{}
	err = db.Where("user_a = ? OR user_b = ?", identity, identity).
		Order("updated_at DESC").
		Find(&chats).Error
	return chats, err
}

func (r *chatRepository) DeleteByKey(ctx context.Context, key string) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}
	return translate(db.Transaction(func(tx *gorm.DB) error {
		var chat models.Chat
		if err := tx.Where("room_key = ?", key).First(&chat).Error; err != nil {
			return err
		}
		if err := tx.Where("chat_id = ?", chat.ID).Delete(&models.ChatMessage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&chat).Error
	}))
}

func (r *chatRepository) DeleteAll(ctx context.Context) (int64, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return 0, err
	}
	var deleted int64
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.ChatMessage{}).Error; err != nil {
			return err
		}
		res := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Chat{})
		deleted = res.RowsAffected
		return res.Error
	})
	return deleted, err
}

// DeleteMessageAt removes the message at position index of the current history.
// Positions shift under concurrent appends; prefer DeleteMessage.
func (r *chatRepository) DeleteMessageAt(ctx context.Context, key string, index int) (*models.ChatMessage, error) {
	if index < 0 {
		return nil, ErrInvalidInput
	}
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}

	var msg models.ChatMessage
	err = db.Transaction(func(tx *gorm.DB) error {
		var chat models.Chat
		if err := tx.Where("room_key = ?", key).First(&chat).Error; err != nil {
			return err
		}
		if err := tx.Where("chat_id = ?", chat.ID).
			Order("seq ASC").
			Offset(index).
			First(&msg).Error; err != nil {
			return err
		}
		return tx.Delete(&msg).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &msg, nil
}

func (r *chatRepository) DeleteMessage(ctx context.Context, key, messageID string) (*models.ChatMessage, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}

	var msg models.ChatMessage
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Joins("JOIN chats ON chats.id = chat_messages.chat_id").
			Where("chats.room_key = ? AND chat_messages.id = ?", key, messageID).
			First(&msg).Error; err != nil {
			return err
		}
		return tx.Delete(&msg).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &msg, nil
}
