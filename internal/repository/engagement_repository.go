package repository

import (
	"context"

	"github.com/soumyacodes007/social-media-backend/internal/database"
	"github.com/soumyacodes007/social-media-backend/internal/models"
	"gorm.io/gorm"
)

// EngagementRepository persists comments, likes and shares on posts
type EngagementRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	ListComments(ctx context.Context, postID string) ([]models.Comment, error)

	// ToggleLike creates the like when absent and removes it otherwise.
	ToggleLike(ctx context.Context, postID, userID string) (like *models.Like, liked bool, err error)
	ListLikes(ctx context.Context, postID string) ([]models.Like, error)

	CreateShare(ctx context.Context, share *models.Share) error
	ListShares(ctx context.Context, postID string) ([]models.Share, error)
}

type engagementRepository struct {
	base
}

// NewEngagementRepository creates a new engagement repository
func NewEngagementRepository(provider database.Provider) EngagementRepository {
	return &engagementRepository{base{provider}}
}

func (r *engagementRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	return create(ctx, r.base, comment)
}

// ListComments returns comments oldest first; an empty postID lists all.
func (r *engagementRepository) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	return newestFirst[models.Comment](ctx, r.base, "created_at ASC", byPost(postID))
}

func (r *engagementRepository) ToggleLike(ctx context.Context, postID, userID string) (*models.Like, bool, error) {
	if postID == "" || userID == "" {
		return nil, false, ErrInvalidInput
	}
	db, err := r.conn(ctx)
	if err != nil {
		return nil, false, err
	}

	var (
		like  models.Like
		liked bool
	)
	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		like = models.Like{PostID: postID, UserID: userID}
		liked = true
		return tx.Create(&like).Error
	})
	if err != nil {
		return nil, false, translate(err)
	}
	if !liked {
		return nil, false, nil
	}
	return &like, true, nil
}

func (r *engagementRepository) ListLikes(ctx context.Context, postID string) ([]models.Like, error) {
	return newestFirst[models.Like](ctx, r.base, "created_at DESC", byPost(postID))
}

func (r *engagementRepository) CreateShare(ctx context.Context, share *models.Share) error {
	return create(ctx, r.base, share)
}

func (r *engagementRepository) ListShares(ctx context.Context, postID string) ([]models.Share, error) {
	return newestFirst[models.Share](ctx, r.base, "shared_at DESC", byPost(postID))
}

func byPost(postID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if postID == "" {
			return db
		}
		return db.Where("post_id = ?", postID)
	}
}
