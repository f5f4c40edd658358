package repository

import (
	"context"
	"time"

	"github.com/soumyacodes007/social-media-backend/internal/database"
	"github.com/soumyacodes007/social-media-backend/internal/models"
	"gorm.io/gorm"
)

// PostRepository persists feed posts
type PostRepository interface {
	List(ctx context.Context) ([]models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	Get(ctx context.Context, id string) (*models.Post, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) (*models.Post, error)
	Delete(ctx context.Context, id string) (*models.Post, error)
}

// NoteRepository persists expiring notes
type NoteRepository interface {
	ListActive(ctx context.Context, now time.Time) ([]models.Note, error)
	Create(ctx context.Context, note *models.Note) error
	Delete(ctx context.Context, id string) (*models.Note, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// StoryRepository persists expiring stories
type StoryRepository interface {
	ListActive(ctx context.Context, now time.Time) ([]models.Story, error)
	Create(ctx context.Context, story *models.Story) error
	Delete(ctx context.Context, id string) (*models.Story, error)
	FindExpired(ctx context.Context, now time.Time, limit int) ([]models.Story, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}

// UploadRepository persists media bundles
type UploadRepository interface {
	List(ctx context.Context) ([]models.Upload, error)
	Create(ctx context.Context, upload *models.Upload) error
	Get(ctx context.Context, id string) (*models.Upload, error)
	Delete(ctx context.Context, id string) (*models.Upload, error)
}

type postRepository struct{ base }
type noteRepository struct{ base }
type storyRepository struct{ base }
type uploadRepository struct{ base }

func NewPostRepository(provider database.Provider) PostRepository {
	return &postRepository{base{provider}}
}

func NewNoteRepository(provider database.Provider) NoteRepository {
	return &noteRepository{base{provider}}
}

func NewStoryRepository(provider database.Provider) StoryRepository {
	return &storyRepository{base{provider}}
}

func NewUploadRepository(provider database.Provider) UploadRepository {
	return &uploadRepository{base{provider}}
}

// newestFirst lists every row of T ordered by orderBy.
func newestFirst[T any](ctx context.Context, b base, orderBy string, scopes ...func(*gorm.DB) *gorm.DB) ([]T, error) {
	db, err := b.conn(ctx)
	if err != nil {
		return nil, err
	}
	rows := []T{}
	err = db.Scopes(scopes...).Order(orderBy).Find(&rows).Error
	return rows, err
}

func create[T any](ctx context.Context, b base, row *T) error {
	if row == nil {
		return ErrInvalidInput
	}
	db, err := b.conn(ctx)
	if err != nil {
		return err
	}
	return translate(db.Create(row).Error)
}

func getByID[T any](ctx context.Context, b base, id string) (*T, error) {
	db, err := b.conn(ctx)
	if err != nil {
		return nil, err
	}
	var row T
	if err := db.Where("id = ?", id).First(&row).Error; err != nil {
		return nil, translate(err)
	}
	return &row, nil
}

// deleteByID removes the row and returns it as it was.
func deleteByID[T any](ctx context.Context, b base, id string) (*T, error) {
	db, err := b.conn(ctx)
	if err != nil {
		return nil, err
	}
	var row T
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&row).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&row).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &row, nil
}

func unexpired(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("expires_at > ?", now)
	}
}

func (r *postRepository) List(ctx context.Context) ([]models.Post, error) {
	return newestFirst[models.Post](ctx, r.base, "created_at DESC")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return create(ctx, r.base, post)
}

func (r *postRepository) Get(ctx context.Context, id string) (*models.Post, error) {
	return getByID[models.Post](ctx, r.base, id)
}

func (r *postRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (*models.Post, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	var post models.Post
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&post).Error; err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&post).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&post).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (r *postRepository) Delete(ctx context.Context, id string) (*models.Post, error) {
	return deleteByID[models.Post](ctx, r.base, id)
}

func (r *noteRepository) ListActive(ctx context.Context, now time.Time) ([]models.Note, error) {
	return newestFirst[models.Note](ctx, r.base, "created_at DESC", unexpired(now))
}

func (r *noteRepository) Create(ctx context.Context, note *models.Note) error {
	return create(ctx, r.base, note)
}

func (r *noteRepository) Delete(ctx context.Context, id string) (*models.Note, error) {
	return deleteByID[models.Note](ctx, r.base, id)
}

func (r *noteRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return 0, err
	}
	res := db.Where("expires_at <= ?", now).Delete(&models.Note{})
	return res.RowsAffected, res.Error
}

func (r *storyRepository) ListActive(ctx context.Context, now time.Time) ([]models.Story, error) {
	return newestFirst[models.Story](ctx, r.base, "created_at DESC", unexpired(now))
}

func (r *storyRepository) Create(ctx context.Context, story *models.Story) error {
	return create(ctx, r.base, story)
}

func (r *storyRepository) Delete(ctx context.Context, id string) (*models.Story, error) {
	return deleteByID[models.Story](ctx, r.base, id)
}

func (r *storyRepository) FindExpired(ctx context.Context, now time.Time, limit int) ([]models.Story, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	stories := []models.Story{}
	q := db.Where("expires_at <= ?", now).Order("expires_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err = q.Find(&stories).Error
	return stories, err
}

func (r *storyRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	db, err := r.conn(ctx)
	if err != nil {
		return 0, err
	}
	res := db.Where("id IN ?", ids).Delete(&models.Story{})
	return res.RowsAffected, res.Error
}

func (r *uploadRepository) List(ctx context.Context) ([]models.Upload, error) {
	return newestFirst[models.Upload](ctx, r.base, "created_at DESC")
}

func (r *uploadRepository) Create(ctx context.Context, upload *models.Upload) error {
	return create(ctx, r.base, upload)
}

func (r *uploadRepository) Get(ctx context.Context, id string) (*models.Upload, error) {
	return getByID[models.Upload](ctx, r.base, id)
}

func (r *uploadRepository) Delete(ctx context.Context, id string) (*models.Upload, error) {
	return deleteByID[models.Upload](ctx, r.base, id)
}
