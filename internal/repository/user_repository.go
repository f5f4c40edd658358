package repository

import (
	"context"
	"time"

	"github.com/soumyacodes007/social-media-backend/internal/database"
	"github.com/soumyacodes007/social-media-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository handles users, their presence columns and follow edges.
// Users are addressed by phone, which is the realtime identity.
type UserRepository interface {
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	Ensure(ctx context.Context, phone string) (*models.User, error)
	SetPresence(ctx context.Context, phone string, online bool, at time.Time) (*models.User, error)
	SetProfileImage(ctx context.Context, phone, url string) (*models.User, error)

	// ToggleFollow follows when no edge exists and unfollows otherwise.
	ToggleFollow(ctx context.Context, followerPhone, followingPhone string) (followed bool, err error)
	IsFollowing(ctx context.Context, followerPhone, followingPhone string) (bool, error)
	GetFollowers(ctx context.Context, phone string) ([]models.User, error)
	GetFollowing(ctx context.Context, phone string) ([]models.User, error)
	CountFollowers(ctx context.Context, phone string) (int64, error)
	CountFollowing(ctx context.Context, phone string) (int64, error)
}

type userRepository struct {
	base
}

// NewUserRepository creates a new user repository
func NewUserRepository(provider database.Provider) UserRepository {
	return &userRepository{base{provider}}
}

func (r *userRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := db.Where("phone = ?", phone).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// Ensure returns the user for phone, creating an empty profile on first sight.
func (r *userRepository) Ensure(ctx context.Context, phone string) (*models.User, error) {
	if phone == "" {
		return nil, ErrInvalidInput
	}
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	return ensureUser(db, phone)
}

func ensureUser(db *gorm.DB, phone string) (*models.User, error) {
	user := models.User{Phone: phone}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone"}},
		DoNothing: true,
	}).Create(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	var stored models.User
	if err := db.Where("phone = ?", phone).First(&stored).Error; err != nil {
		return nil, translate(err)
	}
	return &stored, nil
}

func (r *userRepository) SetPresence(ctx context.Context, phone string, online bool, at time.Time) (*models.User, error) {
	if phone == "" {
		return nil, ErrInvalidInput
	}
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}

	var user *models.User
	err = db.Transaction(func(tx *gorm.DB) error {
		if _, err := ensureUser(tx, phone); err != nil {
			return err
		}
		updates := map[string]interface{}{"is_online": online}
		if !online {
			updates["last_seen"] = at
		}
		if err := tx.Model(&models.User{}).Where("phone = ?", phone).Updates(updates).Error; err != nil {
			return err
		}
		var stored models.User
		if err := tx.Where("phone = ?", phone).First(&stored).Error; err != nil {
			return err
		}
		user = &stored
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

func (r *userRepository) SetProfileImage(ctx context.Context, phone, url string) (*models.User, error) {
	if phone == "" {
		return nil, ErrInvalidInput
	}
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}

	var user *models.User
	err = db.Transaction(func(tx *gorm.DB) error {
		stored, err := ensureUser(tx, phone)
		if err != nil {
			return err
		}
		if err := tx.Model(stored).Update("profile_image", url).Error; err != nil {
			return err
		}
		stored.ProfileImage = url
		user = stored
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

func (r *userRepository) ToggleFollow(ctx context.Context, followerPhone, followingPhone string) (bool, error) {
	if followerPhone == "" || followingPhone == "" || followerPhone == followingPhone {
		return false, ErrInvalidInput
	}
	db, err := r.conn(ctx)
	if err != nil {
		return false, err
	}

	followed := false
	err = db.Transaction(func(tx *gorm.DB) error {
		follower, err := ensureUser(tx, followerPhone)
		if err != nil {
			return err
		}
		following, err := ensureUser(tx, followingPhone)
		if err != nil {
			return err
		}

		res := tx.Where("follower_id = ? AND following_id = ?", follower.ID, following.ID).
			Delete(&models.Follow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		followed = true
		return tx.Create(&models.Follow{FollowerID: follower.ID, FollowingID: following.ID}).Error
	})
	if err != nil {
		return false, translate(err)
	}
	return followed, nil
}

func (r *userRepository) IsFollowing(ctx context.Context, followerPhone, followingPhone string) (bool, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return false, err
	}
	var count int64
	err = db.Model(&models.Follow{}).
		Joins("JOIN users f ON f.id = follows.follower_id").
		Joins("JOIN users t ON t.id = follows.following_id").
		Where("f.phone = ? AND t.phone = ?", followerPhone, followingPhone).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepository) GetFollowers(ctx context.Context, phone string) ([]models.User, error) {
	return r.related(ctx, phone, "follows.follower_id", "follows.following_id")
}

func (r *userRepository) GetFollowing(ctx context.Context, phone string) ([]models.User, error) {
	return r.related(ctx, phone, "follows.following_id", "follows.follower_id")
}

// related returns the users on the `pick` side of edges whose `match` side is phone.
func (r *userRepository) related(ctx context.Context, phone, pick, match string) ([]models.User, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	user, err := r.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}

	users := []models.User{}
	err = db.Model(&models.User{}).
		Joins("JOIN follows ON users.id = "+pick).
		Where(match+" = ?", user.ID).
		Order("follows.created_at DESC").
		Find(&users).Error
	return users, err
}

func (r *userRepository) CountFollowers(ctx context.Context, phone string) (int64, error) {
	return r.countEdges(ctx, phone, "following_id")
}

func (r *userRepository) CountFollowing(ctx context.Context, phone string) (int64, error) {
	return r.countEdges(ctx, phone, "follower_id")
}

func (r *userRepository) countEdges(ctx context.Context, phone, column string) (int64, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	err = db.Model(&models.Follow{}).
		Joins("JOIN users ON users.id = follows."+column).
		Where("users.phone = ?", phone).
		Count(&count).Error
	return count, err
}
