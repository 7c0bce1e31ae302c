package repository

import (
	"context"
	"fmt"
	"time"

	"anoa.com/plantspeak/internal/entity"
	"anoa.com/plantspeak/pkg/apperror"
	"anoa.com/plantspeak/pkg/database"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uint) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error)
	Update(ctx context.Context, id uint, changes *ProfileChanges) error
}

type userRepository struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

func NewUserRepository(db *gorm.DB, lockTimeout time.Duration) UserRepository {
	return &userRepository{db: db, lockTimeout: lockTimeout}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	if user.Email != nil && *user.Email == "" {
		user.Email = nil
	}
	return database.WriteTx(ctx, r.db, r.lockTimeout, func(tx *gorm.DB) error {
		return tx.Create(user).Error
	})
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, database.Classify(err)
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&user).Error; err != nil {
		return nil, database.Classify(err)
	}
	return &user, nil
}

func (r *userRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.User{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		return false, database.Classify(err)
	}
	return count > 0, nil
}

func (r *userRepository) EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.User{}).
		Where("email = ? AND id <> ?", email, exceptID).
		Count(&count).Error; err != nil {
		return false, database.Classify(err)
	}
	return count > 0, nil
}

func (r *userRepository) Update(ctx context.Context, id uint, changes *ProfileChanges) error {
	if changes == nil || changes.Empty() {
		return nil
	}
	return database.WriteTx(ctx, r.db, r.lockTimeout, func(tx *gorm.DB) error {
		res := tx.Model(&entity.User{}).Where("id = ?", id).Updates(changes.values)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: user %d", apperror.ErrNotFound, id)
		}
		return nil
	})
}
