package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "voiceclone/internal/errors"
	"voiceclone/internal/model"
)

// UserRepository defines persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	// DecrementCredits atomically takes one credit if the balance is positive.
	// It reports false, without error, when there was nothing to take.
	DecrementCredits(ctx context.Context, username string) (bool, error)
	IncrementCredits(ctx context.Context, username string) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a user. A unique index violation on username is reported as
// ErrUserAlreadyExists.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.ErrUserAlreadyExists
	}
	return err
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// FindByUsername returns ErrUserNotFound when no row matches.
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) DecrementCredits(ctx context.Context, username string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("username = ? AND credits > ?", username, 0).
		UpdateColumn("credits", gorm.Expr("credits - ?", 1))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *userRepository) IncrementCredits(ctx context.Context, username string) error {
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("username = ?", username).
		UpdateColumn("credits", gorm.Expr("credits + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
