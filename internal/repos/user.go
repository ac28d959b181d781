package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eduforge/eduforge-backend/internal/apperr"
	"github.com/eduforge/eduforge-backend/internal/logger"
	"github.com/eduforge/eduforge-backend/internal/types"
)

type UserRepo interface {
	Create(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error)
	GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error)
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*types.User, error)
	UsernameExists(ctx context.Context, tx *gorm.DB, username string) (bool, error)
	EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	// ResetStreak sets success_in_a_row to 0.
	ResetStreak(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
	// IncrementStreak adds 1 to success_in_a_row as a single-row update.
	IncrementStreak(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (r *userRepo) Create(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(users) == 0 {
		return []*types.User{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&users).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("user already exists")
		}
		return nil, err
	}
	return users, nil
}

func (r *userRepo) GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.User
	if err := transaction.WithContext(ctx).
		Where("id = ?", userID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user %s not found", userID)
		}
		return nil, err
	}
	return &result, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.User
	if err := transaction.WithContext(ctx).
		Where("username = ?", username).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user %q not found", username)
		}
		return nil, err
	}
	return &result, nil
}

func (r *userRepo) UsernameExists(ctx context.Context, tx *gorm.DB, username string) (bool, error) {
	return r.exists(ctx, tx, "username = ?", username)
}

func (r *userRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	return r.exists(ctx, tx, "email = ?", email)
}

func (r *userRepo) exists(ctx context.Context, tx *gorm.DB, query string, arg interface{}) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.User{}).
		Where(query, arg).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepo) ResetStreak(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.User{}).
		Where("id = ?", userID).
		Update("success_in_a_row", 0)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("user %s not found", userID)
	}
	return nil
}

func (r *userRepo) IncrementStreak(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.User{}).
		Where("id = ?", userID).
		Update("success_in_a_row", gorm.Expr("success_in_a_row + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("user %s not found", userID)
	}
	return nil
}
