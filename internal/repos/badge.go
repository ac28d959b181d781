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

type BadgeRepo interface {
	// Create awards one badge. A duplicate (user_id, badge_id) pair maps to
	// a Conflict error so callers can treat re-awards as already held.
	Create(ctx context.Context, tx *gorm.DB, badge *types.Badge) (*types.Badge, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Badge, error)
	Exists(ctx context.Context, tx *gorm.DB, userID uuid.UUID, badgeID int) (bool, error)
}

type badgeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBadgeRepo(db *gorm.DB, baseLog *logger.Logger) BadgeRepo {
	repoLog := baseLog.With("repo", "BadgeRepo")
	return &badgeRepo{db: db, log: repoLog}
}

func (r *badgeRepo) Create(ctx context.Context, tx *gorm.DB, badge *types.Badge) (*types.Badge, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(badge).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("badge %d already awarded", badge.BadgeID)
		}
		return nil, err
	}
	return badge, nil
}

func (r *badgeRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Badge, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Badge
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *badgeRepo) Exists(ctx context.Context, tx *gorm.DB, userID uuid.UUID, badgeID int) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Badge{}).
		Where("user_id = ? AND badge_id = ?", userID, badgeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
