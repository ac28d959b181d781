package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/eduforge/eduforge-backend/internal/apperr"
	"github.com/eduforge/eduforge-backend/internal/logger"
	"github.com/eduforge/eduforge-backend/internal/types"
)

type ProgressRepo interface {
	Create(ctx context.Context, tx *gorm.DB, progress []*types.Progress) ([]*types.Progress, error)
	GetByUserAndMaterial(ctx context.Context, tx *gorm.DB, userID, materialID uuid.UUID) (*types.Progress, error)
	// GetForUpdate reads the progress row under a FOR UPDATE lock. Callers
	// must hold an open transaction; the lock is released on commit or
	// rollback.
	GetForUpdate(ctx context.Context, tx *gorm.DB, userID, materialID uuid.UUID) (*types.Progress, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Progress, error)
	UpdateAttempts(ctx context.Context, tx *gorm.DB, progressID uuid.UUID, attemptsRemaining int) error
	// AppendAnswer pushes one submitted answer onto the user_answers jsonb
	// array in place.
	AppendAnswer(ctx context.Context, tx *gorm.DB, progressID uuid.UUID, answer string) error
	SetStatus(ctx context.Context, tx *gorm.DB, progressID uuid.UUID, status types.ProgressStatus, completedAt *time.Time) error
}

type progressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	repoLog := baseLog.With("repo", "ProgressRepo")
	return &progressRepo{db: db, log: repoLog}
}

func (r *progressRepo) Create(ctx context.Context, tx *gorm.DB, progress []*types.Progress) ([]*types.Progress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(progress) == 0 {
		return []*types.Progress{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&progress).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("progress already exists for material")
		}
		return nil, err
	}
	return progress, nil
}

func (r *progressRepo) GetByUserAndMaterial(ctx context.Context, tx *gorm.DB, userID, materialID uuid.UUID) (*types.Progress, error) {
	return r.get(ctx, tx, userID, materialID, false)
}

func (r *progressRepo) GetForUpdate(ctx context.Context, tx *gorm.DB, userID, materialID uuid.UUID) (*types.Progress, error) {
	return r.get(ctx, tx, userID, materialID, true)
}

func (r *progressRepo) get(ctx context.Context, tx *gorm.DB, userID, materialID uuid.UUID, forUpdate bool) (*types.Progress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	query := transaction.WithContext(ctx)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var result types.Progress
	if err := query.
		Where("user_id = ? AND material_id = ?", userID, materialID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("no progress for material %s", materialID)
		}
		return nil, err
	}
	return &result, nil
}

func (r *progressRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Progress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Progress
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *progressRepo) UpdateAttempts(ctx context.Context, tx *gorm.DB, progressID uuid.UUID, attemptsRemaining int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.Progress{}).
		Where("id = ?", progressID).
		Update("attempts_remaining", attemptsRemaining)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("progress %s not found", progressID)
	}
	return nil
}

func (r *progressRepo) AppendAnswer(ctx context.Context, tx *gorm.DB, progressID uuid.UUID, answer string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.Progress{}).
		Where("id = ?", progressID).
		Update("user_answers", gorm.Expr(
			"COALESCE(user_answers, '[]'::jsonb) || to_jsonb(?::text)", answer,
		))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("progress %s not found", progressID)
	}
	return nil
}

func (r *progressRepo) SetStatus(ctx context.Context, tx *gorm.DB, progressID uuid.UUID, status types.ProgressStatus, completedAt *time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	updates := map[string]interface{}{"status": status}
	if completedAt != nil {
		updates["completed_at"] = *completedAt
	}

	res := transaction.WithContext(ctx).
		Model(&types.Progress{}).
		Where("id = ?", progressID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("progress %s not found", progressID)
	}
	return nil
}
