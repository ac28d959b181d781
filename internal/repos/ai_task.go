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

type AiTaskRepo interface {
	Create(ctx context.Context, tx *gorm.DB, tasks []*types.AiTask) ([]*types.AiTask, error)
	GetByID(ctx context.Context, tx *gorm.DB, taskID uuid.UUID) (*types.AiTask, error)
	SetStatus(ctx context.Context, tx *gorm.DB, taskID uuid.UUID, status types.ProgressStatus) error
}

type aiTaskRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAiTaskRepo(db *gorm.DB, baseLog *logger.Logger) AiTaskRepo {
	repoLog := baseLog.With("repo", "AiTaskRepo")
	return &aiTaskRepo{db: db, log: repoLog}
}

func (r *aiTaskRepo) Create(ctx context.Context, tx *gorm.DB, tasks []*types.AiTask) ([]*types.AiTask, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(tasks) == 0 {
		return []*types.AiTask{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *aiTaskRepo) GetByID(ctx context.Context, tx *gorm.DB, taskID uuid.UUID) (*types.AiTask, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.AiTask
	if err := transaction.WithContext(ctx).
		Where("id = ?", taskID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("task %s not found", taskID)
		}
		return nil, err
	}
	return &result, nil
}

func (r *aiTaskRepo) SetStatus(ctx context.Context, tx *gorm.DB, taskID uuid.UUID, status types.ProgressStatus) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.AiTask{}).
		Where("id = ?", taskID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("task %s not found", taskID)
	}
	return nil
}
