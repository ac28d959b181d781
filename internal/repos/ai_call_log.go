package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/eduforge/eduforge-backend/internal/logger"
	"github.com/eduforge/eduforge-backend/internal/types"
)

type AICallLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entry *types.AICallLog) (*types.AICallLog, error)
}

type aiCallLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAICallLogRepo(db *gorm.DB, baseLog *logger.Logger) AICallLogRepo {
	repoLog := baseLog.With("repo", "AICallLogRepo")
	return &aiCallLogRepo{db: db, log: repoLog}
}

func (r *aiCallLogRepo) Create(ctx context.Context, tx *gorm.DB, entry *types.AICallLog) (*types.AICallLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}
