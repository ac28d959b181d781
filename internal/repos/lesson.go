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

type LessonRepo interface {
	Create(ctx context.Context, tx *gorm.DB, lessons []*types.Lesson) ([]*types.Lesson, error)
	GetByID(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) (*types.Lesson, error)
	ListByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Lesson, error)
	CountByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (int64, error)
	IncrementCompleted(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) error
}

type lessonRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	repoLog := baseLog.With("repo", "LessonRepo")
	return &lessonRepo{db: db, log: repoLog}
}

func (r *lessonRepo) Create(ctx context.Context, tx *gorm.DB, lessons []*types.Lesson) ([]*types.Lesson, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(lessons) == 0 {
		return []*types.Lesson{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&lessons).Error; err != nil {
		return nil, err
	}
	return lessons, nil
}

func (r *lessonRepo) GetByID(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) (*types.Lesson, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Lesson
	if err := transaction.WithContext(ctx).
		Where("id = ?", lessonID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("lesson %s not found", lessonID)
		}
		return nil, err
	}
	return &result, nil
}

func (r *lessonRepo) ListByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Lesson, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Lesson
	if err := transaction.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *lessonRepo) CountByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Lesson{}).
		Where("course_id = ?", courseID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *lessonRepo) IncrementCompleted(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.Lesson{}).
		Where("id = ?", lessonID).
		Update("num_people_completed", gorm.Expr("num_people_completed + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("lesson %s not found", lessonID)
	}
	return nil
}
