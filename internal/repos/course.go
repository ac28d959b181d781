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

// CourseFilter narrows Filter results. Zero-value fields are ignored;
// an entirely zero filter returns every course.
type CourseFilter struct {
	ID    *uuid.UUID
	Title string
}

type CourseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, courses []*types.Course) ([]*types.Course, error)
	GetByID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*types.Course, error)
	Filter(ctx context.Context, tx *gorm.DB, filter CourseFilter) ([]*types.Course, error)
	IncrementEnrolled(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error
	SetNumLessons(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, numLessons int) error
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	repoLog := baseLog.With("repo", "CourseRepo")
	return &courseRepo{db: db, log: repoLog}
}

func (r *courseRepo) Create(ctx context.Context, tx *gorm.DB, courses []*types.Course) ([]*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(courses) == 0 {
		return []*types.Course{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&courses).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("course already exists")
		}
		return nil, err
	}
	return courses, nil
}

func (r *courseRepo) GetByID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Course
	if err := transaction.WithContext(ctx).
		Where("id = ?", courseID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("course %s not found", courseID)
		}
		return nil, err
	}
	return &result, nil
}

func (r *courseRepo) Filter(ctx context.Context, tx *gorm.DB, filter CourseFilter) ([]*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	query := transaction.WithContext(ctx).Model(&types.Course{})
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.Title != "" {
		query = query.Where("title = ?", filter.Title)
	}

	var results []*types.Course
	if err := query.Order("created_at ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *courseRepo) IncrementEnrolled(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.Course{}).
		Where("id = ?", courseID).
		Update("num_people_enrolled", gorm.Expr("num_people_enrolled + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("course %s not found", courseID)
	}
	return nil
}

func (r *courseRepo) SetNumLessons(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, numLessons int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.Course{}).
		Where("id = ?", courseID).
		Update("num_lessons", numLessons)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("course %s not found", courseID)
	}
	return nil
}
