package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eduforge/eduforge-backend/internal/apperr"
	"github.com/eduforge/eduforge-backend/internal/logger"
	"github.com/eduforge/eduforge-backend/internal/repos"
	"github.com/eduforge/eduforge-backend/internal/types"
)

type CreateCourseInput struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Categories  string `json:"categories"`
}

type CourseService interface {
	Create(ctx context.Context, author string, input CreateCourseInput) (*types.Course, error)
	// Get resolves courses by title or id. With no filter it lists every
	// course; with a filter it fails NotFound when nothing matches.
	Get(ctx context.Context, title string, courseID *uuid.UUID) ([]*types.Course, error)
	GetByID(ctx context.Context, courseID uuid.UUID) (*types.Course, error)
}

type courseService struct {
	db         *gorm.DB
	courseRepo repos.CourseRepo
	log        *logger.Logger
}

func NewCourseService(db *gorm.DB, courseRepo repos.CourseRepo, baseLog *logger.Logger) CourseService {
	return &courseService{
		db:         db,
		courseRepo: courseRepo,
		log:        baseLog.With("service", "CourseService"),
	}
}

func (s *courseService) Create(ctx context.Context, author string, input CreateCourseInput) (*types.Course, error) {
	course := &types.Course{
		Title:       input.Title,
		Author:      author,
		Description: input.Description,
		Categories:  input.Categories,
	}
	created, err := s.courseRepo.Create(ctx, nil, []*types.Course{course})
	if err != nil {
		return nil, err
	}

	s.log.Info("course created", "course_id", created[0].ID.String(), "title", created[0].Title)
	return created[0], nil
}

func (s *courseService) Get(ctx context.Context, title string, courseID *uuid.UUID) ([]*types.Course, error) {
	filter := repos.CourseFilter{ID: courseID, Title: title}
	courses, err := s.courseRepo.Filter(ctx, nil, filter)
	if err != nil {
		return nil, apperr.Storage(err)
	}

	filtered := title != "" || courseID != nil
	if filtered && len(courses) == 0 {
		return nil, apperr.NotFound("no course matched the filter")
	}
	return courses, nil
}

func (s *courseService) GetByID(ctx context.Context, courseID uuid.UUID) (*types.Course, error) {
	return s.courseRepo.GetByID(ctx, nil, courseID)
}
