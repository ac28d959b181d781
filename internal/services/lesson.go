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

type AddLessonInput struct {
	CourseID    uuid.UUID `json:"course_id" binding:"required"`
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Question    *string   `json:"question"`
	Answer      *string   `json:"answer"`
	MaxAttempts *int      `json:"max_attempts"`
	Level       int       `json:"level"`
}

type LessonService interface {
	// Add appends a lesson to a course. Only the course author may add
	// lessons; the lesson's type is derived from the presence of a
	// question and answer.
	Add(ctx context.Context, author string, input AddLessonInput) (*types.Lesson, error)
	Get(ctx context.Context, lessonID uuid.UUID) (*types.Lesson, error)
	ListForCourse(ctx context.Context, courseID uuid.UUID) ([]*types.Lesson, error)
}

type lessonService struct {
	db         *gorm.DB
	lessonRepo repos.LessonRepo
	courseRepo repos.CourseRepo
	log        *logger.Logger
}

func NewLessonService(
	db *gorm.DB,
	lessonRepo repos.LessonRepo,
	courseRepo repos.CourseRepo,
	baseLog *logger.Logger,
) LessonService {
	return &lessonService{
		db:         db,
		lessonRepo: lessonRepo,
		courseRepo: courseRepo,
		log:        baseLog.With("service", "LessonService"),
	}
}

func (s *lessonService) Add(ctx context.Context, author string, input AddLessonInput) (*types.Lesson, error) {
	lessonType, err := classifyLesson(input)
	if err != nil {
		return nil, err
	}

	var lesson *types.Lesson
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		course, err := s.courseRepo.GetByID(ctx, tx, input.CourseID)
		if err != nil {
			return err
		}
		if course.Author != author {
			return apperr.Unauthorized("only the course author can add lessons")
		}

		// Position is append-only: the new lesson lands after every
		// existing one, and the course's cached lesson count moves with it.
		count, err := s.lessonRepo.CountByCourseID(ctx, tx, input.CourseID)
		if err != nil {
			return err
		}

		lesson = &types.Lesson{
			CourseID: input.CourseID,
			Title:    input.Title,
			Type:     lessonType,
			Desc:     input.Description,
			Question: input.Question,
			Answer:   input.Answer,
			Level:    input.Level,
			Position: int(count),
		}
		if lessonType == types.LessonTypePractical {
			lesson.MaxAttempts = input.MaxAttempts
		}

		created, err := s.lessonRepo.Create(ctx, tx, []*types.Lesson{lesson})
		if err != nil {
			return err
		}
		lesson = created[0]

		return s.courseRepo.SetNumLessons(ctx, tx, input.CourseID, int(count)+1)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("lesson added",
		"lesson_id", lesson.ID.String(),
		"course_id", input.CourseID.String(),
		"type", string(lesson.Type),
		"position", lesson.Position)
	return lesson, nil
}

func (s *lessonService) Get(ctx context.Context, lessonID uuid.UUID) (*types.Lesson, error) {
	return s.lessonRepo.GetByID(ctx, nil, lessonID)
}

func (s *lessonService) ListForCourse(ctx context.Context, courseID uuid.UUID) ([]*types.Lesson, error) {
	if _, err := s.courseRepo.GetByID(ctx, nil, courseID); err != nil {
		return nil, err
	}
	return s.lessonRepo.ListByCourseID(ctx, nil, courseID)
}

// classifyLesson derives the lesson type from its fields. A question and
// an answer together make a practical lesson, neither makes a lecture,
// and exactly one of the two is rejected.
func classifyLesson(input AddLessonInput) (types.LessonType, error) {
	hasQuestion := input.Question != nil && *input.Question != ""
	hasAnswer := input.Answer != nil && *input.Answer != ""

	switch {
	case hasQuestion && hasAnswer:
		if input.MaxAttempts == nil || *input.MaxAttempts <= 0 {
			return "", apperr.InvalidArgument("practical lesson requires max_attempts > 0")
		}
		return types.LessonTypePractical, nil
	case hasQuestion != hasAnswer:
		return "", apperr.InvalidArgument("question and answer must be provided together")
	default:
		return types.LessonTypeLecture, nil
	}
}
