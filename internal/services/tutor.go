package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eduforge/eduforge-backend/internal/apperr"
	"github.com/eduforge/eduforge-backend/internal/badges"
	"github.com/eduforge/eduforge-backend/internal/logger"
	"github.com/eduforge/eduforge-backend/internal/repos"
	"github.com/eduforge/eduforge-backend/internal/types"
)

// TaskResult is the outcome of answering an AI-generated task.
type TaskResult struct {
	Correct bool                      `json:"correct"`
	Badges  map[string]badges.Outcome `json:"badges,omitempty"`
}

type TutorService interface {
	// AskLessonQuestion answers a free-form question in the context of a
	// lesson the student is reading.
	AskLessonQuestion(ctx context.Context, userID, lessonID uuid.UUID, question string) (string, error)
	// GenerateTask creates a personal practice task from a lesson's
	// material. The reference answer is stored but never returned to
	// the student.
	GenerateTask(ctx context.Context, userID, lessonID uuid.UUID) (*types.AiTask, error)
	// AnswerTask grades a task answer through the AI judge. Unlike lesson
	// answers there is no attempt budget, but correct answers feed the
	// same streak and badge pipeline.
	AnswerTask(ctx context.Context, userID, taskID uuid.UUID, answer string) (*TaskResult, error)
}

type tutorService struct {
	db         *gorm.DB
	aiClient   AIClient
	taskRepo   repos.AiTaskRepo
	lessonRepo repos.LessonRepo
	userRepo   repos.UserRepo
	dispatcher badges.Dispatcher
	log        *logger.Logger
}

func NewTutorService(
	db *gorm.DB,
	aiClient AIClient,
	taskRepo repos.AiTaskRepo,
	lessonRepo repos.LessonRepo,
	userRepo repos.UserRepo,
	dispatcher badges.Dispatcher,
	baseLog *logger.Logger,
) TutorService {
	return &tutorService{
		db:         db,
		aiClient:   aiClient,
		taskRepo:   taskRepo,
		lessonRepo: lessonRepo,
		userRepo:   userRepo,
		dispatcher: dispatcher,
		log:        baseLog.With("service", "TutorService"),
	}
}

func (s *tutorService) AskLessonQuestion(ctx context.Context, userID, lessonID uuid.UUID, question string) (string, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, nil, lessonID)
	if err != nil {
		return "", err
	}

	lessonContext := lesson.Title
	if lesson.Desc != "" {
		lessonContext += "\n" + lesson.Desc
	}
	return s.aiClient.Ask(ctx, userID, lessonContext, question)
}

func (s *tutorService) GenerateTask(ctx context.Context, userID, lessonID uuid.UUID) (*types.AiTask, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, nil, lessonID)
	if err != nil {
		return nil, err
	}

	taskText, answer, err := s.aiClient.GenerateTask(ctx, userID, lesson.Title, lesson.Desc)
	if err != nil {
		return nil, err
	}

	task := &types.AiTask{
		UserID: userID,
		Task:   taskText,
		Answer: answer,
		Status: types.ProgressInProgress,
	}
	created, err := s.taskRepo.Create(ctx, nil, []*types.AiTask{task})
	if err != nil {
		return nil, err
	}

	s.log.Info("ai task generated", "task_id", created[0].ID.String(), "user_id", userID.String())
	return created[0], nil
}

func (s *tutorService) AnswerTask(ctx context.Context, userID, taskID uuid.UUID, answer string) (*TaskResult, error) {
	task, err := s.taskRepo.GetByID(ctx, nil, taskID)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, apperr.NotFound("task %s not found", taskID)
	}
	if task.Status == types.ProgressCompleted {
		return nil, apperr.Conflict("task %s is already completed", taskID)
	}

	// Judge first. If the judge fails the streak stays untouched.
	correct, err := s.aiClient.CompareAnswers(ctx, userID, task.Answer, answer)
	if err != nil {
		return nil, err
	}

	result := &TaskResult{Correct: correct}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !correct {
			return s.userRepo.ResetStreak(ctx, tx, userID)
		}
		if err := s.userRepo.IncrementStreak(ctx, tx, userID); err != nil {
			return err
		}
		return s.taskRepo.SetStatus(ctx, tx, taskID, types.ProgressCompleted)
	})
	if err != nil {
		return nil, err
	}

	if correct {
		result.Badges = s.dispatcher.Scan(ctx, nil, userID)
	}
	return result, nil
}
