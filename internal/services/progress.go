package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eduforge/eduforge-backend/internal/apperr"
	"github.com/eduforge/eduforge-backend/internal/badges"
	"github.com/eduforge/eduforge-backend/internal/logger"
	"github.com/eduforge/eduforge-backend/internal/repos"
	"github.com/eduforge/eduforge-backend/internal/types"
)

// AnswerResult is the outcome of one answer submission.
type AnswerResult struct {
	Correct           bool                      `json:"correct"`
	Completed         bool                      `json:"completed"`
	AttemptsRemaining int                       `json:"attempts_remaining"`
	Badges            map[string]badges.Outcome `json:"badges,omitempty"`
}

type ProgressService interface {
	// StartMaterial enrolls the user in a course or opens a lesson.
	// Starting the same material twice fails with Conflict.
	StartMaterial(ctx context.Context, userID, materialID uuid.UUID, materialType types.MaterialType) (*types.Progress, error)
	GetProgress(ctx context.Context, userID, materialID uuid.UUID) (*types.Progress, error)
	GetStatus(ctx context.Context, userID, materialID uuid.UUID) (types.ProgressStatus, error)
	// AnswerLesson grades one submission against a practical lesson and
	// advances the streak and badge state on success.
	AnswerLesson(ctx context.Context, userID, lessonID uuid.UUID, answer string) (*AnswerResult, error)
	// CompleteLesson marks a lecture finished. Practical lessons complete
	// only through AnswerLesson.
	CompleteLesson(ctx context.Context, userID, lessonID uuid.UUID) (*types.Progress, error)
}

type progressService struct {
	db           *gorm.DB
	progressRepo repos.ProgressRepo
	lessonRepo   repos.LessonRepo
	courseRepo   repos.CourseRepo
	userRepo     repos.UserRepo
	dispatcher   badges.Dispatcher
	log          *logger.Logger
}

func NewProgressService(
	db *gorm.DB,
	progressRepo repos.ProgressRepo,
	lessonRepo repos.LessonRepo,
	courseRepo repos.CourseRepo,
	userRepo repos.UserRepo,
	dispatcher badges.Dispatcher,
	baseLog *logger.Logger,
) ProgressService {
	return &progressService{
		db:           db,
		progressRepo: progressRepo,
		lessonRepo:   lessonRepo,
		courseRepo:   courseRepo,
		userRepo:     userRepo,
		dispatcher:   dispatcher,
		log:          baseLog.With("service", "ProgressService"),
	}
}

func (s *progressService) StartMaterial(ctx context.Context, userID, materialID uuid.UUID, materialType types.MaterialType) (*types.Progress, error) {
	progress := &types.Progress{
		UserID:       userID,
		MaterialID:   materialID,
		MaterialType: materialType,
		Status:       types.ProgressInProgress,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch materialType {
		case types.MaterialTypeCourse:
			if _, err := s.courseRepo.GetByID(ctx, tx, materialID); err != nil {
				return err
			}
		case types.MaterialTypeLesson:
			lesson, err := s.lessonRepo.GetByID(ctx, tx, materialID)
			if err != nil {
				return err
			}
			if lesson.IsPractical() {
				attempts := *lesson.MaxAttempts
				progress.AttemptsRemaining = &attempts
			}
		default:
			return apperr.InvalidArgument("unknown material type %q", materialType)
		}

		created, err := s.progressRepo.Create(ctx, tx, []*types.Progress{progress})
		if err != nil {
			return err
		}
		progress = created[0]

		if materialType == types.MaterialTypeCourse {
			return s.courseRepo.IncrementEnrolled(ctx, tx, materialID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("material started",
		"user_id", userID.String(),
		"material_id", materialID.String(),
		"material_type", string(materialType))
	return progress, nil
}

func (s *progressService) GetProgress(ctx context.Context, userID, materialID uuid.UUID) (*types.Progress, error) {
	return s.progressRepo.GetByUserAndMaterial(ctx, nil, userID, materialID)
}

func (s *progressService) GetStatus(ctx context.Context, userID, materialID uuid.UUID) (types.ProgressStatus, error) {
	progress, err := s.progressRepo.GetByUserAndMaterial(ctx, nil, userID, materialID)
	if err != nil {
		return "", err
	}
	return progress.Status, nil
}

func (s *progressService) AnswerLesson(ctx context.Context, userID, lessonID uuid.UUID, answer string) (*AnswerResult, error) {
	result := &AnswerResult{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lesson, err := s.lessonRepo.GetByID(ctx, tx, lessonID)
		if err != nil {
			return err
		}
		if !lesson.IsPractical() {
			return apperr.InvalidOperation("lesson %s has no question to answer", lessonID)
		}

		// The row lock serializes concurrent submissions for the same
		// lesson so the attempt budget cannot be spent twice.
		progress, err := s.progressRepo.GetForUpdate(ctx, tx, userID, lessonID)
		if err != nil {
			return err
		}
		if progress.Status == types.ProgressCompleted {
			return apperr.Conflict("lesson %s is already completed", lessonID)
		}

		// Exact match, case-sensitive, no trimming.
		if lesson.Answer != nil && answer == *lesson.Answer {
			result.Correct = true
			result.Completed = true
			if progress.AttemptsRemaining != nil {
				result.AttemptsRemaining = *progress.AttemptsRemaining
			}
			if err := s.userRepo.IncrementStreak(ctx, tx, userID); err != nil {
				return err
			}
			now := time.Now()
			if err := s.progressRepo.SetStatus(ctx, tx, progress.ID, types.ProgressCompleted, &now); err != nil {
				return err
			}
			return s.lessonRepo.IncrementCompleted(ctx, tx, lessonID)
		}

		// Wrong answers spend an attempt and land in the answer log;
		// correct ones touch neither.
		if progress.AttemptsRemaining == nil || *progress.AttemptsRemaining <= 0 {
			return apperr.AttemptsExhausted("no attempts remaining for lesson %s", lessonID)
		}
		if err := s.userRepo.ResetStreak(ctx, tx, userID); err != nil {
			return err
		}
		remaining := *progress.AttemptsRemaining - 1
		if err := s.progressRepo.UpdateAttempts(ctx, tx, progress.ID, remaining); err != nil {
			return err
		}
		if err := s.progressRepo.AppendAnswer(ctx, tx, progress.ID, answer); err != nil {
			return err
		}
		result.AttemptsRemaining = remaining
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Badge scans run after the answer is durable so a scan failure can
	// never take the submission down with it.
	if result.Correct {
		result.Badges = s.dispatcher.Scan(ctx, nil, userID)
	}
	return result, nil
}

func (s *progressService) CompleteLesson(ctx context.Context, userID, lessonID uuid.UUID) (*types.Progress, error) {
	var progress *types.Progress

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lesson, err := s.lessonRepo.GetByID(ctx, tx, lessonID)
		if err != nil {
			return err
		}
		if lesson.IsPractical() {
			return apperr.InvalidOperation("practical lesson %s completes by answering", lessonID)
		}

		progress, err = s.progressRepo.GetForUpdate(ctx, tx, userID, lessonID)
		if err != nil {
			return err
		}
		if progress.Status == types.ProgressCompleted {
			return apperr.Conflict("lesson %s is already completed", lessonID)
		}

		now := time.Now()
		if err := s.progressRepo.SetStatus(ctx, tx, progress.ID, types.ProgressCompleted, &now); err != nil {
			return err
		}
		progress.Status = types.ProgressCompleted
		progress.CompletedAt = &now
		return s.lessonRepo.IncrementCompleted(ctx, tx, lessonID)
	})
	if err != nil {
		return nil, err
	}
	return progress, nil
}
