package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eduforge/eduforge-backend/internal/logger"
	"github.com/eduforge/eduforge-backend/internal/repos"
	"github.com/eduforge/eduforge-backend/internal/types"
)

// UserStats summarizes a user's activity across the platform.
type UserStats struct {
	SuccessInARow    int `json:"success_in_a_row"`
	MaterialsStarted int `json:"materials_started"`
	LessonsCompleted int `json:"lessons_completed"`
	BadgesEarned     int `json:"badges_earned"`
}

type UserService interface {
	GetMe(ctx context.Context, userID uuid.UUID) (*types.User, error)
	GetStats(ctx context.Context, userID uuid.UUID) (*UserStats, error)
	MyBadges(ctx context.Context, userID uuid.UUID) ([]*types.Badge, error)
}

type userService struct {
	db           *gorm.DB
	userRepo     repos.UserRepo
	progressRepo repos.ProgressRepo
	badgeRepo    repos.BadgeRepo
	log          *logger.Logger
}

func NewUserService(
	db *gorm.DB,
	userRepo repos.UserRepo,
	progressRepo repos.ProgressRepo,
	badgeRepo repos.BadgeRepo,
	baseLog *logger.Logger,
) UserService {
	return &userService{
		db:           db,
		userRepo:     userRepo,
		progressRepo: progressRepo,
		badgeRepo:    badgeRepo,
		log:          baseLog.With("service", "UserService"),
	}
}

func (s *userService) GetMe(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	return s.userRepo.GetByID(ctx, nil, userID)
}

func (s *userService) GetStats(ctx context.Context, userID uuid.UUID) (*UserStats, error) {
	user, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}

	progress, err := s.progressRepo.ListByUserID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	completedLessons := 0
	for _, p := range progress {
		if p.MaterialType == types.MaterialTypeLesson && p.Status == types.ProgressCompleted {
			completedLessons++
		}
	}

	badges, err := s.badgeRepo.ListByUserID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}

	return &UserStats{
		SuccessInARow:    user.SuccessInARow,
		MaterialsStarted: len(progress),
		LessonsCompleted: completedLessons,
		BadgesEarned:     len(badges),
	}, nil
}

func (s *userService) MyBadges(ctx context.Context, userID uuid.UUID) ([]*types.Badge, error) {
	return s.badgeRepo.ListByUserID(ctx, nil, userID)
}
