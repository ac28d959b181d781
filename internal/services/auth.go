package services

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/eduforge/eduforge-backend/internal/apperr"
	"github.com/eduforge/eduforge-backend/internal/logger"
	"github.com/eduforge/eduforge-backend/internal/repos"
	"github.com/eduforge/eduforge-backend/internal/requestdata"
	"github.com/eduforge/eduforge-backend/internal/types"
	"github.com/eduforge/eduforge-backend/internal/utils"
)

type RegisterInput struct {
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Age       int    `json:"age"`
	Phone     string `json:"phone"`
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*types.User, *TokenPair, error)
	Login(ctx context.Context, input LoginInput) (*types.User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
	// SetContextFromToken validates an access token and attaches the
	// caller's identity to the context.
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
	db         *gorm.DB
	userRepo   repos.UserRepo
	tokenRepo  repos.UserTokenRepo
	jwtSecret  string
	accessTTL  time.Duration
	refreshTTL time.Duration
	log        *logger.Logger
}

func NewAuthService(
	db *gorm.DB,
	userRepo repos.UserRepo,
	tokenRepo repos.UserTokenRepo,
	baseLog *logger.Logger,
) AuthService {
	svcLog := baseLog.With("service", "AuthService")
	accessMinutes := utils.GetEnvAsInt("JWT_ACCESS_TTL_MINUTES", 15, svcLog)
	refreshHours := utils.GetEnvAsInt("JWT_REFRESH_TTL_HOURS", 720, svcLog)
	return &authService{
		db:         db,
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtSecret:  utils.GetEnv("JWT_SECRET", "", svcLog),
		accessTTL:  time.Duration(accessMinutes) * time.Minute,
		refreshTTL: time.Duration(refreshHours) * time.Hour,
		log:        svcLog,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*types.User, *TokenPair, error) {
	taken, err := s.userRepo.UsernameExists(ctx, nil, input.Username)
	if err != nil {
		return nil, nil, apperr.Storage(err)
	}
	if taken {
		return nil, nil, apperr.Conflict("username %q is taken", input.Username)
	}
	taken, err = s.userRepo.EmailExists(ctx, nil, input.Email)
	if err != nil {
		return nil, nil, apperr.Storage(err)
	}
	if taken {
		return nil, nil, apperr.Conflict("email %q is taken", input.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	user := &types.User{
		Username:  input.Username,
		Password:  string(hash),
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Age:       input.Age,
		Role:      types.RoleUser,
	}
	if input.Phone != "" {
		user.Phone = &input.Phone
	}

	var pair *TokenPair
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := s.userRepo.Create(ctx, tx, []*types.User{user})
		if err != nil {
			return err
		}
		user = created[0]

		pair, err = s.issueTokens(ctx, tx, user)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.log.Info("user registered", "user_id", user.ID.String(), "username", user.Username)
	return user, pair, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*types.User, *TokenPair, error) {
	user, err := s.userRepo.GetByUsername(ctx, nil, input.Username)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, nil, apperr.Unauthorized("invalid credentials")
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return nil, nil, apperr.Unauthorized("invalid credentials")
	}

	var pair *TokenPair
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pair, err = s.issueTokens(ctx, tx, user)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var pair *TokenPair
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stored, err := s.tokenRepo.GetByRefreshToken(ctx, tx, refreshToken)
		if err != nil {
			return err
		}
		if time.Now().After(stored.ExpiresAt) {
			_ = s.tokenRepo.DeleteByID(ctx, tx, stored.ID)
			return apperr.Unauthorized("refresh token expired")
		}

		user, err := s.userRepo.GetByID(ctx, tx, stored.UserID)
		if err != nil {
			return err
		}

		// Rotate: the old pair is revoked once the new one is issued.
		if err := s.tokenRepo.DeleteByID(ctx, tx, stored.ID); err != nil {
			return err
		}
		pair, err = s.issueTokens(ctx, tx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *authService) Logout(ctx context.Context, accessToken string) error {
	stored, err := s.tokenRepo.GetByAccessToken(ctx, nil, accessToken)
	if err != nil {
		if apperr.IsKind(err, apperr.KindUnauthorized) {
			return nil
		}
		return err
	}
	return s.tokenRepo.DeleteByID(ctx, nil, stored.ID)
}

func (s *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	claims, err := utils.ParseAccessToken(tokenString, s.jwtSecret)
	if err != nil {
		return ctx, apperr.Unauthorized("invalid access token")
	}

	return requestdata.WithRequestData(ctx, &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      claims.UserID,
		Username:    claims.Username,
	}), nil
}

func (s *authService) issueTokens(ctx context.Context, tx *gorm.DB, user *types.User) (*TokenPair, error) {
	access, err := utils.GenerateAccessToken(user.ID, user.Username, s.jwtSecret, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	token := &types.UserToken{
		UserID:       user.ID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    time.Now().Add(s.refreshTTL),
	}
	if _, err := s.tokenRepo.Create(ctx, tx, []*types.UserToken{token}); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
