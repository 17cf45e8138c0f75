package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"fashionec/internal/auth"
	apperrors "fashionec/internal/errors"
	"fashionec/internal/model"
	"fashionec/internal/repository"
)

// RegisterInput carries the fields a new user supplies.
type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// LoginResult is a freshly issued access token together with its owner.
type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *model.User
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*model.User, error)
	Login(ctx context.Context, login, password string) (*LoginResult, error)
}

type authService struct {
	userRepo   repository.UserRepository
	hasher     *auth.PasswordHasher
	jwtService *auth.JWTService
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, hasher *auth.PasswordHasher, jwtService *auth.JWTService) AuthService {
	return &authService{
		userRepo:   userRepo,
		hasher:     hasher,
		jwtService: jwtService,
	}
}

// Register creates a new user with the default role and a hashed password.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	if _, err := s.userRepo.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	if _, err := s.userRepo.FindByUsername(ctx, input.Username); err == nil {
		return nil, apperrors.ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: hashed,
		Role:         model.RoleUser,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, takenError(ctx, s.userRepo, 0, input.Email)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Login verifies credentials and issues an access token. login may be either
// the username or the email.
func (s *authService) Login(ctx context.Context, login, password string) (*LoginResult, error) {
	user, err := s.userRepo.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountInactive
	}

	token, expiresAt, err := s.jwtService.Issue(user.Username)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	return &LoginResult{AccessToken: token, ExpiresAt: expiresAt, User: user}, nil
}
