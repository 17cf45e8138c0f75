package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"fashionec/internal/auth"
	"fashionec/internal/cache"
	apperrors "fashionec/internal/errors"
	"fashionec/internal/model"
	"fashionec/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// UserService exposes profile reads and admin user management.
type UserService interface {
	GetProfile(ctx context.Context, id uint) (*model.User, error)
	ListUsers(ctx context.Context, actor *model.User) ([]model.User, error)
	UpdateUser(ctx context.Context, id uint, patch model.UserPatch, actor *model.User) (*model.User, error)
	DeleteUser(ctx context.Context, id uint, actor *model.User) error
}

type userService struct {
	repo   repository.UserRepository
	hasher *auth.PasswordHasher
	cache  *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, hasher *auth.PasswordHasher, cache *cache.Client) UserService {
	return &userService{repo: repo, hasher: hasher, cache: cache}
}

func (s *userService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

func (s *userService) GetProfile(ctx context.Context, id uint) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	s.cache.SetJSON(ctx, s.cacheKey(id), user, userCacheTTL)
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, actor *model.User) ([]model.User, error) {
	if err := auth.RequireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

// UpdateUser applies an admin's partial update. Nothing is written unless
// every present field is valid.
func (s *userService) UpdateUser(ctx context.Context, id uint, patch model.UserPatch, actor *model.User) (*model.User, error) {
	if err := auth.RequireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	username := strings.TrimSpace(patch.Username.Value)
	if patch.Username.Set {
		if username == "" || utf8.RuneCountInString(username) > model.MaxUsernameLength {
			return nil, apperrors.ErrInvalidUsername
		}
		if err := s.ensureFree(ctx, user.ID, s.repo.FindByUsername, username, apperrors.ErrUsernameTaken); err != nil {
			return nil, err
		}
	}
	if patch.Email.Set {
		if err := s.ensureFree(ctx, user.ID, s.repo.FindByEmail, patch.Email.Value, apperrors.ErrEmailTaken); err != nil {
			return nil, err
		}
	}
	if patch.Role.Set && !patch.Role.Value.Valid() {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidRole, patch.Role.Value)
	}

	var newHash string
	if patch.Password.Set && patch.Password.Value != "" {
		if newHash, err = s.hasher.Hash(patch.Password.Value); err != nil {
			return nil, err
		}
	}

	if patch.Username.Set {
		user.Username = username
	}
	if patch.Email.Set {
		user.Email = patch.Email.Value
	}
	if patch.Role.Set {
		user.Role = patch.Role.Value
	}
	if newHash != "" {
		user.PasswordHash = newHash
	}
	if patch.IsActive.Set {
		user.IsActive = patch.IsActive.Value
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, takenError(ctx, s.repo, user.ID, user.Email)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	s.cache.Delete(ctx, s.cacheKey(user.ID))

	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"admin_id": actor.ID,
	}).Info("user updated by admin")
	return user, nil
}

// ensureFree fails with taken when value already belongs to a user other than selfID.
func (s *userService) ensureFree(
	ctx context.Context,
	selfID uint,
	find func(context.Context, string) (*model.User, error),
	value string,
	taken error,
) error {
	other, err := find(ctx, value)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("check uniqueness: %w", err)
	}
	if other.ID != selfID {
		return taken
	}
	return nil
}

// takenError names the unique column a concurrent write collided on. The
// email is checked first; any other collision is on the username.
func takenError(ctx context.Context, repo repository.UserRepository, selfID uint, email string) error {
	if other, err := repo.FindByEmail(ctx, email); err == nil && other.ID != selfID {
		return apperrors.ErrEmailTaken
	}
	return apperrors.ErrUsernameTaken
}

// DeleteUser removes a non-admin user after soft-deleting all of their products.
func (s *userService) DeleteUser(ctx context.Context, id uint, actor *model.User) error {
	if err := auth.RequireRole(actor, model.RoleAdmin); err != nil {
		return err
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}
	if user.IsAdmin() {
		return apperrors.ErrAdminNotDeletable
	}

	products, err := s.repo.DeleteCascade(ctx, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	s.cache.Delete(ctx, s.cacheKey(user.ID))

	logrus.WithFields(logrus.Fields{
		"user_id":           user.ID,
		"admin_id":          actor.ID,
		"products_archived": products,
	}).Info("user deleted")
	return nil
}
