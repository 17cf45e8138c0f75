package auth

import (
	"context"
	"errors"
	"fmt"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	apperrors "fashionec/internal/errors"
	"fashionec/internal/model"
)

const currentUserKey = "current_user"

// UserLookup resolves a token subject to a stored user.
type UserLookup interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

// Guard resolves bearer tokens to users and enforces role and ownership rules.
// It keeps no state between requests.
type Guard struct {
	tokens *JWTService
	users  UserLookup
}

// NewGuard creates a guard backed by the token service and user store.
func NewGuard(tokens *JWTService, users UserLookup) *Guard {
	return &Guard{tokens: tokens, users: users}
}

// Authenticate decodes the token and loads the user named by its subject.
func (g *Guard) Authenticate(ctx context.Context, token string) (*model.User, error) {
	subject, err := g.tokens.Decode(token)
	if err != nil {
		return nil, err
	}

	user, err := g.users.FindByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: unknown subject", apperrors.ErrInvalidToken)
		}
		return nil, fmt.Errorf("resolve token subject: %w", err)
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountInactive
	}
	return user, nil
}

// parseError marks failures that happened after a token was extracted.
type parseError struct {
	err error
}

func (e *parseError) Error() string { return e.err.Error() }
func (e *parseError) Unwrap() error { return e.err }

// Middleware requires "Authorization: Bearer <token>" and stores the resolved
// user in the echo context.
func (g *Guard) Middleware() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  currentUserKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			user, err := g.Authenticate(c.Request().Context(), token)
			if err != nil {
				return nil, &parseError{err: err}
			}
			return user, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			var pe *parseError
			if errors.As(err, &pe) {
				return httpError(pe.err)
			}
			return httpError(apperrors.ErrMissingToken)
		},
	})
}

// AdminOnly rejects requests whose authenticated user is not an admin.
// It must run after Middleware.
func (g *Guard) AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := RequireRole(CurrentUser(c), model.RoleAdmin); err != nil {
				return httpError(err)
			}
			return next(c)
		}
	}
}

// CurrentUser returns the user stored by Middleware, or nil.
func CurrentUser(c echo.Context) *model.User {
	user, _ := c.Get(currentUserKey).(*model.User)
	return user
}

// RequireRole fails with ErrAdminRequired unless the user satisfies role.
// Admins satisfy every role.
func RequireRole(user *model.User, role model.Role) error {
	if user == nil {
		return apperrors.ErrMissingToken
	}
	if user.IsAdmin() || user.Role == role {
		return nil
	}
	if role == model.RoleAdmin {
		return apperrors.ErrAdminRequired
	}
	return apperrors.ErrForbidden
}

// RequireOwnerOrAdmin fails with ErrForbidden unless the user owns the
// resource or is an admin.
func RequireOwnerOrAdmin(user *model.User, ownerID uint) error {
	if user == nil {
		return apperrors.ErrMissingToken
	}
	if user.ID == ownerID || user.IsAdmin() {
		return nil
	}
	return apperrors.ErrForbidden
}

func httpError(err error) error {
	logrus.WithError(err).Debug("authentication rejected")
	httpErr := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}
