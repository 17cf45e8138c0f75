package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"fashionec/internal/auth"
	"fashionec/internal/model"
	"fashionec/internal/service"
)

// AdminHandler handles user management for admins.
type AdminHandler struct {
	userService service.UserService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(userService service.UserService) *AdminHandler {
	return &AdminHandler{userService: userService}
}

// ListUsers godoc
// @Summary List all users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.userService.ListUsers(c.Request().Context(), auth.CurrentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// UpdateUser godoc
// @Summary Partially update a user
// @Description Username, email, role, password (rehashed; empty is ignored) and is_active.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body model.UserPatch true "Fields to change"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/users/{id} [put]
func (h *AdminHandler) UpdateUser(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var patch model.UserPatch
	if err := bindPatch(c, &patch); err != nil {
		return err
	}
	if patch.Email.Set {
		if err := c.Validate(&emailCheck{Email: patch.Email.Value}); err != nil {
			return invalidRequest(err.Error())
		}
	}

	user, err := h.userService.UpdateUser(c.Request().Context(), id, patch, auth.CurrentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

type emailCheck struct {
	Email string `validate:"required,email,max=255"`
}

// DeleteUser godoc
// @Summary Delete a user
// @Description Soft-deletes the user's products, then removes the user. Admins cannot be deleted.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.userService.DeleteUser(c.Request().Context(), id, auth.CurrentUser(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "user deleted"})
}
