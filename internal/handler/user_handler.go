package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"fashionec/internal/service"
)

// UserHandler serves public user profiles.
type UserHandler struct {
	svc      service.UserService
	products service.ProductService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService, products service.ProductService) *UserHandler {
	return &UserHandler{svc: svc, products: products}
}

// GetUser godoc
// @Summary Get public user profile
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.svc.GetProfile(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// ListUserProducts godoc
// @Summary List a user's visible products
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {array} model.Product
// @Failure 400 {object} errors.ErrorResponse
// @Router /users/{id}/products [get]
func (h *UserHandler) ListUserProducts(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	products, err := h.products.ListBySeller(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}
