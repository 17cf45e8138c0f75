package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"fashionec/internal/auth"
	"fashionec/internal/model"
	"fashionec/internal/service"
)

// ProductHandler handles product endpoints.
type ProductHandler struct {
	productService service.ProductService
}

// NewProductHandler creates a new product handler.
func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// CreateProductRequest represents a new listing.
type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price" swaggertype:"number"`
	CategoryID  uint            `json:"category_id" validate:"required"`
	ImageURL    *string         `json:"image_url"`
	Stock       *int            `json:"stock"`
}

// ListProducts godoc
// @Summary List visible products
// @Description Active, non-deleted products (sold items included), newest first.
// @Tags products
// @Produce json
// @Param skip query int false "Offset" default(0)
// @Param limit query int false "Page size (max 100)" default(100)
// @Success 200 {array} model.Product
// @Failure 400 {object} errors.ErrorResponse
// @Router /products [get]
func (h *ProductHandler) ListProducts(c echo.Context) error {
	var skip, limit int
	if err := echo.QueryParamsBinder(c).
		Int("skip", &skip).
		Int("limit", &limit).
		BindError(); err != nil {
		return invalidRequest("skip and limit must be integers")
	}

	products, err := h.productService.List(c.Request().Context(), skip, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

// GetProduct godoc
// @Summary Get product by id
// @Description Returns the product in any status, with seller and category.
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} model.Product
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /products/{id} [get]
func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	product, err := h.productService.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// CreateProduct godoc
// @Summary List a product for sale
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateProductRequest true "Product data"
// @Success 201 {object} model.Product
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /products [post]
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req CreateProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	product, err := h.productService.Create(c.Request().Context(), service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
	}, auth.CurrentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct godoc
// @Summary Partially update a product
// @Description Only fields present in the body change; null clears description and image_url.
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Param request body model.ProductPatch true "Fields to change"
// @Success 200 {object} model.Product
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /products/{id} [put]
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var patch model.ProductPatch
	if err := bindPatch(c, &patch); err != nil {
		return err
	}

	product, err := h.productService.Update(c.Request().Context(), id, patch, auth.CurrentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct godoc
// @Summary Soft-delete a product
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.productService.Delete(c.Request().Context(), id, auth.CurrentUser(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "product deleted"})
}

// MyProducts godoc
// @Summary List the caller's products
// @Description Includes inactive listings, excludes deleted ones.
// @Tags products
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Product
// @Failure 401 {object} errors.ErrorResponse
// @Router /my-products [get]
func (h *ProductHandler) MyProducts(c echo.Context) error {
	products, err := h.productService.ListMine(c.Request().Context(), auth.CurrentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}
