package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"fashionec/internal/auth"
	"fashionec/internal/service"
)

// OrderHandler handles order endpoints.
type OrderHandler struct {
	orderService service.OrderService
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// OrderItemRequest is one line of a new order.
type OrderItemRequest struct {
	ProductID uint            `json:"product_id" validate:"required"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price" swaggertype:"number"`
}

// CreateOrderRequest represents a new order. The total is computed by the server.
type CreateOrderRequest struct {
	ShippingName    string             `json:"shipping_name" validate:"required,max=100"`
	ShippingPhone   string             `json:"shipping_phone" validate:"required,max=20"`
	ShippingAddress string             `json:"shipping_address" validate:"required"`
	Items           []OrderItemRequest `json:"items" validate:"dive"`
}

// CreateOrder godoc
// @Summary Place an order
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateOrderRequest true "Order data"
// @Success 201 {object} model.Order
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /orders [post]
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	var req CreateOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	items := make([]service.OrderItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.OrderItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	order, err := h.orderService.Create(c.Request().Context(), auth.CurrentUser(c), service.CreateOrderInput{
		ShippingName:    req.ShippingName,
		ShippingPhone:   req.ShippingPhone,
		ShippingAddress: req.ShippingAddress,
		Items:           items,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

// ListOrders godoc
// @Summary List the caller's orders
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Order
// @Failure 401 {object} errors.ErrorResponse
// @Router /orders [get]
func (h *OrderHandler) ListOrders(c echo.Context) error {
	orders, err := h.orderService.List(c.Request().Context(), auth.CurrentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

// GetOrder godoc
// @Summary Get one of the caller's orders
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Success 200 {object} model.Order
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	order, err := h.orderService.Get(c.Request().Context(), id, auth.CurrentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}
