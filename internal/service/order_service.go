package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"fashionec/internal/auth"
	apperrors "fashionec/internal/errors"
	"fashionec/internal/model"
	"fashionec/internal/repository"
)

// OrderItemInput is one requested line of an order. Price is the unit price
// the buyer agreed to.
type OrderItemInput struct {
	ProductID uint
	Quantity  int
	Price     decimal.Decimal
}

// CreateOrderInput carries shipping details and the requested lines.
type CreateOrderInput struct {
	ShippingName    string
	ShippingPhone   string
	ShippingAddress string
	Items           []OrderItemInput
}

// OrderService places and reads a buyer's orders.
type OrderService interface {
	Create(ctx context.Context, buyer *model.User, input CreateOrderInput) (*model.Order, error)
	List(ctx context.Context, buyer *model.User) ([]model.Order, error)
	Get(ctx context.Context, id uint, buyer *model.User) (*model.Order, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
}

// NewOrderService creates a new order service.
func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository) OrderService {
	return &orderService{orderRepo: orderRepo, productRepo: productRepo}
}

// CalculateTotal returns the sum of price × quantity over items.
func CalculateTotal(items []model.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Create validates the lines, freezes their prices and stores the order with
// its items atomically. The total is always derived here.
func (s *orderService) Create(ctx context.Context, buyer *model.User, input CreateOrderInput) (*model.Order, error) {
	if err := auth.RequireRole(buyer, model.RoleUser); err != nil {
		return nil, err
	}
	if len(input.Items) == 0 {
		return nil, apperrors.ErrEmptyOrder
	}

	ids := make([]uint, 0, len(input.Items))
	seen := make(map[uint]bool, len(input.Items))
	for _, item := range input.Items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: product %d", apperrors.ErrInvalidQuantity, item.ProductID)
		}
		if !model.ValidPrice(item.Price) {
			return nil, fmt.Errorf("%w: product %d", apperrors.ErrInvalidPrice, item.ProductID)
		}
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	byID := make(map[uint]*model.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	items := make([]model.OrderItem, 0, len(input.Items))
	for _, in := range input.Items {
		product, ok := byID[in.ProductID]
		if !ok || product.IsDeleted() {
			return nil, fmt.Errorf("%w: %d", apperrors.ErrUnknownProduct, in.ProductID)
		}
		items = append(items, model.OrderItem{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			Price:     in.Price,
		})
	}

	order := &model.Order{
		UserID:          buyer.ID,
		TotalAmount:     CalculateTotal(items),
		Status:          model.OrderStatusPending,
		ShippingName:    input.ShippingName,
		ShippingPhone:   input.ShippingPhone,
		ShippingAddress: input.ShippingAddress,
		OrderItems:      items,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	for i := range order.OrderItems {
		order.OrderItems[i].Product = byID[order.OrderItems[i].ProductID]
	}

	logrus.WithFields(logrus.Fields{
		"order_id": order.ID,
		"user_id":  buyer.ID,
		"items":    len(order.OrderItems),
		"total":    order.TotalAmount.String(),
	}).Info("order created")
	return order, nil
}

func (s *orderService) List(ctx context.Context, buyer *model.User) ([]model.Order, error) {
	if err := auth.RequireRole(buyer, model.RoleUser); err != nil {
		return nil, err
	}
	return s.orderRepo.ListByUser(ctx, buyer.ID)
}

// Get returns the order only to its buyer; anyone else sees ErrOrderNotFound.
func (s *orderService) Get(ctx context.Context, id uint, buyer *model.User) (*model.Order, error) {
	if err := auth.RequireRole(buyer, model.RoleUser); err != nil {
		return nil, err
	}
	order, err := s.orderRepo.FindByIDForUser(ctx, id, buyer.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return order, nil
}
