package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fashionec/internal/model"
)

const orderItemBatchSize = 100

// OrderRepository defines order persistence operations.
type OrderRepository interface {
	// Create inserts the order and its items in one transaction.
	Create(ctx context.Context, order *model.Order) error
	ListByUser(ctx context.Context, userID uint) ([]model.Order, error)
	FindByIDForUser(ctx context.Context, id, userID uint) (*model.Order, error)
}

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository.
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return err
		}
		if len(order.OrderItems) == 0 {
			return nil
		}
		for i := range order.OrderItems {
			order.OrderItems[i].OrderID = order.ID
		}
		return tx.Omit(clause.Associations).CreateInBatches(&order.OrderItems, orderItemBatchSize).Error
	})
}

// ListByUser lists a buyer's orders, newest first, with items and their products.
func (r *orderRepository) ListByUser(ctx context.Context, userID uint) ([]model.Order, error) {
	var orders []model.Order
	if err := r.db.WithContext(ctx).
		Preload("OrderItems.Product").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByIDForUser finds an order only when it belongs to userID.
func (r *orderRepository) FindByIDForUser(ctx context.Context, id, userID uint) (*model.Order, error) {
	var order model.Order
	if err := r.db.WithContext(ctx).
		Preload("OrderItems.Product").
		Where("id = ? AND user_id = ?", id, userID).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}
