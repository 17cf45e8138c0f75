package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fashionec/internal/model"
)

// ProductRepository defines product persistence operations.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []uint) ([]model.Product, error)
	ListVisible(ctx context.Context, skip, limit int) ([]model.Product, error)
	ListBySeller(ctx context.Context, sellerID uint, visibleOnly bool) ([]model.Product, error)
	SoftDelete(ctx context.Context, id uint) error
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository.
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// visible restricts a query to listings the public may browse: sold items
// stay visible, deleted or deactivated ones do not.
func visible(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ? AND status <> ?", true, model.ProductStatusDeleted)
}

func notDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("status <> ?", model.ProductStatusDeleted)
}

// Create creates a new product.
func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error
}

// Update saves every column of the product, leaving its relations alone.
func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(product).Error
}

// FindByID finds a product by ID regardless of its status, with seller and category loaded.
func (r *productRepository) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).
		Preload("Seller").
		Preload("Category").
		First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDs returns the products among ids that exist, in any status.
func (r *productRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ListVisible lists publicly visible products, newest first.
func (r *productRepository) ListVisible(ctx context.Context, skip, limit int) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).
		Scopes(visible).
		Preload("Category").
		Order("created_at DESC, id DESC").
		Offset(skip).
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ListBySeller lists a seller's products, newest first. With visibleOnly the
// public filter applies; otherwise only deleted products are left out.
func (r *productRepository) ListBySeller(ctx context.Context, sellerID uint, visibleOnly bool) ([]model.Product, error) {
	filter := notDeleted
	if visibleOnly {
		filter = visible
	}

	var products []model.Product
	if err := r.db.WithContext(ctx).
		Scopes(filter).
		Where("seller_id = ?", sellerID).
		Preload("Category").
		Order("created_at DESC, id DESC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// SoftDelete marks a product deleted without removing the row.
func (r *productRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":    model.ProductStatusDeleted,
			"is_active": false,
		}).Error
}
