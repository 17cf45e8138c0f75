package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"fashionec/internal/auth"
	apperrors "fashionec/internal/errors"
	"fashionec/internal/model"
	"fashionec/internal/repository"
)

const (
	// DefaultPageLimit is used when a listing request carries no limit.
	DefaultPageLimit = 100
	// MaxPageLimit caps the page size of product listings.
	MaxPageLimit = 100
	// DefaultStock is the stock of a new listing that does not name one.
	DefaultStock = 1
)

// ProductInput carries the fields of a new listing.
type ProductInput struct {
	Name        string
	Description *string
	Price       decimal.Decimal
	CategoryID  uint
	ImageURL    *string
	Stock       *int
}

// ProductService manages listings and their lifecycle.
type ProductService interface {
	Create(ctx context.Context, input ProductInput, seller *model.User) (*model.Product, error)
	Get(ctx context.Context, id uint) (*model.Product, error)
	List(ctx context.Context, skip, limit int) ([]model.Product, error)
	ListMine(ctx context.Context, seller *model.User) ([]model.Product, error)
	ListBySeller(ctx context.Context, sellerID uint) ([]model.Product, error)
	Update(ctx context.Context, id uint, patch model.ProductPatch, actor *model.User) (*model.Product, error)
	Delete(ctx context.Context, id uint, actor *model.User) error
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) ProductService {
	return &productService{productRepo: productRepo, categoryRepo: categoryRepo}
}

// NormalizePage clamps pagination parameters to their allowed ranges.
func NormalizePage(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return skip, limit
}

func (s *productService) Create(ctx context.Context, input ProductInput, seller *model.User) (*model.Product, error) {
	if err := auth.RequireRole(seller, model.RoleUser); err != nil {
		return nil, err
	}

	stock := DefaultStock
	if input.Stock != nil {
		stock = *input.Stock
	}

	name := strings.TrimSpace(input.Name)
	switch {
	case name == "":
		return nil, apperrors.ErrInvalidName
	case !model.ValidPrice(input.Price):
		return nil, apperrors.ErrInvalidPrice
	case stock < 0:
		return nil, apperrors.ErrInvalidStock
	}
	if err := s.ensureCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:        name,
		Description: input.Description,
		Price:       input.Price,
		CategoryID:  input.CategoryID,
		SellerID:    seller.ID,
		ImageURL:    input.ImageURL,
		Stock:       stock,
		IsActive:    true,
		Status:      model.ProductStatusAvailable,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"product_id": product.ID,
		"seller_id":  seller.ID,
	}).Info("product listed")
	return product, nil
}

// Get returns a product in any status, including deleted ones.
func (s *productService) Get(ctx context.Context, id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return product, nil
}

func (s *productService) List(ctx context.Context, skip, limit int) ([]model.Product, error) {
	skip, limit = NormalizePage(skip, limit)
	return s.productRepo.ListVisible(ctx, skip, limit)
}

// ListMine includes the seller's inactive listings but never deleted ones.
func (s *productService) ListMine(ctx context.Context, seller *model.User) ([]model.Product, error) {
	if err := auth.RequireRole(seller, model.RoleUser); err != nil {
		return nil, err
	}
	return s.productRepo.ListBySeller(ctx, seller.ID, false)
}

func (s *productService) ListBySeller(ctx context.Context, sellerID uint) ([]model.Product, error) {
	return s.productRepo.ListBySeller(ctx, sellerID, true)
}

// Update applies a partial update. Absent fields are untouched; a deleted
// product cannot be changed.
func (s *productService) Update(ctx context.Context, id uint, patch model.ProductPatch, actor *model.User) (*model.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwnerOrAdmin(actor, product.SellerID); err != nil {
		return nil, err
	}
	if product.IsDeleted() {
		return nil, apperrors.ErrProductDeleted
	}

	if err := validateProductPatch(patch); err != nil {
		return nil, err
	}
	if patch.CategoryID.Set && patch.CategoryID.Value != product.CategoryID {
		if err := s.ensureCategory(ctx, patch.CategoryID.Value); err != nil {
			return nil, err
		}
	}

	applyProductPatch(product, patch)
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	if product.IsDeleted() {
		logrus.WithFields(logrus.Fields{
			"product_id": product.ID,
			"actor_id":   actor.ID,
		}).Info("product deleted via update")
	}
	return s.Get(ctx, product.ID)
}

// Delete soft-deletes a product. Deleting an already deleted product succeeds
// without writing.
func (s *productService) Delete(ctx context.Context, id uint, actor *model.User) error {
	product, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.RequireOwnerOrAdmin(actor, product.SellerID); err != nil {
		return err
	}
	if product.IsDeleted() {
		return nil
	}

	if err := s.productRepo.SoftDelete(ctx, product.ID); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"product_id": product.ID,
		"actor_id":   actor.ID,
	}).Info("product deleted")
	return nil
}

func (s *productService) ensureCategory(ctx context.Context, id uint) error {
	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %d", apperrors.ErrInvalidCategory, id)
		}
		return fmt.Errorf("find category: %w", err)
	}
	return nil
}

func validateProductPatch(patch model.ProductPatch) error {
	if patch.Name.Set && strings.TrimSpace(patch.Name.Value) == "" {
		return apperrors.ErrInvalidName
	}
	if patch.Price.Set && !model.ValidPrice(patch.Price.Value) {
		return apperrors.ErrInvalidPrice
	}
	if patch.Stock.Set && patch.Stock.Value < 0 {
		return apperrors.ErrInvalidStock
	}
	if patch.Status.Set && !patch.Status.Value.Valid() {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidStatus, patch.Status.Value)
	}
	return nil
}

func applyProductPatch(p *model.Product, patch model.ProductPatch) {
	if patch.Name.Set {
		p.Name = strings.TrimSpace(patch.Name.Value)
	}
	if patch.Description.Set {
		p.Description = patch.Description.Value
	}
	if patch.Price.Set {
		p.Price = patch.Price.Value
	}
	if patch.CategoryID.Set {
		p.CategoryID = patch.CategoryID.Value
		p.Category = nil
	}
	if patch.ImageURL.Set {
		p.ImageURL = patch.ImageURL.Value
	}
	if patch.Stock.Set {
		p.Stock = patch.Stock.Value
	}
	if patch.IsActive.Set {
		p.IsActive = patch.IsActive.Value
	}
	if patch.Status.Set {
		p.Status = patch.Status.Value
	}
	if p.IsDeleted() {
		p.MarkDeleted()
	}
}
