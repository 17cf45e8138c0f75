package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStatus represents the lifecycle state of a listing.
type ProductStatus string

const (
	ProductStatusAvailable ProductStatus = "available"
	ProductStatusSold      ProductStatus = "sold"
	// ProductStatusDeleted is terminal: no operation moves a product out of it.
	ProductStatusDeleted ProductStatus = "deleted"
)

// Valid reports whether s is a known product status.
func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusAvailable, ProductStatusSold, ProductStatusDeleted:
		return true
	}
	return false
}

// PriceScale is the number of decimal places every stored price keeps.
const PriceScale = 2

// ValidPrice reports whether d is non-negative and fits the stored scale
// without rounding.
func ValidPrice(d decimal.Decimal) bool {
	return !d.IsNegative() && d.Equal(d.Round(PriceScale))
}

// Product is a listing owned by exactly one seller.
type Product struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"size:200;not null"`
	Description *string         `json:"description" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	CategoryID  uint            `json:"category_id" gorm:"not null;index"`
	SellerID    uint            `json:"seller_id" gorm:"not null;index"`
	ImageURL    *string         `json:"image_url" gorm:"type:text"`
	Stock       int             `json:"stock" gorm:"not null"`
	IsActive    bool            `json:"is_active" gorm:"not null;default:true;index"`
	Status      ProductStatus   `json:"status" gorm:"type:varchar(20);not null;default:'available';index"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Relations
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Seller   *User     `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
}

// IsDeleted reports whether the product has been soft-deleted.
func (p *Product) IsDeleted() bool {
	return p.Status == ProductStatusDeleted
}

// MarkDeleted applies the soft-delete transition.
func (p *Product) MarkDeleted() {
	p.Status = ProductStatusDeleted
	p.IsActive = false
}

// ProductPatch is a partial update of a product. Description and ImageURL
// accept an explicit null to clear the value.
type ProductPatch struct {
	Name        Optional[string]          `json:"name"`
	Description Optional[*string]         `json:"description"`
	Price       Optional[decimal.Decimal] `json:"price"`
	CategoryID  Optional[uint]            `json:"category_id"`
	ImageURL    Optional[*string]         `json:"image_url"`
	Stock       Optional[int]             `json:"stock"`
	IsActive    Optional[bool]            `json:"is_active"`
	Status      Optional[ProductStatus]   `json:"status"`
}
