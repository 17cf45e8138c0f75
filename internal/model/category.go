package model

import "time"

// Category is shared, read-only reference data for products.
type Category struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;size:100;not null"`
	Slug      string    `json:"slug" gorm:"uniqueIndex;size:100;not null"`
	CreatedAt time.Time `json:"created_at"`
}
