// internal/models/product.go
package models

import "time"

// Product is a catalog item owned by a farmer. FarmerID references User.ID
// but is not foreign-key enforced at the storage layer. Images are opaque
// URIs stored as a JSON array on every backend.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    Category  `json:"category"`
	Price       float64   `json:"price"`
	SKU         string    `json:"sku"`
	FarmerID    string    `json:"farmerId"`
	Stock       int       `json:"stock"`
	Description string    `json:"description,omitempty"`
	Images      []string  `json:"images"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
