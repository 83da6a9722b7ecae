// internal/models/cart.go
package models

import "time"

// Cart is the persisted per-customer working set. At most one cart exists
// per CustomerID; writes are whole-cart upserts with last-write-wins
// semantics, never merges.
type Cart struct {
	ID         string      `json:"id"`
	CustomerID string      `json:"customerId"`
	Items      []OrderItem `json:"items"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}
