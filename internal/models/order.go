// internal/models/order.go
package models

import "time"

// OrderItem is a line item with price and name snapshotted at order time;
// it is never live-joined against the product catalog. Carts reuse the same
// shape.
type OrderItem struct {
	ProductID string  `json:"productId" bson:"productId"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	Price     float64 `json:"price" bson:"price"`
	Name      string  `json:"name" bson:"name"`
}

// ShippingAddress is the structured delivery address stored as JSON.
type ShippingAddress struct {
	Street  string `json:"street" bson:"street"`
	City    string `json:"city" bson:"city"`
	State   string `json:"state" bson:"state"`
	ZipCode string `json:"zipCode" bson:"zipCode"`
	Country string `json:"country" bson:"country"`
}

// Order is a purchase transaction. TotalAmount is computed by the caller at
// creation and persisted as-is. Status moves along the graph described on
// OrderStatus; DeliveryDate is set when an order reaches delivered.
type Order struct {
	ID              string           `json:"id"`
	CustomerID      string           `json:"customerId"`
	Items           []OrderItem      `json:"items"`
	TotalAmount     float64          `json:"totalAmount"`
	Status          OrderStatus      `json:"status"`
	ShippingAddress *ShippingAddress `json:"shippingAddress,omitempty"`
	OrderDate       time.Time        `json:"orderDate"`
	DeliveryDate    *time.Time       `json:"deliveryDate,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}
