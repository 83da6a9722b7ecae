// internal/models/common.go
package models

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleFarmer   Role = "farmer"
	RoleCustomer Role = "customer"
	RoleAgent    Role = "agent"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleFarmer, RoleCustomer, RoleAgent:
		return true
	}
	return false
}

// Category is the closed set of product categories, enforced uniformly on
// every storage backend.
type Category string

const (
	CategoryVegetables Category = "vegetables"
	CategoryFruits     Category = "fruits"
	CategoryDairy      Category = "dairy"
	CategoryGrains     Category = "grains"
	CategoryHerbs      Category = "herbs"
	CategoryOther      Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryVegetables, CategoryFruits, CategoryDairy, CategoryGrains, CategoryHerbs, CategoryOther:
		return true
	}
	return false
}

// Categories lists every valid category.
func Categories() []Category {
	return []Category{
		CategoryVegetables,
		CategoryFruits,
		CategoryDairy,
		CategoryGrains,
		CategoryHerbs,
		CategoryOther,
	}
}

// OrderStatus is the order lifecycle state.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo reports whether the move from s to next is allowed:
// pending→confirmed→shipped→delivered, with cancellation possible from
// pending or confirmed. The storage layer persists whatever status it is
// handed; the order service enforces this graph.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return next == OrderStatusConfirmed || next == OrderStatusCancelled
	case OrderStatusConfirmed:
		return next == OrderStatusShipped || next == OrderStatusCancelled
	case OrderStatusShipped:
		return next == OrderStatusDelivered
	}
	return false
}
