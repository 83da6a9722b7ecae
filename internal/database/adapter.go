// internal/database/adapter.go

// Package database is the multi-backend persistence layer. One Adapter
// contract is implemented by five engines (MongoDB, PostgreSQL, MySQL,
// SQLite, Turso/libSQL); every adapter normalizes its native record shape
// into the logical camelCase entities in internal/models, so callers never
// see backend column names, raw JSON strings, or native key types.
package database

import (
	"context"

	"github.com/farmfresh/farm-backend/internal/models"
)

// Backend type identifiers, as selected by DATABASE_TYPE.
const (
	BackendMongoDB  = "mongodb"
	BackendPostgres = "postgres"
	BackendMySQL    = "mysql"
	BackendSQLite   = "sqlite"
	BackendTurso    = "turso"
)

// UserFilter narrows FindUsers. Zero values mean "no constraint".
type UserFilter struct {
	Role  models.Role
	Email string
}

// ProductFilter narrows FindProducts.
type ProductFilter struct {
	FarmerID string
	Category models.Category
	InStock  bool
}

// OrderFilter narrows FindOrders.
type OrderFilter struct {
	CustomerID string
	Status     models.OrderStatus
}

// Adapter is the uniform storage contract. Connect and Disconnect are
// idempotent. Lookups that miss return (nil, nil); errors are reserved for
// engine failures (see errors.go). Update methods take a partial field map
// keyed by logical (camelCase) field names; unknown or immutable keys are
// dropped silently. Every write returns the stored entity in its normalized
// logical shape.
type Adapter interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error

	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	FindUsers(ctx context.Context, filter UserFilter) ([]*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, updates map[string]any) (*models.User, error)
	DeleteUser(ctx context.Context, id string) (bool, error)

	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	FindProducts(ctx context.Context, filter ProductFilter) ([]*models.Product, error)
	FindProductByID(ctx context.Context, id string) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, updates map[string]any) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) (bool, error)

	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	FindOrders(ctx context.Context, filter OrderFilter) ([]*models.Order, error)
	FindOrderByID(ctx context.Context, id string) (*models.Order, error)
	UpdateOrder(ctx context.Context, id string, updates map[string]any) (*models.Order, error)
	DeleteOrder(ctx context.Context, id string) (bool, error)

	FindCart(ctx context.Context, customerID string) (*models.Cart, error)
	UpdateCart(ctx context.Context, customerID string, items []models.OrderItem) (*models.Cart, error)
	ClearCart(ctx context.Context, customerID string) (bool, error)
}
