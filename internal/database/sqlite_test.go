// internal/database/sqlite_test.go
package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmfresh/farm-backend/internal/config"
	"github.com/farmfresh/farm-backend/internal/models"
)

func newTestAdapter(t *testing.T) *SQLiteAdapter {
	t.Helper()

	adapter := NewSQLiteAdapter(config.DatabaseConfig{
		Type:      BackendSQLite,
		Path:      filepath.Join(t.TempDir(), "test.db"),
		TimeoutMS: 1000,
	})
	require.NoError(t, adapter.Connect(context.Background()))
	t.Cleanup(func() { adapter.Disconnect(context.Background()) })
	return adapter
}

func seedUser(t *testing.T, adapter *SQLiteAdapter, username, email string, role models.Role) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    email,
		Password: "hashed",
		Role:     role,
	}
	created, err := adapter.CreateUser(context.Background(), user)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	return created
}

func seedProduct(t *testing.T, adapter *SQLiteAdapter, farmerID, sku string, stock int) *models.Product {
	t.Helper()

	created, err := adapter.CreateProduct(context.Background(), &models.Product{
		Name:     "Test Produce",
		Category: models.CategoryVegetables,
		Price:    2.50,
		SKU:      sku,
		FarmerID: farmerID,
		Stock:    stock,
		IsActive: true,
	})
	require.NoError(t, err)
	return created
}

func TestConnectIsIdempotentOnDisconnect(t *testing.T) {
	adapter := newTestAdapter(t)
	require.NoError(t, adapter.Disconnect(context.Background()))
	// Second disconnect is a no-op.
	require.NoError(t, adapter.Disconnect(context.Background()))
}

func TestUserCRUD(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()

	created := seedUser(t, adapter, "greenfields", "farm@example.com", models.RoleFarmer)
	assert.Equal(t, "greenfields", created.Username)
	assert.Equal(t, models.RoleFarmer, created.Role)
	assert.False(t, created.CreatedAt.IsZero())

	byID, err := adapter.FindUserByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, created.ID, byID.ID)

	byEmail, err := adapter.FindUserByEmail(ctx, "farm@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)

	byUsername, err := adapter.FindUserByUsername(ctx, "greenfields")
	require.NoError(t, err)
	require.NotNil(t, byUsername)

	deleted, err := adapter.DeleteUser(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = adapter.DeleteUser(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestFindUserMissReturnsNil(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()

	user, err := adapter.FindUserByID(ctx, "9999")
	require.NoError(t, err)
	assert.Nil(t, user)

	// Malformed ids are misses, never errors.
	user, err = adapter.FindUserByID(ctx, "not-an-id")
	require.NoError(t, err)
	assert.Nil(t, user)

	user, err = adapter.FindUserByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestDuplicateUserIsTyped(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()

	seedUser(t, adapter, "greenfields", "farm@example.com", models.RoleFarmer)

	_, err := adapter.CreateUser(ctx, &models.User{
		Username: "other",
		Email:    "farm@example.com",
		Password: "hashed",
		Role:     models.RoleCustomer,
	})
	require.Error(t, err)
	assert.True(t, IsDuplicateKey(err))

	var dup *DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "email", dup.Field)
	assert.Equal(t, BackendSQLite, dup.Backend)

	_, err = adapter.CreateUser(ctx, &models.User{
		Username: "greenfields",
		Email:    "other@example.com",
		Password: "hashed",
		Role:     models.RoleCustomer,
	})
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "username", dup.Field)
}

func TestUpdateUserPartial(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()

	created := seedUser(t, adapter, "greenfields", "farm@example.com", models.RoleFarmer)

	updated, err := adapter.UpdateUser(ctx, created.ID, map[string]any{
		"profile": &models.Profile{FirstName: "Ada", LastName: "Moss"},
		"ignored": "value",
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.NotNil(t, updated.Profile)
	assert.Equal(t, "Ada", updated.Profile.FirstName)
	// Untouched fields survive a partial update.
	assert.Equal(t, "farm@example.com", updated.Email)
	assert.Equal(t, "greenfields", updated.Username)
}

func TestUpdateUserUnknownFieldsOnlyIsNoOp(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()

	created := seedUser(t, adapter, "greenfields", "farm@example.com", models.RoleFarmer)

	updated, err := adapter.UpdateUser(ctx, created.ID, map[string]any{"bogus": 1})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, created.Username, updated.Username)
	assert.Equal(t, created.Email, updated.Email)
}

func TestUpdateUserMissReturnsNil(t *testing.T) {
	adapter := newTestAdapter(t)

	updated, err := adapter.UpdateUser(context.Background(), "9999", map[string]any{"username": "x"})
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestProductRoundTrip(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()

	farmer := seedUser(t, adapter, "greenfields", "farm@example.com", models.RoleFarmer)

	created, err := adapter.CreateProduct(ctx, &models.Product{
		Name:        "Heirloom Tomatoes",
		Category:    models.CategoryVegetables,
		Price:       4.99,
		SKU:         "VEG-TOM001",
		FarmerID:    farmer.ID,
		Stock:       12,
		Description: "Vine ripened",
		Images:      []string{"https://cdn.example.com/t.jpg"},
		IsActive:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, farmer.ID, created.FarmerID)
	assert.Equal(t, 4.99, created.Price)
	assert.Equal(t, []string{"https://cdn.example.com/t.jpg"}, created.Images)
	assert.True(t, created.IsActive)

	// Boolean round trip through the 0/1 storage form.
	updated, err := adapter.UpdateProduct(ctx, created.ID, map[string]any{"isActive": false})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	updated, err = adapter.UpdateProduct(ctx, created.ID, map[string]any{"is_active": true})
	require.NoError(t, err)
	assert.True(t, updated.IsActive)
}

func TestDuplicateSKU(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()

	farmer := seedUser(t, adapter, "greenfields", "farm@example.com", models.RoleFarmer)
	seedProduct(t, adapter, farmer.ID, "VEG-SAME", 5)

	_, err := adapter.CreateProduct(ctx, &models.Product{
		Name:     "Other",
		Category: models.CategoryVegetables,
		Price:    1.00,
		SKU:      "VEG-SAME",
		FarmerID: farmer.ID,
		IsActive: true,
	})
	var dup *DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "sku", dup.Field)
}

func TestFindProductsFilters(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()

	farmerA := seedUser(t, adapter, "farmer_a", "a@example.com", models.RoleFarmer)
	farmerB := seedUser(t, adapter, "farmer_b", "b@example.com", models.RoleFarmer)

	seedProduct(t, adapter, farmerA.ID, "SKU-1", 5)
	seedProduct(t, adapter, farmerA.ID, "SKU-2", 0)
	dairy, err := adapter.CreateProduct(ctx, &models.Product{
		Name:     "Goat Cheese",
		Category: models.CategoryDairy,
		Price:    8.00,
		SKU:      "DAI-1",
		FarmerID: farmerB.ID,
		Stock:    3,
		IsActive: true,
	})
	require.NoError(t, err)

	all, err := adapter.FindProducts(ctx, ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byFarmer, err := adapter.FindProducts(ctx, ProductFilter{FarmerID: farmerA.ID})
	require.NoError(t, err)
	assert.Len(t, byFarmer, 2)

	byCategory, err := adapter.FindProducts(ctx, ProductFilter{Category: models.CategoryDairy})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, dairy.ID, byCategory[0].ID)

	inStock, err := adapter.FindProducts(ctx, ProductFilter{FarmerID: farmerA.ID, InStock: true})
	require.NoError(t, err)
	require.Len(t, inStock, 1)
	assert.Equal(t, "SKU-1", inStock[0].SKU)
}

func TestOrderLifecycle(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()

	customer := seedUser(t, adapter, "shopper", "shopper@example.com", models.RoleCustomer)

	created, err := adapter.CreateOrder(ctx, &models.Order{
		CustomerID: customer.ID,
		Items: []models.OrderItem{
			{ProductID: "1", Quantity: 2, Price: 4.99, Name: "Tomatoes"},
		},
		TotalAmount: 9.98,
		ShippingAddress: &models.ShippingAddress{
			Street: "1 Farm Lane", City: "Springfield", State: "OR", ZipCode: "97477", Country: "US",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, created.Status)
	assert.Equal(t, customer.ID, created.CustomerID)
	require.Len(t, created.Items, 1)
	assert.Equal(t, 2, created.Items[0].Quantity)
	require.NotNil(t, created.ShippingAddress)
	assert.Equal(t, "Springfield", created.ShippingAddress.City)
	assert.False(t, created.OrderDate.IsZero())
	assert.Nil(t, created.DeliveryDate)

	updated, err := adapter.UpdateOrder(ctx, created.ID, map[string]any{"status": "confirmed"})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, updated.Status)

	byCustomer, err := adapter.FindOrders(ctx, OrderFilter{CustomerID: customer.ID})
	require.NoError(t, err)
	assert.Len(t, byCustomer, 1)

	byStatus, err := adapter.FindOrders(ctx, OrderFilter{Status: models.OrderStatusPending})
	require.NoError(t, err)
	assert.Empty(t, byStatus)
}

func TestCartUpsertLastWriteWins(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()

	customer := seedUser(t, adapter, "shopper", "shopper@example.com", models.RoleCustomer)

	// No cart yet.
	cart, err := adapter.FindCart(ctx, customer.ID)
	require.NoError(t, err)
	assert.Nil(t, cart)

	first, err := adapter.UpdateCart(ctx, customer.ID, []models.OrderItem{
		{ProductID: "1", Quantity: 1, Price: 2.50, Name: "Carrots"},
	})
	require.NoError(t, err)
	require.Len(t, first.Items, 1)

	// Second write replaces the contents wholesale.
	second, err := adapter.UpdateCart(ctx, customer.ID, []models.OrderItem{
		{ProductID: "2", Quantity: 3, Price: 8.00, Name: "Cheese"},
	})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Equal(t, "2", second.Items[0].ProductID)
	assert.Equal(t, first.ID, second.ID)

	cleared, err := adapter.ClearCart(ctx, customer.ID)
	require.NoError(t, err)
	assert.True(t, cleared)

	cleared, err = adapter.ClearCart(ctx, customer.ID)
	require.NoError(t, err)
	assert.False(t, cleared)
}

func TestReferenceIDMismatchesAreMisses(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()

	// Ids minted by another backend cannot exist here; they read as
	// absent on every lookup rather than surfacing a bind error.
	foreign := "64f1b2c3d4e5f6a7b8c9d0e1"

	cart, err := adapter.FindCart(ctx, foreign)
	require.NoError(t, err)
	assert.Nil(t, cart)

	cart, err = adapter.UpdateCart(ctx, foreign, []models.OrderItem{
		{ProductID: "1", Quantity: 1, Price: 2.50, Name: "Carrots"},
	})
	require.NoError(t, err)
	assert.Nil(t, cart)

	cleared, err := adapter.ClearCart(ctx, foreign)
	require.NoError(t, err)
	assert.False(t, cleared)

	products, err := adapter.FindProducts(ctx, ProductFilter{FarmerID: foreign})
	require.NoError(t, err)
	assert.Empty(t, products)

	orders, err := adapter.FindOrders(ctx, OrderFilter{CustomerID: foreign})
	require.NoError(t, err)
	assert.Empty(t, orders)
}
