// internal/database/fields_test.go
package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmfresh/farm-backend/internal/models"
)

func TestTranslateUpdatesDropsUnknownKeys(t *testing.T) {
	columns, values := translateUpdates(productColumns, map[string]any{
		"name":      "Carrots",
		"id":        "42",
		"createdAt": "2025-01-01",
		"bogus":     true,
	})

	assert.Equal(t, []string{"name"}, columns)
	assert.Equal(t, []any{"Carrots"}, values)
}

func TestTranslateUpdatesCollapsesAliases(t *testing.T) {
	columns, values := translateUpdates(productColumns, map[string]any{
		"stockQuantity": 7,
		"isActive":      false,
	})

	assert.Equal(t, []string{"is_active", "stock"}, columns)
	assert.Equal(t, []any{false, 7}, values)
}

func TestTranslateUpdatesAliasConflictIsDeterministic(t *testing.T) {
	// Both keys claim the stock column; sorted key order decides.
	columns, values := translateUpdates(productColumns, map[string]any{
		"stock":          3,
		"stock_quantity": 9,
	})

	require.Equal(t, []string{"stock"}, columns)
	assert.Equal(t, []any{3}, values)
}

func TestTranslateUpdatesEmpty(t *testing.T) {
	columns, values := translateUpdates(userColumns, map[string]any{})
	assert.Empty(t, columns)
	assert.Empty(t, values)
}

func TestCanonicalizeFields(t *testing.T) {
	out := canonicalizeFields(orderColumns, logicalAliases, map[string]any{
		"total_amount": 10.5,
		"status":       "confirmed",
		"unknown":      "x",
	})

	assert.Equal(t, map[string]any{
		"totalAmount": 10.5,
		"status":      "confirmed",
	}, out)
}

func TestCanonicalizeFieldsAliasCollision(t *testing.T) {
	// "isActive" sorts before "is_active", so the camelCase key claims the
	// name first on every run.
	out := canonicalizeFields(productColumns, logicalAliases, map[string]any{
		"is_active": false,
		"isActive":  true,
	})
	assert.Equal(t, map[string]any{"isActive": true}, out)

	out = canonicalizeFields(productColumns, logicalAliases, map[string]any{
		"stock_quantity": 7,
		"stock":          3,
	})
	assert.Equal(t, map[string]any{"stock": 3}, out)
}

func TestAsBoolAcrossNativeTypes(t *testing.T) {
	assert.True(t, asBool(true))
	assert.True(t, asBool(int64(1)))
	assert.True(t, asBool([]byte("1")))
	assert.True(t, asBool("true"))
	assert.False(t, asBool(int64(0)))
	assert.False(t, asBool(nil))
	assert.False(t, asBool("false"))
}

func TestAsIntAcrossNativeTypes(t *testing.T) {
	assert.Equal(t, 42, asInt(int64(42)))
	assert.Equal(t, 42, asInt([]byte("42")))
	assert.Equal(t, 42, asInt("42"))
	assert.Equal(t, 42, asInt(42.0))
	assert.Equal(t, 0, asInt(nil))
}

func TestAsStringStringifiesIDs(t *testing.T) {
	assert.Equal(t, "7", asString(int64(7)))
	assert.Equal(t, "abc", asString([]byte("abc")))
	assert.Equal(t, "", asString(nil))
}

func TestParseTimeLayouts(t *testing.T) {
	for _, s := range []string{
		"2025-03-01T10:30:00Z",
		"2025-03-01 10:30:00",
		"2025-03-01 10:30:00.123456789",
	} {
		parsed := parseTime(s)
		require.False(t, parsed.IsZero(), "layout %q", s)
		assert.Equal(t, 2025, parsed.Year())
		assert.Equal(t, time.March, parsed.Month())
	}
	assert.True(t, parseTime("not a time").IsZero())
}

func TestAsTimePtr(t *testing.T) {
	assert.Nil(t, asTimePtr(nil))
	assert.Nil(t, asTimePtr(""))

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ptr := asTimePtr(now)
	require.NotNil(t, ptr)
	assert.Equal(t, now, *ptr)
}

func TestDecodeJSONMalformed(t *testing.T) {
	var dest map[string]any
	err := decodeJSON(BackendSQLite, "profile", "{not json", &dest)
	require.Error(t, err)

	var storageErr *StorageError
	assert.ErrorAs(t, err, &storageErr)
	assert.Equal(t, BackendSQLite, storageErr.Backend)
}

func TestUserFromRow(t *testing.T) {
	user, err := userFromRow(BackendSQLite, map[string]any{
		"id":         int64(3),
		"username":   []byte("greenfields"),
		"email":      "farm@example.com",
		"password":   "hash",
		"role":       "farmer",
		"profile":    `{"firstName":"Ada","lastName":"Moss"}`,
		"created_at": "2025-03-01 10:30:00",
		"updated_at": "2025-03-01 10:30:00",
	})
	require.NoError(t, err)

	assert.Equal(t, "3", user.ID)
	assert.Equal(t, "greenfields", user.Username)
	assert.Equal(t, models.RoleFarmer, user.Role)
	require.NotNil(t, user.Profile)
	assert.Equal(t, "Ada", user.Profile.FirstName)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestUserFromRowEmptyProfile(t *testing.T) {
	user, err := userFromRow(BackendSQLite, map[string]any{
		"id":      int64(1),
		"profile": "{}",
	})
	require.NoError(t, err)
	assert.Nil(t, user.Profile)
}

func TestProductFromRow(t *testing.T) {
	product, err := productFromRow(BackendSQLite, map[string]any{
		"id":        int64(9),
		"name":      "Heirloom Tomatoes",
		"category":  "vegetables",
		"price":     4.99,
		"sku":       "VEG-A1B2C3D4",
		"farmer_id": int64(3),
		"stock":     int64(12),
		"images":    `["https://cdn.example.com/t.jpg"]`,
		"is_active": int64(1),
	})
	require.NoError(t, err)

	assert.Equal(t, "9", product.ID)
	assert.Equal(t, "3", product.FarmerID)
	assert.Equal(t, models.CategoryVegetables, product.Category)
	assert.Equal(t, 12, product.Stock)
	assert.True(t, product.IsActive)
	assert.Equal(t, []string{"https://cdn.example.com/t.jpg"}, product.Images)
}

func TestOrderFromRowNilAddressAndItems(t *testing.T) {
	order, err := orderFromRow(BackendSQLite, map[string]any{
		"id":               int64(5),
		"customer_id":      int64(2),
		"items":            "[]",
		"total_amount":     0.0,
		"status":           "pending",
		"shipping_address": nil,
		"delivery_date":    nil,
	})
	require.NoError(t, err)

	assert.Equal(t, "5", order.ID)
	assert.NotNil(t, order.Items)
	assert.Empty(t, order.Items)
	assert.Nil(t, order.ShippingAddress)
	assert.Nil(t, order.DeliveryDate)
}

func TestDuplicateFieldFromText(t *testing.T) {
	assert.Equal(t, "email", duplicateFieldFromText("UNIQUE constraint failed: users.email"))
	assert.Equal(t, "sku", duplicateFieldFromText(`Duplicate entry 'X' for key 'products.sku'`))
	assert.Equal(t, "customerId", duplicateFieldFromText("carts_customer_id_key"))
	assert.Equal(t, "customerId", duplicateFieldFromText("index: customerId_1 dup key"))
	assert.Equal(t, "", duplicateFieldFromText("something else"))
}
