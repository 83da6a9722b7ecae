// internal/database/fields.go
package database

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/farmfresh/farm-backend/internal/models"
)

// This file is the single source of truth for field translation. The
// relational adapters all consume the same mapping tables, so the logical
// camelCase contract and the snake_case storage schema cannot drift apart
// between engines. The MongoDB adapter stores logical names natively and
// only uses the alias canonicalization.

// Logical field name → relational column. Keys include the legacy aliases
// tolerated from heterogeneous caller payloads; aliases collapse onto the
// same column.
var (
	userColumns = map[string]string{
		"username": "username",
		"email":    "email",
		"password": "password",
		"role":     "role",
		"profile":  "profile",
	}

	productColumns = map[string]string{
		"name":           "name",
		"category":       "category",
		"price":          "price",
		"sku":            "sku",
		"farmerId":       "farmer_id",
		"farmer_id":      "farmer_id",
		"stock":          "stock",
		"stockQuantity":  "stock",
		"stock_quantity": "stock",
		"description":    "description",
		"images":         "images",
		"isActive":       "is_active",
		"is_active":      "is_active",
	}

	orderColumns = map[string]string{
		"customerId":       "customer_id",
		"customer_id":      "customer_id",
		"items":            "items",
		"totalAmount":      "total_amount",
		"total_amount":     "total_amount",
		"status":           "status",
		"shippingAddress":  "shipping_address",
		"shipping_address": "shipping_address",
		"deliveryDate":     "delivery_date",
		"delivery_date":    "delivery_date",
	}

	cartColumns = map[string]string{
		"items": "items",
	}
)

// Columns holding JSON-encoded sub-objects on every relational backend.
var jsonColumns = map[string]bool{
	"profile":          true,
	"images":           true,
	"items":            true,
	"shipping_address": true,
}

// Columns holding booleans; engines without a native boolean store 0/1.
var boolColumns = map[string]bool{
	"is_active": true,
}

// Columns holding timestamps supplied by callers.
var timeColumns = map[string]bool{
	"delivery_date": true,
	"order_date":    true,
}

// translateUpdates filters a partial update payload through a column map.
// Unknown keys and immutable fields (id, timestamps, native-key aliases)
// are dropped without error; aliases collapse onto their canonical column.
// Keys are walked in sorted order and the first key to claim a column wins,
// so payloads carrying both an alias and the canonical name resolve the
// same way on every backend, and generated SQL is deterministic.
func translateUpdates(colMap map[string]string, updates map[string]any) ([]string, []any) {
	keys := make([]string, 0, len(updates))
	for key := range updates {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	byColumn := make(map[string]any, len(updates))
	for _, key := range keys {
		column, ok := colMap[key]
		if !ok {
			continue
		}
		if _, claimed := byColumn[column]; claimed {
			continue
		}
		byColumn[column] = updates[key]
	}

	columns := make([]string, 0, len(byColumn))
	for column := range byColumn {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	values := make([]any, len(columns))
	for i, column := range columns {
		values[i] = byColumn[column]
	}
	return columns, values
}

// canonicalizeFields filters a partial update payload for the document
// store: aliases are remapped to the canonical logical name and immutable
// keys dropped, but names stay camelCase. Keys are walked in sorted order
// and the first key to claim a name wins, the same collision rule
// translateUpdates applies for the relational backends.
func canonicalizeFields(colMap map[string]string, logical map[string]string, updates map[string]any) map[string]any {
	keys := make([]string, 0, len(updates))
	for key := range updates {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make(map[string]any, len(updates))
	for _, key := range keys {
		if _, ok := colMap[key]; !ok {
			continue
		}
		name := key
		if remapped, ok := logical[key]; ok {
			name = remapped
		}
		if _, claimed := out[name]; claimed {
			continue
		}
		out[name] = updates[key]
	}
	return out
}

// Legacy alias → canonical logical name for the document store.
var logicalAliases = map[string]string{
	"farmer_id":        "farmerId",
	"stockQuantity":    "stock",
	"stock_quantity":   "stock",
	"is_active":        "isActive",
	"customer_id":      "customerId",
	"total_amount":     "totalAmount",
	"shipping_address": "shippingAddress",
	"delivery_date":    "deliveryDate",
}

// ---- native value normalization ----
//
// Relational rows are scanned into `any` destinations because the engines
// disagree on native types: lib/pq hands back time.Time and bool, the MySQL
// driver []byte, SQLite int64 and string. These helpers collapse all of
// them onto the logical types.

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func asInt(v any) int {
	switch t := v.(type) {
	case int64:
		return int(t)
	case int:
		return t
	case float64:
		return int(t)
	case []byte:
		n, _ := strconv.Atoi(string(t))
		return n
	case string:
		n, _ := strconv.Atoi(t)
		return n
	default:
		return 0
	}
}

func asFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int64:
		return float64(t)
	case []byte:
		f, _ := strconv.ParseFloat(string(t), 64)
		return f
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	default:
		return 0
	}
}

func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case int64:
		return t != 0
	case int:
		return t != 0
	case float64:
		return t != 0
	case []byte:
		return string(t) == "1" || string(t) == "true" || string(t) == "t"
	case string:
		return t == "1" || t == "true" || t == "t"
	default:
		return false
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func asTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case []byte:
		return parseTime(string(t))
	case string:
		return parseTime(t)
	default:
		return time.Time{}
	}
}

func parseTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func asTimePtr(v any) *time.Time {
	if v == nil {
		return nil
	}
	ts := asTime(v)
	if ts.IsZero() {
		return nil
	}
	return &ts
}

// decodeJSON unmarshals a JSON/JSONB column into dest. Empty values decode
// to the zero value; malformed stored JSON is a StorageError.
func decodeJSON(backend, column string, v any, dest any) error {
	raw := asString(v)
	if raw == "" || raw == "null" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return NewStorageError(backend, "decode "+column, err)
	}
	return nil
}

// encodeJSON marshals a sub-object for storage, with the column's empty
// literal when the value is nil.
func encodeJSON(v any, empty string) ([]byte, error) {
	if v == nil {
		return []byte(empty), nil
	}
	return json.Marshal(v)
}

// ---- row → entity transforms (relational backends) ----

func userFromRow(backend string, row map[string]any) (*models.User, error) {
	u := &models.User{
		ID:        asString(row["id"]),
		Username:  asString(row["username"]),
		Email:     asString(row["email"]),
		Password:  asString(row["password"]),
		Role:      models.Role(asString(row["role"])),
		CreatedAt: asTime(row["created_at"]),
		UpdatedAt: asTime(row["updated_at"]),
	}
	profile := &models.Profile{}
	if err := decodeJSON(backend, "profile", row["profile"], profile); err != nil {
		return nil, err
	}
	if *profile != (models.Profile{}) {
		u.Profile = profile
	}
	return u, nil
}

func productFromRow(backend string, row map[string]any) (*models.Product, error) {
	p := &models.Product{
		ID:          asString(row["id"]),
		Name:        asString(row["name"]),
		Category:    models.Category(asString(row["category"])),
		Price:       asFloat(row["price"]),
		SKU:         asString(row["sku"]),
		FarmerID:    asString(row["farmer_id"]),
		Stock:       asInt(row["stock"]),
		Description: asString(row["description"]),
		IsActive:    asBool(row["is_active"]),
		CreatedAt:   asTime(row["created_at"]),
		UpdatedAt:   asTime(row["updated_at"]),
	}
	if err := decodeJSON(backend, "images", row["images"], &p.Images); err != nil {
		return nil, err
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	return p, nil
}

func orderFromRow(backend string, row map[string]any) (*models.Order, error) {
	o := &models.Order{
		ID:           asString(row["id"]),
		CustomerID:   asString(row["customer_id"]),
		TotalAmount:  asFloat(row["total_amount"]),
		Status:       models.OrderStatus(asString(row["status"])),
		OrderDate:    asTime(row["order_date"]),
		DeliveryDate: asTimePtr(row["delivery_date"]),
		CreatedAt:    asTime(row["created_at"]),
		UpdatedAt:    asTime(row["updated_at"]),
	}
	if err := decodeJSON(backend, "items", row["items"], &o.Items); err != nil {
		return nil, err
	}
	if o.Items == nil {
		o.Items = []models.OrderItem{}
	}
	addr := &models.ShippingAddress{}
	if err := decodeJSON(backend, "shipping_address", row["shipping_address"], addr); err != nil {
		return nil, err
	}
	if *addr != (models.ShippingAddress{}) {
		o.ShippingAddress = addr
	}
	return o, nil
}

func cartFromRow(backend string, row map[string]any) (*models.Cart, error) {
	c := &models.Cart{
		ID:         asString(row["id"]),
		CustomerID: asString(row["customer_id"]),
		CreatedAt:  asTime(row["created_at"]),
		UpdatedAt:  asTime(row["updated_at"]),
	}
	if err := decodeJSON(backend, "items", row["items"], &c.Items); err != nil {
		return nil, err
	}
	if c.Items == nil {
		c.Items = []models.OrderItem{}
	}
	return c, nil
}
