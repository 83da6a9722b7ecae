// internal/database/relational.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/farmfresh/farm-backend/internal/models"
)

// dialect is what an individual SQL engine contributes to the shared CRUD
// core: its label, placeholder style, id-return mechanism, native encodings
// and duplicate-key detection. Everything else is identical across
// PostgreSQL, MySQL, SQLite and Turso and lives here.
type dialect interface {
	backend() string
	placeholder(n int) string
	supportsReturning() bool
	nativeBool(b bool) any
	nativeTime(t time.Time) any
	duplicateField(err error) (string, bool)
}

// sqlAdapter implements every Adapter operation except Connect/Disconnect,
// which belong to the engine wrappers. The embedded *sql.DB pool is set by
// the engine on Connect; each operation acquires and releases a pooled
// connection through database/sql, so no connection leaks on error paths.
type sqlAdapter struct {
	db *sql.DB
	d  dialect
}

// parseID converts a logical string id back to the native integer key.
// A non-numeric id cannot exist in these backends, so it reads as absent
// rather than erroring.
func parseID(id string) (int64, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// nativeRef converts a logical reference id (farmerId, customerId) to the
// engine's preferred bind value: the integer key when numeric, otherwise
// the raw string.
func nativeRef(id string) any {
	if native, ok := parseID(id); ok {
		return native
	}
	return id
}

// duplicateFieldFromText extracts the violated logical field from an
// engine's constraint name or message, best effort.
func duplicateFieldFromText(s string) string {
	s = strings.ToLower(s)
	for text, field := range map[string]string{
		"email":       "email",
		"username":    "username",
		"sku":         "sku",
		"customer_id": "customerId",
		"customerid":  "customerId",
	} {
		if strings.Contains(s, text) {
			return field
		}
	}
	return ""
}

func (a *sqlAdapter) wrapErr(op string, err error) error {
	if field, ok := a.d.duplicateField(err); ok {
		return NewDuplicateKeyError(a.d.backend(), field, err)
	}
	return NewStorageError(a.d.backend(), op, err)
}

// encodeValue converts a logical value to the engine's native form for the
// given column: sub-objects marshal to JSON, booleans and timestamps go
// through the dialect.
func (a *sqlAdapter) encodeValue(column string, v any) (any, error) {
	switch {
	case jsonColumns[column]:
		empty := "{}"
		if column == "items" || column == "images" {
			empty = "[]"
		}
		raw, err := encodeJSON(v, empty)
		if err != nil {
			return nil, err
		}
		return string(raw), nil
	case boolColumns[column]:
		return a.d.nativeBool(asBool(v)), nil
	case timeColumns[column]:
		if v == nil {
			return nil, nil
		}
		if t, ok := v.(time.Time); ok {
			return a.d.nativeTime(t), nil
		}
		if t := parseTime(asString(v)); !t.IsZero() {
			return a.d.nativeTime(t), nil
		}
		return nil, nil
	default:
		return v, nil
	}
}

// placeholders renders "$1, $2, ..." or "?, ?, ..." for n values.
func (a *sqlAdapter) placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = a.d.placeholder(i + 1)
	}
	return strings.Join(parts, ", ")
}

// insert runs an INSERT and returns the generated integer key, via
// RETURNING where the engine supports it and LastInsertId otherwise.
func (a *sqlAdapter) insert(ctx context.Context, table string, columns []string, values []any) (int64, error) {
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), a.placeholders(len(columns)))

	if a.d.supportsReturning() {
		var id int64
		if err := a.db.QueryRowContext(ctx, query+" RETURNING id", values...).Scan(&id); err != nil {
			return 0, a.wrapErr("insert "+table, err)
		}
		return id, nil
	}

	res, err := a.db.ExecContext(ctx, query, values...)
	if err != nil {
		return 0, a.wrapErr("insert "+table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, NewStorageError(a.d.backend(), "insert "+table, err)
	}
	return id, nil
}

// queryRows scans every column of every row into an untyped map keyed by
// column name; the fields.go normalizers take it from there.
func (a *sqlAdapter) queryRows(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, a.wrapErr("query", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, NewStorageError(a.d.backend(), "query", err)
	}

	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, NewStorageError(a.d.backend(), "scan", err)
		}
		row := make(map[string]any, len(columns))
		for i, column := range columns {
			row[column] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError(a.d.backend(), "query", err)
	}
	return out, nil
}

// queryRow is queryRows for a single expected row; absent rows are nil.
func (a *sqlAdapter) queryRow(ctx context.Context, query string, args ...any) (map[string]any, error) {
	rows, err := a.queryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// update builds and runs a partial UPDATE from a translated column/value
// set, always bumping updated_at.
func (a *sqlAdapter) update(ctx context.Context, table string, id int64, columns []string, values []any) error {
	set := make([]string, 0, len(columns)+1)
	args := make([]any, 0, len(columns)+1)
	for i, column := range columns {
		encoded, err := a.encodeValue(column, values[i])
		if err != nil {
			return NewStorageError(a.d.backend(), "update "+table, err)
		}
		set = append(set, fmt.Sprintf("%s = %s", column, a.d.placeholder(len(args)+1)))
		args = append(args, encoded)
	}
	set = append(set, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = %s",
		table, strings.Join(set, ", "), a.d.placeholder(len(args)))
	if _, err := a.db.ExecContext(ctx, query, args...); err != nil {
		return a.wrapErr("update "+table, err)
	}
	return nil
}

// delete removes a row by primary key and reports whether one existed.
func (a *sqlAdapter) delete(ctx context.Context, table string, id int64) (bool, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = %s", table, a.d.placeholder(1))
	res, err := a.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, a.wrapErr("delete "+table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, NewStorageError(a.d.backend(), "delete "+table, err)
	}
	return affected > 0, nil
}

// ---- users ----

func (a *sqlAdapter) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	profile, err := encodeJSON(user.Profile, "{}")
	if err != nil {
		return nil, NewStorageError(a.d.backend(), "insert users", err)
	}
	id, err := a.insert(ctx, "users",
		[]string{"username", "email", "password", "role", "profile"},
		[]any{user.Username, user.Email, user.Password, string(user.Role), string(profile)})
	if err != nil {
		return nil, err
	}
	return a.findUserByNativeID(ctx, id)
}

func (a *sqlAdapter) findUserByNativeID(ctx context.Context, id int64) (*models.User, error) {
	row, err := a.queryRow(ctx, "SELECT * FROM users WHERE id = "+a.d.placeholder(1), id)
	if err != nil || row == nil {
		return nil, err
	}
	return userFromRow(a.d.backend(), row)
}

func (a *sqlAdapter) FindUsers(ctx context.Context, filter UserFilter) ([]*models.User, error) {
	query := "SELECT * FROM users WHERE 1=1"
	var args []any
	if filter.Role != "" {
		args = append(args, string(filter.Role))
		query += " AND role = " + a.d.placeholder(len(args))
	}
	if filter.Email != "" {
		args = append(args, filter.Email)
		query += " AND email = " + a.d.placeholder(len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := a.queryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	users := make([]*models.User, 0, len(rows))
	for _, row := range rows {
		user, err := userFromRow(a.d.backend(), row)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (a *sqlAdapter) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	native, ok := parseID(id)
	if !ok {
		return nil, nil
	}
	return a.findUserByNativeID(ctx, native)
}

func (a *sqlAdapter) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row, err := a.queryRow(ctx, "SELECT * FROM users WHERE email = "+a.d.placeholder(1), email)
	if err != nil || row == nil {
		return nil, err
	}
	return userFromRow(a.d.backend(), row)
}

func (a *sqlAdapter) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row, err := a.queryRow(ctx, "SELECT * FROM users WHERE username = "+a.d.placeholder(1), username)
	if err != nil || row == nil {
		return nil, err
	}
	return userFromRow(a.d.backend(), row)
}

func (a *sqlAdapter) UpdateUser(ctx context.Context, id string, updates map[string]any) (*models.User, error) {
	native, ok := parseID(id)
	if !ok {
		return nil, nil
	}
	columns, values := translateUpdates(userColumns, updates)
	if len(columns) > 0 {
		if err := a.update(ctx, "users", native, columns, values); err != nil {
			return nil, err
		}
	}
	return a.findUserByNativeID(ctx, native)
}

func (a *sqlAdapter) DeleteUser(ctx context.Context, id string) (bool, error) {
	native, ok := parseID(id)
	if !ok {
		return false, nil
	}
	return a.delete(ctx, "users", native)
}

// ---- products ----

func (a *sqlAdapter) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	images, err := encodeJSON(product.Images, "[]")
	if err != nil {
		return nil, NewStorageError(a.d.backend(), "insert products", err)
	}
	id, err := a.insert(ctx, "products",
		[]string{"name", "category", "price", "sku", "farmer_id", "stock", "description", "images", "is_active"},
		[]any{
			product.Name, string(product.Category), product.Price, product.SKU,
			nativeRef(product.FarmerID), product.Stock, product.Description, string(images),
			a.d.nativeBool(product.IsActive),
		})
	if err != nil {
		return nil, err
	}
	return a.findProductByNativeID(ctx, id)
}

func (a *sqlAdapter) findProductByNativeID(ctx context.Context, id int64) (*models.Product, error) {
	row, err := a.queryRow(ctx, "SELECT * FROM products WHERE id = "+a.d.placeholder(1), id)
	if err != nil || row == nil {
		return nil, err
	}
	return productFromRow(a.d.backend(), row)
}

func (a *sqlAdapter) FindProducts(ctx context.Context, filter ProductFilter) ([]*models.Product, error) {
	query := "SELECT * FROM products WHERE 1=1"
	var args []any
	if filter.Category != "" {
		args = append(args, string(filter.Category))
		query += " AND category = " + a.d.placeholder(len(args))
	}
	if filter.FarmerID != "" {
		native, ok := parseID(filter.FarmerID)
		if !ok {
			return nil, nil
		}
		args = append(args, native)
		query += " AND farmer_id = " + a.d.placeholder(len(args))
	}
	if filter.InStock {
		query += " AND stock > 0"
	}
	query += " ORDER BY created_at DESC"

	rows, err := a.queryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	products := make([]*models.Product, 0, len(rows))
	for _, row := range rows {
		product, err := productFromRow(a.d.backend(), row)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}

func (a *sqlAdapter) FindProductByID(ctx context.Context, id string) (*models.Product, error) {
	native, ok := parseID(id)
	if !ok {
		return nil, nil
	}
	return a.findProductByNativeID(ctx, native)
}

func (a *sqlAdapter) UpdateProduct(ctx context.Context, id string, updates map[string]any) (*models.Product, error) {
	native, ok := parseID(id)
	if !ok {
		return nil, nil
	}
	columns, values := translateUpdates(productColumns, updates)
	if len(columns) > 0 {
		if err := a.update(ctx, "products", native, columns, values); err != nil {
			return nil, err
		}
	}
	return a.findProductByNativeID(ctx, native)
}

func (a *sqlAdapter) DeleteProduct(ctx context.Context, id string) (bool, error) {
	native, ok := parseID(id)
	if !ok {
		return false, nil
	}
	return a.delete(ctx, "products", native)
}

// ---- orders ----

func (a *sqlAdapter) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	items, err := encodeJSON(order.Items, "[]")
	if err != nil {
		return nil, NewStorageError(a.d.backend(), "insert orders", err)
	}
	address, err := encodeJSON(order.ShippingAddress, "{}")
	if err != nil {
		return nil, NewStorageError(a.d.backend(), "insert orders", err)
	}
	status := order.Status
	if status == "" {
		status = models.OrderStatusPending
	}
	id, err := a.insert(ctx, "orders",
		[]string{"customer_id", "items", "total_amount", "status", "shipping_address"},
		[]any{nativeRef(order.CustomerID), string(items), order.TotalAmount, string(status), string(address)})
	if err != nil {
		return nil, err
	}
	return a.findOrderByNativeID(ctx, id)
}

func (a *sqlAdapter) findOrderByNativeID(ctx context.Context, id int64) (*models.Order, error) {
	row, err := a.queryRow(ctx, "SELECT * FROM orders WHERE id = "+a.d.placeholder(1), id)
	if err != nil || row == nil {
		return nil, err
	}
	return orderFromRow(a.d.backend(), row)
}

func (a *sqlAdapter) FindOrders(ctx context.Context, filter OrderFilter) ([]*models.Order, error) {
	query := "SELECT * FROM orders WHERE 1=1"
	var args []any
	if filter.CustomerID != "" {
		native, ok := parseID(filter.CustomerID)
		if !ok {
			return nil, nil
		}
		args = append(args, native)
		query += " AND customer_id = " + a.d.placeholder(len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += " AND status = " + a.d.placeholder(len(args))
	}
	query += " ORDER BY order_date DESC"

	rows, err := a.queryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	orders := make([]*models.Order, 0, len(rows))
	for _, row := range rows {
		order, err := orderFromRow(a.d.backend(), row)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (a *sqlAdapter) FindOrderByID(ctx context.Context, id string) (*models.Order, error) {
	native, ok := parseID(id)
	if !ok {
		return nil, nil
	}
	return a.findOrderByNativeID(ctx, native)
}

func (a *sqlAdapter) UpdateOrder(ctx context.Context, id string, updates map[string]any) (*models.Order, error) {
	native, ok := parseID(id)
	if !ok {
		return nil, nil
	}
	columns, values := translateUpdates(orderColumns, updates)
	if len(columns) > 0 {
		if err := a.update(ctx, "orders", native, columns, values); err != nil {
			return nil, err
		}
	}
	return a.findOrderByNativeID(ctx, native)
}

func (a *sqlAdapter) DeleteOrder(ctx context.Context, id string) (bool, error) {
	native, ok := parseID(id)
	if !ok {
		return false, nil
	}
	return a.delete(ctx, "orders", native)
}

// ---- carts ----

func (a *sqlAdapter) FindCart(ctx context.Context, customerID string) (*models.Cart, error) {
	native, ok := parseID(customerID)
	if !ok {
		return nil, nil
	}
	row, err := a.queryRow(ctx, "SELECT * FROM carts WHERE customer_id = "+a.d.placeholder(1), native)
	if err != nil || row == nil {
		return nil, err
	}
	return cartFromRow(a.d.backend(), row)
}

// UpdateCart is an upsert: the stored item set is replaced wholesale, never
// merged. One row per customer is guaranteed by the unique customer_id
// constraint.
func (a *sqlAdapter) UpdateCart(ctx context.Context, customerID string, items []models.OrderItem) (*models.Cart, error) {
	native, ok := parseID(customerID)
	if !ok {
		return nil, nil
	}

	encoded, err := encodeJSON(items, "[]")
	if err != nil {
		return nil, NewStorageError(a.d.backend(), "update carts", err)
	}

	existing, err := a.queryRow(ctx, "SELECT id FROM carts WHERE customer_id = "+a.d.placeholder(1), native)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		query := fmt.Sprintf("UPDATE carts SET items = %s, updated_at = CURRENT_TIMESTAMP WHERE customer_id = %s",
			a.d.placeholder(1), a.d.placeholder(2))
		if _, err := a.db.ExecContext(ctx, query, string(encoded), native); err != nil {
			return nil, a.wrapErr("update carts", err)
		}
	} else {
		if _, err := a.insert(ctx, "carts",
			[]string{"customer_id", "items"},
			[]any{native, string(encoded)}); err != nil {
			return nil, err
		}
	}
	return a.FindCart(ctx, customerID)
}

func (a *sqlAdapter) ClearCart(ctx context.Context, customerID string) (bool, error) {
	native, ok := parseID(customerID)
	if !ok {
		return false, nil
	}
	query := "DELETE FROM carts WHERE customer_id = " + a.d.placeholder(1)
	res, err := a.db.ExecContext(ctx, query, native)
	if err != nil {
		return false, a.wrapErr("delete carts", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, NewStorageError(a.d.backend(), "delete carts", err)
	}
	return affected > 0, nil
}
