// internal/database/sqlite.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/farmfresh/farm-backend/internal/config"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL,
		role TEXT NOT NULL CHECK (role IN ('admin', 'farmer', 'customer', 'agent')),
		profile TEXT NOT NULL DEFAULT '{}',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		category TEXT NOT NULL CHECK (category IN ('vegetables', 'fruits', 'dairy', 'grains', 'herbs', 'other')),
		price REAL NOT NULL,
		sku TEXT UNIQUE NOT NULL,
		farmer_id INTEGER NOT NULL,
		stock INTEGER NOT NULL DEFAULT 0,
		description TEXT,
		images TEXT NOT NULL DEFAULT '[]',
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		customer_id INTEGER NOT NULL,
		items TEXT NOT NULL DEFAULT '[]',
		total_amount REAL NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'confirmed', 'shipped', 'delivered', 'cancelled')),
		shipping_address TEXT,
		order_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		delivery_date DATETIME,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS carts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		customer_id INTEGER UNIQUE NOT NULL,
		items TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)`,
	`CREATE INDEX IF NOT EXISTS idx_products_farmer ON products(farmer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders(customer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)`,
}

// sqliteDialect covers both embedded SQLite and Turso, which speak the
// same SQL surface. The backend name is carried so errors report the
// engine that actually ran the statement.
type sqliteDialect struct {
	name string
}

func (d sqliteDialect) backend() string { return d.name }

func (sqliteDialect) placeholder(n int) string { return "?" }

func (sqliteDialect) supportsReturning() bool { return false }

func (sqliteDialect) nativeBool(b bool) any {
	if b {
		return 1
	}
	return 0
}

func (sqliteDialect) nativeTime(t time.Time) any {
	return t.UTC().Format("2006-01-02 15:04:05")
}

func (sqliteDialect) duplicateField(err error) (string, bool) {
	// modernc.org/sqlite and the libsql driver both surface constraint
	// violations as plain text, e.g. "UNIQUE constraint failed: users.email".
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return "", false
	}
	return duplicateFieldFromText(msg), true
}

// SQLiteAdapter implements Adapter on top of the cgo-free modernc driver
// with the shared relational core.
type SQLiteAdapter struct {
	*sqlAdapter
	cfg config.DatabaseConfig
}

func NewSQLiteAdapter(cfg config.DatabaseConfig) *SQLiteAdapter {
	return &SQLiteAdapter{cfg: cfg}
}

func (a *SQLiteAdapter) Connect(ctx context.Context) error {
	path := a.cfg.Path
	dsn := path
	if path == ":memory:" {
		// A plain :memory: DSN gives every pooled connection its own
		// database; shared cache keeps them on one.
		dsn = "file::memory:?cache=shared"
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return NewConnectionError(BackendSQLite, err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)", path, a.cfg.TimeoutMS)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return NewConnectionError(BackendSQLite, err)
	}
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, time.Duration(a.cfg.TimeoutMS)*time.Millisecond)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return NewConnectionError(BackendSQLite, err)
	}

	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return NewConnectionError(BackendSQLite, fmt.Errorf("schema init: %w", err))
		}
	}

	a.sqlAdapter = &sqlAdapter{db: db, d: sqliteDialect{name: BackendSQLite}}
	logrus.WithFields(logrus.Fields{"backend": BackendSQLite, "path": path}).Info("Database connected")
	return nil
}

func (a *SQLiteAdapter) Disconnect(ctx context.Context) error {
	if a.sqlAdapter == nil {
		return nil
	}
	err := a.db.Close()
	a.sqlAdapter = nil
	if err != nil {
		return NewConnectionError(BackendSQLite, err)
	}
	return nil
}
