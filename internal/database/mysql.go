// internal/database/mysql.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"

	"github.com/farmfresh/farm-backend/internal/config"
)

// MySQL rejects multi-statement Exec by default, so the schema is applied
// statement by statement.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(100) UNIQUE NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		password VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL,
		profile JSON,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT chk_users_role CHECK (role IN ('admin', 'farmer', 'customer', 'agent'))
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		category VARCHAR(20) NOT NULL,
		price DECIMAL(10,2) NOT NULL,
		sku VARCHAR(100) UNIQUE NOT NULL,
		farmer_id INT NOT NULL,
		stock INT NOT NULL DEFAULT 0,
		description TEXT,
		images JSON,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT chk_products_category CHECK (category IN ('vegetables', 'fruits', 'dairy', 'grains', 'herbs', 'other')),
		INDEX idx_products_farmer (farmer_id),
		INDEX idx_products_category (category)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id INT AUTO_INCREMENT PRIMARY KEY,
		customer_id INT NOT NULL,
		items JSON,
		total_amount DECIMAL(10,2) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		shipping_address JSON,
		order_date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		delivery_date TIMESTAMP NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT chk_orders_status CHECK (status IN ('pending', 'confirmed', 'shipped', 'delivered', 'cancelled')),
		INDEX idx_orders_customer (customer_id),
		INDEX idx_orders_status (status)
	)`,
	`CREATE TABLE IF NOT EXISTS carts (
		id INT AUTO_INCREMENT PRIMARY KEY,
		customer_id INT UNIQUE NOT NULL,
		items JSON,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

type mysqlDialect struct{}

func (mysqlDialect) backend() string { return BackendMySQL }

func (mysqlDialect) placeholder(n int) string { return "?" }

func (mysqlDialect) supportsReturning() bool { return false }

func (mysqlDialect) nativeBool(b bool) any { return b }

func (mysqlDialect) nativeTime(t time.Time) any { return t }

func (mysqlDialect) duplicateField(err error) (string, bool) {
	var myErr *mysql.MySQLError
	if !errors.As(err, &myErr) || myErr.Number != 1062 {
		return "", false
	}
	// Message looks like: Duplicate entry 'x' for key 'users.email'
	return duplicateFieldFromText(myErr.Message), true
}

// MySQLAdapter implements Adapter on top of go-sql-driver/mysql with the
// shared relational core.
type MySQLAdapter struct {
	*sqlAdapter
	cfg config.DatabaseConfig
}

func NewMySQLAdapter(cfg config.DatabaseConfig) *MySQLAdapter {
	return &MySQLAdapter{cfg: cfg}
}

func (a *MySQLAdapter) Connect(ctx context.Context) error {
	dsn := a.cfg.URI
	// Timestamps must come back as time.Time, not []byte.
	if !strings.Contains(dsn, "parseTime=") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return NewConnectionError(BackendMySQL, err)
	}

	db.SetMaxOpenConns(a.cfg.PoolSize)
	db.SetMaxIdleConns(a.cfg.PoolSize / 2)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, time.Duration(a.cfg.TimeoutMS)*time.Millisecond)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return NewConnectionError(BackendMySQL, err)
	}

	for _, stmt := range mysqlSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return NewConnectionError(BackendMySQL, fmt.Errorf("schema init: %w", err))
		}
	}

	a.sqlAdapter = &sqlAdapter{db: db, d: mysqlDialect{}}
	logrus.WithField("backend", BackendMySQL).Info("Database connected")
	return nil
}

func (a *MySQLAdapter) Disconnect(ctx context.Context) error {
	if a.sqlAdapter == nil {
		return nil
	}
	err := a.db.Close()
	a.sqlAdapter = nil
	if err != nil {
		return NewConnectionError(BackendMySQL, err)
	}
	return nil
}
