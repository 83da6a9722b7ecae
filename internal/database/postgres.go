// internal/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/farmfresh/farm-backend/internal/config"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
	id SERIAL PRIMARY KEY,
	username VARCHAR(100) UNIQUE NOT NULL,
	email VARCHAR(255) UNIQUE NOT NULL,
	password VARCHAR(255) NOT NULL,
	role VARCHAR(20) NOT NULL CHECK (role IN ('admin', 'farmer', 'customer', 'agent')),
	profile JSONB NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS products (
	id SERIAL PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	category VARCHAR(20) NOT NULL CHECK (category IN ('vegetables', 'fruits', 'dairy', 'grains', 'herbs', 'other')),
	price DECIMAL(10,2) NOT NULL,
	sku VARCHAR(100) UNIQUE NOT NULL,
	farmer_id INTEGER NOT NULL,
	stock INTEGER NOT NULL DEFAULT 0,
	description TEXT,
	images JSONB NOT NULL DEFAULT '[]',
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS orders (
	id SERIAL PRIMARY KEY,
	customer_id INTEGER NOT NULL,
	items JSONB NOT NULL DEFAULT '[]',
	total_amount DECIMAL(10,2) NOT NULL,
	status VARCHAR(20) NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'confirmed', 'shipped', 'delivered', 'cancelled')),
	shipping_address JSONB,
	order_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	delivery_date TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS carts (
	id SERIAL PRIMARY KEY,
	customer_id INTEGER UNIQUE NOT NULL,
	items JSONB NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);
CREATE INDEX IF NOT EXISTS idx_products_farmer ON products(farmer_id);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);
CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders(customer_id);
CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
`

type postgresDialect struct{}

func (postgresDialect) backend() string { return BackendPostgres }

func (postgresDialect) placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func (postgresDialect) supportsReturning() bool { return true }

func (postgresDialect) nativeBool(b bool) any { return b }

func (postgresDialect) nativeTime(t time.Time) any { return t }

func (postgresDialect) duplicateField(err error) (string, bool) {
	pqErr, ok := err.(*pq.Error)
	if !ok || pqErr.Code != "23505" {
		return "", false
	}
	// Constraint names follow the table_column_key convention.
	return duplicateFieldFromText(pqErr.Constraint + " " + pqErr.Detail), true
}

// PostgresAdapter implements Adapter on top of lib/pq with the shared
// relational core.
type PostgresAdapter struct {
	*sqlAdapter
	cfg config.DatabaseConfig
}

func NewPostgresAdapter(cfg config.DatabaseConfig) *PostgresAdapter {
	return &PostgresAdapter{cfg: cfg}
}

func (a *PostgresAdapter) Connect(ctx context.Context) error {
	db, err := sql.Open("postgres", a.cfg.URI)
	if err != nil {
		return NewConnectionError(BackendPostgres, err)
	}

	db.SetMaxOpenConns(a.cfg.PoolSize)
	db.SetMaxIdleConns(a.cfg.PoolSize / 2)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, time.Duration(a.cfg.TimeoutMS)*time.Millisecond)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return NewConnectionError(BackendPostgres, err)
	}

	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return NewConnectionError(BackendPostgres, fmt.Errorf("schema init: %w", err))
	}

	a.sqlAdapter = &sqlAdapter{db: db, d: postgresDialect{}}
	logrus.WithField("backend", BackendPostgres).Info("Database connected")
	return nil
}

func (a *PostgresAdapter) Disconnect(ctx context.Context) error {
	if a.sqlAdapter == nil {
		return nil
	}
	err := a.db.Close()
	a.sqlAdapter = nil
	if err != nil {
		return NewConnectionError(BackendPostgres, err)
	}
	return nil
}
