// internal/database/turso.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	_ "github.com/tursodatabase/libsql-client-go/libsql"

	"github.com/farmfresh/farm-backend/internal/config"
)

// TursoAdapter implements Adapter against a hosted libsql database. The
// wire protocol differs from embedded SQLite but the SQL dialect does
// not, so the schema and dialect are shared with SQLiteAdapter.
type TursoAdapter struct {
	*sqlAdapter
	cfg config.DatabaseConfig
}

func NewTursoAdapter(cfg config.DatabaseConfig) *TursoAdapter {
	return &TursoAdapter{cfg: cfg}
}

func (a *TursoAdapter) Connect(ctx context.Context) error {
	dsn := a.cfg.URI
	if a.cfg.AuthToken != "" {
		dsn = fmt.Sprintf("%s?authToken=%s", a.cfg.URI, a.cfg.AuthToken)
	}

	db, err := sql.Open("libsql", dsn)
	if err != nil {
		return NewConnectionError(BackendTurso, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, time.Duration(a.cfg.TimeoutMS)*time.Millisecond)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return NewConnectionError(BackendTurso, err)
	}

	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return NewConnectionError(BackendTurso, fmt.Errorf("schema init: %w", err))
		}
	}

	a.sqlAdapter = &sqlAdapter{db: db, d: sqliteDialect{name: BackendTurso}}
	logrus.WithField("backend", BackendTurso).Info("Database connected")
	return nil
}

func (a *TursoAdapter) Disconnect(ctx context.Context) error {
	if a.sqlAdapter == nil {
		return nil
	}
	err := a.db.Close()
	a.sqlAdapter = nil
	if err != nil {
		return NewConnectionError(BackendTurso, err)
	}
	return nil
}
