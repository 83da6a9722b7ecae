// internal/database/factory.go
package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/farmfresh/farm-backend/internal/config"
)

// Factory owns the lifecycle of the configured adapter. The adapter is
// built and connected on first Get and reused by every subsequent caller;
// Disconnect drops it so the next Get reconnects from scratch.
type Factory struct {
	mu      sync.Mutex
	cfg     config.DatabaseConfig
	adapter Adapter
}

func NewFactory(cfg config.DatabaseConfig) *Factory {
	return &Factory{cfg: cfg}
}

// Backend reports the configured backend type without connecting.
func (f *Factory) Backend() string {
	return f.cfg.Type
}

// Get returns the shared connected adapter, connecting on first use.
// Transient connection failures are retried with exponential backoff up to
// the configured attempt count.
func (f *Factory) Get(ctx context.Context) (Adapter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.adapter != nil {
		return f.adapter, nil
	}

	adapter, err := newAdapter(f.cfg)
	if err != nil {
		return nil, err
	}
	if err := connectWithRetry(ctx, adapter, f.cfg); err != nil {
		return nil, err
	}

	f.adapter = adapter
	return f.adapter, nil
}

// Disconnect closes the active adapter, if any. Safe to call repeatedly.
func (f *Factory) Disconnect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.adapter == nil {
		return nil
	}
	err := f.adapter.Disconnect(ctx)
	f.adapter = nil
	return err
}

func newAdapter(cfg config.DatabaseConfig) (Adapter, error) {
	switch cfg.Type {
	case BackendMongoDB:
		return NewMongoAdapter(cfg), nil
	case BackendPostgres:
		return NewPostgresAdapter(cfg), nil
	case BackendMySQL:
		return NewMySQLAdapter(cfg), nil
	case BackendSQLite:
		return NewSQLiteAdapter(cfg), nil
	case BackendTurso:
		return NewTursoAdapter(cfg), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Type)
}

func connectWithRetry(ctx context.Context, adapter Adapter, cfg config.DatabaseConfig) error {
	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = adapter.Connect(ctx); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		backoff := time.Second << (attempt - 1)
		logrus.WithFields(logrus.Fields{
			"backend": cfg.Type,
			"attempt": attempt,
			"backoff": backoff,
		}).WithError(err).Warn("Database connection failed, retrying")

		select {
		case <-ctx.Done():
			return NewConnectionError(cfg.Type, ctx.Err())
		case <-time.After(backoff):
		}
	}
	return err
}
