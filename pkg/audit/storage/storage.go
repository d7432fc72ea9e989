package storage

import (
	"context"
	"fmt"

	"mercator-hq/vesta/pkg/audit"
)

// Backend names accepted by New.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// streamBuffer is the channel capacity used by QueryStream.
const streamBuffer = 100

// Config selects and configures a storage backend.
type Config struct {
	Backend string
	SQLite  *SQLiteConfig
}

// Pinger is implemented by backends that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New opens the backend named by cfg.Backend.
func New(cfg Config) (audit.Storage, error) {
	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryStorage(), nil
	case BackendSQLite, "":
		return NewSQLiteStorage(cfg.SQLite)
	default:
		return nil, audit.NewStorageError(cfg.Backend, "open", fmt.Errorf("unknown backend %q", cfg.Backend))
	}
}
