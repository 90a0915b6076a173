// Package driver opens the user store selected by configuration.
package driver

import (
	"context"
	"fmt"

	"github.com/hongminglow/all-in-auth/internal/config"
	"github.com/hongminglow/all-in-auth/internal/storage"
	"github.com/hongminglow/all-in-auth/internal/storage/memory"
	"github.com/hongminglow/all-in-auth/internal/storage/postgres"
	"github.com/hongminglow/all-in-auth/internal/storage/sqlite"
)

// Open constructs the store for cfg.StorageDriver. The caller owns Close.
func Open(ctx context.Context, cfg config.Config) (storage.Store, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		return postgres.NewUserStore(ctx, cfg.DatabaseURL)
	case config.DriverSQLite:
		return sqlite.Open(ctx, cfg.SQLitePath)
	case config.DriverMemory:
		return memory.NewUserStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
