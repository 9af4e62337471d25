package repository

import (
	"context"
	"fmt"

	"github.com/careeratlas/trends/internal/config"
)

// Open builds the store selected by cfg.StoreDriver.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (Store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		return NewPostgresStore(ctx, cfg.DatabaseURL, opts...)
	case config.DriverSQLite:
		return NewSQLiteStore(ctx, cfg.SQLitePath, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.StoreDriver)
	}
}
