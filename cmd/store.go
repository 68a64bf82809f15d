package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/jjaoguedes/facegate/internal/config"
	"github.com/jjaoguedes/facegate/internal/database"
	"github.com/jjaoguedes/facegate/internal/database/mariadb"
	"github.com/jjaoguedes/facegate/internal/database/postgres"
)

// openStore connects to the configured storage backend and applies schema
// migrations.
func openStore(ctx context.Context, cfg *config.Config) (database.Store, error) {
	if cfg.Database.URL == "" {
		return nil, errors.New("DATABASE_URL environment variable is required")
	}

	switch cfg.Database.Driver {
	case "", "postgres":
		store, err := postgres.Open(ctx, &cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
		}
		return store, nil
	case "mysql":
		store, err := mariadb.Open(ctx, &cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize MariaDB: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}
