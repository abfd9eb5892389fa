// Package app assembles the storage backends chosen by configuration.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	postgresRepo "github.com/iho/lnstable/internal/adapter/repository/postgres"
	"github.com/iho/lnstable/internal/adapter/repository/sqlite"
	"github.com/iho/lnstable/internal/infrastructure/config"
	"github.com/iho/lnstable/internal/infrastructure/postgres"
	"github.com/iho/lnstable/internal/usecase"
)

// Store is the ledger and user storage selected by STORE_DRIVER.
type Store struct {
	Ledger usecase.LedgerStore
	Users  usecase.UserRepository
	Driver string

	ping  func(ctx context.Context) error
	close func()
}

// Ping checks the backing database.
func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Close releases the backing database.
func (s *Store) Close() {
	s.close()
}

// OpenStore opens the configured backend. With AUTO_MIGRATE set, PostgreSQL
// migrations are applied first; SQLite applies its schema on open.
func OpenStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Store, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverSQLite:
		return openSQLite(ctx, cfg, logger)
	case config.StoreDriverPostgres:
		return openPostgres(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

func openSQLite(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Store, error) {
	db, err := sqlite.Open(ctx, cfg.SQLitePath, logger)
	if err != nil {
		return nil, err
	}

	return &Store{
		Ledger: db,
		Users:  db,
		Driver: config.StoreDriverSQLite,
		ping:   db.Ping,
		close: func() {
			if err := db.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to close sqlite")
			}
		},
	}, nil
}

func openPostgres(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Store, error) {
	if cfg.AutoMigrate {
		if err := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, logger).Up(); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return nil, err
	}
	logger.Info().Msg("connected to postgres")

	return &Store{
		Ledger: postgresRepo.NewLedgerStore(pool, logger),
		Users:  postgresRepo.NewUserRepository(pool),
		Driver: config.StoreDriverPostgres,
		ping:   pool.Ping,
		close:  pool.Close,
	}, nil
}
