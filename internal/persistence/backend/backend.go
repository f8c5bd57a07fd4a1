// Package backend opens the persistence slot selected by configuration.
package backend

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/workouts/internal/config"
	"example.com/workouts/internal/persistence"
	"example.com/workouts/internal/persistence/badger"
	"example.com/workouts/internal/persistence/memory"
	"example.com/workouts/internal/persistence/postgres"
)

// Opened is a ready slot plus whatever must be released on shutdown.
type Opened struct {
	Slot  persistence.Slot
	close func() error
}

// Close releases the underlying database.
func (o Opened) Close() error {
	if o.close == nil {
		return nil
	}
	return o.close()
}

// Open connects to cfg.StorageBackend and returns the slot named cfg.SlotKey.
func Open(ctx context.Context, cfg config.Config, logger *log.Logger) (Opened, error) {
	switch cfg.StorageBackend {
	case config.BackendBadger:
		bcfg := badger.DefaultConfig(cfg.BadgerPath)
		bcfg.GCInterval = cfg.BadgerGCInterval
		bcfg.Logger = logger
		db, err := badger.Open(bcfg)
		if err != nil {
			return Opened{}, fmt.Errorf("open badger at %s: %w", cfg.BadgerPath, err)
		}
		return Opened{Slot: badger.NewSlot(db, cfg.SlotKey), close: db.Close}, nil

	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return Opened{}, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return Opened{}, fmt.Errorf("ping postgres: %w", err)
		}
		repo := postgres.NewRepository(pool)
		return Opened{Slot: repo.Slot(cfg.SlotKey), close: func() error {
			pool.Close()
			return nil
		}}, nil

	case config.BackendMemory:
		return Opened{Slot: memory.NewSlot()}, nil
	}
	return Opened{}, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}
