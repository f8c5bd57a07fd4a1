// Package postgres stores workout slots in PostgreSQL so several service
// instances can share one activity log.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/workouts/internal/persistence"
)

// Repository provides Postgres-backed storage for named slots.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Slot binds a key in the workout_slots table.
func (r *Repository) Slot(key string) *Slot {
	if key == "" {
		key = persistence.DefaultSlotKey
	}
	return &Slot{repo: r, key: key}
}

// Keys lists the stored slot keys.
func (r *Repository) Keys(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT slot_key FROM workout_slots ORDER BY slot_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Slot is a persistence.Slot stored as one workout_slots row.
type Slot struct {
	repo *Repository
	key  string
}

// Read implements persistence.Slot.
func (s *Slot) Read(ctx context.Context) ([]byte, error) {
	const query = `SELECT payload FROM workout_slots WHERE slot_key = $1`

	var payload []byte
	if err := s.repo.pool.QueryRow(ctx, query, s.key).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, persistence.ErrSlotEmpty
		}
		return nil, fmt.Errorf("read slot %s: %w", s.key, err)
	}
	return payload, nil
}

// Write implements persistence.Slot.
func (s *Slot) Write(ctx context.Context, payload []byte) error {
	tx, err := s.repo.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	const upsert = `INSERT INTO workout_slots (slot_key, payload, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (slot_key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`

	if _, err = tx.Exec(ctx, upsert, s.key, payload); err != nil {
		return fmt.Errorf("write slot %s: %w", s.key, err)
	}
	return tx.Commit(ctx)
}

// Delete implements persistence.Slot.
func (s *Slot) Delete(ctx context.Context) error {
	if _, err := s.repo.pool.Exec(ctx, `DELETE FROM workout_slots WHERE slot_key = $1`, s.key); err != nil {
		return fmt.Errorf("delete slot %s: %w", s.key, err)
	}
	return nil
}
