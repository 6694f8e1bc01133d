// Package postgres implements the storage port on a Postgres table, one JSONB
// row per slot.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"github.com/mesh-intelligence/farmkeeper/pkg/types"
)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/farmkeeper?sslmode=disable"
)

const (
	createSlots = `CREATE TABLE IF NOT EXISTS slots (
		name TEXT PRIMARY KEY,
		payload JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`
	selectSlot = `SELECT payload FROM slots WHERE name = $1`
	upsertSlot = `INSERT INTO slots (name, payload, updated_at) VALUES ($1, $2::jsonb, now())
		ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store keeps slots in the slots table.
type Store struct {
	db *sql.DB
}

// Open connects to dsn (defaultDSN when empty), verifies the connection, and
// ensures the slots table exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, createSlots); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure slots table: %w", err)
	}
	return &Store{db: db}, nil
}

// Load returns the slot payload. JSONB normalizes whitespace and object key
// order; array order is preserved.
func (s *Store) Load(ctx context.Context, slot string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, selectSlot, slot).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", slot, types.ErrSlotNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select slot %s: %w", slot, err)
	}
	return payload, nil
}

// Save upserts the slot payload. data must be valid JSON.
func (s *Store) Save(ctx context.Context, slot string, data []byte) error {
	if _, err := s.db.ExecContext(ctx, upsertSlot, slot, string(data)); err != nil {
		return fmt.Errorf("upsert slot %s: %w", slot, err)
	}
	return nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// OverrideSQLOpen swaps the sql.Open hook and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dsn string) (*sql.DB, error)) func() {
	openMu.Lock()
	prev := sqlOpen
	sqlOpen = fn
	openMu.Unlock()
	return func() {
		openMu.Lock()
		sqlOpen = prev
		openMu.Unlock()
	}
}
