// Package sqlite implements the storage port on a single SQLite database
// file. Each slot is one row keyed by name.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/farmkeeper/pkg/types"
)

// DBFile is the database file name inside the data directory.
const DBFile = "farmkeeper.db"

const createSlots = `CREATE TABLE IF NOT EXISTS slots (
    name TEXT PRIMARY KEY,
    payload BLOB,
    updated_at TEXT NOT NULL
);`

const (
	selectSlot = `SELECT payload FROM slots WHERE name = ?`
	upsertSlot = `INSERT INTO slots (name, payload, updated_at) VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`
	listSlots = `SELECT name FROM slots ORDER BY name`
)

// Store holds slots in the slots table.
type Store struct {
	db *sql.DB
}

// Open opens or creates <dataDir>/farmkeeper.db and ensures the schema.
func Open(ctx context.Context, dataDir string) (*Store, error) {
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, DBFile))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serializes writers inside the process.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, createSlots); err != nil {
		db.Close()
		return nil, fmt.Errorf("create slots table: %w", err)
	}
	return &Store{db: db}, nil
}

// Load returns the slot payload.
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

// Save upserts the slot payload.
func (s *Store) Save(ctx context.Context, slot string, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx, upsertSlot, slot, data, now); err != nil {
		return fmt.Errorf("upsert slot %s: %w", slot, err)
	}
	return nil
}

// Slots lists the stored slot names, sorted.
func (s *Store) Slots(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, listSlots)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
