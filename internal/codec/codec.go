// Package codec serializes whole collections to and from a storage slot.
// Each slot holds one JSON array; every save rewrites the full array.
package codec

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/farmkeeper/pkg/types"
)

// Codec reads and writes the records of one entity type.
type Codec[T any] struct {
	store  types.Store
	logger *zap.Logger
}

// New returns a Codec over store. A nil logger discards log output.
func New[T any](store types.Store, logger *zap.Logger) *Codec[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Codec[T]{store: store, logger: logger}
}

// Load returns the records in slot, in stored order. An absent, empty, or
// malformed slot yields an empty slice and no error. Elements that are null
// or do not decode into T are skipped. Undeclared fields are kept on the
// record. A failed read from the store is
// returned as a *types.PersistenceError.
func (c *Codec[T]) Load(ctx context.Context, slot string) ([]T, error) {
	raw, err := c.store.Load(ctx, slot)
	if errors.Is(err, types.ErrSlotNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, &types.PersistenceError{Op: "load", Collection: slot, Err: err}
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return []T{}, nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		c.logger.Warn("malformed slot treated as empty",
			zap.String("collection", slot),
			zap.Int("bytes", len(raw)),
			zap.Error(err))
		return []T{}, nil
	}

	records := make([]T, 0, len(elems))
	for i, elem := range elems {
		if bytes.Equal(bytes.TrimSpace(elem), []byte("null")) {
			c.logger.Warn("null record skipped",
				zap.String("collection", slot),
				zap.Int("index", i))
			continue
		}
		rec, err := types.DecodeRecord[T](elem)
		if err != nil {
			c.logger.Warn("undecodable record skipped",
				zap.String("collection", slot),
				zap.Int("index", i),
				zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Save replaces the content of slot with records. A nil slice is written as
// an empty array. Fields a record kept from storage without declaring them
// are written back.
func (c *Codec[T]) Save(ctx context.Context, slot string, records []T) error {
	elems := make([]json.RawMessage, len(records))
	for i, rec := range records {
		raw, err := types.EncodeRecord(rec)
		if err != nil {
			return &types.PersistenceError{Op: "save", Collection: slot, Err: err}
		}
		elems[i] = raw
	}
	data, err := json.Marshal(elems)
	if err != nil {
		return &types.PersistenceError{Op: "save", Collection: slot, Err: err}
	}
	if err := c.store.Save(ctx, slot, data); err != nil {
		return &types.PersistenceError{Op: "save", Collection: slot, Err: err}
	}
	c.logger.Debug("slot saved",
		zap.String("collection", slot),
		zap.Int("records", len(records)),
		zap.Int("bytes", len(data)))
	return nil
}
