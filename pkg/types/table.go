package types

import (
	"context"
	"errors"
	"time"
)

// Entity is implemented by every record type stored in a collection.
// The integer Id is assigned on creation and never reassigned.
type Entity interface {
	GetID() int
	SetID(id int)
}

// Stamped is implemented by entities that record their creation time.
type Stamped interface {
	SetCreatedAt(t time.Time)
}

// Fields is a partial record keyed by JSON field name. It is the payload of
// an update: every key present replaces the stored value.
type Fields map[string]any

// FieldID is the reserved identifier field. Updates never change it.
const FieldID = "Id"

// Store is the storage port: a key-value store of named slots, each holding
// the serialized form of one whole collection.
type Store interface {
	// Load returns the raw slot content.
	// Returns ErrSlotNotFound if the slot has never been written.
	Load(ctx context.Context, slot string) ([]byte, error)

	// Save replaces the slot content in one write.
	Save(ctx context.Context, slot string, data []byte) error
}

// Storage port errors.
var (
	ErrSlotNotFound  = errors.New("slot not found")
	ErrInvalidSlot   = errors.New("invalid slot name")
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)
