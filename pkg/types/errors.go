package types

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Record operation errors.
var (
	ErrNotFound    = errors.New("record not found")
	ErrPersistence = errors.New("persistence failure")
	ErrValidation  = errors.New("invalid record")
)

// PersistenceError reports a failed read or write against the store.
// errors.Is(err, ErrPersistence) holds for every PersistenceError.
type PersistenceError struct {
	Op         string // "load" or "save"
	Collection string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Is matches ErrPersistence.
func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// ValidationError lists the fields of a record that failed validation,
// keyed by JSON field name.
type ValidationError struct {
	Entity string
	Fields map[string]string
}

// NewValidationError returns an empty ValidationError for the entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{Entity: entity, Fields: make(map[string]string)}
}

// Add records a problem with field. The first message for a field wins.
func (e *ValidationError) Add(field, msg string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// OrNil returns e when it holds at least one field error, nil otherwise.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return fmt.Sprintf("invalid %s: %s", e.Entity, strings.Join(parts, "; "))
}

// Is matches ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
