package crud

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/farmkeeper/internal/codec"
	"github.com/mesh-intelligence/farmkeeper/pkg/types"
)

// Service stores records of type T in one collection. T is a pointer to an
// entity struct, e.g. *types.Farm.
//
// Errors are either wrapped types.ErrNotFound or *types.PersistenceError.
// Update also reports a *types.ValidationError when a field value cannot be
// stored in its field, and a canceled context during the configured latency
// is returned as ctx.Err().
type Service[T types.Entity] struct {
	schema Schema
	codec  *codec.Codec[T]
	mu     *sync.Mutex
	logger *zap.Logger
	now    func() time.Time
}

type options struct {
	locks  *Locks
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*options)

// WithLocks shares a lock registry between services.
func WithLocks(l *Locks) Option {
	return func(o *options) { o.locks = l }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock sets the time source used for createdAt.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// NewService returns a Service for schema.Collection backed by store.
func NewService[T types.Entity](store types.Store, schema Schema, opts ...Option) *Service[T] {
	o := options{locks: processLocks, logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.locks == nil {
		o.locks = processLocks
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	logger := o.logger.With(zap.String("collection", schema.Collection))
	return &Service[T]{
		schema: schema,
		codec:  codec.New[T](store, logger),
		mu:     o.locks.For(schema.Collection),
		logger: logger,
		now:    o.now,
	}
}

// Collection returns the collection name.
func (s *Service[T]) Collection() string { return s.schema.Collection }

// GetAll returns every record in stored order.
func (s *Service[T]) GetAll(ctx context.Context) ([]T, error) {
	if err := wait(ctx, s.schema.Latency.List); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.codec.Load(ctx, s.schema.Collection)
}

// GetByID returns the record with the given Id.
func (s *Service[T]) GetByID(ctx context.Context, id int) (T, error) {
	var zero T
	if err := wait(ctx, s.schema.Latency.Get); err != nil {
		return zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.codec.Load(ctx, s.schema.Collection)
	if err != nil {
		return zero, err
	}
	i := indexOf(records, id)
	if i < 0 {
		return zero, s.notFound(id)
	}
	return records[i], nil
}

// GetByParentID returns the records whose parent field equals parentID, in
// stored order. Collections without a parent field always return an empty
// slice.
func (s *Service[T]) GetByParentID(ctx context.Context, parentID int) ([]T, error) {
	if s.schema.ParentField == "" {
		if err := wait(ctx, s.schema.Latency.List); err != nil {
			return nil, err
		}
		return []T{}, nil
	}
	return s.Fetch(ctx, map[string]any{s.schema.ParentField: parentID})
}

// Fetch returns the records whose fields equal every value in filter. Keys are
// JSON field names; a nil value matches a null or absent field, and an absent
// field also matches "", 0, and false. An empty filter returns every record.
func (s *Service[T]) Fetch(ctx context.Context, filter map[string]any) ([]T, error) {
	if err := wait(ctx, s.schema.Latency.List); err != nil {
		return nil, err
	}
	want, err := normalize(filter)
	if err != nil {
		verr := types.NewValidationError(s.schema.Collection + " filter")
		verr.Add("filter", err.Error())
		return nil, verr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.codec.Load(ctx, s.schema.Collection)
	if err != nil {
		return nil, err
	}
	if len(want) == 0 {
		return records, nil
	}

	matched := make([]T, 0)
	for _, rec := range records {
		have, err := normalize(rec)
		if err != nil {
			continue
		}
		if matches(have, want) {
			matched = append(matched, rec)
		}
	}
	return matched, nil
}

// Create stores a copy of entity under the next free Id and returns the copy.
// entity itself is not modified.
func (s *Service[T]) Create(ctx context.Context, entity T) (T, error) {
	var zero T
	if err := wait(ctx, s.schema.Latency.Create); err != nil {
		return zero, err
	}
	if isNil(entity) {
		verr := types.NewValidationError(entityName(entity))
		verr.Add("record", "record is nil")
		return zero, verr
	}
	rec, err := clone(entity)
	if err != nil {
		return zero, &types.PersistenceError{Op: "save", Collection: s.schema.Collection, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.codec.Load(ctx, s.schema.Collection)
	if err != nil {
		return zero, err
	}
	rec.SetID(NextID(records))
	if stamped, ok := any(rec).(types.Stamped); ok && s.schema.StampCreatedAt {
		stamped.SetCreatedAt(s.now().UTC())
	}
	records = append(records, rec)
	if err := s.codec.Save(ctx, s.schema.Collection, records); err != nil {
		return zero, err
	}
	s.logger.Debug("record created", zap.Int("id", rec.GetID()))
	return rec, nil
}

// Update lays fields over the stored record and returns the result. The Id
// never changes, even when fields carries one.
func (s *Service[T]) Update(ctx context.Context, id int, fields types.Fields) (T, error) {
	var zero T
	if err := wait(ctx, s.schema.Latency.Update); err != nil {
		return zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.codec.Load(ctx, s.schema.Collection)
	if err != nil {
		return zero, err
	}
	i := indexOf(records, id)
	if i < 0 {
		return zero, s.notFound(id)
	}
	merged, err := Merge(records[i], fields)
	if err != nil {
		return zero, err
	}
	merged.SetID(id)
	records[i] = merged
	if err := s.codec.Save(ctx, s.schema.Collection, records); err != nil {
		return zero, err
	}
	s.logger.Debug("record updated", zap.Int("id", id), zap.Int("fields", len(fields)))
	return merged, nil
}

// Delete removes the record with the given Id. It returns true on success.
func (s *Service[T]) Delete(ctx context.Context, id int) (bool, error) {
	if err := wait(ctx, s.schema.Latency.Delete); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.codec.Load(ctx, s.schema.Collection)
	if err != nil {
		return false, err
	}
	i := indexOf(records, id)
	if i < 0 {
		return false, s.notFound(id)
	}
	records = append(records[:i], records[i+1:]...)
	if err := s.codec.Save(ctx, s.schema.Collection, records); err != nil {
		return false, err
	}
	s.logger.Debug("record deleted", zap.Int("id", id))
	return true, nil
}

func (s *Service[T]) notFound(id int) error {
	return fmt.Errorf("%s %d: %w", s.schema.Collection, id, types.ErrNotFound)
}

func indexOf[T types.Entity](records []T, id int) int {
	for i, r := range records {
		if r.GetID() == id {
			return i
		}
	}
	return -1
}

// normalize converts v to its generic JSON form so values of different Go
// types compare equal when they encode the same way.
func normalize(v any) (map[string]any, error) {
	raw, err := types.EncodeRecord(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// matches reports whether have holds every value in want. An absent field
// reads as the zero value of the wanted type, since empty fields are omitted
// when stored.
func matches(have, want map[string]any) bool {
	for k, w := range want {
		h, ok := have[k]
		if !ok {
			h = zeroOf(w)
		}
		if !reflect.DeepEqual(h, w) {
			return false
		}
	}
	return true
}

// zeroOf returns the zero value of a decoded JSON scalar, or nil.
func zeroOf(v any) any {
	switch v.(type) {
	case string:
		return ""
	case float64:
		return float64(0)
	case bool:
		return false
	}
	return nil
}
