// Package metrics instruments a storage port with Prometheus collectors.
package metrics

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mesh-intelligence/farmkeeper/pkg/types"
)

const namespace = "farmkeeper"

// Operation results.
const (
	ResultOK      = "ok"
	ResultMissing = "missing"
	ResultError   = "error"
)

// Store wraps a types.Store and records every Load and Save.
type Store struct {
	next types.Store

	Ops       *prometheus.CounterVec
	Duration  *prometheus.HistogramVec
	SlotBytes *prometheus.GaugeVec
}

// NewStore wraps next. Collectors are registered with reg when it is not nil.
func NewStore(next types.Store, reg prometheus.Registerer) *Store {
	s := &Store{
		next: next,
		Ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Storage operations by op, slot, and result.",
		}, []string{"op", "slot", "result"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Storage operation latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"op"}),
		SlotBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "slot_bytes",
			Help:      "Size of the last payload read or written per slot.",
		}, []string{"slot"}),
	}
	if reg != nil {
		reg.MustRegister(s.Ops, s.Duration, s.SlotBytes)
	}
	return s
}

// Load delegates to the wrapped store.
func (s *Store) Load(ctx context.Context, slot string) ([]byte, error) {
	start := time.Now()
	data, err := s.next.Load(ctx, slot)
	s.Duration.WithLabelValues("load").Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, types.ErrSlotNotFound):
		s.Ops.WithLabelValues("load", slot, ResultMissing).Inc()
	case err != nil:
		s.Ops.WithLabelValues("load", slot, ResultError).Inc()
	default:
		s.Ops.WithLabelValues("load", slot, ResultOK).Inc()
		s.SlotBytes.WithLabelValues(slot).Set(float64(len(data)))
	}
	return data, err
}

// Save delegates to the wrapped store.
func (s *Store) Save(ctx context.Context, slot string, data []byte) error {
	start := time.Now()
	err := s.next.Save(ctx, slot, data)
	s.Duration.WithLabelValues("save").Observe(time.Since(start).Seconds())

	if err != nil {
		s.Ops.WithLabelValues("save", slot, ResultError).Inc()
		return err
	}
	s.Ops.WithLabelValues("save", slot, ResultOK).Inc()
	s.SlotBytes.WithLabelValues(slot).Set(float64(len(data)))
	return nil
}

// Close closes the wrapped store when it holds resources.
func (s *Store) Close() error {
	if c, ok := s.next.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
