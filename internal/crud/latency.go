package crud

import (
	"context"
	"time"
)

// Latency holds the delay applied before each kind of operation.
type Latency struct {
	List   time.Duration
	Get    time.Duration
	Create time.Duration
	Update time.Duration
	Delete time.Duration
}

// NetworkLatency approximates a remote API round trip.
var NetworkLatency = Latency{
	List:   200 * time.Millisecond,
	Get:    150 * time.Millisecond,
	Create: 300 * time.Millisecond,
	Update: 300 * time.Millisecond,
	Delete: 250 * time.Millisecond,
}

// wait sleeps for d or until ctx is done, whichever comes first.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
