// Package farmkeeper is the public entry point: it opens the configured
// storage backend and returns the collection services bound to it.
//
// Example:
//
//	client, err := farmkeeper.Open(ctx, types.Config{
//	    Backend: types.BackendFile,
//	    DataDir: "/var/lib/farmkeeper",
//	})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//	farm, err := client.Farms.Create(ctx, &types.Farm{Name: "North Field", Size: 10})
package farmkeeper

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/farmkeeper/internal/keeper"
	"github.com/mesh-intelligence/farmkeeper/internal/metrics"
	"github.com/mesh-intelligence/farmkeeper/internal/store"
	"github.com/mesh-intelligence/farmkeeper/pkg/types"
)

// Version is the release version.
const Version = "0.1.0"

// Client holds the open backend and the services built over it.
type Client struct {
	*keeper.Keeper
	backend store.Backend
	metrics *metrics.Store
}

type options struct {
	logger   *zap.Logger
	registry prometheus.Registerer
	clock    func() time.Time
}

// Option configures Open.
type Option func(*options)

// WithLogger sets the logger for the store and services.
func WithLogger(l *zap.Logger) Option { return func(o *options) { o.logger = l } }

// WithRegisterer records storage metrics into reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registry = reg }
}

// WithClock sets the time source for createdAt stamps and the dashboard date.
func WithClock(now func() time.Time) Option { return func(o *options) { o.clock = now } }

// Open opens the backend named by cfg.Backend. The caller must Close the
// client.
func Open(ctx context.Context, cfg types.Config, opts ...Option) (*Client, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	backend, err := store.Open(ctx, cfg, o.logger)
	if err != nil {
		return nil, err
	}
	c := &Client{backend: backend}
	var port types.Store = backend
	if o.registry != nil {
		c.metrics = metrics.NewStore(backend, o.registry)
		port = c.metrics
	}
	c.Keeper = keeper.New(port, keeper.Options{
		Logger:  o.logger,
		Latency: cfg.Latency,
		Clock:   o.clock,
	})
	return c, nil
}

// Store returns the storage port the services use.
func (c *Client) Store() types.Store {
	if c.metrics != nil {
		return c.metrics
	}
	return c.backend
}

// Close releases the backend.
func (c *Client) Close() error { return c.backend.Close() }
