// Package store opens the storage backend selected by configuration. One
// backend is built per process and shared by every collection service.
package store

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/farmkeeper/internal/store/file"
	"github.com/mesh-intelligence/farmkeeper/internal/store/memory"
	"github.com/mesh-intelligence/farmkeeper/internal/store/postgres"
	"github.com/mesh-intelligence/farmkeeper/internal/store/s3"
	"github.com/mesh-intelligence/farmkeeper/internal/store/sqlite"
	"github.com/mesh-intelligence/farmkeeper/pkg/types"
)

// Backend is a storage port that holds resources until closed.
type Backend interface {
	types.Store
	io.Closer
}

// Compile-time checks.
var (
	_ Backend = (*memory.Store)(nil)
	_ Backend = (*file.Store)(nil)
	_ Backend = (*sqlite.Store)(nil)
	_ Backend = (*postgres.Store)(nil)
	_ Backend = (*s3.Store)(nil)
)

// Open validates cfg and opens its backend.
func Open(ctx context.Context, cfg types.Config, logger *zap.Logger) (Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var (
		b   Backend
		err error
	)
	switch cfg.Backend {
	case types.BackendMemory:
		b = memory.New()
	case types.BackendFile:
		b, err = file.Open(cfg.DataDir)
	case types.BackendSQLite:
		b, err = sqlite.Open(ctx, cfg.DataDir)
	case types.BackendPostgres:
		b, err = postgres.Open(ctx, cfg.Postgres.DSN)
	case types.BackendS3:
		b, err = s3.Open(ctx, s3.Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			Prefix:    cfg.S3.Prefix,
			PathStyle: cfg.S3.PathStyle,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", cfg.Backend, err)
	}

	logger.Debug("storage backend opened",
		zap.String("backend", cfg.Backend),
		zap.String("data_dir", cfg.DataDir))
	return b, nil
}
