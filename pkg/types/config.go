package types

import "errors"

// Config holds backend selection and parameters for opening a store.
// Exactly one backend is active per process.
type Config struct {
	Backend  string         `json:"backend" yaml:"backend" mapstructure:"backend"`
	DataDir  string         `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	Postgres PostgresConfig `json:"postgres" yaml:"postgres" mapstructure:"postgres"`
	S3       S3Config       `json:"s3" yaml:"s3" mapstructure:"s3"`

	// Latency enables the simulated network delay on every service call.
	Latency bool `json:"latency" yaml:"latency" mapstructure:"latency"`
}

// PostgresConfig configures the postgres backend.
type PostgresConfig struct {
	DSN string `json:"dsn" yaml:"dsn" mapstructure:"dsn"`
}

// S3Config configures the s3 backend. Credentials come from the default AWS
// chain.
type S3Config struct {
	Bucket    string `json:"bucket" yaml:"bucket" mapstructure:"bucket"`
	Region    string `json:"region" yaml:"region" mapstructure:"region"`
	Endpoint  string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`
	Prefix    string `json:"prefix" yaml:"prefix" mapstructure:"prefix"`
	PathStyle bool   `json:"path_style" yaml:"path_style" mapstructure:"path_style"`
}

// Supported backend names.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendS3       = "s3"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
	ErrBucketEmpty    = errors.New("s3 bucket must not be empty")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendMemory:   true,
	BackendFile:     true,
	BackendSQLite:   true,
	BackendPostgres: true,
	BackendS3:       true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Backend == BackendS3 && c.S3.Bucket == "" {
		return ErrBucketEmpty
	}
	return nil
}
