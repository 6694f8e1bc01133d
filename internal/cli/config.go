// Config loading for the farmkeeper CLI.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/farmkeeper/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
	envPrefix      = "FARMKEEPER"

	cfgKeyBackend     = "backend"
	cfgKeyDataDir     = "data_dir"
	cfgKeyLatency     = "latency"
	cfgKeyLogLevel    = "log.level"
	cfgKeyPostgresDSN = "postgres.dsn"
	cfgKeyS3Bucket    = "s3.bucket"
	cfgKeyS3Region    = "s3.region"
	cfgKeyS3Endpoint  = "s3.endpoint"
	cfgKeyS3Prefix    = "s3.prefix"
	cfgKeyS3PathStyle = "s3.path_style"

	defaultBackend  = types.BackendFile
	defaultLogLevel = "info"
)

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# farmkeeper configuration

# Storage backend: memory, file, sqlite, postgres, s3
backend: file

# Data directory for the file and sqlite backends
# (optional; overridable by --data-dir)
# data_dir:

# Simulate remote API latency on every call
latency: false

log:
  level: info

# postgres:
#   dsn: postgres://localhost/farmkeeper?sslmode=disable

# s3:
#   bucket: my-farm-records
#   region: us-east-1
#   endpoint: http://localhost:9000
#   prefix: farmkeeper/
#   path_style: true
`

// loadConfig reads config.yaml from configDir using Viper. It creates the
// directory and a default config.yaml on first run. FARMKEEPER_* environment
// variables override file values (FARMKEEPER_S3_BUCKET for s3.bucket).
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, defaultBackend)
	v.SetDefault(cfgKeyDataDir, "")
	v.SetDefault(cfgKeyLatency, false)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetDefault(cfgKeyPostgresDSN, "")
	v.SetDefault(cfgKeyS3Bucket, "")
	v.SetDefault(cfgKeyS3Region, "")
	v.SetDefault(cfgKeyS3Endpoint, "")
	v.SetDefault(cfgKeyS3Prefix, "")
	v.SetDefault(cfgKeyS3PathStyle, false)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Missing config.yaml is not an error.
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// decodeConfig maps the Viper keys onto types.Config.
func decodeConfig(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// ensureDefaultConfigFile creates a default config.yaml if the file does not
// exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
