// Package cli implements the farmkeeper command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mesh-intelligence/farmkeeper/internal/paths"
	"github.com/mesh-intelligence/farmkeeper/pkg/farmkeeper"
	"github.com/mesh-intelligence/farmkeeper/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	backend   string
	jsonMode  bool
	yamlMode  bool
	verbose   bool
}

// app is the state shared by one command invocation.
type app struct {
	flags    rootFlags
	cfg      types.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	client   *farmkeeper.Client

	// newLogger builds the logger in PersistentPreRunE. Tests replace it.
	newLogger func(level zapcore.Level) (*zap.Logger, error)
}

func newApp() *app {
	return &app{
		registry:  prometheus.NewRegistry(),
		newLogger: productionLogger,
	}
}

func productionLogger(level zapcore.Level) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	return config.Build()
}

// NewRootCmd creates the top-level "farmkeeper" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	return newRootCmd(newApp())
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:     "farmkeeper",
		Short:   "Keep records of farms, crops, tasks, and expenses",
		Long:    "farmkeeper stores farm records in named collections on a pluggable\nstorage backend (files, SQLite, Postgres, S3, or memory).",
		Version: farmkeeper.Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			if a.flags.jsonMode && a.flags.yamlMode {
				return usageErrorf("--json and --yaml are mutually exclusive")
			}
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: platform data dir)")
	root.PersistentFlags().StringVar(&a.flags.backend, "backend", "", "storage backend: memory, file, sqlite, postgres, s3")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVar(&a.flags.yamlMode, "yaml", false, "output in YAML format")
	root.PersistentFlags().BoolVarP(&a.flags.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newFarmsCmd(a))
	root.AddCommand(newCropsCmd(a))
	root.AddCommand(newTasksCmd(a))
	root.AddCommand(newExpensesCmd(a))
	root.AddCommand(newTemplatesCmd(a))
	root.AddCommand(newSummaryCmd(a))
	root.AddCommand(newStatsCmd(a))

	return root
}

// setup loads configuration and builds the logger. The store is opened
// lazily by commands that need it.
func (a *app) setup() error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	cfg, err := decodeConfig(v)
	if err != nil {
		return err
	}
	if a.flags.backend != "" {
		cfg.Backend = a.flags.backend
	}
	cfg.DataDir, err = paths.ResolveDataDir(a.flags.dataDir, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}
	a.cfg = cfg

	level, err := zapcore.ParseLevel(v.GetString(cfgKeyLogLevel))
	if err != nil {
		return fmt.Errorf("config %s: %w", cfgKeyLogLevel, err)
	}
	if a.flags.verbose {
		level = zapcore.DebugLevel
	}
	a.logger, err = a.newLogger(level)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger.Debug("configuration loaded",
		zap.String("config_dir", configDir),
		zap.String("backend", cfg.Backend),
		zap.String("data_dir", cfg.DataDir))
	return nil
}

// open returns the client, opening the backend on first use.
func (a *app) open(ctx context.Context) (*farmkeeper.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	c, err := farmkeeper.Open(ctx, a.cfg,
		farmkeeper.WithLogger(a.logger),
		farmkeeper.WithRegisterer(a.registry))
	if err != nil {
		return nil, err
	}
	a.client = c
	return c, nil
}

func (a *app) teardown() error {
	var err error
	if a.client != nil {
		err = a.client.Close()
		a.client = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return err
}

func (a *app) outputFormat() string {
	switch {
	case a.flags.jsonMode:
		return formatJSON
	case a.flags.yamlMode:
		return formatYAML
	default:
		return formatTable
	}
}

// exitCode maps an error to the process exit status. Validation, not-found,
// and usage errors are the user's; everything else is a system error.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, types.ErrValidation),
		errors.Is(err, types.ErrNotFound),
		errors.Is(err, errUsage),
		errors.Is(err, types.ErrBackendEmpty),
		errors.Is(err, types.ErrBackendUnknown),
		errors.Is(err, types.ErrBucketEmpty):
		return exitUserError
	default:
		return exitSysError
	}
}

// errUsage marks argument and flag mistakes.
var errUsage = errors.New("usage")

func usageErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errUsage}, args...)...)
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, newApp(), os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, a *app, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(a)
	// PersistentPostRunE is skipped when a command fails.
	defer a.teardown()

	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errUsage, err)
	})
	if err := root.ExecuteContext(ctx); err != nil {
		if msg := err.Error(); strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "required flag") {
			err = fmt.Errorf("%w: %v", errUsage, err)
		}
		fmt.Fprintln(stderr, "Error:", err)
		return exitCode(err)
	}
	return exitSuccess
}

// exactArgs is cobra.ExactArgs reporting a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usageErrorf("%s accepts %d arg(s), received %d", cmd.CommandPath(), n, len(args))
		}
		return nil
	}
}

// parseID parses a record identifier argument.
func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, usageErrorf("invalid id %q", s)
	}
	return id, nil
}
