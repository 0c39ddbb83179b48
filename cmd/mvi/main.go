// Package main provides the CLI entrypoint for mvi.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/verte-zerg/mvi/internal/codec"
	"github.com/verte-zerg/mvi/internal/config"
	"github.com/verte-zerg/mvi/internal/counter"
	"github.com/verte-zerg/mvi/internal/kv"
	"github.com/verte-zerg/mvi/internal/logging"
	"github.com/verte-zerg/mvi/internal/metrics"
	"github.com/verte-zerg/mvi/internal/mvi"
	"github.com/verte-zerg/mvi/internal/todo"
	"github.com/verte-zerg/mvi/internal/tui"
)

const (
	defaultBackend = kv.BackendSQLite
	defaultCodec   = "json"
	drainTimeout   = 3 * time.Second
)

// options holds the merged flag and config file values.
type options struct {
	backend     string
	path        string
	dsn         string
	codec       string
	key         string
	s3          kv.S3Config
	asyncDelay  time.Duration
	latency     time.Duration
	logLevel    string
	logFile     string
	metricsAddr string
	tab         string
}

var opts options

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts = options{}
	rootCmd := &cobra.Command{
		Use:               "mvi",
		Short:             "Counter and todo screens driven by intents",
		SilenceUsage:      true,
		SilenceErrors:     false,
		PersistentPreRunE: loadOptions,
		RunE:              runTUICmd,
	}

	rootCmd.SetGlobalNormalizationFunc(normalizeFlagName)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.backend, "backend", defaultBackend, "storage backend: memory, file, sqlite, postgres or s3")
	flags.StringVar(&opts.path, "path", "", "sqlite database file or blob directory (default: XDG data dir)")
	flags.StringVar(&opts.dsn, "dsn", "", "postgres connection string")
	flags.StringVar(&opts.codec, "codec", defaultCodec, "blob encoding: json or cbor")
	flags.StringVar(&opts.key, "key", todo.DefaultKey, "storage key of the todo collection")
	flags.DurationVar(&opts.latency, "latency", todo.DefaultLatency, "simulated latency of loading todos")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	flags.StringVar(&opts.logFile, "log-file", "", "log file for the TUI (default: XDG state dir)")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	rootCmd.Flags().DurationVar(&opts.asyncDelay, "async-delay", counter.DefaultAsyncDelay, "delay of the async increment")
	rootCmd.Flags().StringVar(&opts.tab, "tab", "counter", "tab shown first: counter or todo")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newTodosCmd())

	return rootCmd
}

// normalizeFlagName lets flags be spelled like their snake_case or dotted
// config counterparts.
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.NewReplacer("_", "-", ".", "-").Replace(name))
}

func loadOptions(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "config" {
		return nil
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyConfig(cmd, fileCfg)
	return validateOptions(opts)
}

func applyConfig(cmd *cobra.Command, fileCfg config.FileConfig) {
	storage := fileCfg.Storage
	applyStringConfig(cmd, "backend", &opts.backend, storage.Backend)
	applyStringConfig(cmd, "path", &opts.path, storage.Path)
	applyStringConfig(cmd, "dsn", &opts.dsn, storage.DSN)
	applyStringConfig(cmd, "codec", &opts.codec, storage.Codec)
	applyStringConfig(cmd, "key", &opts.key, storage.Key)
	applyDurationConfig(cmd, "async-delay", &opts.asyncDelay, fileCfg.Counter.AsyncDelay)
	applyDurationConfig(cmd, "latency", &opts.latency, fileCfg.Todo.Latency)
	applyStringConfig(cmd, "log-level", &opts.logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &opts.logFile, fileCfg.Log.File)
	applyStringConfig(cmd, "metrics-addr", &opts.metricsAddr, fileCfg.Metrics.Addr)

	s3 := storage.S3
	setString(&opts.s3.Bucket, s3.Bucket)
	setString(&opts.s3.Region, s3.Region)
	setString(&opts.s3.Endpoint, s3.Endpoint)
	setString(&opts.s3.Prefix, s3.Prefix)
	if s3.PathStyle != nil {
		opts.s3.PathStyle = *s3.PathStyle
	}
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *config.Duration) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = value.Std()
}

func setString(target, value *string) {
	if value != nil {
		*target = *value
	}
}

func validateOptions(o options) error {
	switch o.backend {
	case kv.BackendMemory, kv.BackendFile, kv.BackendSQLite, kv.BackendS3:
	case kv.BackendPostgres:
		if o.dsn == "" {
			return fmt.Errorf("--dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown --backend %q", o.backend)
	}
	if o.backend == kv.BackendS3 && o.s3.Bucket == "" {
		return fmt.Errorf("[storage.s3] bucket is required for the s3 backend")
	}
	if _, err := codec.ByName(o.codec); err != nil {
		return fmt.Errorf("invalid --codec: %w", err)
	}
	if o.key == "" {
		return fmt.Errorf("--key must not be empty")
	}
	if o.asyncDelay < 0 {
		return fmt.Errorf("--async-delay must be >= 0")
	}
	if o.latency < 0 {
		return fmt.Errorf("--latency must be >= 0")
	}
	if _, err := logging.ParseLevel(o.logLevel); err != nil {
		return err
	}
	return nil
}

// storageConfig fills in the XDG default location for local backends.
func storageConfig(o options) kv.Config {
	path := o.path
	if path == "" {
		switch o.backend {
		case kv.BackendFile:
			path = config.DefaultBlobDir()
		case "", kv.BackendSQLite:
			path = config.DefaultDBPath()
		}
	}
	return kv.Config{Backend: o.backend, Path: path, DSN: o.dsn, S3: o.s3}
}

// app is everything a command needs to drive the stores.
type app struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	blobs   kv.Store
	service *todo.BlobService
}

func openApp(ctx context.Context, o options, logger *slog.Logger) (*app, error) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if o.metricsAddr != "" {
		metrics.Serve(ctx, o.metricsAddr, reg, logger)
	}

	c, err := codec.ByName(o.codec)
	if err != nil {
		return nil, err
	}
	blobs, err := kv.Open(ctx, storageConfig(o))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", o.backend, err)
	}
	logger.Debug("storage opened", "backend", o.backend, "codec", c.Name(), "key", o.key)

	service := todo.NewBlobService(blobs,
		todo.WithCodec(c),
		todo.WithKey(o.key),
		todo.WithLatency(o.latency),
		todo.WithServiceLogger(logger),
		todo.WithPersistenceRecorder(m),
	)
	return &app{logger: logger, metrics: m, blobs: blobs, service: service}, nil
}

func (a *app) newTodoStore(sched mvi.Scheduler) *todo.Store {
	st := todo.NewStore(sched, a.service, todo.WithLogger(a.logger), todo.WithRecorder(a.metrics))
	mvi.LogChanges[todo.State, todo.Intent](st, a.logger, "todo")
	return st
}

func (a *app) close() {
	if err := a.blobs.Close(); err != nil {
		a.logger.Warn("failed to close storage", "error", err)
	}
}

func runTUICmd(cmd *cobra.Command, _ []string) error {
	level, err := logging.ParseLevel(opts.logLevel)
	if err != nil {
		return err
	}
	logPath := opts.logFile
	if logPath == "" {
		logPath = config.DefaultLogPath()
	}
	logger, closeLog, err := logging.OpenFile(logPath, level)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := openApp(ctx, opts, logger)
	if err != nil {
		return err
	}
	defer a.close()

	sched := tui.NewScheduler(ctx)
	counterStore := counter.NewStore(sched,
		counter.WithAsyncDelay(opts.asyncDelay),
		counter.WithLogger(logger),
		counter.WithRecorder(a.metrics),
	)
	mvi.LogChanges[counter.State, counter.Intent](counterStore, logger, "counter")

	model := tui.NewModel(counterStore, a.newTodoStore(sched), sched,
		tui.WithTab(tui.ParseTab(opts.tab)),
		tui.WithLogger(logger),
	)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	if !sched.Wait(drainTimeout) {
		logger.Warn("exited with persistence still in flight")
	}
	return nil
}
