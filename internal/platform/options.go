package platform

import (
	"log/slog"

	"triage/pkg/core"
)

// Adapter names accepted by WithAdapter and Config.Adapter.
const (
	AdapterFS     = "fs"
	AdapterSQLite = "sqlite"
)

// options holds the internal configuration for assembling the application.
type options struct {
	config     Config
	repository core.Repository
	logger     *slog.Logger
	readOnly   bool
}

// Option defines a functional option for configuring the application.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		config: DefaultConfig(),
	}
}

// WithConfig seeds the full application configuration.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithLogger sets the logger for all components.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRepository allows injecting a custom storage adapter (e.g. a mock).
// If provided, the adapter named in the config is skipped.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithAdapter selects the storage adapter by name ("fs" or "sqlite").
func WithAdapter(name string) Option {
	return func(o *options) {
		o.config.Adapter = name
	}
}

// WithDataDir overrides the fs adapter's data directory.
func WithDataDir(dir string) Option {
	return func(o *options) {
		o.config.DataDir = dir
	}
}

// WithKBDir overrides the knowledge base directory.
func WithKBDir(dir string) Option {
	return func(o *options) {
		o.config.KB.Dir = dir
	}
}

// WithReadOnly enables read-only mode: write operations return
// core.ErrReadOnly.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}
