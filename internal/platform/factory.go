package platform

import (
	"context"
	"fmt"

	"triage/pkg/adapters/fs"
	"triage/pkg/adapters/sqlite"
	"triage/pkg/core"
	"triage/pkg/engine"
	"triage/pkg/kb"
)

// App bundles the assembled components of a running instance.
type App struct {
	Config     Config
	Service    *core.Service
	Provider   *kb.Provider
	Repository core.Repository

	closer func() error
}

// New assembles the application: knowledge base, storage adapter, rule
// engine and service.
//
//	app, err := platform.New(ctx, platform.WithConfig(cfg), platform.WithLogger(logger))
func New(ctx context.Context, opts ...Option) (*App, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	cfg := o.config

	provider, err := kb.NewProvider(cfg.KB.Dir, cfg.KB.Patterns, o.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge base: %w", err)
	}

	app := &App{Config: cfg, Provider: provider}

	repo := o.repository
	if repo == nil {
		switch cfg.Adapter {
		case AdapterFS:
			repo = fs.NewRepository(fs.Config{
				Path:     cfg.DataDir,
				ReadOnly: o.readOnly,
				Logger:   o.logger,
			})
		case AdapterSQLite:
			sq, err := sqlite.NewRepository(sqlite.Config{
				Path:     cfg.SQLitePath,
				ReadOnly: o.readOnly,
				Logger:   o.logger,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to open sqlite store: %w", err)
			}
			repo = sq
			app.closer = sq.Close
		default:
			return nil, fmt.Errorf("unknown adapter %q", cfg.Adapter)
		}
	}

	if err := repo.Initialize(ctx); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	eng := engine.New(provider, cfg.Weights, cfg.Thresholds)
	app.Repository = repo
	app.Service = core.NewService(repo, eng, o.logger)

	return app, nil
}

// Close releases adapter resources (no-op for the fs adapter).
func (a *App) Close() error {
	if a.closer != nil {
		return a.closer()
	}
	return nil
}
