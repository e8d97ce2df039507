package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"triage/internal/platform"
	"triage/internal/server"
	"triage/pkg/kb"
)

var (
	serveAddr    string
	serveAdapter string
	serveDataDir string
	serveKBDir   string
	serveWatch   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the assessment HTTP server",
	Long: `Serve starts the web frontend and JSON API. The knowledge base is
loaded at startup and, unless --watch=false, hot-reloaded when its files
change on disk.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fatal("Failed to load config", err)
		}

		// Flags override the config file only when set explicitly.
		if cmd.Flags().Changed("addr") {
			cfg.Addr = serveAddr
		}
		if cmd.Flags().Changed("adapter") {
			cfg.Adapter = serveAdapter
		}
		if cmd.Flags().Changed("data-dir") {
			cfg.DataDir = serveDataDir
		}
		if cmd.Flags().Changed("kb-dir") {
			cfg.KB.Dir = serveKBDir
		}
		if cmd.Flags().Changed("watch") {
			cfg.KB.Watch = serveWatch
		}
		if err := cfg.Validate(); err != nil {
			fatal("Invalid configuration", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := platform.New(ctx,
			platform.WithConfig(cfg),
			platform.WithLogger(slog.Default()),
		)
		if err != nil {
			fatal("Failed to initialize application", err)
		}
		defer app.Close()

		if cfg.KB.Watch {
			watcher := kb.NewWatchWorker(app.Provider)
			if err := watcher.Start(ctx); err != nil {
				fatal("Failed to start knowledge base watcher", err)
			}
			defer watcher.Stop(context.Background())
		}

		srv, err := server.New(app.Service, app.Provider, server.Config{
			Addr:           cfg.Addr,
			UploadDir:      cfg.UploadDir,
			MaxUploadBytes: cfg.MaxUploadBytes,
		}, slog.Default())
		if err != nil {
			fatal("Failed to build server", err)
		}

		if err := srv.Start(ctx); err != nil {
			fatal("Server error", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":5000", "Listen address")
	serveCmd.Flags().StringVar(&serveAdapter, "adapter", platform.AdapterFS, "Storage adapter (fs or sqlite)")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "data/assessments", "Assessment data directory (fs adapter)")
	serveCmd.Flags().StringVar(&serveKBDir, "kb-dir", "kb", "Knowledge base directory")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", true, "Hot-reload the knowledge base on file changes")
}
