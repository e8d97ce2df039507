package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"triage/internal/platform"
)

var (
	verbose    bool
	configPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "triage",
	Short: "A symptom-based health assessment service",
	Long: `Triage maps user-reported symptoms to a ranked list of possible
conditions and a self-care / see-a-doctor / urgent recommendation, driven
by a plain-file knowledge base.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// loadConfig reads the configured YAML file over the defaults.
func loadConfig() (platform.Config, error) {
	return platform.LoadConfig(configPath)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "triage.yaml", "Path to the config file")
}
