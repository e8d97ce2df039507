package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"triage/pkg/kb"
)

var (
	kbDir      string
	kbListJSON bool
)

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Inspect the knowledge base",
}

var kbValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate the knowledge base",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fatal("Failed to load config", err)
		}
		dir := cfg.KB.Dir
		if cmd.Flags().Changed("dir") {
			dir = kbDir
		}

		k, err := kb.Load(dir, cfg.KB.Patterns, slog.Default())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Knowledge base invalid: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Knowledge base OK: %d conditions, %d synonyms, %d red-flag keywords\n",
			len(k.Conditions), len(k.Synonyms), len(k.RedFlagKeywords))
	},
}

var kbListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the conditions in the knowledge base",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fatal("Failed to load config", err)
		}
		dir := cfg.KB.Dir
		if cmd.Flags().Changed("dir") {
			dir = kbDir
		}

		k, err := kb.Load(dir, cfg.KB.Patterns, slog.Default())
		if err != nil {
			fatal("Failed to load knowledge base", err)
		}

		if kbListJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(k.Conditions); err != nil {
				fatal("Failed to encode JSON", err)
			}
			return
		}

		for _, c := range k.Conditions {
			fmt.Printf("%-35s %s\n", c.Name, c.Urgency)
		}
	},
}

func init() {
	rootCmd.AddCommand(kbCmd)
	kbCmd.AddCommand(kbValidateCmd)
	kbCmd.AddCommand(kbListCmd)
	kbCmd.PersistentFlags().StringVar(&kbDir, "dir", "kb", "Knowledge base directory")
	kbListCmd.Flags().BoolVar(&kbListJSON, "json", false, "Output in JSON format")
}
