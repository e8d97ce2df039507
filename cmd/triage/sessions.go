package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"triage/internal/platform"
)

var (
	sessionsJSON bool
	exportOut    string
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage stored assessments",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored assessments",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := mustApp(cmd)
		defer app.Close()

		all, err := app.Service.ListAssessments(context.Background())
		if err != nil {
			fatal("Failed to list assessments", err)
		}

		if sessionsJSON {
			summaries := make([]any, 0, len(all))
			for _, a := range all {
				summaries = append(summaries, a.Summarize())
			}
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(summaries); err != nil {
				fatal("Failed to encode JSON", err)
			}
			return
		}

		for _, a := range all {
			s := a.Summarize()
			fmt.Printf("%s  %s  %-9s  %s\n",
				s.ID, s.CreatedAt.Format("2006-01-02 15:04"), s.FinalUrgency, s.TopCondition)
		}
	},
}

var sessionsExportCmd = &cobra.Command{
	Use:   "export [id]",
	Short: "Export a stored assessment as a JSON report",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := mustApp(cmd)
		defer app.Close()

		a, err := app.Service.GetAssessment(context.Background(), args[0])
		if err != nil {
			fatal("Failed to read assessment", err)
		}

		data, err := json.MarshalIndent(a, "", "  ")
		if err != nil {
			fatal("Failed to encode report", err)
		}

		if exportOut == "" || exportOut == "-" {
			fmt.Println(string(data))
			return
		}
		if err := os.WriteFile(exportOut, data, 0644); err != nil {
			fatal("Failed to write report", err)
		}
		fmt.Printf("Report written to %s\n", exportOut)
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a stored assessment",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := mustApp(cmd)
		defer app.Close()

		if err := app.Service.DeleteAssessment(context.Background(), args[0]); err != nil {
			fatal("Failed to delete assessment", err)
		}
		fmt.Printf("Assessment deleted: %s\n", args[0])
	},
}

// mustApp assembles the application from config or exits.
func mustApp(cmd *cobra.Command) *platform.App {
	cfg, err := loadConfig()
	if err != nil {
		fatal("Failed to load config", err)
	}

	app, err := platform.New(cmd.Context(),
		platform.WithConfig(cfg),
		platform.WithLogger(slog.Default()),
	)
	if err != nil {
		fatal("Failed to initialize application", err)
	}
	return app
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsExportCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	sessionsListCmd.Flags().BoolVar(&sessionsJSON, "json", false, "Output in JSON format")
	sessionsExportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default stdout)")
}
