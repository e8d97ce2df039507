package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"triage/internal/platform"
	"triage/pkg/core"
)

var (
	assessText     string
	assessSymptoms []string
	assessDuration string
	assessSeverity string
	assessJSON     bool
	assessSave     bool
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Run a one-shot assessment from the terminal",
	Long: `Assess evaluates a symptom description against the knowledge base and
prints the triage outcome. Nothing is persisted unless --save is given.`,
	Run: func(cmd *cobra.Command, args []string) {
		if assessText == "" && len(assessSymptoms) == 0 {
			fmt.Fprintln(os.Stderr, "Error: provide --text and/or --symptom")
			cmd.Usage()
			os.Exit(1)
		}

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
		defer app.Close()

		in := core.Intake{
			Text:     assessText,
			Checked:  assessSymptoms,
			Duration: assessDuration,
			Severity: assessSeverity,
		}

		var a core.Assessment
		if assessSave {
			a, err = app.Service.Assess(context.Background(), in)
			if err != nil {
				fatal("Failed to save assessment", err)
			}
		} else {
			a = app.Service.Preview(in)
		}

		if assessJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(a); err != nil {
				fatal("Failed to encode JSON", err)
			}
			return
		}

		printAssessment(a, assessSave)
	},
}

func printAssessment(a core.Assessment, saved bool) {
	fmt.Printf("Recognized symptoms: %s\n", strings.Join(a.Symptoms, ", "))
	fmt.Printf("Recommendation:      %s\n", a.FinalUrgency)
	fmt.Println("Possible conditions:")
	for _, m := range a.TopConditions {
		fmt.Printf("  %-30s %.3f (%s)\n", m.Condition, m.Score, m.DeclaredUrgency)
		if len(m.RecommendedTests) > 0 {
			fmt.Printf("  %-30s tests: %s\n", "", strings.Join(m.RecommendedTests, ", "))
		}
	}
	if saved {
		fmt.Printf("Saved as %s\n", a.ID)
	}
}

func init() {
	rootCmd.AddCommand(assessCmd)
	assessCmd.Flags().StringVar(&assessText, "text", "", "Free-text symptom description")
	assessCmd.Flags().StringArrayVar(&assessSymptoms, "symptom", nil, "Explicit symptom (repeatable)")
	assessCmd.Flags().StringVar(&assessDuration, "duration", "", "How long the symptoms have lasted")
	assessCmd.Flags().StringVar(&assessSeverity, "severity", "", "Perceived severity (mild/moderate/severe)")
	assessCmd.Flags().BoolVar(&assessJSON, "json", false, "Output in JSON format")
	assessCmd.Flags().BoolVar(&assessSave, "save", false, "Persist the assessment")
}
