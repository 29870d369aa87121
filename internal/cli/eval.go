package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/ppiankov/nomos/internal/eval"
	"github.com/ppiankov/nomos/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	evalCategory  string
	evalQuestions string
	evalOutputDir string
	evalTimeout   time.Duration
)

// evalCmd represents the eval command
var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Run the golden-question evaluation suite",
	Long: `Eval drives a set of golden compliance questions through the full
answer pipeline and scores each response on five checks: answered at all,
classified correctly, expected keywords covered, confidence sane, and
latency under the deadline.

Scores land in a JSON report for tracking regressions across runs.

Example:
  nomos eval
  nomos eval --category gst
  nomos eval --questions my-questions.yaml --output-dir ./eval-logs`,
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringVar(&evalCategory, "category", "", "only run questions in this category (gst, paye, provisional-tax, registration, deadlines)")
	evalCmd.Flags().StringVar(&evalQuestions, "questions", "", "YAML file with golden questions (default: built-in set)")
	evalCmd.Flags().StringVar(&evalOutputDir, "output-dir", "./eval-logs", "output directory for reports")
	evalCmd.Flags().DurationVar(&evalTimeout, "timeout", 10*time.Minute, "total timeout for the evaluation run")
}

func runEval(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), evalTimeout)
	defer cancel()

	// Load and filter questions
	questions, err := eval.LoadQuestions(evalQuestions)
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}
	questions = eval.FilterByCategory(questions, evalCategory)
	if len(questions) == 0 {
		return fmt.Errorf("no questions match category %q", evalCategory)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Nomos Evaluation\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Questions:    %d\n", len(questions))
	if evalCategory != "" {
		fmt.Fprintf(os.Stderr, "  Category:     %s\n", evalCategory)
	}
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", evalOutputDir)
	fmt.Fprintf(os.Stderr, "\n")

	// Build configuration
	cfg := loadConfig()
	cfg.Eval.OutputDir = evalOutputDir
	cfg.Output.Verbose = verbose

	// Create pipeline and runner
	p, err := pipeline.New(&cfg)
	if err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}
	runner := eval.NewRunner(p, &cfg)

	fmt.Fprintf(os.Stderr, "⚙️  Running questions...\n")
	fmt.Fprintf(os.Stderr, "\n")

	report, runErr := runner.Run(ctx, questions)
	if report == nil {
		return runErr
	}

	// Per-question results
	for _, q := range report.Questions {
		if q.Error != "" {
			fmt.Fprintf(os.Stderr, "✗ %-28s %d/%d  %s\n", q.ID, q.Score, report.MaxScore, q.Error)
			continue
		}
		fmt.Fprintf(os.Stderr, "✓ %-28s %d/%d  (%dms)\n", q.ID, q.Score, report.MaxScore, q.ElapsedMS)
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Evaluation Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")

	categories := make([]string, 0, len(report.Categories))
	for name := range report.Categories {
		categories = append(categories, name)
	}
	sort.Strings(categories)
	for _, name := range categories {
		stats := report.Categories[name]
		fmt.Fprintf(os.Stderr, "  %-12s %.2f/%d (%d questions, %d errors)\n",
			name+":", stats.MeanScore, report.MaxScore, stats.Questions, stats.Errors)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Mean score:  %.2f/%d\n", report.MeanScore, report.MaxScore)
	fmt.Fprintf(os.Stderr, "  Elapsed:     %dms\n", report.ElapsedMS)
	fmt.Fprintf(os.Stderr, "  Report:      %s\n", runner.ReportPath(report.RunID))
	fmt.Fprintf(os.Stderr, "\n")

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", runErr)
	}

	return nil
}
