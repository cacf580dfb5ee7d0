package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dialectic-ai/dialectic/internal/evaluation"
)

func newRunCmd() *cobra.Command {
	var (
		strategyID   string
		strategyIDs  []string
		maxQuestions int
		timeout      time.Duration
		opts         appOptions
	)

	cmd := &cobra.Command{
		Use:   "run <benchmark>",
		Short: "Run a benchmark evaluation",
		Long: `Evaluate a benchmark by solving every question twice: once in a simulated
conversation (one model playing both agents) and once in a dual conversation
(two agents with independent histories), then scoring both answers.

With --strategies, several strategies are evaluated against the same
benchmark and a side-by-side comparison report is persisted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			app, err := buildAppContext(opts)
			if err != nil {
				return err
			}
			defer app.Broker.Stop()

			benchmarkID := args[0]

			if len(strategyIDs) > 0 {
				return runComparison(ctx, app.Runner, benchmarkID, strategyIDs, maxQuestions)
			}

			fmt.Printf("Benchmark: %s\n", benchmarkID)
			fmt.Printf("Strategy: %s\n\n", strategyID)

			run, err := app.Runner.Execute(ctx, benchmarkID, strategyID, maxQuestions)
			if err != nil {
				return err
			}

			printSummary(run.Strategy, run.Summary)
			fmt.Printf("\nRun ID: %s\n", run.RunID)
			return nil
		},
	}

	cmd.Flags().StringVar(&strategyID, "strategy", "debate", "Dialogue strategy to use")
	cmd.Flags().StringSliceVar(&strategyIDs, "strategies", nil, "Compare multiple strategies (comma-separated; empty value means all)")
	cmd.Flags().IntVar(&maxQuestions, "max-questions", 0, "Limit the number of questions (default: all)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Overall timeout for the evaluation (e.g. 30m, 1h). 0 means no timeout")
	registerAppFlags(cmd, &opts)

	return cmd
}

func runComparison(ctx context.Context, runner *evaluation.Runner, benchmarkID string, strategyIDs []string, maxQuestions int) error {
	// A bare "--strategies all" compares every registered strategy.
	if len(strategyIDs) == 1 && strings.EqualFold(strategyIDs[0], "all") {
		strategyIDs = nil
	}

	comparison, err := runner.Compare(ctx, benchmarkID, strategyIDs, maxQuestions)
	if err != nil {
		return err
	}

	fmt.Printf("Benchmark: %s\n", comparison.Benchmark)
	for _, s := range comparison.Strategies {
		fmt.Println()
		printSummary(s.Strategy, s.Summary)
	}
	fmt.Printf("\nComparison ID: %s\n", comparison.ComparisonID)
	return nil
}

func printSummary(strategyID string, s evaluation.Summary) {
	fmt.Printf("[%s]\n", strategyID)
	fmt.Printf("  Questions: %d\n", s.TotalQuestions)
	fmt.Printf("  Simulated: %d/%d correct (%.1f%%), mean %.1fs\n",
		s.SimulatedCorrect, s.TotalQuestions, s.SimulatedAccuracy*100, s.SimulatedMeanLatency)
	fmt.Printf("  Dual:      %d/%d correct (%.1f%%), mean %.1fs\n",
		s.DualCorrect, s.TotalQuestions, s.DualAccuracy*100, s.DualMeanLatency)
}
