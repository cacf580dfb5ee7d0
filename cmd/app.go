package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dialectic-ai/dialectic/internal/dialogue"
	"github.com/dialectic-ai/dialectic/internal/evaluation"
	"github.com/dialectic-ai/dialectic/internal/llm"
	"github.com/dialectic-ai/dialectic/internal/server"
	"github.com/dialectic-ai/dialectic/internal/store"
	"github.com/dialectic-ai/dialectic/internal/strategy"
	"github.com/dialectic-ai/dialectic/internal/stream"
)

// appOptions collects the flags shared by the serve, mcp and run commands.
type appOptions struct {
	endpoint    string
	apiKey      string
	model       string
	outputDir   string
	dataDir     string
	concurrency int
}

// buildAppContext wires the full application: completion client, dialogue
// engine, store, evaluation runner and stream broker.
func buildAppContext(opts appOptions) (*server.AppContext, error) {
	st, err := store.New(opts.outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open results store: %w", err)
	}

	var client llm.Client = newLLMClientFromFlags(opts.endpoint, opts.apiKey, opts.model)
	engine := dialogue.NewEngine(client)
	strategies := strategy.NewRegistry()

	runnerOpts := []evaluation.RunnerOption{
		evaluation.WithBenchmarkDir(opts.dataDir),
	}
	if opts.concurrency > 0 {
		runnerOpts = append(runnerOpts, evaluation.WithConcurrency(opts.concurrency))
	}

	return &server.AppContext{
		Engine:     engine,
		Runner:     evaluation.NewRunner(engine, st, strategies, runnerOpts...),
		Store:      st,
		Strategies: strategies,
		Broker:     stream.NewBroker(),
		DataDir:    opts.dataDir,
	}, nil
}

// registerAppFlags adds the shared flags to a command, writing into opts.
func registerAppFlags(cmd *cobra.Command, opts *appOptions) {
	cmd.Flags().StringVar(&opts.endpoint, "endpoint", "", "LLM API endpoint URL (or set OPENAI_BASE_URL)")
	cmd.Flags().StringVar(&opts.apiKey, "api-key", "", "API key (or set OPENAI_API_KEY)")
	cmd.Flags().StringVar(&opts.model, "model", "", "Model name (or set DIALECTIC_MODEL)")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "results", "Directory for evaluation results and logs")
	cmd.Flags().StringVar(&opts.dataDir, "data-dir", "", "External benchmark directory (optional)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "Max questions evaluated concurrently (default 5)")
}
