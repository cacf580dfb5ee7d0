package evaluation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/dialectic-ai/dialectic/internal/answer"
	"github.com/dialectic-ai/dialectic/internal/benchmark"
	"github.com/dialectic-ai/dialectic/internal/dialogue"
	"github.com/dialectic-ai/dialectic/internal/strategy"
)

// defaultConcurrency bounds how many questions run at once to respect
// upstream rate limits.
const defaultConcurrency = 5

// Runner executes benchmark evaluations: each question gets a simulated and a
// dual conversation, both scored and logged.
type Runner struct {
	engine     *dialogue.Engine
	store      Store
	strategies *strategy.Registry
	tracker    *Tracker

	benchmarkDir string
	sem          *semaphore.Weighted
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithConcurrency caps how many questions are processed concurrently.
func WithConcurrency(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithBenchmarkDir points the runner at an external benchmark directory,
// searched before the embedded benchmarks.
func WithBenchmarkDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.benchmarkDir = dir
	}
}

// NewRunner wires an evaluation runner.
func NewRunner(engine *dialogue.Engine, st Store, strategies *strategy.Registry, opts ...RunnerOption) *Runner {
	r := &Runner{
		engine:     engine,
		store:      st,
		strategies: strategies,
		tracker:    NewTracker(),
		sem:        semaphore.NewWeighted(defaultConcurrency),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Tracker exposes the runner's status tracker.
func (r *Runner) Tracker() *Tracker {
	return r.tracker
}

// Start launches an evaluation asynchronously and returns its evaluation id.
// Progress is observable through the tracker; the produced run id appears
// there on completion. Setup failures (unknown benchmark or strategy) are
// reported through the tracker as well.
func (r *Runner) Start(ctx context.Context, benchmarkID, strategyID string, maxQuestions int) string {
	id := uuid.NewString()
	r.tracker.Begin(id)

	go func() {
		r.tracker.MarkRunning(id)
		run, err := r.Execute(ctx, benchmarkID, strategyID, maxQuestions)
		if err != nil {
			slog.Error("evaluation failed", "evaluation_id", id, "error", err)
			r.tracker.MarkError(id, err)
			return
		}
		r.tracker.MarkCompleted(id, run.RunID)
	}()

	return id
}

// Execute runs an evaluation synchronously and persists the resulting run.
// Unknown benchmark or strategy ids fail before any question is processed.
func (r *Runner) Execute(ctx context.Context, benchmarkID, strategyID string, maxQuestions int) (*Run, error) {
	def, err := r.strategies.Get(strategyID)
	if err != nil {
		return nil, err
	}
	bench, err := benchmark.Load(benchmarkID, r.benchmarkDir)
	if err != nil {
		return nil, err
	}

	questions := bench.Take(maxQuestions)
	slog.Info("starting evaluation",
		"benchmark", bench.ID,
		"strategy", def.ID,
		"questions", len(questions),
	)

	results := make([]BenchmarkResult, len(questions))
	g, gctx := errgroup.WithContext(ctx)
	for i, q := range questions {
		g.Go(func() error {
			if err := r.sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer r.sem.Release(1)
			results[i] = r.runQuestion(gctx, bench, def, q)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	run := &Run{
		RunID:     uuid.NewString(),
		Strategy:  def.ID,
		Benchmark: bench.ID,
		Timestamp: time.Now().UTC(),
		Results:   results,
		Summary:   Summarize(results),
		Evolution: SummarizeEvolution(results),
	}
	if err := r.store.SaveRun(run); err != nil {
		return nil, err
	}

	slog.Info("evaluation complete",
		"run_id", run.RunID,
		"simulated_accuracy", run.Summary.SimulatedAccuracy,
		"dual_accuracy", run.Summary.DualAccuracy,
	)
	return run, nil
}

// runQuestion runs both conversation variants for one question, scores them
// and persists the combined conversation log. A failed conversation is
// recorded as an incorrect result instead of aborting the rest of the run.
func (r *Runner) runQuestion(ctx context.Context, bench *benchmark.Definition, def *strategy.Definition, q benchmark.Question) BenchmarkResult {
	result := BenchmarkResult{
		QuestionID:  q.ID,
		Question:    q.Question,
		GroundTruth: q.GroundTruth,
		Category:    q.Category,
		Difficulty:  q.Difficulty,
	}

	var simMessages, dualMessages []dialogue.Message

	// The two variants are independent conversations; run them side by side.
	var g errgroup.Group
	g.Go(func() error {
		result.Simulated, simMessages = r.runVariant(ctx, bench, def, q, dialogue.VariantSimulated)
		return nil
	})
	g.Go(func() error {
		result.Dual, dualMessages = r.runVariant(ctx, bench, def, q, dialogue.VariantDual)
		return nil
	})
	_ = g.Wait()

	log := &ConversationLog{
		LogID:             uuid.NewString(),
		QuestionID:        q.ID,
		Question:          q.Question,
		GroundTruth:       q.GroundTruth,
		Strategy:          def.ID,
		Benchmark:         bench.ID,
		SimulatedMessages: simMessages,
		DualMessages:      dualMessages,
		Evolution: map[string]*EvolutionData{
			"simulated": result.Simulated.Evolution,
			"dual":      result.Dual.Evolution,
		},
	}
	if err := r.store.SaveLog(log); err != nil {
		slog.Error("failed to persist conversation log", "question_id", q.ID, "error", err)
	} else {
		result.Simulated.LogID = log.LogID
		result.Dual.LogID = log.LogID
	}

	return result
}

func (r *Runner) runVariant(ctx context.Context, bench *benchmark.Definition, def *strategy.Definition, q benchmark.Question, variant dialogue.Variant) (VariantResult, []dialogue.Message) {
	start := time.Now()
	conv, err := r.engine.Run(ctx, q.Question, def, variant, nil)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		slog.Warn("conversation failed, recording incorrect result",
			"question_id", q.ID,
			"variant", variant,
			"error", err,
		)
		messages := transcriptOf(conv, err)
		return VariantResult{Correct: false, ElapsedTime: elapsed}, messages
	}

	ans := answer.Final(conv)
	ev := AnalyzeEvolution(conv.Messages, q.GroundTruth, bench)
	return VariantResult{
		Answer:      ans,
		Correct:     bench.Score(ans, q.GroundTruth),
		ElapsedTime: elapsed,
		Evolution:   ev,
	}, conv.Messages
}

// transcriptOf salvages whatever transcript a failed conversation produced.
func transcriptOf(conv *dialogue.Conversation, err error) []dialogue.Message {
	if conv != nil && len(conv.Messages) > 0 {
		return conv.Messages
	}
	var engErr *dialogue.EngineError
	if errors.As(err, &engErr) {
		return engErr.Transcript
	}
	return nil
}

// Compare evaluates several strategies against the same benchmark and
// persists the side-by-side report.
func (r *Runner) Compare(ctx context.Context, benchmarkID string, strategyIDs []string, maxQuestions int) (*Comparison, error) {
	if len(strategyIDs) == 0 {
		for _, def := range r.strategies.List() {
			strategyIDs = append(strategyIDs, def.ID)
		}
	}

	comparison := &Comparison{
		ComparisonID: uuid.NewString(),
		Benchmark:    benchmarkID,
		Timestamp:    time.Now().UTC(),
	}

	for _, strategyID := range strategyIDs {
		run, err := r.Execute(ctx, benchmarkID, strategyID, maxQuestions)
		if err != nil {
			return nil, err
		}
		comparison.Strategies = append(comparison.Strategies, StrategySummary{
			Strategy: strategyID,
			RunID:    run.RunID,
			Summary:  run.Summary,
		})
	}

	if err := r.store.SaveComparison(comparison); err != nil {
		return nil, err
	}
	return comparison, nil
}
