package evaluation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialectic-ai/dialectic/internal/benchmark"
	"github.com/dialectic-ai/dialectic/internal/dialogue"
	"github.com/dialectic-ai/dialectic/internal/strategy"
	"github.com/dialectic-ai/dialectic/internal/testutil"
)

// memStore is an in-memory Store for runner tests.
type memStore struct {
	mu          sync.Mutex
	runs        map[string]*Run
	logs        map[string]*ConversationLog
	comparisons map[string]*Comparison
}

func newMemStore() *memStore {
	return &memStore{
		runs:        make(map[string]*Run),
		logs:        make(map[string]*ConversationLog),
		comparisons: make(map[string]*Comparison),
	}
}

func (m *memStore) SaveRun(run *Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.RunID] = run
	return nil
}

func (m *memStore) GetRun(runID string) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs[runID], nil
}

func (m *memStore) ListRuns() ([]RunListing, error) { return nil, nil }

func (m *memStore) SaveLog(log *ConversationLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs[log.LogID] = log
	return nil
}

func (m *memStore) GetLog(logID string) (*ConversationLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.logs[logID], nil
}

func (m *memStore) SaveComparison(c *Comparison) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comparisons[c.ComparisonID] = c
	return nil
}

func (m *memStore) GetComparison(id string) (*Comparison, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.comparisons[id], nil
}

func (m *memStore) ListComparisons() ([]*Comparison, error) { return nil, nil }

func newTestRunner(client *testutil.MockLLMClient, st Store) *Runner {
	engine := dialogue.NewEngine(client)
	return NewRunner(engine, st, strategy.NewRegistry(), WithConcurrency(2))
}

func TestExecutePersistsRunAndLogs(t *testing.T) {
	client := &testutil.MockLLMClient{DefaultResponse: "I agree. Final Answer: 42"}
	st := newMemStore()
	runner := newTestRunner(client, st)

	run, err := runner.Execute(context.Background(), "simple", "debate", 1)
	require.NoError(t, err)

	assert.Equal(t, "debate", run.Strategy)
	assert.Equal(t, "simple", run.Benchmark)
	require.Len(t, run.Results, 1)
	assert.Equal(t, 1, run.Summary.TotalQuestions)
	require.NotNil(t, run.Evolution)
	assert.NotEmpty(t, run.Evolution.AgreementCounts)

	// The run and one log per question are persisted.
	st.mu.Lock()
	defer st.mu.Unlock()
	assert.Len(t, st.runs, 1)
	assert.Len(t, st.logs, 1)
}

func TestExecuteScoresFinalAnswer(t *testing.T) {
	client := &testutil.MockLLMClient{DefaultResponse: "After discussion we conclude. Final Answer: 42"}
	st := newMemStore()
	runner := newTestRunner(client, st)

	// Only the multiplication question has ground truth 42; limit to capture it.
	run, err := runner.Execute(context.Background(), "simple", "debate", 4)
	require.NoError(t, err)

	var scored *BenchmarkResult
	for i := range run.Results {
		if run.Results[i].GroundTruth == "42" {
			scored = &run.Results[i]
		}
	}
	require.NotNil(t, scored)

	assert.Equal(t, "42", scored.Simulated.Answer)
	assert.True(t, scored.Simulated.Correct)
	assert.True(t, scored.Dual.Correct)
	assert.NotEmpty(t, scored.Simulated.LogID)
	assert.Equal(t, scored.Simulated.LogID, scored.Dual.LogID)
	assert.NotNil(t, scored.Simulated.Evolution)
}

func TestExecuteRecordsTranscriptsInLog(t *testing.T) {
	client := &testutil.MockLLMClient{DefaultResponse: "Final Answer: 42"}
	st := newMemStore()
	runner := newTestRunner(client, st)

	run, err := runner.Execute(context.Background(), "simple", "debate", 1)
	require.NoError(t, err)

	logID := run.Results[0].Simulated.LogID
	log, err := st.GetLog(logID)
	require.NoError(t, err)
	require.NotNil(t, log)

	// Initial user message plus one message per turn, for both variants.
	def, err := strategy.NewRegistry().Get("debate")
	require.NoError(t, err)
	assert.Len(t, log.SimulatedMessages, def.MaxTurns+1)
	assert.Len(t, log.DualMessages, def.MaxTurns+1)
	assert.Equal(t, run.Strategy, log.Strategy)
}

func TestExecuteUnknownStrategy(t *testing.T) {
	client := &testutil.MockLLMClient{DefaultResponse: "Final Answer: 42"}
	runner := newTestRunner(client, newMemStore())

	_, err := runner.Execute(context.Background(), "simple", "nope", 1)
	require.Error(t, err)

	var unknown *strategy.UnknownStrategyError
	require.ErrorAs(t, err, &unknown)
	assert.Zero(t, client.Calls)
}

func TestExecuteUnknownBenchmark(t *testing.T) {
	client := &testutil.MockLLMClient{DefaultResponse: "Final Answer: 42"}
	runner := newTestRunner(client, newMemStore())

	_, err := runner.Execute(context.Background(), "nope", "debate", 1)
	require.Error(t, err)

	var unknown *benchmark.UnknownBenchmarkError
	require.ErrorAs(t, err, &unknown)
	assert.Zero(t, client.Calls)
}

func TestExecuteSummaryAccuracy(t *testing.T) {
	client := &testutil.MockLLMClient{
		// Always answer 42: correct only for the multiplication question.
		DefaultResponse: "Final Answer: 42",
	}
	st := newMemStore()
	runner := newTestRunner(client, st)

	run, err := runner.Execute(context.Background(), "simple", "debate", 0)
	require.NoError(t, err)

	s := run.Summary
	assert.Equal(t, len(run.Results), s.TotalQuestions)
	assert.InDelta(t, float64(s.SimulatedCorrect)/float64(s.TotalQuestions), s.SimulatedAccuracy, 1e-12)
	assert.InDelta(t, float64(s.DualCorrect)/float64(s.TotalQuestions), s.DualAccuracy, 1e-12)
	assert.Greater(t, s.SimulatedMeanLatency, 0.0)
}

func TestStartTracksLifecycle(t *testing.T) {
	client := &testutil.MockLLMClient{DefaultResponse: "Final Answer: 42"}
	st := newMemStore()
	runner := newTestRunner(client, st)

	id := runner.Start(context.Background(), "simple", "debate", 1)
	require.NotEmpty(t, id)

	require.Eventually(t, func() bool {
		status, err := runner.Tracker().Get(id)
		return err == nil && status.Status == StatusCompleted
	}, 5*time.Second, 10*time.Millisecond)

	status, err := runner.Tracker().Get(id)
	require.NoError(t, err)
	assert.NotEmpty(t, status.RunID)

	run, err := st.GetRun(status.RunID)
	require.NoError(t, err)
	require.NotNil(t, run)
}

func TestStartReportsSetupErrors(t *testing.T) {
	client := &testutil.MockLLMClient{DefaultResponse: "Final Answer: 42"}
	runner := newTestRunner(client, newMemStore())

	id := runner.Start(context.Background(), "nope", "debate", 1)

	require.Eventually(t, func() bool {
		status, err := runner.Tracker().Get(id)
		return err == nil && status.Status == StatusError
	}, 5*time.Second, 10*time.Millisecond)

	status, err := runner.Tracker().Get(id)
	require.NoError(t, err)
	assert.Contains(t, status.Error, "unknown benchmark")
}

func TestTrackerUnknownEvaluation(t *testing.T) {
	tracker := NewTracker()
	_, err := tracker.Get("nope")

	var unknown *UnknownEvaluationError
	require.ErrorAs(t, err, &unknown)
}

func TestCompareRunsAllStrategies(t *testing.T) {
	client := &testutil.MockLLMClient{DefaultResponse: "Final Answer: 42"}
	st := newMemStore()
	runner := newTestRunner(client, st)

	cmp, err := runner.Compare(context.Background(), "simple", []string{"debate", "cooperative"}, 1)
	require.NoError(t, err)

	require.Len(t, cmp.Strategies, 2)
	assert.Equal(t, "debate", cmp.Strategies[0].Strategy)
	assert.Equal(t, "cooperative", cmp.Strategies[1].Strategy)
	assert.NotEmpty(t, cmp.Strategies[0].RunID)

	st.mu.Lock()
	defer st.mu.Unlock()
	assert.Len(t, st.runs, 2)
	assert.Len(t, st.comparisons, 1)
}

func TestSummarizeEmptyResults(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.TotalQuestions)
	assert.Zero(t, s.SimulatedAccuracy)
}
