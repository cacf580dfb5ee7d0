package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialectic-ai/dialectic/internal/dialogue"
	"github.com/dialectic-ai/dialectic/internal/evaluation"
	"github.com/dialectic-ai/dialectic/internal/store"
	"github.com/dialectic-ai/dialectic/internal/strategy"
	"github.com/dialectic-ai/dialectic/internal/stream"
	"github.com/dialectic-ai/dialectic/internal/testutil"
)

func newTestServer(t *testing.T) *HTTPServer {
	t.Helper()

	client := &testutil.MockLLMClient{DefaultResponse: "I agree with the analysis. Final Answer: 42"}
	engine := dialogue.NewEngine(client)
	st, err := store.New(t.TempDir())
	require.NoError(t, err)
	strategies := strategy.NewRegistry()
	broker := stream.NewBroker()
	t.Cleanup(broker.Stop)

	app := &AppContext{
		Engine:     engine,
		Runner:     evaluation.NewRunner(engine, st, strategies, evaluation.WithConcurrency(2)),
		Store:      st,
		Strategies: strategies,
		Broker:     broker,
	}
	return NewHTTPServer("127.0.0.1:0", app)
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s.Handler(), http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	decode(t, rec, &resp)
	assert.Equal(t, "ok", resp["status"])
}

func TestStartDebate(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s.Handler(), http.MethodPost, "/api/debate", map[string]string{
		"problem": "What is six times seven?", "strategy": "debate",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	decode(t, rec, &resp)
	debateID := resp["debateId"]
	require.NotEmpty(t, debateID)

	// The debate runs to completion in the background.
	require.Eventually(t, func() bool {
		snap, err := s.app.Broker.Snapshot(debateID)
		return err == nil && snap.Status == stream.StatusComplete
	}, 5*time.Second, 10*time.Millisecond)

	rec = doJSON(t, s.Handler(), http.MethodGet, "/api/debate/"+debateID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var snap stream.Snapshot
	decode(t, rec, &snap)
	assert.Equal(t, "debate", snap.Strategy)
	// System prompt + initial problem + five turns per variant.
	assert.Len(t, snap.SimulatedMessages, 7)
	assert.Len(t, snap.DualMessages, 7)
}

func TestStartDebateValidation(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s.Handler(), http.MethodPost, "/api/debate", map[string]string{
		"problem": "", "strategy": "debate",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s.Handler(), http.MethodPost, "/api/debate", map[string]string{
		"problem": "p", "strategy": "nope",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/debate", strings.NewReader("not json"))
	rec2 := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec2, req)
	assert.Equal(t, http.StatusBadRequest, rec2.Code)
}

func TestGetDebateNotFound(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s.Handler(), http.MethodGet, "/api/debate/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEvaluationLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s.Handler(), http.MethodPost, "/api/evaluation/run", map[string]any{
		"benchmark_id": "simple", "strategy_id": "debate", "max_questions": 1,
	})
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]string
	decode(t, rec, &resp)
	evalID := resp["evaluation_id"]
	require.NotEmpty(t, evalID)

	var status evaluation.Status
	require.Eventually(t, func() bool {
		rec := doJSON(t, s.Handler(), http.MethodGet, "/api/evaluation/status/"+evalID, nil)
		if rec.Code != http.StatusOK {
			return false
		}
		decode(t, rec, &status)
		return status.Status == evaluation.StatusCompleted
	}, 10*time.Second, 20*time.Millisecond)
	require.NotEmpty(t, status.RunID)

	// The run shows up in the history listing.
	rec = doJSON(t, s.Handler(), http.MethodGet, "/api/evaluation/runs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Runs []evaluation.RunListing `json:"runs"`
	}
	decode(t, rec, &listing)
	require.Len(t, listing.Runs, 1)
	assert.Equal(t, status.RunID, listing.Runs[0].ID)

	// Full run is retrievable.
	rec = doJSON(t, s.Handler(), http.MethodGet, "/api/evaluation/runs/"+status.RunID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var run evaluation.Run
	decode(t, rec, &run)
	require.Len(t, run.Results, 1)

	// And so is the conversation log behind it.
	logID := run.Results[0].Simulated.LogID
	require.NotEmpty(t, logID)
	rec = doJSON(t, s.Handler(), http.MethodGet, "/api/logs/"+logID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var log evaluation.ConversationLog
	decode(t, rec, &log)
	assert.Equal(t, "simple", log.Benchmark)
	assert.NotEmpty(t, log.SimulatedMessages)
}

func TestEvaluationWithUnknownBenchmark(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s.Handler(), http.MethodPost, "/api/evaluation/run", map[string]any{
		"benchmark_id": "nope", "strategy_id": "debate",
	})
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]string
	decode(t, rec, &resp)

	require.Eventually(t, func() bool {
		rec := doJSON(t, s.Handler(), http.MethodGet, "/api/evaluation/status/"+resp["evaluation_id"], nil)
		var status evaluation.Status
		decode(t, rec, &status)
		return status.Status == evaluation.StatusError && strings.Contains(status.Error, "unknown benchmark")
	}, 5*time.Second, 10*time.Millisecond)
}

func TestEvaluationValidation(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s.Handler(), http.MethodPost, "/api/evaluation/run", map[string]any{
		"benchmark_id": "", "strategy_id": "",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotFoundResponses(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{
		"/api/evaluation/status/missing",
		"/api/evaluation/runs/missing",
		"/api/logs/missing",
		"/api/comparison/missing",
	} {
		rec := doJSON(t, s.Handler(), http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestEmptyListings(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s.Handler(), http.MethodGet, "/api/evaluation/runs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"runs":[]}`, rec.Body.String())

	rec = doJSON(t, s.Handler(), http.MethodGet, "/api/comparison/list", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"comparisons":[]}`, rec.Body.String())
}

func TestStreamDeliversDebate(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/debate", "application/json",
		strings.NewReader(`{"problem":"What is six times seven?","strategy":"debate"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	var started map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&started))
	debateID := started["debateId"]

	streamResp, err := http.Get(fmt.Sprintf("%s/api/stream?debateId=%s", ts.URL, debateID))
	require.NoError(t, err)
	defer streamResp.Body.Close()
	require.Equal(t, http.StatusOK, streamResp.StatusCode)
	assert.Equal(t, "text/event-stream", streamResp.Header.Get("Content-Type"))

	var total int
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(streamResp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var event struct {
			Messages   []dialogue.Message `json:"messages"`
			InProgress *bool              `json:"inProgress"`
			Ping       bool               `json:"ping"`
		}
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event))
		if event.Ping {
			continue
		}
		for _, m := range event.Messages {
			assert.False(t, seen[m.ID], "duplicate message id")
			seen[m.ID] = true
			total++
		}
		if event.InProgress != nil && !*event.InProgress {
			break
		}
	}
	require.NoError(t, scanner.Err())

	// One system prompt plus initial problem plus five turns, per variant.
	assert.Equal(t, 14, total)
}

func TestStreamUnknownDebate(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s.Handler(), http.MethodGet, "/api/stream?debateId=missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, s.Handler(), http.MethodGet, "/api/stream", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
