package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dialectic-ai/dialectic/internal/evaluation"
	"github.com/dialectic-ai/dialectic/internal/store"
	"github.com/dialectic-ai/dialectic/internal/strategy"
	"github.com/dialectic-ai/dialectic/internal/stream"
)

type startDebateRequest struct {
	Problem  string `json:"problem"`
	Strategy string `json:"strategy"`
}

func (s *HTTPServer) handleStartDebate(w http.ResponseWriter, r *http.Request) {
	var req startDebateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Problem) == "" {
		writeError(w, http.StatusBadRequest, "problem must not be empty")
		return
	}

	debateID, err := s.startDebate(req.Problem, req.Strategy)
	if err != nil {
		var unknown *strategy.UnknownStrategyError
		if errors.As(err, &unknown) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"debateId": debateID})
}

func (s *HTTPServer) handleGetDebate(w http.ResponseWriter, r *http.Request) {
	snap, err := s.app.Broker.Snapshot(r.PathValue("id"))
	if err != nil {
		var unknown *stream.UnknownSessionError
		if errors.As(err, &unknown) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type startEvaluationRequest struct {
	BenchmarkID  string `json:"benchmark_id"`
	StrategyID   string `json:"strategy_id"`
	MaxQuestions int    `json:"max_questions"`
}

func (s *HTTPServer) handleStartEvaluation(w http.ResponseWriter, r *http.Request) {
	var req startEvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.BenchmarkID == "" || req.StrategyID == "" {
		writeError(w, http.StatusBadRequest, "benchmark_id and strategy_id are required")
		return
	}

	// Detach from the request context: the evaluation outlives this request.
	id := s.app.Runner.Start(context.Background(), req.BenchmarkID, req.StrategyID, req.MaxQuestions)
	writeJSON(w, http.StatusAccepted, map[string]string{"evaluation_id": id})
}

func (s *HTTPServer) handleEvaluationStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.app.Runner.Tracker().Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *HTTPServer) handleListRuns(w http.ResponseWriter, _ *http.Request) {
	runs, err := s.app.Store.ListRuns()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []evaluation.RunListing{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *HTTPServer) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.app.Store.GetRun(r.PathValue("run_id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *HTTPServer) handleGetLog(w http.ResponseWriter, r *http.Request) {
	log, err := s.app.Store.GetLog(r.PathValue("log_id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, log)
}

func (s *HTTPServer) handleListComparisons(w http.ResponseWriter, _ *http.Request) {
	comparisons, err := s.app.Store.ListComparisons()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if comparisons == nil {
		comparisons = []*evaluation.Comparison{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"comparisons": comparisons})
}

func (s *HTTPServer) handleGetComparison(w http.ResponseWriter, r *http.Request) {
	c, err := s.app.Store.GetComparison(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeStoreError(w http.ResponseWriter, err error) {
	var notFound *store.NotFoundError
	if errors.As(err, &notFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
