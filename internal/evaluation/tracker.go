package evaluation

import (
	"fmt"
	"sync"
)

// Evaluation lifecycle states as reported by the status endpoint.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusError     = "error"
)

// Status is the externally visible state of one evaluation.
type Status struct {
	Status string `json:"status"`
	RunID  string `json:"run_id,omitempty"`
	Error  string `json:"error,omitempty"`
}

// UnknownEvaluationError is returned when an evaluation id is not tracked.
type UnknownEvaluationError struct {
	ID string
}

func (e *UnknownEvaluationError) Error() string {
	return fmt.Sprintf("unknown evaluation: %s", e.ID)
}

// Tracker holds in-memory evaluation statuses, keyed by evaluation id.
// Statuses only live for the process lifetime; completed runs are looked up
// through the store afterwards.
type Tracker struct {
	mu       sync.RWMutex
	statuses map[string]Status
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{statuses: make(map[string]Status)}
}

// Begin registers a new evaluation in the pending state.
func (t *Tracker) Begin(id string) {
	t.set(id, Status{Status: StatusPending})
}

// MarkRunning transitions an evaluation to running.
func (t *Tracker) MarkRunning(id string) {
	t.set(id, Status{Status: StatusRunning})
}

// MarkCompleted records the run id produced by a finished evaluation.
func (t *Tracker) MarkCompleted(id, runID string) {
	t.set(id, Status{Status: StatusCompleted, RunID: runID})
}

// MarkError records a failed evaluation with its cause.
func (t *Tracker) MarkError(id string, err error) {
	t.set(id, Status{Status: StatusError, Error: err.Error()})
}

// Get returns the status of a tracked evaluation.
func (t *Tracker) Get(id string) (Status, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	st, ok := t.statuses[id]
	if !ok {
		return Status{}, &UnknownEvaluationError{ID: id}
	}
	return st, nil
}

func (t *Tracker) set(id string, st Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.statuses[id] = st
}
