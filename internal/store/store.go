// Package store persists evaluation runs, conversation logs and comparison
// reports as JSON files on disk. Records are write-once, read-many.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/dialectic-ai/dialectic/internal/evaluation"
)

const (
	runPrefix        = "result_"
	logPrefix        = "log_"
	comparisonPrefix = "comparison_"
)

var validID = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// NotFoundError is returned when a record id does not resolve.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// AlreadyExistsError is returned on an attempt to overwrite a record.
type AlreadyExistsError struct {
	Kind string
	ID   string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s already exists: %s", e.Kind, e.ID)
}

// FileStore keeps one JSON file per record under a single directory.
type FileStore struct {
	dir string
}

// New creates the store directory if needed and returns a store over it.
func New(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory %q: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the store's root directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// SaveRun persists an evaluation run. Fails if the run id already exists.
func (s *FileStore) SaveRun(run *evaluation.Run) error {
	return s.write("run", run.RunID, runPrefix, run)
}

// GetRun loads a persisted evaluation run by id.
func (s *FileStore) GetRun(runID string) (*evaluation.Run, error) {
	var run evaluation.Run
	if err := s.read("run", runID, runPrefix, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns lightweight listings of all persisted runs, most recent
// first.
func (s *FileStore) ListRuns() ([]evaluation.RunListing, error) {
	ids, err := s.idsWithPrefix(runPrefix)
	if err != nil {
		return nil, err
	}

	listings := make([]evaluation.RunListing, 0, len(ids))
	for _, id := range ids {
		run, err := s.GetRun(id)
		if err != nil {
			// A malformed file should not hide the rest of the history.
			continue
		}
		listings = append(listings, evaluation.RunListing{
			ID:        run.RunID,
			Strategy:  run.Strategy,
			Benchmark: run.Benchmark,
			Timestamp: run.Timestamp,
		})
	}

	sort.Slice(listings, func(i, j int) bool {
		return listings[i].Timestamp.After(listings[j].Timestamp)
	})
	return listings, nil
}

// SaveLog persists a conversation log. Fails if the log id already exists.
func (s *FileStore) SaveLog(log *evaluation.ConversationLog) error {
	return s.write("log", log.LogID, logPrefix, log)
}

// GetLog loads a persisted conversation log by id.
func (s *FileStore) GetLog(logID string) (*evaluation.ConversationLog, error) {
	var log evaluation.ConversationLog
	if err := s.read("log", logID, logPrefix, &log); err != nil {
		return nil, err
	}
	return &log, nil
}

// SaveComparison persists a cross-strategy comparison report.
func (s *FileStore) SaveComparison(c *evaluation.Comparison) error {
	return s.write("comparison", c.ComparisonID, comparisonPrefix, c)
}

// GetComparison loads a comparison report by id.
func (s *FileStore) GetComparison(id string) (*evaluation.Comparison, error) {
	var c evaluation.Comparison
	if err := s.read("comparison", id, comparisonPrefix, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListComparisons returns all persisted comparison reports, most recent first.
func (s *FileStore) ListComparisons() ([]*evaluation.Comparison, error) {
	ids, err := s.idsWithPrefix(comparisonPrefix)
	if err != nil {
		return nil, err
	}

	comparisons := make([]*evaluation.Comparison, 0, len(ids))
	for _, id := range ids {
		c, err := s.GetComparison(id)
		if err != nil {
			continue
		}
		comparisons = append(comparisons, c)
	}

	sort.Slice(comparisons, func(i, j int) bool {
		return comparisons[i].Timestamp.After(comparisons[j].Timestamp)
	})
	return comparisons, nil
}

func (s *FileStore) write(kind, id, prefix string, record any) error {
	path, err := s.path(kind, id, prefix)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return &AlreadyExistsError{Kind: kind, ID: id}
	}

	data, err := json.MarshalIndent(record, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s %q: %w", kind, id, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s %q: %w", kind, id, err)
	}
	return nil
}

func (s *FileStore) read(kind, id, prefix string, record any) error {
	path, err := s.path(kind, id, prefix)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &NotFoundError{Kind: kind, ID: id}
		}
		return fmt.Errorf("failed to read %s %q: %w", kind, id, err)
	}
	if err := json.Unmarshal(data, record); err != nil {
		return fmt.Errorf("failed to parse %s %q: %w", kind, id, err)
	}
	return nil
}

// path validates the id before joining it into a filename so record ids can
// never escape the store directory.
func (s *FileStore) path(kind, id, prefix string) (string, error) {
	if id == "" || !validID.MatchString(id) {
		return "", &NotFoundError{Kind: kind, ID: id}
	}
	return filepath.Join(s.dir, prefix+id+".json"), nil
}

func (s *FileStore) idsWithPrefix(prefix string) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read store directory: %w", err)
	}

	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".json"))
	}
	return ids, nil
}
