// Package evaluation runs benchmark questions through paired simulated and
// dual conversations, scores the outcomes and aggregates them into runs.
package evaluation

import (
	"time"

	"github.com/dialectic-ai/dialectic/internal/dialogue"
)

// VariantResult holds the scored outcome of one conversation variant for a
// single question.
type VariantResult struct {
	Answer      string         `json:"answer"`
	Correct     bool           `json:"correct"`
	ElapsedTime float64        `json:"elapsed_time"`
	LogID       string         `json:"log_id"`
	Evolution   *EvolutionData `json:"evolution,omitempty"`
}

// BenchmarkResult is the outcome for one question: both variants side by side.
type BenchmarkResult struct {
	QuestionID  string        `json:"question_id"`
	Question    string        `json:"question"`
	GroundTruth string        `json:"ground_truth"`
	Category    string        `json:"category,omitempty"`
	Difficulty  string        `json:"difficulty,omitempty"`
	Simulated   VariantResult `json:"simulated"`
	Dual        VariantResult `json:"dual"`
}

// Summary aggregates a run's results. Accuracy is correct/total.
type Summary struct {
	TotalQuestions       int     `json:"total_questions"`
	SimulatedCorrect     int     `json:"simulated_correct"`
	DualCorrect          int     `json:"dual_correct"`
	SimulatedAccuracy    float64 `json:"simulated_accuracy"`
	DualAccuracy         float64 `json:"dual_accuracy"`
	SimulatedMeanLatency float64 `json:"simulated_mean_latency"`
	DualMeanLatency      float64 `json:"dual_mean_latency"`
}

// Run is a completed evaluation: one strategy against one benchmark.
// Immutable once persisted.
type Run struct {
	RunID     string            `json:"run_id"`
	Strategy  string            `json:"strategy"`
	Benchmark string            `json:"benchmark"`
	Timestamp time.Time         `json:"timestamp"`
	Results   []BenchmarkResult `json:"results"`
	Summary   Summary           `json:"summary"`
	Evolution *EvolutionSummary `json:"evolution_summary,omitempty"`
}

// RunListing is the lightweight view of a persisted run used by history
// listings.
type RunListing struct {
	ID        string    `json:"id"`
	Strategy  string    `json:"strategy"`
	Benchmark string    `json:"benchmark"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationLog captures the full transcripts behind one question's result.
// Written once when the question finishes, identified by LogID.
type ConversationLog struct {
	LogID             string                    `json:"log_id"`
	QuestionID        string                    `json:"question_id"`
	Question          string                    `json:"question"`
	GroundTruth       string                    `json:"ground_truth"`
	Strategy          string                    `json:"strategy"`
	Benchmark         string                    `json:"benchmark"`
	SimulatedMessages []dialogue.Message        `json:"simulated_messages"`
	DualMessages      []dialogue.Message        `json:"dual_messages"`
	Evolution         map[string]*EvolutionData `json:"evolution,omitempty"`
}

// StrategySummary is one strategy's aggregate inside a comparison report.
type StrategySummary struct {
	Strategy string  `json:"strategy"`
	RunID    string  `json:"run_id"`
	Summary  Summary `json:"summary"`
}

// Comparison is a derived report over several runs of the same benchmark
// with different strategies.
type Comparison struct {
	ComparisonID string            `json:"comparison_id"`
	Benchmark    string            `json:"benchmark"`
	Timestamp    time.Time         `json:"timestamp"`
	Strategies   []StrategySummary `json:"strategies"`
}

// Store persists evaluation records. Records are write-once; lookup misses
// fail with the implementation's not-found error.
type Store interface {
	SaveRun(run *Run) error
	GetRun(runID string) (*Run, error)
	ListRuns() ([]RunListing, error)
	SaveLog(log *ConversationLog) error
	GetLog(logID string) (*ConversationLog, error)
	SaveComparison(c *Comparison) error
	GetComparison(id string) (*Comparison, error)
	ListComparisons() ([]*Comparison, error)
}

// Summarize recomputes the aggregate summary from a result list.
func Summarize(results []BenchmarkResult) Summary {
	s := Summary{TotalQuestions: len(results)}
	if s.TotalQuestions == 0 {
		return s
	}

	var simElapsed, dualElapsed float64
	for _, r := range results {
		if r.Simulated.Correct {
			s.SimulatedCorrect++
		}
		if r.Dual.Correct {
			s.DualCorrect++
		}
		simElapsed += r.Simulated.ElapsedTime
		dualElapsed += r.Dual.ElapsedTime
	}

	total := float64(s.TotalQuestions)
	s.SimulatedAccuracy = float64(s.SimulatedCorrect) / total
	s.DualAccuracy = float64(s.DualCorrect) / total
	s.SimulatedMeanLatency = simElapsed / total
	s.DualMeanLatency = dualElapsed / total
	return s
}
