// Package benchmark loads benchmark question sets and scores extracted
// answers against ground truth with benchmark-specific normalization.
package benchmark

// Format selects how answers are normalized before comparison.
type Format string

const (
	// FormatAuto compares numerically when both sides parse as numbers,
	// otherwise case-folds and strips punctuation before comparing.
	FormatAuto Format = "auto"
	// FormatLetter extracts a multiple-choice letter (A-F) from the answer.
	FormatLetter Format = "letter"
	// FormatNumeric parses both sides as numbers with a small tolerance.
	FormatNumeric Format = "numeric"
)

// Question is a single benchmark item.
type Question struct {
	ID          string `json:"id"`
	Question    string `json:"question"`
	GroundTruth string `json:"ground_truth"`
	Category    string `json:"category,omitempty"`
	Difficulty  string `json:"difficulty,omitempty"`
}

// Definition is a loaded benchmark: its metadata and question set.
type Definition struct {
	ID           string     `yaml:"id"`
	Name         string     `yaml:"name"`
	Description  string     `yaml:"description"`
	AnswerFormat Format     `yaml:"answer_format"`
	QuestionsFile string    `yaml:"questions_file"`
	Questions    []Question `yaml:"-"` // loaded separately from JSON
}

// UnknownBenchmarkError is returned when a benchmark id cannot be resolved.
type UnknownBenchmarkError struct {
	ID string
}

func (e *UnknownBenchmarkError) Error() string {
	return "unknown benchmark: " + e.ID
}

// Take returns up to max questions, or all of them when max <= 0.
func (d *Definition) Take(max int) []Question {
	if max <= 0 || max >= len(d.Questions) {
		return d.Questions
	}
	return d.Questions[:max]
}
