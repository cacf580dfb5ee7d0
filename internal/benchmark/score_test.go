package benchmark

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreLetter(t *testing.T) {
	def := &Definition{AnswerFormat: FormatLetter}

	tests := []struct {
		name        string
		answer      string
		groundTruth string
		want        bool
	}{
		{"final answer prefix", "Final Answer: C", "C", true},
		{"final answer bold", "Final Answer: **B**", "B", true},
		{"the answer is", "After weighing the options, the answer is D", "D", true},
		{"option prefix", "Option B. The inversion follows from backside attack.", "B", true},
		{"bare letter", "B", "B", true},
		{"lowercase ground truth", "Final Answer: A", "a", true},
		{"wrong letter", "Final Answer: A", "C", false},
		{"no letter present", "I am not sure about this one.", "C", false},
		{"empty answer", "", "A", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, def.Score(tt.answer, tt.groundTruth))
		})
	}
}

func TestScoreNumeric(t *testing.T) {
	def := &Definition{AnswerFormat: FormatNumeric}

	tests := []struct {
		name        string
		answer      string
		groundTruth string
		want        bool
	}{
		{"exact integer", "738", "738", true},
		{"embedded in prose", "The count works out to 738 pairs.", "738", true},
		{"thousands separator", "1,000", "1000", true},
		{"decimal tolerance", "3.14159265", "3.14159265", true},
		{"near within tolerance", "1000.0000001", "1000", true},
		{"negative", "-5", "-5", true},
		{"wrong value", "737", "738", false},
		{"no number in answer", "about seven hundred", "738", false},
		{"no number in ground truth", "738", "many", false},
		{"empty answer", "", "738", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, def.Score(tt.answer, tt.groundTruth))
		})
	}
}

func TestScoreAuto(t *testing.T) {
	def := &Definition{AnswerFormat: FormatAuto}

	tests := []struct {
		name        string
		answer      string
		groundTruth string
		want        bool
	}{
		{"numeric match", "42", "42", true},
		{"numeric in prose", "The product is 42.", "42", true},
		{"case insensitive text", "At The Same Height As The Blue Ball", "at the same height as the blue ball", true},
		{"punctuation stripped", "at the same height as the blue ball.", "at the same height as the blue ball", true},
		{"text mismatch", "above the blue ball", "at the same height as the blue ball", false},
		{"numeric mismatch", "41", "42", false},
		{"number vs text falls back to text compare", "42 reasons", "forty-two", false},
		{"empty answer", "", "42", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, def.Score(tt.answer, tt.groundTruth))
		})
	}
}

func TestScoreDefaultsToAuto(t *testing.T) {
	def := &Definition{}
	assert.True(t, def.Score("42", "42"))
}

func TestExtractLetterPrecedence(t *testing.T) {
	// The explicit final-answer marker wins over earlier incidental letters.
	text := "First I considered A and B, but Final Answer: D"
	got, ok := extractLetter(text)
	assert.True(t, ok)
	assert.Equal(t, "D", got)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "hello world", normalize("  Hello,   World! "))
	assert.Equal(t, "42", normalize("**42**"))
	assert.Equal(t, "", normalize("!!!"))
}
