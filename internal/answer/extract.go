// Package answer extracts final answers from conversation turns.
// Extraction and scoring are deterministic and side-effect free so grading
// is reproducible.
package answer

import (
	"regexp"
	"strings"

	"github.com/dialectic-ai/dialectic/internal/dialogue"
)

// Extraction patterns, most specific first. Models wrap answers in
// <solution> tags, markdown bold, or plain "Final Answer:" text depending on
// the benchmark's prompt conventions.
var (
	finalSolutionPattern = regexp.MustCompile(`(?is)final answer:\s*<solution>(.*?)</solution>`)
	solutionPattern      = regexp.MustCompile(`(?is)answer:\s*<solution>(.*?)</solution>`)
	bareSolutionPattern  = regexp.MustCompile(`(?is)<solution>(.*?)</solution>`)
	finalBoldPattern     = regexp.MustCompile(`(?i)final answer:\s*\*{2,5}(.*?)\*{2,5}`)
	boldPattern          = regexp.MustCompile(`(?i)answer:\s*\*{2,5}(.*?)\*{2,5}`)
	finalPlainPattern    = regexp.MustCompile(`(?i)final answer:\s*([\w\d\s,.;-]+)`)
	plainPattern         = regexp.MustCompile(`(?i)answer:\s*([\w\d\s,.;-]+)`)
	listPattern          = regexp.MustCompile(`(?i)answer:\s*((?:[\w-]+(?:,\s*[\w-]+)+))`)
)

// Extract pulls an answer out of a single turn's text. Returns "" and false
// when no answer marker is present.
func Extract(content string) (string, bool) {
	for _, p := range []*regexp.Regexp{finalSolutionPattern, solutionPattern, bareSolutionPattern, finalBoldPattern, boldPattern, finalPlainPattern} {
		if m := p.FindStringSubmatch(content); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}

	// A bare "Answer:" is only trusted when it is short enough to plausibly
	// be an answer rather than prose mentioning the word.
	if m := plainPattern.FindStringSubmatch(content); m != nil {
		candidate := strings.TrimSpace(m[1])
		if len(strings.Fields(candidate)) <= 15 {
			return candidate, true
		}
	}

	if m := listPattern.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1]), true
	}

	return "", false
}

// Final returns the conversation's final answer: the most recent turn with an
// extractable answer marker, falling back to the trimmed text of the last
// agent turn when no marker appears anywhere.
func Final(conv *dialogue.Conversation) string {
	turns := conv.Turns()
	for i := len(turns) - 1; i >= 0; i-- {
		if ans, ok := Extract(turns[i].Content); ok {
			return ans
		}
	}
	if len(turns) > 0 {
		return strings.TrimSpace(turns[len(turns)-1].Content)
	}
	return ""
}
