package benchmark

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	letterPatterns = []*regexp.Regexp{
		// "Final Answer: A", with optional markdown bold.
		regexp.MustCompile(`(?i)final answer:\s*\*{0,2}([A-F])\*{0,2}`),
		regexp.MustCompile(`(?i)the answer is\s*\*{0,2}([A-F])\*{0,2}`),
		regexp.MustCompile(`(?i)(?:option|answer|:)\s*\*{0,2}([A-F])\*{0,2}[.\s]`),
		regexp.MustCompile(`(?i)\b\*{0,2}([A-F])\*{0,2}\b`),
	}
	nonAlnumPattern = regexp.MustCompile(`[^a-z0-9 ]+`)
	spacePattern    = regexp.MustCompile(`\s+`)
	numberPattern   = regexp.MustCompile(`-?\d[\d,]*(?:\.\d+)?`)
)

// Score reports whether an extracted answer matches the ground truth under
// this benchmark's answer format. Deterministic and side-effect free.
func (d *Definition) Score(answer, groundTruth string) bool {
	if strings.TrimSpace(answer) == "" {
		return false
	}

	switch d.AnswerFormat {
	case FormatLetter:
		return scoreLetter(answer, groundTruth)
	case FormatNumeric:
		return scoreNumeric(answer, groundTruth)
	default:
		return scoreAuto(answer, groundTruth)
	}
}

func scoreLetter(answer, groundTruth string) bool {
	got, ok := extractLetter(answer)
	if !ok {
		return false
	}
	want := strings.ToUpper(strings.TrimSpace(groundTruth))
	return got == want
}

// extractLetter pulls the multiple-choice letter (A-F) out of free text.
func extractLetter(text string) (string, bool) {
	for _, p := range letterPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return strings.ToUpper(m[1]), true
		}
	}
	return "", false
}

func scoreNumeric(answer, groundTruth string) bool {
	got, okA := parseNumber(answer)
	want, okB := parseNumber(groundTruth)
	if !okA || !okB {
		return false
	}
	return numbersEqual(got, want)
}

func scoreAuto(answer, groundTruth string) bool {
	if got, ok := parseNumber(answer); ok {
		if want, ok := parseNumber(groundTruth); ok {
			return numbersEqual(got, want)
		}
	}
	return normalize(answer) == normalize(groundTruth)
}

// parseNumber finds the first number in the text, tolerating thousands
// separators.
func parseNumber(text string) (float64, bool) {
	m := numberPattern.FindString(text)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func numbersEqual(a, b float64) bool {
	tolerance := 1e-6 * math.Max(1, math.Abs(b))
	return math.Abs(a-b) <= tolerance
}

// normalize case-folds and strips punctuation and redundant whitespace.
func normalize(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = nonAlnumPattern.ReplaceAllString(s, "")
	s = spacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
