package evaluation

import (
	"strings"

	"github.com/dialectic-ai/dialectic/internal/answer"
	"github.com/dialectic-ai/dialectic/internal/benchmark"
	"github.com/dialectic-ai/dialectic/internal/dialogue"
)

// Agreement patterns: how the two agents' answers relate over the dialogue.
const (
	AgreementComplete     = "Complete Agreement"
	AgreementResolved     = "Resolved Disagreement"
	AgreementUnresolved   = "Unresolved Disagreement"
	AgreementInsufficient = "Insufficient Data"
)

// Correctness patterns: how answer quality evolves over the dialogue.
const (
	CorrectnessStableCorrect   = "Stable Correct"
	CorrectnessStableIncorrect = "Stable Incorrect"
	CorrectnessOneAgentCorrect = "Stable Correct (One Agent)"
	CorrectnessImprovement     = "Improvement"
	CorrectnessDeterioration   = "Deterioration"
	CorrectnessMixed           = "Mixed Pattern"
	CorrectnessMixedCorrect    = "Mixed Pattern (Final Correct)"
	CorrectnessMixedIncorrect  = "Mixed Pattern (Final Incorrect)"
	CorrectnessInsufficient    = "Insufficient Data"
)

// AnswerRecord is one extracted answer in the dialogue timeline.
type AnswerRecord struct {
	Turn      int    `json:"turn"`
	Agent     string `json:"agent"`
	Answer    string `json:"answer"`
	IsCorrect bool   `json:"is_correct"`
}

// EvolutionData describes how the answer evolved over a conversation.
type EvolutionData struct {
	AgreementPattern   string         `json:"agreement_pattern"`
	CorrectnessPattern string         `json:"correctness_pattern"`
	AnswerHistory      []AnswerRecord `json:"answer_history"`
}

// AnalyzeEvolution extracts the per-turn answers from a transcript, scores
// each one against the ground truth and classifies the agreement and
// correctness trajectories.
func AnalyzeEvolution(messages []dialogue.Message, groundTruth string, bench *benchmark.Definition) *EvolutionData {
	var history []AnswerRecord

	turn := 0
	for _, msg := range messages {
		if msg.Role != dialogue.RoleAgentA && msg.Role != dialogue.RoleAgentB {
			continue
		}

		// Models sometimes echo their role label back; strip it before
		// extraction so it does not pollute the answer text.
		content := strings.TrimSpace(strings.TrimPrefix(msg.Content, msg.Role+":"))

		extracted, ok := answer.Extract(content)
		if !ok {
			continue
		}

		history = append(history, AnswerRecord{
			Turn:      turn,
			Agent:     msg.Role,
			Answer:    extracted,
			IsCorrect: bench.Score(extracted, groundTruth),
		})
		turn++
	}

	return &EvolutionData{
		AgreementPattern:   agreementPattern(history),
		CorrectnessPattern: correctnessPattern(history),
		AnswerHistory:      history,
	}
}

func agreementPattern(history []AnswerRecord) string {
	if len(history) < 2 {
		return AgreementInsufficient
	}

	var aAnswers, bAnswers []string
	for _, rec := range history {
		if rec.Agent == dialogue.RoleAgentA {
			aAnswers = append(aAnswers, rec.Answer)
		} else {
			bAnswers = append(bAnswers, rec.Answer)
		}
	}
	if len(aAnswers) == 0 || len(bAnswers) == 0 {
		return AgreementInsufficient
	}

	firstA, firstB := aAnswers[0], bAnswers[0]
	if firstA == firstB && allEqual(append(aAnswers, bAnswers...), firstA) {
		return AgreementComplete
	}

	lastA, lastB := aAnswers[len(aAnswers)-1], bAnswers[len(bAnswers)-1]
	if lastA == lastB {
		earlier := append(aAnswers[:len(aAnswers)-1:len(aAnswers)-1], bAnswers[:len(bAnswers)-1]...)
		if firstA != firstB || !allEqual(earlier, lastA) {
			return AgreementResolved
		}
		return AgreementComplete
	}

	return AgreementUnresolved
}

func correctnessPattern(history []AnswerRecord) string {
	if len(history) == 0 {
		return CorrectnessInsufficient
	}

	correct := make([]bool, len(history))
	allCorrect, anyCorrect := true, false
	for i, rec := range history {
		correct[i] = rec.IsCorrect
		allCorrect = allCorrect && rec.IsCorrect
		anyCorrect = anyCorrect || rec.IsCorrect
	}

	if allCorrect {
		return CorrectnessStableCorrect
	}
	if !anyCorrect {
		return CorrectnessStableIncorrect
	}

	// One agent held the correct answer the whole way while the other wavered.
	for _, agent := range []string{dialogue.RoleAgentA, dialogue.RoleAgentB} {
		agentAll, agentAny := true, false
		for _, rec := range history {
			if rec.Agent == agent {
				agentAny = true
				agentAll = agentAll && rec.IsCorrect
			}
		}
		if agentAny && agentAll {
			return CorrectnessOneAgentCorrect
		}
	}

	first, last := correct[0], correct[len(correct)-1]
	if len(correct) > 1 {
		if !first && last {
			return CorrectnessImprovement
		}
		if first && !last {
			return CorrectnessDeterioration
		}
	}

	if len(correct) >= 3 {
		middle := correct[1 : len(correct)-1]
		if first && last && anyFalse(middle) {
			return CorrectnessMixedCorrect
		}
		if !first && !last && anyTrue(middle) {
			return CorrectnessMixedIncorrect
		}
	}

	return CorrectnessMixed
}

func allEqual(values []string, want string) bool {
	for _, v := range values {
		if v != want {
			return false
		}
	}
	return true
}

func anyTrue(values []bool) bool {
	for _, v := range values {
		if v {
			return true
		}
	}
	return false
}

func anyFalse(values []bool) bool {
	for _, v := range values {
		if !v {
			return true
		}
	}
	return false
}

// EvolutionSummary counts pattern occurrences across a run's results, split
// by conversation variant.
type EvolutionSummary struct {
	AgreementCounts   map[string]int            `json:"agreement_counts"`
	CorrectnessCounts map[string]int            `json:"correctness_counts"`
	ByVariant         map[string]map[string]int `json:"by_variant"`
}

// SummarizeEvolution aggregates evolution patterns across results.
func SummarizeEvolution(results []BenchmarkResult) *EvolutionSummary {
	summary := &EvolutionSummary{
		AgreementCounts:   make(map[string]int),
		CorrectnessCounts: make(map[string]int),
		ByVariant: map[string]map[string]int{
			"simulated": make(map[string]int),
			"dual":      make(map[string]int),
		},
	}

	count := func(variant string, ev *EvolutionData) {
		if ev == nil {
			return
		}
		summary.AgreementCounts[ev.AgreementPattern]++
		summary.CorrectnessCounts[ev.CorrectnessPattern]++
		summary.ByVariant[variant][ev.AgreementPattern]++
		summary.ByVariant[variant][ev.CorrectnessPattern]++
	}

	for _, r := range results {
		count("simulated", r.Simulated.Evolution)
		count("dual", r.Dual.Evolution)
	}
	return summary
}
