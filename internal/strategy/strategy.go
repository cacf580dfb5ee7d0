// Package strategy defines the collaboration strategies that govern how two
// agent roles interact during a dialogue: the role-specific system prompts,
// the turn budget and the sampling parameters.
package strategy

import (
	"fmt"
	"sort"
)

// Defaults applied when a definition leaves a field zero.
const (
	DefaultMaxTurns    = 5
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
)

// DefaultFinalTurnInstruction is appended to the acting agent's prompt on the
// last turn. The role prompts tell the model to emit "Final Answer:" when it
// sees this marker.
const DefaultFinalTurnInstruction = "(final turn) Conclude now and end your response with 'Final Answer: X'."

// Definition is the immutable description of one collaboration strategy.
type Definition struct {
	ID                   string
	Description          string
	SystemPromptA        string
	SystemPromptB        string
	MaxTurns             int
	Temperature          float64
	MaxTokens            int
	FinalTurnInstruction string
}

// SimulatedSystemPrompt composes the single-model prompt used when one model
// role-plays both agents in a shared transcript.
func (d *Definition) SimulatedSystemPrompt() string {
	return fmt.Sprintf(
		"You are a helpful assistant who will simulate a dialogue between two agents—Agent A and Agent B—who are "+
			"discussing and challenging each other's reasoning about the problem. For each turn, you will "+
			"generate only the argument or counterargument content, without including any role labels "+
			"(those will be provided externally). Your responses should be concise and focus on "+
			"logical reasoning. In your dialogue, Agent A should take the position described as: "+
			"%q, while Agent B should act as: %q. "+
			"At the end of the dialogue, conclude with a final statement that starts with "+
			"'Final Answer:' summarizing the agreed solution.",
		d.SystemPromptA, d.SystemPromptB,
	)
}

// UnknownStrategyError is returned when an unknown strategy id is requested.
type UnknownStrategyError struct {
	ID string
}

func (e *UnknownStrategyError) Error() string {
	return "unknown strategy: " + e.ID
}

// Registry holds the strategy definitions loaded at process start.
type Registry struct {
	defs map[string]*Definition
}

// NewRegistry builds a registry containing the built-in strategies.
func NewRegistry() *Registry {
	r := &Registry{defs: make(map[string]*Definition)}
	for _, d := range builtins() {
		r.register(d)
	}
	return r
}

func (r *Registry) register(d *Definition) {
	if d.MaxTurns <= 0 {
		d.MaxTurns = DefaultMaxTurns
	}
	if d.Temperature == 0 {
		d.Temperature = DefaultTemperature
	}
	if d.MaxTokens <= 0 {
		d.MaxTokens = DefaultMaxTokens
	}
	if d.FinalTurnInstruction == "" {
		d.FinalTurnInstruction = DefaultFinalTurnInstruction
	}
	r.defs[d.ID] = d
}

// Get looks up a strategy by id.
func (r *Registry) Get(id string) (*Definition, error) {
	d, ok := r.defs[id]
	if !ok {
		return nil, &UnknownStrategyError{ID: id}
	}
	return d, nil
}

// List returns all strategy ids in stable order.
func (r *Registry) List() []*Definition {
	defs := make([]*Definition, 0, len(r.defs))
	for _, d := range r.defs {
		defs = append(defs, d)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs
}
