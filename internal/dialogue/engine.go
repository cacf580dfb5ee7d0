package dialogue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dialectic-ai/dialectic/internal/llm"
	"github.com/dialectic-ai/dialectic/internal/strategy"
)

// EngineError is an internal fault while driving a conversation. It carries
// the partial transcript so callers can persist or display what was produced
// before the fault.
type EngineError struct {
	Variant    Variant
	Turn       int
	Transcript []Message
	Err        error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("dialogue engine failed (%s, turn %d): %v", e.Variant, e.Turn, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// Sink receives each message as soon as it is produced. Used to push live
// turns to stream subscribers; nil sinks are allowed.
type Sink func(Message)

// Engine produces one full conversation per call, turn by turn. Turns are
// strictly sequential: the model output of turn N builds the prompt of turn
// N+1, so a conversation never spans multiple goroutines.
type Engine struct {
	client    llm.Client
	turnDelay time.Duration
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithTurnDelay inserts a pause between turns to space out provider calls.
func WithTurnDelay(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.turnDelay = d
	}
}

// NewEngine creates a dialogue engine on top of a completion client.
func NewEngine(client llm.Client, opts ...EngineOption) *Engine {
	e := &Engine{client: client}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes one conversation for the given problem, strategy and variant,
// invoking sink for every emitted message.
func (e *Engine) Run(ctx context.Context, problem string, def *strategy.Definition, variant Variant, sink Sink) (*Conversation, error) {
	switch variant {
	case VariantSimulated:
		return e.RunSimulated(ctx, problem, def, sink)
	case VariantDual:
		return e.RunDual(ctx, problem, def, sink)
	default:
		return nil, &EngineError{Variant: variant, Err: fmt.Errorf("unsupported variant %q", variant)}
	}
}

// RunSimulated runs the single-model conversation: one shared transcript, the
// model is nudged each turn with the role label it should play.
func (e *Engine) RunSimulated(ctx context.Context, problem string, def *strategy.Definition, sink Sink) (*Conversation, error) {
	if def == nil {
		return nil, &EngineError{Variant: VariantSimulated, Err: fmt.Errorf("nil strategy definition")}
	}

	conv := &Conversation{Variant: VariantSimulated}
	emit(conv, sink, NewMessage(RoleUser, problem, VariantInitial))

	history := []llm.ChatMessage{
		{Role: llm.RoleSystem, Content: def.SimulatedSystemPrompt()},
		{Role: llm.RoleUser, Content: problem},
	}

	for turn := 1; turn <= def.MaxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return conv, &EngineError{Variant: VariantSimulated, Turn: turn, Transcript: conv.Messages, Err: err}
		}

		role := roleForTurn(turn)
		nudge := role + ": "
		if turn == def.MaxTurns {
			nudge = def.FinalTurnInstruction + "\n" + nudge
		}

		// The nudge is part of the request only, never of the shared history.
		prompt := append(append([]llm.ChatMessage{}, history...), llm.ChatMessage{Role: llm.RoleUser, Content: nudge})

		content := e.completeTurn(ctx, llm.ChatRequest{
			Messages:    prompt,
			Temperature: def.Temperature,
			MaxTokens:   def.MaxTokens,
		}, VariantSimulated, role, turn)

		history = append(history, llm.ChatMessage{Role: llm.RoleAssistant, Content: content})
		emit(conv, sink, NewMessage(role, content, VariantSimulated))

		e.pause(ctx, turn, def.MaxTurns)
	}

	return conv, nil
}

// RunDual runs the two-agent conversation. Each agent keeps its own history
// seeded with its own system prompt; the counterpart's turns are appended to
// it as labeled user messages.
func (e *Engine) RunDual(ctx context.Context, problem string, def *strategy.Definition, sink Sink) (*Conversation, error) {
	if def == nil {
		return nil, &EngineError{Variant: VariantDual, Err: fmt.Errorf("nil strategy definition")}
	}

	conv := &Conversation{Variant: VariantDual}
	emit(conv, sink, NewMessage(RoleUser, problem, VariantInitial))

	historyA := []llm.ChatMessage{
		{Role: llm.RoleSystem, Content: def.SystemPromptA},
		{Role: llm.RoleUser, Content: problem},
	}
	historyB := []llm.ChatMessage{
		{Role: llm.RoleSystem, Content: def.SystemPromptB},
		{Role: llm.RoleUser, Content: problem},
	}

	for turn := 1; turn <= def.MaxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return conv, &EngineError{Variant: VariantDual, Turn: turn, Transcript: conv.Messages, Err: err}
		}

		role := roleForTurn(turn)
		own, other := &historyA, &historyB
		if role == RoleAgentB {
			own, other = &historyB, &historyA
		}

		prompt := append([]llm.ChatMessage{}, *own...)
		if turn == def.MaxTurns {
			prompt = append(prompt, llm.ChatMessage{Role: llm.RoleUser, Content: def.FinalTurnInstruction})
		}

		content := e.completeTurn(ctx, llm.ChatRequest{
			Messages:    prompt,
			Temperature: def.Temperature,
			MaxTokens:   def.MaxTokens,
		}, VariantDual, role, turn)

		*own = append(*own, llm.ChatMessage{Role: llm.RoleAssistant, Content: content})
		// From the counterpart's point of view this is the other agent speaking.
		*other = append(*other, llm.ChatMessage{Role: llm.RoleUser, Content: role + ": " + content})

		emit(conv, sink, NewMessage(role, content, VariantDual))

		e.pause(ctx, turn, def.MaxTurns)
	}

	return conv, nil
}

// completeTurn calls the completion client and soft-fails provider errors
// into turn content so one bad call degrades one turn, not the conversation.
func (e *Engine) completeTurn(ctx context.Context, req llm.ChatRequest, variant Variant, role string, turn int) string {
	content, err := e.client.Complete(ctx, req)
	if err != nil {
		slog.Warn("completion failed, degrading turn",
			"variant", variant,
			"role", role,
			"turn", turn,
			"error", err,
		)
		return llm.SoftFail(err)
	}
	return content
}

func (e *Engine) pause(ctx context.Context, turn, maxTurns int) {
	if e.turnDelay <= 0 || turn == maxTurns {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(e.turnDelay):
	}
}

func emit(conv *Conversation, sink Sink, msg Message) {
	conv.Messages = append(conv.Messages, msg)
	if sink != nil {
		sink(msg)
	}
}
