package server

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dialectic-ai/dialectic/internal/dialogue"
	"github.com/dialectic-ai/dialectic/internal/stream"
)

// startDebate opens a live session and drives both conversation variants in
// the background, publishing every message to the session as it is produced.
func (s *HTTPServer) startDebate(problem, strategyID string) (string, error) {
	def, err := s.app.Strategies.Get(strategyID)
	if err != nil {
		return "", err
	}

	debateID := uuid.NewString()
	if err := s.app.Broker.OpenSession(debateID, problem, def.ID); err != nil {
		return "", err
	}

	go func() {
		broker := s.app.Broker
		publish := func(msg dialogue.Message) {
			if err := broker.Publish(debateID, msg); err != nil {
				slog.Warn("failed to publish debate message", "debate_id", debateID, "error", err)
			}
		}

		// The seed problem message is tagged "initial" by the engine; re-tag
		// it with its conversation's variant so stream clients can route it
		// to the right panel.
		sinkFor := func(variant dialogue.Variant) dialogue.Sink {
			return func(msg dialogue.Message) {
				if msg.Variant == dialogue.VariantInitial {
					msg.Variant = variant
				}
				publish(msg)
			}
		}

		// Subscribers see the system prompts before the first turn lands.
		publish(dialogue.NewMessage(dialogue.RoleSystem, def.SimulatedSystemPrompt(), dialogue.VariantSimulated))
		publish(dialogue.NewMessage(dialogue.RoleSystem, def.SystemPromptA, dialogue.VariantDual))

		ctx := context.Background()
		var g errgroup.Group
		g.Go(func() error {
			_, err := s.app.Engine.RunSimulated(ctx, problem, def, sinkFor(dialogue.VariantSimulated))
			return err
		})
		g.Go(func() error {
			_, err := s.app.Engine.RunDual(ctx, problem, def, sinkFor(dialogue.VariantDual))
			return err
		})

		if err := g.Wait(); err != nil {
			slog.Error("debate failed", "debate_id", debateID, "error", err)
			if closeErr := broker.CloseSession(debateID, stream.StatusError, err.Error()); closeErr != nil {
				slog.Warn("failed to close debate session", "debate_id", debateID, "error", closeErr)
			}
			return
		}
		if err := broker.CloseSession(debateID, stream.StatusComplete, ""); err != nil {
			slog.Warn("failed to close debate session", "debate_id", debateID, "error", err)
		}
	}()

	return debateID, nil
}
