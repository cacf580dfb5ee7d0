// Package dialogue drives multi-agent conversations: a single model
// role-playing both agents over a shared transcript ("simulated") or two
// independently-prompted agents with separate histories ("dual").
package dialogue

import (
	"time"

	"github.com/google/uuid"
)

// Agent role labels as they appear in transcripts.
const (
	RoleUser   = "User"
	RoleAgentA = "Agent A"
	RoleAgentB = "Agent B"
	RoleSystem = "System"
)

// Variant tags a message with the conversation mode that produced it.
type Variant string

const (
	// VariantSimulated marks turns of the single-model conversation.
	VariantSimulated Variant = "simulated"
	// VariantDual marks turns of the two-agent conversation.
	VariantDual Variant = "dual"
	// VariantInitial marks the seed problem statement shared by both modes.
	VariantInitial Variant = "initial"
)

// Message is one transcript entry. IDs are globally unique so clients can
// de-duplicate on a re-delivered stream.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Variant   Variant   `json:"variant"`
}

// NewMessage creates a transcript message with a fresh id.
func NewMessage(role, content string, variant Variant) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
		Variant:   variant,
	}
}

// Conversation is the ordered transcript of one completed (or aborted)
// conversation in one variant.
type Conversation struct {
	Variant  Variant   `json:"variant"`
	Messages []Message `json:"messages"`
}

// Turns returns the agent turns, excluding the seed problem statement.
func (c *Conversation) Turns() []Message {
	var turns []Message
	for _, m := range c.Messages {
		if m.Variant == VariantInitial || m.Role == RoleUser || m.Role == RoleSystem {
			continue
		}
		turns = append(turns, m)
	}
	return turns
}

// roleForTurn alternates Agent A / Agent B, starting with Agent A on turn 1.
func roleForTurn(turn int) string {
	if turn%2 == 1 {
		return RoleAgentA
	}
	return RoleAgentB
}
