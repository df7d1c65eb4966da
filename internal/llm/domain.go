package llm

import "github.com/pkg/errors"

// Roles a chat message may carry.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single conversation turn, passed to the inference backend as-is.
type ChatMessage struct {
	// Role is who sent the message: "system", "user" or "assistant".
	Role string `json:"role"`
	// Content is the text of the message.
	Content string `json:"content"`
}

// RunInput is the request body for a model run.
type RunInput struct {
	Messages  []*ChatMessage `json:"messages"`
	MaxTokens int            `json:"max_tokens"`
	Stream    bool           `json:"stream"`
}

// validateMessages rejects conversations the backend cannot take.
func validateMessages(messages []*ChatMessage) error {
	for i, msg := range messages {
		if msg == nil {
			return errors.Errorf("message %d is null", i)
		}
		switch msg.Role {
		case RoleSystem, RoleUser, RoleAssistant:
		default:
			return errors.Errorf("message %d has unsupported role %q", i, msg.Role)
		}
	}
	return nil
}

// hasSystemMessage reports whether any message already sets the system directive.
func hasSystemMessage(messages []*ChatMessage) bool {
	for _, msg := range messages {
		if msg.Role == RoleSystem {
			return true
		}
	}
	return false
}
