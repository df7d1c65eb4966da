package llm

//go:generate mockgen -destination=./service_mock_test.go -package=llm -source=service.go Service

import (
	"context"

	"llm-chat/internal/config"

	"github.com/pkg/errors"
)

// Service defines the business logic for the chat endpoint.
type Service interface {
	// StreamChat sends a conversation to the model and returns the response stream.
	StreamChat(ctx context.Context, messages []*ChatMessage) (*Stream, error)
}

// service is the concrete implementation of the Service interface.
type service struct {
	inference InferenceClient
	chat      config.ChatConfig
}

// NewService is the constructor for the chat service.
func NewService(inference InferenceClient, chat config.ChatConfig) Service {
	return &service{
		inference: inference,
		chat:      chat,
	}
}

// StreamChat implements the Service interface.
func (s *service) StreamChat(ctx context.Context, messages []*ChatMessage) (*Stream, error) {
	if err := validateMessages(messages); err != nil {
		return nil, errors.Wrap(err, "invalid conversation")
	}

	input := &RunInput{
		Messages:  s.withSystemPrompt(messages),
		MaxTokens: s.chat.MaxTokens,
		Stream:    true,
	}

	stream, err := s.inference.Run(ctx, s.chat.ModelID, input)
	if err != nil {
		return nil, errors.Wrap(err, "inference backend failed")
	}
	return stream, nil
}

// withSystemPrompt prepends the configured system message when the
// conversation has none. The caller's slice is left alone.
func (s *service) withSystemPrompt(messages []*ChatMessage) []*ChatMessage {
	if hasSystemMessage(messages) {
		return messages
	}

	out := make([]*ChatMessage, 0, len(messages)+1)
	out = append(out, &ChatMessage{Role: RoleSystem, Content: s.chat.SystemPrompt})
	return append(out, messages...)
}
