package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/cleanexit/cleanexit/internal/chat"
	"github.com/cleanexit/cleanexit/internal/metrics"
)

const maxChatMessageLength = 2000

// ChatService answers assistant messages.
type ChatService struct {
	responder *chat.Responder
	metrics   metrics.Recorder
}

// NewChatService creates a new ChatService.
func NewChatService(responder *chat.Responder, recorder metrics.Recorder) *ChatService {
	if responder == nil {
		responder = chat.New()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ChatService{responder: responder, metrics: recorder}
}

// Respond returns the assistant's reply to message.
func (s *ChatService) Respond(ctx context.Context, message string) (chat.Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return chat.Reply{}, invalid("No message provided")
	}
	if utf8.RuneCountInString(message) > maxChatMessageLength {
		return chat.Reply{}, invalid("Message must be at most %d characters", maxChatMessageLength)
	}

	reply := s.responder.Reply(message)
	s.metrics.IncChatResponse(reply.Topic)
	return reply, nil
}
