package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleanexit/cleanexit/internal/chat"
	"github.com/cleanexit/cleanexit/internal/metrics"
)

func TestChatRespond(t *testing.T) {
	recorder := metrics.NewInMemory()
	svc := NewChatService(nil, recorder)

	reply, err := svc.Respond(context.Background(), "Do you handle GDPR?")
	require.NoError(t, err)
	assert.Equal(t, chat.TopicCompliance, reply.Topic)
	assert.True(t, strings.HasPrefix(reply.Text, "We're certified"))
	assert.Equal(t, uint64(1), recorder.Snapshot().ChatResponses[chat.TopicCompliance])
}

func TestChatRespond_Validation(t *testing.T) {
	svc := NewChatService(nil, nil)

	_, err := svc.Respond(context.Background(), "   ")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "No message provided", vErr.Message)

	_, err = svc.Respond(context.Background(), strings.Repeat("a", maxChatMessageLength+1))
	assert.True(t, IsValidation(err))
}
