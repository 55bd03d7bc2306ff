package handler

import (
	"log/slog"
	"net/http"

	"github.com/cleanexit/cleanexit/internal/auth"
	"github.com/cleanexit/cleanexit/internal/handler/dto"
	"github.com/cleanexit/cleanexit/internal/service"
)

// ChatHandler answers the assistant widget.
type ChatHandler struct {
	chat   *service.ChatService
	logger *slog.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chat *service.ChatService, logger *slog.Logger) *ChatHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandler{chat: chat, logger: logger}
}

// Respond handles POST /api/chat.
func (h *ChatHandler) Respond(w http.ResponseWriter, r *http.Request) {
	session := auth.MustSessionFromContext(r.Context())

	var req dto.ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reply, err := h.chat.Respond(r.Context(), req.Message)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, dto.ChatResponse{
		Response: reply.Text,
		Topic:    reply.Topic,
		User:     session.Username,
	})
}
