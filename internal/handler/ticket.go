package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cleanexit/cleanexit/internal/auth"
	"github.com/cleanexit/cleanexit/internal/handler/dto"
	"github.com/cleanexit/cleanexit/internal/middleware"
	"github.com/cleanexit/cleanexit/internal/service"
)

// TicketHandler handles support ticket endpoints.
type TicketHandler struct {
	tickets *service.TicketService
	logger  *slog.Logger
}

// NewTicketHandler creates a new TicketHandler.
func NewTicketHandler(tickets *service.TicketService, logger *slog.Logger) *TicketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TicketHandler{tickets: tickets, logger: logger}
}

// Create handles POST /api/support/ticket.
func (h *TicketHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTicketRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = auth.UserIDFromContext(r.Context())
	}

	ticket, err := h.tickets.Create(r.Context(), service.CreateTicketInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
		UserID:  userID,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("ticket_created",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("reference", ticket.Reference),
		slog.Bool("signed_in", ticket.UserID != nil),
	)

	writeSuccess(w, http.StatusCreated, map[string]dto.TicketResponse{"ticket": dto.ToTicketResponse(ticket)})
}

// Get handles GET /api/support/ticket/{reference}.
func (h *TicketHandler) Get(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.tickets.GetByReference(r.Context(), chi.URLParam(r, "reference"))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]dto.TicketStatusResponse{"ticket": dto.ToTicketStatusResponse(ticket)})
}
