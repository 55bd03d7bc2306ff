package handler

import (
	"log/slog"
	"net/http"

	"github.com/cleanexit/cleanexit/internal/auth"
	"github.com/cleanexit/cleanexit/internal/handler/dto"
	"github.com/cleanexit/cleanexit/internal/service"
)

// SubscriptionHandler serves the usage dashboard and plan catalog.
type SubscriptionHandler struct {
	subscriptions *service.SubscriptionService
	logger        *slog.Logger
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(subscriptions *service.SubscriptionService, logger *slog.Logger) *SubscriptionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubscriptionHandler{subscriptions: subscriptions, logger: logger}
}

// Get handles GET /api/subscription and GET /api/users/subscription.
// A first visit provisions the Starter plan.
func (h *SubscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	session := auth.MustSessionFromContext(r.Context())

	sub, err := h.subscriptions.GetOrProvision(r.Context(), session.UserID)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, dto.ToSubscriptionResponse(sub))
}

// Plans handles GET /api/plans.
func (h *SubscriptionHandler) Plans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.subscriptions.Plans(r.Context())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string][]dto.PlanResponse{"plans": dto.ToPlanResponses(plans)})
}
