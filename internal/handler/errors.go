package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cleanexit/cleanexit/internal/middleware"
	"github.com/cleanexit/cleanexit/internal/service"
)

// handleServiceError maps service errors to HTTP responses. Only
// user-correctable messages reach the client; everything else is logged and
// reported as an opaque 500.
func handleServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var validationErr *service.ValidationError
	var notConfigured *service.NotConfiguredError

	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, service.ErrQuotaExceeded):
		writeError(w, http.StatusPaymentRequired, "Device quota exceeded for current plan")
	case errors.Is(err, service.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, service.ErrInvalidCursor):
		writeError(w, http.StatusBadRequest, "Invalid pagination cursor")
	case errors.Is(err, service.ErrCertificateNotFound):
		writeError(w, http.StatusNotFound, "Certificate not found")
	case errors.Is(err, service.ErrTicketNotFound):
		writeError(w, http.StatusNotFound, "Ticket not found")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case errors.As(err, &notConfigured):
		writeError(w, http.StatusNotImplemented, notConfigured.Error())
	case errors.Is(err, service.ErrUpstream):
		logger.Error("identity_provider_failed",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "Identity provider unavailable")
	default:
		logger.Error("request_failed",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Bool("storage", service.IsStorage(err)),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
