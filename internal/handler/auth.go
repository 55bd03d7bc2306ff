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

// AuthHandler handles login, sessions and the current user.
type AuthHandler struct {
	identity *service.IdentityService
	oauth    *service.OAuthService
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler. oauth may be nil when no
// identity provider is configured.
func NewAuthHandler(identity *service.IdentityService, oauth *service.OAuthService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if oauth == nil {
		oauth = service.NewOAuthService(nil, identity)
	}
	return &AuthHandler{identity: identity, oauth: oauth, logger: logger}
}

// Login handles POST /api/login.
// Responds 201 when the account was created and 200 when it already existed.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.identity.Login(r.Context(), req.Username)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logLogin(r, result, "username")

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	writeSuccess(w, status, toLoginResponse(result))
}

// Logout handles POST /api/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session := auth.MustSessionFromContext(r.Context())

	if err := h.identity.Logout(r.Context(), session); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Me handles GET /api/users/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session := auth.MustSessionFromContext(r.Context())

	user, err := h.identity.CurrentUser(r.Context(), session.UserID)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, dto.MeResponse{User: dto.ToUserResponse(user)})
}

// OAuthRedirectURL handles GET /api/oauth/{provider}/redirect_url.
func (h *AuthHandler) OAuthRedirectURL(w http.ResponseWriter, r *http.Request) {
	url, err := h.oauth.RedirectURL(r.Context(), chi.URLParam(r, "provider"))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, dto.OAuthRedirectResponse{RedirectURL: url})
}

// CreateSession handles POST /api/sessions, exchanging an OAuth code.
func (h *AuthHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.oauth.CompleteLogin(r.Context(), req.Code)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logLogin(r, result, "oauth")

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	writeSuccess(w, status, toLoginResponse(result))
}

func (h *AuthHandler) logLogin(r *http.Request, result *service.LoginResult, method string) {
	event := "user_logged_in"
	if result.Created {
		event = "user_created"
	}
	h.logger.Info(event,
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("user_id", result.User.ID),
		slog.String("method", method),
	)
}

func toLoginResponse(result *service.LoginResult) dto.LoginResponse {
	return dto.LoginResponse{
		User:      dto.ToUserResponse(result.User),
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	}
}
