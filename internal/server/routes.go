package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/cleanexit/cleanexit/internal/handler"
	"github.com/cleanexit/cleanexit/internal/middleware"
)

// Rate limit scopes. Each scope has its own bucket per client IP.
const (
	scopeLogin       = "login"
	scopeCertificate = "certificate"
	scopeTicket      = "ticket"
	scopeChat        = "chat"
)

// RateLimitSettings configures the per-IP token buckets.
type RateLimitSettings struct {
	Enabled bool
	RPS     int
	Burst   int
}

// Deps are the handlers and middleware collaborators the router needs.
type Deps struct {
	Logger        *slog.Logger
	Authenticator middleware.Authenticator
	Limiter       middleware.IPRateLimiter
	RateLimit     RateLimitSettings

	AllowedOrigins []string
	IsDevelopment  bool
	MaxBodySize    int64

	Health        *handler.HealthHandler
	Metrics       *handler.MetricsHandler
	Auth          *handler.AuthHandler
	Certificates  *handler.CertificateHandler
	Tickets       *handler.TicketHandler
	Subscriptions *handler.SubscriptionHandler
	Chat          *handler.ChatHandler
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(d Deps) *chi.Mux {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cors := middleware.DefaultCORSConfig()
	if len(d.AllowedOrigins) > 0 {
		cors.AllowedOrigins = d.AllowedOrigins
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: d.IsDevelopment}))
	r.Use(middleware.CORS(cors))

	if d.Health != nil {
		r.Get("/healthz", d.Health.Healthz)
		r.Get("/readyz", d.Health.Readyz)
	}
	if d.Metrics != nil {
		r.Get("/metrics", d.Metrics.Metrics)
	}

	limitCfg := middleware.RateLimitConfig{
		Logger:  logger,
		Limiter: d.Limiter,
		Enabled: d.RateLimit.Enabled,
		RPS:     d.RateLimit.RPS,
		Burst:   d.RateLimit.Burst,
	}
	limit := func(scope string) func(http.Handler) http.Handler {
		return middleware.RateLimitIP(limitCfg, scope)
	}

	r.Route("/api", func(r chi.Router) {
		if d.MaxBodySize > 0 {
			r.Use(middleware.MaxBodySize(d.MaxBodySize))
		}

		// Identity. Outside Session, so stale bearer tokens are ignored.
		r.With(limit(scopeLogin)).Post("/login", d.Auth.Login)
		r.With(limit(scopeLogin)).Post("/sessions", d.Auth.CreateSession)
		r.Get("/oauth/{provider}/redirect_url", d.Auth.OAuthRedirectURL)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(middleware.AuthConfig{Logger: logger, Authenticator: d.Authenticator}))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireSession)

				r.Post("/logout", d.Auth.Logout)
				r.Get("/users/me", d.Auth.Me)
				r.Get("/subscription", d.Subscriptions.Get)
				r.Get("/users/subscription", d.Subscriptions.Get)
				r.Get("/certificates", d.Certificates.List)
				r.With(limit(scopeChat)).Post("/chat", d.Chat.Respond)
			})

			r.Get("/plans", d.Subscriptions.Plans)

			// Certificates. Issuance works for guests and signed-in users.
			r.With(limit(scopeCertificate)).Post("/certificate", d.Certificates.Issue)
			r.Route("/certificates/{certificateId}", func(r chi.Router) {
				r.Get("/", d.Certificates.Get)
				r.Get("/pdf", d.Certificates.PDF)
				r.Get("/download_url", d.Certificates.DownloadURL)
			})

			// Support
			r.With(limit(scopeTicket)).Post("/support/ticket", d.Tickets.Create)
			r.Get("/support/ticket/{reference}", d.Tickets.Get)
		})
	})

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}
