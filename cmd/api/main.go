// Package main is the entrypoint for the Cleanexit API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/cleanexit/cleanexit/internal/archive"
	"github.com/cleanexit/cleanexit/internal/auth"
	"github.com/cleanexit/cleanexit/internal/cache"
	"github.com/cleanexit/cleanexit/internal/chat"
	"github.com/cleanexit/cleanexit/internal/config"
	"github.com/cleanexit/cleanexit/internal/handler"
	"github.com/cleanexit/cleanexit/internal/metrics"
	"github.com/cleanexit/cleanexit/internal/model"
	"github.com/cleanexit/cleanexit/internal/repository"
	"github.com/cleanexit/cleanexit/internal/server"
	"github.com/cleanexit/cleanexit/internal/service"
	"github.com/cleanexit/cleanexit/internal/usersvc"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		return err
	}
	logger.Info("connected to database")

	if cfg.AutoMigrate {
		if err := repo.Migrate(ctx); err != nil {
			repo.Close()
			return err
		}
		logger.Info("database migrations applied")
	}

	// Cache and sessions
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error("failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		repo.Close()
		return err
	}
	logger.Info("connected to Redis")

	recorder := metrics.NewInMemory()
	tokens := auth.NewTokens(cfg.SessionSecret, cfg.SessionTTL)

	// Services
	identity := service.NewIdentityService(repo, cache.NewSessionStore(cacheClient), tokens, recorder)
	subscriptions := service.NewSubscriptionService(repo, cacheClient, logger)
	tickets := service.NewTicketService(repo, recorder)

	var archiver service.Archiver
	if cfg.Archive.Enabled() {
		s3, err := archive.NewS3(ctx, cfg.Archive)
		if err != nil {
			logger.Error("failed to configure certificate archive", "error", err)
			cacheClient.Close()
			repo.Close()
			return err
		}
		archiver = s3
		logger.Info("certificate archive enabled", "bucket", cfg.Archive.Bucket)
	}
	certificates := service.NewCertificateService(repo, archiver, recorder, logger)

	var provider service.IdentityProvider
	if cfg.UsersService.Enabled() {
		provider = usersvc.New(cfg.UsersService.APIURL, cfg.UsersService.APIKey,
			usersvc.NewHTTPClient(cfg.UsersService.Timeout))
		logger.Info("OAuth login enabled", "users_service", redactURL(cfg.UsersService.APIURL))
	} else {
		logger.Warn("users service not configured; OAuth login disabled")
	}
	oauth := service.NewOAuthService(provider, identity)

	chatService := service.NewChatService(chat.New(chat.WithPlans(catalog(ctx, subscriptions, logger))), recorder)

	// Router
	r := server.NewRouter(server.Deps{
		Logger:        logger,
		Authenticator: identity,
		Limiter:       cacheClient,
		RateLimit: server.RateLimitSettings{
			Enabled: cfg.RateLimitEnabled,
			RPS:     cfg.RateLimitRPS,
			Burst:   cfg.RateLimitBurst,
		},
		AllowedOrigins: cfg.GetCORSAllowedOrigins(),
		IsDevelopment:  cfg.IsDevelopment(),
		MaxBodySize:    cfg.MaxRequestBodySize,

		Health: handler.NewHealthHandler(
			handler.Dependency{Name: "postgres", Checker: repo},
			handler.Dependency{Name: "redis", Checker: cacheClient},
		),
		Metrics:       handler.NewMetricsHandler(recorder),
		Auth:          handler.NewAuthHandler(identity, oauth, logger),
		Certificates:  handler.NewCertificateHandler(certificates, logger),
		Tickets:       handler.NewTicketHandler(tickets, logger),
		Subscriptions: handler.NewSubscriptionHandler(subscriptions, logger),
		Chat:          handler.NewChatHandler(chatService, logger),
	})

	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	return srv.Run(ctx)
}

// catalog loads the plan catalog for the chat assistant's pricing answer.
// On failure the assistant keeps its built-in answer.
func catalog(ctx context.Context, subscriptions *service.SubscriptionService, logger *slog.Logger) []model.Plan {
	plans, err := subscriptions.Plans(ctx)
	if err != nil {
		logger.Warn("failed to load plan catalog for chat", "error", err)
		return nil
	}
	out := make([]model.Plan, 0, len(plans))
	for _, p := range plans {
		out = append(out, *p)
	}
	return out
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With("service", "cleanexit-api")
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

// redactURL strips the password from a connection URL.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		if username := parsed.User.Username(); username != "" {
			parsed.User = url.User(username)
		} else {
			parsed.User = url.User("redacted")
		}
	}

	return parsed.String()
}

// sanitizeError removes connection secrets from driver error messages.
func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
