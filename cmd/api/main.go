// Package main is the entrypoint for the Recipe Box API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/recipebox/recipebox/internal/auth"
	"github.com/recipebox/recipebox/internal/cache"
	"github.com/recipebox/recipebox/internal/config"
	"github.com/recipebox/recipebox/internal/handler"
	"github.com/recipebox/recipebox/internal/metrics"
	"github.com/recipebox/recipebox/internal/middleware"
	"github.com/recipebox/recipebox/internal/repository"
	"github.com/recipebox/recipebox/internal/server"
	"github.com/recipebox/recipebox/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		repo.Close()
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	// Issued tokens carry a test marker outside production
	tokenEnv := auth.EnvLive
	if !cfg.IsProduction() {
		tokenEnv = auth.EnvTest
	}

	metricsRecorder := metrics.NewInMemory()
	userService := service.NewUserService(repo, cacheClient, tokenEnv, cfg.TokenTTL, metricsRecorder)
	recipeService := service.NewRecipeService(repo, metricsRecorder)

	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	userHandler := handler.NewUserHandler(userService, logger)
	tagHandler := handler.NewTagHandler(recipeService, logger)
	ingredientHandler := handler.NewIngredientHandler(recipeService, logger)
	recipeHandler := handler.NewRecipeHandler(recipeService, logger)
	adminHandler := handler.NewAdminHandler(userService, userService, logger)
	metricsHandler := handler.NewMetricsHandler(metricsRecorder)

	r := setupRouter(routerDeps{
		root:        h,
		health:      healthHandler,
		users:       userHandler,
		tags:        tagHandler,
		ingredients: ingredientHandler,
		recipes:     recipeHandler,
		admin:       adminHandler,
		metrics:     metricsHandler,
		repo:        repo,
		cache:       cacheClient,
		recorder:    metricsRecorder,
		cfg:         cfg,
		logger:      logger,
	})

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	srv.OnShutdown("database", func(context.Context) error {
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

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	root        *handler.Handler
	health      *handler.HealthHandler
	users       *handler.UserHandler
	tags        *handler.TagHandler
	ingredients *handler.IngredientHandler
	recipes     *handler.RecipeHandler
	admin       *handler.AdminHandler
	metrics     *handler.MetricsHandler
	repo        *repository.Repository
	cache       *cache.Cache
	recorder    metrics.Recorder
	cfg         *config.Config
	logger      *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment:      deps.cfg.IsDevelopment(),
		MaxRequestBodySize: deps.cfg.MaxRequestBodySize,
	}))
	r.Use(middleware.MaxBodySize(deps.cfg.MaxRequestBodySize))
	r.Use(middleware.RequireJSON)

	if origins := deps.cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		corsCfg := middleware.DefaultCORSConfig()
		corsCfg.AllowedOrigins = origins
		r.Use(middleware.CORS(corsCfg))
	}

	// Health endpoints (no auth required)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)

	// Root info endpoint
	r.Get("/", deps.root.Hello)

	authCfg := middleware.AuthConfig{
		Logger:  deps.logger,
		Store:   deps.repo,
		Cache:   deps.cache,
		Metrics: deps.recorder,
	}

	loginRateLimitCfg := middleware.RateLimitConfig{
		Logger:  deps.logger,
		Limiter: deps.cache,
		Enabled: deps.cfg.LoginRateLimitEnabled,
		RPS:     deps.cfg.LoginRateLimitRPS,
		Burst:   deps.cfg.LoginRateLimitBurst,
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Open endpoints: registration and token issuing
		r.Post("/users", deps.users.Register)
		r.With(middleware.RateLimitLogin(loginRateLimitCfg)).Post("/users/token", deps.users.Token)

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))

			r.Route("/users/me", func(r chi.Router) {
				r.Get("/", deps.users.Me)
				r.Patch("/", deps.users.UpdateMe)
				r.Post("/logout", deps.users.Logout)
			})

			r.Route("/recipe", func(r chi.Router) {
				r.Route("/tags", func(r chi.Router) {
					r.Get("/", deps.tags.List)
					r.Post("/", deps.tags.Create)
					r.Patch("/{id}", deps.tags.Update)
					r.Delete("/{id}", deps.tags.Delete)
				})

				r.Route("/ingredients", func(r chi.Router) {
					r.Get("/", deps.ingredients.List)
					r.Post("/", deps.ingredients.Create)
					r.Patch("/{id}", deps.ingredients.Update)
					r.Delete("/{id}", deps.ingredients.Delete)
				})

				r.Route("/recipes", func(r chi.Router) {
					r.Get("/", deps.recipes.List)
					r.Post("/", deps.recipes.Create)
					r.Get("/{id}", deps.recipes.Get)
					r.Patch("/{id}", deps.recipes.Update)
					r.Delete("/{id}", deps.recipes.Delete)
				})
			})

			// Staff-only operations
			r.Route("/admin", func(r chi.Router) {
				r.With(middleware.RequireStaff(deps.logger)).Get("/users", deps.admin.ListUsers)
				r.With(middleware.RequireStaff(deps.logger)).Get("/metrics", deps.metrics.Metrics)
				r.With(middleware.RequireSuperuser(deps.logger)).Post("/users/{id}/revoke-tokens", deps.admin.RevokeTokens)
			})
		})
	})

	// 404 and 405 handlers
	r.NotFound(deps.root.NotFound)
	r.MethodNotAllowed(deps.root.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

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
