// Package server contains the HTTP and WebSocket handlers for the DevConnect API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "devconnect/docs" // swagger docs
	"devconnect/internal/auth"
	"devconnect/internal/bootstrap"
	"devconnect/internal/cache"
	"devconnect/internal/config"
	"devconnect/internal/discovery"
	"devconnect/internal/events"
	"devconnect/internal/featureflags"
	"devconnect/internal/middleware"
	"devconnect/internal/models"
	"devconnect/internal/notifications"
	"devconnect/internal/repository"
	"devconnect/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
)

const serviceName = "devconnect-api"

// Deps are the connected backing services a Server is built from.
type Deps struct {
	Store *repository.Store
	// Redis is optional. Without it there is no caching, token revocation,
	// distributed rate limiting or cross-instance feed fanout.
	Redis *redis.Client
	// Events receives every domain event (the AMQP publisher in production).
	Events events.Publisher
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	store          *repository.Store
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	tokens       *auth.TokenManager
	rateLimiter  *middleware.RateLimiter
	featureFlags *featureflags.Manager
	notifier     *notifications.Notifier
	hub          *notifications.Hub
	events       events.Publisher
	registry     *discovery.ServiceRegistry

	accountService *service.AccountService
	profileService *service.ProfileService
	postService    *service.PostService
	githubService  *service.GitHubService
}

// NewServer connects the backing services from configuration and builds a Server.
func NewServer(ctx context.Context, cfg *config.Config, opts bootstrap.Options) (*Server, error) {
	rt, err := bootstrap.InitRuntime(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}

	registry, err := discovery.NewServiceRegistry(cfg)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("service discovery init failed: %w", err)
	}

	s, err := NewServerWithDeps(cfg, Deps{Store: rt.Store, Redis: rt.Redis, Events: rt.Events})
	if err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}
	s.registry = registry
	return s, nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests use it with an in-memory store.
func NewServerWithDeps(cfg *config.Config, deps Deps) (*Server, error) {
	if deps.Store == nil {
		return nil, errors.New("server requires a store")
	}

	c := cache.New(deps.Redis)
	store := deps.Store.WithCache(c)

	tokens := auth.NewTokenManager(cfg, deps.Redis)
	flags := featureflags.NewManager(cfg.FeatureFlags)
	notifier := notifications.NewNotifier(deps.Redis)
	hub := notifications.NewHub()
	publisher := events.NewFanout(deps.Events, notifications.NewFeedPublisher(hub, notifier, flags))

	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		config:         cfg,
		store:          store,
		redis:          deps.Redis,
		promMiddleware: middleware.InitMetrics(serviceName),
		shutdownCtx:    ctx,
		shutdownFn:     cancel,
		tokens:         tokens,
		rateLimiter:    middleware.NewRateLimiter(deps.Redis, cfg.Env),
		featureFlags:   flags,
		notifier:       notifier,
		hub:            hub,
		events:         publisher,
		accountService: service.NewAccountService(store.Accounts, tokens, publisher),
		profileService: service.NewProfileService(store, publisher),
		postService:    service.NewPostService(store, publisher),
		githubService:  service.NewGitHubService(cfg, c),
	}, nil
}

// App builds the Fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:      "DevConnect API",
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Msg: fe.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled request error",
		slog.String("path", c.Path()), slog.String("error", err.Error()))
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before anything that can short-circuit so error responses still
	// carry the headers browsers need.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://localhost:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, x-auth-token, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Msg: "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	authRequired := middleware.AuthRequired(s.tokens)

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/", s.ReadinessCheck)
	api.Get("/swagger/*", swagger.HandlerDefault)
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{Title: "DevConnect API Metrics"}))

	// Accounts
	api.Post("/users", s.rateLimiter.Limit(5, 10*time.Minute, "register"), s.Register)

	authGroup := api.Group("/auth")
	authGroup.Post("/", s.rateLimiter.LimitWithPolicy(10, 5*time.Minute, middleware.FailClosed, "login"), s.Login)
	authGroup.Get("/", authRequired, s.GetAuthAccount)
	authGroup.Post("/logout", authRequired, s.Logout)
	authGroup.Get("/features", authRequired, s.GetFeatureFlags)

	// Profiles: specific paths before the parameterised ones.
	profiles := api.Group("/profile")
	profiles.Get("/", s.GetProfiles)
	profiles.Get("/me", authRequired, s.GetMyProfile)
	profiles.Get("/user/:user_id", s.GetProfileByUser)
	profiles.Get("/github/:username", s.rateLimiter.Limit(30, time.Minute, "github"), s.GetGitHubRepos)
	profiles.Post("/", authRequired, s.UpsertProfile)
	profiles.Delete("/", authRequired, s.DeleteAccount)
	profiles.Put("/experience", authRequired, s.AddExperience)
	profiles.Delete("/experience/:exp_id", authRequired, s.DeleteExperience)
	profiles.Put("/education", authRequired, s.AddEducation)
	profiles.Delete("/education/:edu_id", authRequired, s.DeleteEducation)

	// Posts
	posts := api.Group("/posts", authRequired)
	posts.Post("/", s.rateLimiter.Limit(10, time.Minute, "create_post"), s.CreatePost)
	posts.Get("/", s.GetPosts)
	posts.Put("/like/:id", s.LikePost)
	posts.Put("/unlike/:id", s.UnlikePost)
	posts.Post("/comment/:id", s.rateLimiter.Limit(20, time.Minute, "create_comment"), s.AddComment)
	posts.Delete("/comment/:id/:comment_id", s.DeleteComment)
	posts.Get("/:id", s.GetPost)
	posts.Delete("/:id", s.DeletePost)

	// Realtime feed
	api.Get("/ws", authRequired, s.requireUpgrade, s.FeedWebsocketHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports whether the store answers. Redis is optional, so its
// absence degrades the report without failing it.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	storeStatus := "healthy"
	if err := s.store.Ping(ctx); err != nil {
		storeStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if storeStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	} else if redisStatus == "unhealthy" {
		overall = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "API Running",
		"status":  overall,
		"checks": fiber.Map{
			"store":   storeStatus,
			"backend": s.store.Backend,
			"redis":   redisStatus,
			"ws":      s.hub.Count(),
		},
		"time": time.Now(),
	})
}

// Start wires the realtime feed, registers with service discovery and listens.
func (s *Server) Start() error {
	app := s.App()

	if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
		middleware.Logger.Warn("realtime feed wiring failed; falling back to local delivery",
			slog.String("error", err.Error()))
	}

	if err := s.registry.Register(); err != nil {
		middleware.Logger.Warn("consul registration failed", slog.String("error", err.Error()))
	}

	middleware.Logger.Info("server starting",
		slog.String("port", s.config.Port), slog.String("backend", s.store.Backend))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownFn()

	if err := s.registry.Deregister(); err != nil {
		middleware.Logger.Warn("consul deregistration failed", slog.String("error", err.Error()))
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down feed hub", slog.String("error", err.Error()))
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	var errs []error
	if s.events != nil {
		errs = append(errs, s.events.Close())
	}
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	errs = append(errs, s.store.Close(ctx))

	middleware.Logger.Info("server shutdown complete")
	return errors.Join(errs...)
}
