package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/braidhq/braid/pkg/memory"
)

// Server is the REST/JSON server for the causal memory engine.
type Server struct {
	config Config
	core   *memory.Core
	logger *zap.Logger
	app    *fiber.App
}

// NewServer creates a new API server.
// The core is injected so both transports can share one engine instance.
func NewServer(config Config, core *memory.Core, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		core:   core,
		logger: logger,
		app:    app,
	}

	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))

	origins := config.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, x-api-key",
	}))

	if config.APIKey != "" {
		app.Use(s.requireAPIKey)
	}

	app.Get("/", s.handleRoot)
	app.Get("/health", s.handleHealth)
	app.Post("/events", s.rateLimiter(config.RateLimitEventsPerMin), s.handleAddEvent)
	app.Post("/events/batch", s.rateLimiter(config.RateLimitEventsPerMin), s.handleAddEventsBatch)
	app.Post("/query", s.rateLimiter(config.RateLimitQueryPerMin), s.handleQuery)
	app.Get("/stats", s.handleStats)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// rateLimiter builds a per-IP fixed-window limiter for one route.
func (s *Server) rateLimiter(perMinute int) fiber.Handler {
	if perMinute <= 0 {
		// No cap configured for this route
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	return limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return writeError(c, memory.KindRateLimited, "rate_limited", "rate limit exceeded, retry later")
		},
	})
}

// requireAPIKey rejects requests without the configured shared key.
func (s *Server) requireAPIKey(c *fiber.Ctx) error {
	if c.Get("x-api-key") != s.config.APIKey {
		return writeError(c, memory.KindUnauthorized, "invalid_api_key", "invalid or missing API key")
	}
	return c.Next()
}
