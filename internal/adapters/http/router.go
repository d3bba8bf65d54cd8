package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/jortega/routesketch/internal/pkg/metrics"
)

// SetupRoutes registers all REST and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: editing is pointer-driven, one user clicks a few times
	// a second at most; 300/min absorbs drag bursts.
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{
				"error":   "rate limit exceeded",
				"message": "too many requests, please try again later",
			})
		},
		SkipFailedRequests: false,
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional route reads
	app.Use(ETagMiddleware())

	// Health & readiness (no timeout — fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// REST API v1 — mutations may await the directions provider, so they
	// get a generous per-request timeout.
	v1 := app.Group("/v1")
	v1.Get("/route", GetRouteHandler(deps))
	v1.Post("/route/points", timeout.NewWithContext(AddPointHandler(deps), 15*time.Second))
	v1.Delete("/route/points/:id", timeout.NewWithContext(DeletePointHandler(deps), 15*time.Second))
	v1.Post("/route/points/:id/drag-start", StartDragHandler(deps))
	v1.Post("/route/points/:id/drag-cancel", CancelDragHandler(deps))
	v1.Post("/route/points/:id/drag-end", timeout.NewWithContext(DragEndHandler(deps), 15*time.Second))
	v1.Post("/route/points/:id/select", ToggleSelectHandler(deps))
	v1.Post("/route/lines/:id/split", timeout.NewWithContext(SplitLineHandler(deps), 15*time.Second))
	v1.Post("/route/out-and-back", OutAndBackHandler(deps))
	v1.Post("/route/edit/begin", BeginEditHandler(deps))
	v1.Post("/route/edit/finish", FinishEditHandler(deps))
	v1.Post("/route/edit/cancel", CancelEditHandler(deps))
	v1.Post("/route/undo", timeout.NewWithContext(UndoHandler(deps), 15*time.Second))

	// WebSocket snapshot stream
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.Hub)))
}
