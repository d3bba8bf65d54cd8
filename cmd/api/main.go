package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jortega/routesketch/internal/adapters/directions"
	"github.com/jortega/routesketch/internal/adapters/elevation"
	"github.com/jortega/routesketch/internal/adapters/http"
	natsadapter "github.com/jortega/routesketch/internal/adapters/nats"
	"github.com/jortega/routesketch/internal/adapters/valkey"
	"github.com/jortega/routesketch/internal/core/ports"
	"github.com/jortega/routesketch/internal/core/usecases"
	"github.com/jortega/routesketch/internal/pkg/config"
	"github.com/jortega/routesketch/internal/pkg/logging"
	"github.com/jortega/routesketch/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("routesketch-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	tracer, err := telemetry.Init(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr, cfg.Telemetry.Enabled)
	if err != nil {
		slog.Warn("telemetry init failed", "error", err)
	} else {
		defer func() {
			shutdownCtx, c := context.WithTimeout(context.Background(), 5*time.Second)
			defer c()
			_ = tracer.Shutdown(shutdownCtx)
		}()
	}

	// Cache
	var cache *valkey.Cache
	if cfg.Valkey.Enabled {
		cache, err = valkey.New(cfg.Valkey.Addr, "routesketch")
		if err != nil {
			slog.Warn("valkey unavailable, paths will not be cached", "error", err)
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	// Directions gateway, cache-wrapped when the cache is up
	var gateway ports.DirectionsGateway = directions.NewClient(
		cfg.Directions.BaseURL,
		cfg.Directions.AccessToken,
		time.Duration(cfg.Directions.TimeoutSecs)*time.Second,
	)
	if cache != nil {
		gateway = directions.NewCachedGateway(gateway, cache,
			time.Duration(cfg.Directions.CacheTTL)*time.Second)
	}

	// Elevation
	var elevationSvc ports.ElevationService
	if cfg.Elevation.Enabled {
		elevationSvc = elevation.NewClient(cfg.Elevation.BaseURL,
			time.Duration(cfg.Elevation.TimeoutSecs)*time.Second)
	}

	// Route editor
	editor := usecases.NewEditor(gateway, elevationSvc, cfg.Directions.Profile, cfg.Directions.WalkwayBias)

	// WebSocket hub observes every committed mutation
	hub := http.NewHub()
	editor.AddPublisher(hub)

	// NATS snapshot fan-out for other instances/display surfaces
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, snapshots stay local", "error", err)
	} else {
		defer publisher.Close()
		editor.AddPublisher(publisher)

		subscriber, err := natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats subscribe unavailable", "error", err)
		} else {
			defer subscriber.Close()
			if err := subscriber.SubscribeSnapshots(ctx, hub.Relay); err != nil {
				slog.Warn("snapshot relay unavailable", "error", err)
			}
		}
	}

	// Raw NATS connection for readiness checks
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats health conn unavailable", "error", err)
	}

	deps := &http.Dependencies{
		Editor: editor,
		Hub:    hub,
		NATS:   natsConn,
		Cache:  cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    256 * 1024, // gestures are tiny; keep bodies small
		AppName:      "RouteSketch API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
