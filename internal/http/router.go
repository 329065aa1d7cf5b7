package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jfbarahonag/mcp-logs/internal/http/dto"
	"github.com/jfbarahonag/mcp-logs/internal/http/handlers"
	"github.com/jfbarahonag/mcp-logs/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewApp returns the fiber app the REST mirror runs on. Immutable keeps
// params, query values and headers valid after the handler returns; they
// outlive the request as metric labels and span attributes.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{
		Immutable:             true,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(dto.ErrorResponse{Error: err.Error()})
		},
	})
}

type RouterConfig struct {
	// RateLimitPerMinute applies per path and client IP. Zero disables it, as
	// does a nil Redis client.
	RateLimitPerMinute int
}

func SetupRouter(
	app *fiber.App,
	cfg RouterConfig,
	log *zap.Logger,
	rdb *redis.Client,
	healthHandler *handlers.HealthHandler,
	logsHandler *handlers.LogsHandler,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	app.Get("/health", healthHandler.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1")

	if rdb != nil && cfg.RateLimitPerMinute > 0 {
		api.Use(middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute))
	}

	api.Get("/users/:document_id/logs", logsHandler.GetUserLogs)
	api.Get("/users/:document_id/report", logsHandler.BuildReport)
}
