package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jfbarahonag/mcp-logs/internal/config"
	"github.com/jfbarahonag/mcp-logs/internal/db"
	"github.com/jfbarahonag/mcp-logs/internal/events"
	"github.com/jfbarahonag/mcp-logs/internal/logger"
	"github.com/jfbarahonag/mcp-logs/internal/repositories"
	"github.com/jfbarahonag/mcp-logs/internal/services"
	"github.com/jfbarahonag/mcp-logs/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App holds the dependencies shared by the MCP and REST entry points.
type App struct {
	Config *config.Config
	Log    *zap.Logger
	Pool   *pgxpool.Pool
	Redis  *redis.Client // nil when REDIS_URL is unset or unreachable
	Tools  *services.ToolFacade

	shutdownTracing func(context.Context) error
}

// New loads configuration and wires the log store, renderer and events.
// Neither Postgres nor Redis has to be reachable at startup.
func New(ctx context.Context, serviceName, version string) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Check(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, err
	}
	log = log.With(zap.String("service", serviceName), zap.String("version", version))
	cfg.Validate(log)

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, version, cfg.OTELEndpoint)
	if err != nil {
		log.Warn("tracing disabled", zap.Error(err))
	}

	pool, err := db.NewPostgresPool(ctx, cfg.DBDSN, db.PostgresOptions{
		MaxConns:       cfg.DBMaxConns,
		ConnectTimeout: cfg.DBConnectTimeout,
	}, log)
	if err != nil {
		_ = shutdownTracing(ctx)
		_ = log.Sync()
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	db.Ping(ctx, pool, log)

	var publisher events.Publisher = events.NoopPublisher{}
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Warn("redis unavailable, events and rate limiting are disabled", zap.Error(err))
		rdb = nil
	}
	if rdb != nil {
		publisher = events.NewRedisPublisher(rdb, log)
	}

	logs := services.NewLogService(repositories.NewLogRepo(pool), log)
	renderer := services.NewRenderer(cfg.TemplatesDir, log)

	return &App{
		Config:          cfg,
		Log:             log,
		Pool:            pool,
		Redis:           rdb,
		Tools:           services.NewToolFacade(logs, renderer, publisher, log),
		shutdownTracing: shutdownTracing,
	}, nil
}

// Close releases the pool and the Redis client and flushes spans and logs.
func (a *App) Close(ctx context.Context) {
	a.Pool.Close()
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Log.Warn("close redis", zap.Error(err))
		}
	}
	if err := a.shutdownTracing(ctx); err != nil {
		a.Log.Warn("flush traces", zap.Error(err))
	}
	_ = a.Log.Sync()
}
