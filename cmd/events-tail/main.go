package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jfbarahonag/mcp-logs/internal/config"
	"github.com/jfbarahonag/mcp-logs/internal/db"
	"github.com/jfbarahonag/mcp-logs/internal/events"
	"github.com/jfbarahonag/mcp-logs/internal/logger"
	"go.uber.org/zap"
)

// events-tail subscribes to the tool events published on Redis and writes
// each one as a log line, as an audit trail of who was looked up and when.

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if cfg.RedisURL == "" {
		log.Fatal("REDIS_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	subscriber := events.NewRedisSubscriber(rdb, log)
	if err := subscriber.Subscribe(ctx, events.StreamLogs, func(event events.Event) {
		log.Info("tool event",
			zap.String("type", event.Type),
			zap.Any("document_id", event.Payload["document_id"]),
			zap.Any("payload", event.Payload),
		)
	}); err != nil {
		log.Fatal("failed to subscribe", zap.String("stream", events.StreamLogs), zap.Error(err))
	}

	log.Info("events-tail started", zap.String("stream", events.StreamLogs))
	<-ctx.Done()
	log.Info("shutting down events-tail")
}
