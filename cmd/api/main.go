package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jfbarahonag/mcp-logs/internal/app"
	apphttp "github.com/jfbarahonag/mcp-logs/internal/http"
	"github.com/jfbarahonag/mcp-logs/internal/http/handlers"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, "mcp-logs-api", version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}
	log := a.Log
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		a.Close(closeCtx)
	}()

	// Fiber app
	server := apphttp.NewApp()

	apphttp.SetupRouter(server, apphttp.RouterConfig{RateLimitPerMinute: a.Config.RateLimitPerMinute}, log, a.Redis,
		handlers.NewHealthHandler(a.Pool),
		handlers.NewLogsHandler(a.Tools, log),
	)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = server.ShutdownWithTimeout(10 * time.Second)
	}()

	addr := fmt.Sprintf(":%s", a.Config.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := server.Listen(addr); err != nil {
		log.Error("server error", zap.Error(err))
	}
}
