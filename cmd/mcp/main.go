package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jfbarahonag/mcp-logs/internal/app"
	"github.com/jfbarahonag/mcp-logs/internal/mcpserver"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, mcpserver.ServerName, version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}

	err = mcpserver.Run(ctx, mcpserver.Config{
		Transport: a.Config.MCPTransport,
		HTTPAddr:  a.Config.MCPHTTPAddr,
		Version:   version,
	}, a.Tools, a.Log)

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err != nil {
		a.Log.Error("MCP server stopped", zap.Error(err))
		a.Close(closeCtx)
		os.Exit(1)
	}
	a.Log.Info("MCP server stopped")
	a.Close(closeCtx)
}
