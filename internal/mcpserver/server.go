package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/jfbarahonag/mcp-logs/internal/config"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

const (
	ServerName = "mcp-logs-reporter"

	defaultHTTPAddr        = "localhost:8081"
	defaultShutdownTimeout = 10 * time.Second
)

type Config struct {
	Transport string
	HTTPAddr  string
	Version   string
}

// NewServer builds an MCP server exposing get_user_logs and build_report.
func NewServer(tools ToolService, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: version}, nil)
	mcp.AddTool(server, GetUserLogsTool(), GetUserLogsHandler(tools))
	mcp.AddTool(server, BuildReportTool(), BuildReportHandler(tools))
	return server
}

// Run serves the tools over the configured transport and blocks until the
// client disconnects or ctx is cancelled.
func Run(ctx context.Context, cfg Config, tools ToolService, log *zap.Logger) error {
	if cfg.Transport == "" {
		cfg.Transport = config.TransportStdio
	}
	server := NewServer(tools, cfg.Version)

	switch cfg.Transport {
	case config.TransportStdio:
		log.Info("MCP server listening on stdio")
		return serve(ctx, server, &mcp.StdioTransport{})
	case config.TransportHTTP:
		addr := cfg.HTTPAddr
		if addr == "" {
			addr = defaultHTTPAddr
		}
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		log.Info("MCP server listening on HTTP", zap.String("addr", listener.Addr().String()))
		return serveHTTP(ctx, server, listener, log)
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
}

func serve(ctx context.Context, server *mcp.Server, transport mcp.Transport) error {
	err := server.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// serveHTTP mounts the streamable HTTP handler on listener and shuts the
// server down gracefully once ctx ends.
func serveHTTP(ctx context.Context, server *mcp.Server, listener net.Listener, log *zap.Logger) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil)

	mux := http.NewServeMux()
	mux.Handle("/mcp", handler)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	httpServer := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve MCP over HTTP: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down MCP HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		// Long-lived SSE streams can outlast the grace period.
		log.Warn("forcing MCP HTTP server close", zap.Error(err))
		_ = httpServer.Close()
	}
	return nil
}
