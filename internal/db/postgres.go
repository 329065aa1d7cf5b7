package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type PostgresOptions struct {
	MaxConns       int32
	ConnectTimeout time.Duration
}

// NewPostgresPool opens the pool the log repository acquires connections
// from. Connections are created lazily; MinConns stays at zero so an idle
// process holds nothing open.
func NewPostgresPool(ctx context.Context, dsn string, opts PostgresOptions, log *zap.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	cfg.MinConns = 0
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute
	if opts.ConnectTimeout > 0 {
		cfg.ConnConfig.ConnectTimeout = opts.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	log.Info("postgres pool created",
		zap.String("host", cfg.ConnConfig.Host),
		zap.String("database", cfg.ConnConfig.Database),
		zap.Int32("max_conns", cfg.MaxConns),
	)
	return pool, nil
}

// Ping checks reachability without failing startup; the store may come up
// after the server does.
func Ping(ctx context.Context, pool *pgxpool.Pool, log *zap.Logger) {
	if err := pool.Ping(ctx); err != nil {
		log.Warn("postgres is not reachable yet", zap.Error(err))
		return
	}
	log.Info("postgres reachable")
}
