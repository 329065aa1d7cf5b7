package repositories

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jfbarahonag/mcp-logs/internal/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/jfbarahonag/mcp-logs/internal/repositories")

const fetchLogsSQL = `
	SELECT id, document_id, event_at, channel, action, ip, branch_code, device_id, meta
	FROM logs
	WHERE document_id = $1
	  AND event_at >= $2
	  AND event_at < $3
	ORDER BY event_at DESC
	LIMIT $4
`

type LogRepo struct {
	pool *pgxpool.Pool
}

func NewLogRepo(pool *pgxpool.Pool) *LogRepo {
	return &LogRepo{pool: pool}
}

// FetchByDocument runs one bounded query for q. The connection is acquired
// for this call only and released on every return path.
func (r *LogRepo) FetchByDocument(ctx context.Context, q models.QueryRange) (_ []models.LogEntry, err error) {
	ctx, span := tracer.Start(ctx, "LogRepo.FetchByDocument")
	span.SetAttributes(
		attribute.String("logs.document_id", q.DocumentID),
		attribute.Int("logs.limit", q.Limit),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, models.ErrorKind(err))
		}
		span.End()
	}()

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: acquire connection: %w", models.ErrStoreUnavailable, err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, fetchLogsSQL, q.DocumentID, q.Start, q.End, q.Limit)
	if err != nil {
		return nil, classifyStoreError("query logs", err)
	}
	defer rows.Close()

	logs := make([]models.LogEntry, 0)
	for rows.Next() {
		var l models.LogEntry
		if err := rows.Scan(&l.ID, &l.DocumentID, &l.EventAt, &l.Channel, &l.Action,
			&l.IP, &l.BranchCode, &l.DeviceID, &l.Meta); err != nil {
			return nil, fmt.Errorf("%w: scan log row: %w", models.ErrStoreQuery, err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyStoreError("read logs", err)
	}

	span.SetAttributes(attribute.Int("logs.rows", len(logs)))
	return logs, nil
}

// classifyStoreError splits driver errors into the two store kinds: anything
// the server reported about the statement is a query error, transport
// failures mean the store is unavailable.
func classifyStoreError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%w: %s: %w", models.ErrStoreQuery, op, err)
	}
	if isConnectionError(err) {
		return fmt.Errorf("%w: %s: %w", models.ErrStoreUnavailable, op, err)
	}
	return fmt.Errorf("%w: %s: %w", models.ErrStoreQuery, op, err)
}

func isConnectionError(err error) bool {
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if pgconn.Timeout(err) {
		return true
	}
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
