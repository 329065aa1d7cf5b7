package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/jfbarahonag/mcp-logs/internal/metrics"
	"github.com/jfbarahonag/mcp-logs/internal/models"
	"go.uber.org/zap"
)

// LogStore is implemented by repositories.LogRepo.
type LogStore interface {
	FetchByDocument(ctx context.Context, q models.QueryRange) ([]models.LogEntry, error)
}

// LogService enforces the query bounds in front of the log store.
type LogService struct {
	store LogStore
	log   *zap.Logger
}

// NewLogService wraps store; it keeps no state between calls.
func NewLogService(store LogStore, log *zap.Logger) *LogService {
	return &LogService{store: store, log: log}
}

// Fetch returns at most q.Limit entries newest first. The limit must already
// be within [1, 500]; callers facing users clamp before getting here.
// Store errors are returned as they come, without retry.
func (s *LogService) Fetch(ctx context.Context, q models.QueryRange) ([]models.LogEntry, error) {
	if !models.IsValidLimit(q.Limit) {
		return nil, fmt.Errorf("%w: limit %d outside [%d, %d]", models.ErrInvalidArgument, q.Limit, models.MinQueryLimit, models.MaxQueryLimit)
	}
	if strings.TrimSpace(q.DocumentID) == "" {
		return nil, fmt.Errorf("%w: document_id is required", models.ErrInvalidArgument)
	}

	logs, err := s.store.FetchByDocument(ctx, q)
	if err != nil {
		s.log.Error("failed to fetch logs",
			zap.String("document_id", q.DocumentID),
			zap.String("kind", models.ErrorKind(err)),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.LogRowsFetched.Observe(float64(len(logs)))
	s.log.Debug("logs fetched",
		zap.String("document_id", q.DocumentID),
		zap.Time("start", q.Start),
		zap.Time("end", q.End),
		zap.Int("limit", q.Limit),
		zap.Int("rows", len(logs)),
	)
	return logs, nil
}
