package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jfbarahonag/mcp-logs/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLogServiceRejectsOutOfRangeLimit(t *testing.T) {
	for _, limit := range []int{-1, 0, 501, 10000} {
		t.Run(fmt.Sprint(limit), func(t *testing.T) {
			store := &memoryStore{}
			svc := NewLogService(store, zap.NewNop())

			_, err := svc.Fetch(context.Background(), models.QueryRange{DocumentID: "1", Limit: limit})
			assert.ErrorIs(t, err, models.ErrInvalidArgument)
			assert.Empty(t, store.queries, "store must not be queried")
		})
	}
}

func TestLogServiceRejectsBlankDocument(t *testing.T) {
	store := &memoryStore{}
	_, err := NewLogService(store, zap.NewNop()).Fetch(context.Background(), models.QueryRange{DocumentID: "  ", Limit: 10})
	assert.ErrorIs(t, err, models.ErrInvalidArgument)
	assert.Empty(t, store.queries)
}

func TestLogServicePassesStoreErrorsThrough(t *testing.T) {
	storeErr := fmt.Errorf("%w: acquire connection: dial tcp: refused", models.ErrStoreUnavailable)
	store := &memoryStore{err: storeErr}

	_, err := NewLogService(store, zap.NewNop()).Fetch(context.Background(), models.QueryRange{DocumentID: "1", Limit: 1})
	assert.Same(t, storeErr, err)
	assert.Len(t, store.queries, 1, "no retry")
}

func TestLogServiceFetch(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := &memoryStore{entries: []models.LogEntry{
		entry(1, "1", base.Add(1*time.Hour), "web", "login"),
		entry(2, "1", base.Add(3*time.Hour), "app", "login"),
		entry(3, "1", base.Add(2*time.Hour), "web", "logout"),
	}}
	svc := NewLogService(store, zap.NewNop())

	logs, err := svc.Fetch(context.Background(), models.QueryRange{DocumentID: "1", Start: base, End: base.Add(24 * time.Hour), Limit: 2})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, int64(2), logs[0].ID)
	assert.Equal(t, int64(3), logs[1].ID)
}
