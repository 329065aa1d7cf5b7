package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jfbarahonag/mcp-logs/internal/events"
	"github.com/jfbarahonag/mcp-logs/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, 3, 15, 13, 45, 0, 0, time.UTC)

type facadeFixture struct {
	store     *memoryStore
	publisher *recordingPublisher
	facade    *ToolFacade
}

func newFacadeFixture(t *testing.T, entries ...models.LogEntry) facadeFixture {
	t.Helper()
	store := &memoryStore{entries: entries}
	publisher := &recordingPublisher{}
	log := zap.NewNop()

	facade := NewToolFacade(NewLogService(store, log), NewRenderer(shippedTemplates, log), publisher, log)
	facade.now = func() time.Time { return fixedNow }
	return facadeFixture{store: store, publisher: publisher, facade: facade}
}

func TestGetUserLogsEmpty(t *testing.T) {
	fx := newFacadeFixture(t)

	res, err := fx.facade.GetUserLogs(context.Background(), GetUserLogsInput{
		DocumentID: "999",
		StartDate:  strPtr("2024-01-01"),
		EndDate:    strPtr("2024-01-31"),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Count)
	assert.NotNil(t, res.Rows)
	assert.Empty(t, res.Rows)
}

func TestGetUserLogsRows(t *testing.T) {
	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	ip := "10.0.0.1"
	e := entry(7, "123", at, "web", "login")
	e.IP = &ip
	e.Meta = map[string]any{"ua": "x"}
	fx := newFacadeFixture(t, e, entry(8, "456", at, "web", "login"))

	res, err := fx.facade.GetUserLogs(context.Background(), GetUserLogsInput{
		DocumentID: "123",
		StartDate:  strPtr("2024-01-01"),
		EndDate:    strPtr("2024-01-01"),
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.Count)
	require.Len(t, res.Rows, 1)

	row := res.Rows[0]
	assert.Equal(t, int64(7), row.ID)
	assert.Equal(t, "2024-01-01T10:00:00Z", row.EventAt)
	assert.Equal(t, "10.0.0.1", *row.IP)
	assert.Nil(t, row.BranchCode)
	assert.Equal(t, map[string]any{"ua": "x"}, row.Meta)

	q := fx.store.queries[0]
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), q.Start)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), q.End)
}

func TestGetUserLogsLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit *int
		want  int
	}{
		{"absent", nil, 100},
		{"zero", intPtr(0), 1},
		{"negative", intPtr(-5), 1},
		{"in range", intPtr(25), 25},
		{"too large", intPtr(9999), 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFacadeFixture(t)
			_, err := fx.facade.GetUserLogs(context.Background(), GetUserLogsInput{DocumentID: "1", Limit: tt.limit})
			require.NoError(t, err)
			require.Len(t, fx.store.queries, 1)
			assert.Equal(t, tt.want, fx.store.queries[0].Limit)
		})
	}
}

func TestGetUserLogsLimitTruncates(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var entries []models.LogEntry
	for i := range 5 {
		entries = append(entries, entry(int64(i+1), "1", base.Add(time.Duration(i)*time.Hour), "web", "view"))
	}
	fx := newFacadeFixture(t, entries...)

	res, err := fx.facade.GetUserLogs(context.Background(), GetUserLogsInput{DocumentID: "1", Limit: intPtr(2)})
	require.NoError(t, err)
	require.Equal(t, 2, res.Count)
	assert.Equal(t, int64(5), res.Rows[0].ID)
	assert.Equal(t, int64(4), res.Rows[1].ID)
}

func TestGetUserLogsDefaultWindow(t *testing.T) {
	fx := newFacadeFixture(t)

	_, err := fx.facade.GetUserLogs(context.Background(), GetUserLogsInput{DocumentID: "1", StartDate: strPtr(""), EndDate: nil})
	require.NoError(t, err)

	q := fx.store.queries[0]
	assert.Equal(t, fixedNow.Add(-30*24*time.Hour), q.Start)
	assert.Equal(t, time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC), q.End)
}

func TestGetUserLogsIdempotent(t *testing.T) {
	at := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	fx := newFacadeFixture(t, entry(1, "1", at, "web", "login"), entry(2, "1", at.Add(time.Minute), "app", "view"))
	in := GetUserLogsInput{DocumentID: "1", StartDate: strPtr("2024-03-01")}

	first, err := fx.facade.GetUserLogs(context.Background(), in)
	require.NoError(t, err)
	second, err := fx.facade.GetUserLogs(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestToolsRejectInvalidInputBeforeStore(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		start *string
		end   *string
		want  error
	}{
		{"blank document", "  ", nil, nil, models.ErrInvalidArgument},
		{"bad start", "1", strPtr("2024/01/01"), nil, models.ErrInvalidDateFormat},
		{"bad end", "1", nil, strPtr("2024-02-30"), models.ErrInvalidDateFormat},
		{"datetime end", "1", nil, strPtr("2024-02-01T00:00:00Z"), models.ErrInvalidDateFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFacadeFixture(t)

			_, err := fx.facade.GetUserLogs(context.Background(), GetUserLogsInput{DocumentID: tt.doc, StartDate: tt.start, EndDate: tt.end})
			assert.ErrorIs(t, err, tt.want)

			report, err := fx.facade.BuildReport(context.Background(), BuildReportInput{DocumentID: tt.doc, StartDate: tt.start, EndDate: tt.end})
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, report)

			assert.Empty(t, fx.store.queries)
			assert.Empty(t, fx.publisher.events)
		})
	}
}

func TestToolsPassStoreErrorsThrough(t *testing.T) {
	storeErr := fmt.Errorf("%w: acquire connection: dial tcp: refused", models.ErrStoreUnavailable)
	fx := newFacadeFixture(t)
	fx.store.err = storeErr

	_, err := fx.facade.GetUserLogs(context.Background(), GetUserLogsInput{DocumentID: "1"})
	assert.Same(t, storeErr, err)

	report, err := fx.facade.BuildReport(context.Background(), BuildReportInput{DocumentID: "1"})
	assert.Same(t, storeErr, err)
	assert.Empty(t, report)
	assert.Empty(t, fx.publisher.events)
}

func TestBuildReport(t *testing.T) {
	at := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	fx := newFacadeFixture(t,
		entry(1, "123", at, "web", "login"),
		entry(2, "123", at.Add(time.Hour), "web", "logout"),
		entry(3, "123", at.Add(2*time.Hour), "app", "login"),
	)

	report, err := fx.facade.BuildReport(context.Background(), BuildReportInput{DocumentID: "123", StartDate: strPtr("2024-03-01")})
	require.NoError(t, err)

	require.Len(t, fx.store.queries, 1)
	assert.Equal(t, models.MaxQueryLimit, fx.store.queries[0].Limit)

	assert.Contains(t, report, "# Activity report: 123")
	assert.Contains(t, report, "Generated at: 2024-03-15T13:45:00Z")
	assert.Contains(t, report, "Period: 2024-03-01 to today")
	assert.Contains(t, report, "- Total events: 3")
	assert.Contains(t, report, "- web: 2")
	assert.Contains(t, report, "- app: 1")
	assert.Contains(t, report, "- login: 2")
	assert.Contains(t, report, "- First event: 2024-03-10T08:00:00Z")
	assert.Contains(t, report, "- Last event: 2024-03-10T10:00:00Z")
}

func TestBuildReportEmpty(t *testing.T) {
	fx := newFacadeFixture(t)

	report, err := fx.facade.BuildReport(context.Background(), BuildReportInput{DocumentID: "999", TemplateName: strPtr("")})
	require.NoError(t, err)
	assert.Contains(t, report, "- Total events: 0")
	assert.Contains(t, report, "_No events in this period._")
}

func TestBuildReportUnknownTemplate(t *testing.T) {
	fx := newFacadeFixture(t, entry(1, "123", fixedNow.Add(-time.Hour), "web", "login"))

	report, err := fx.facade.BuildReport(context.Background(), BuildReportInput{DocumentID: "123", TemplateName: strPtr("nope.md.j2")})
	assert.ErrorIs(t, err, models.ErrTemplateNotFound)
	assert.Equal(t, models.KindTemplateNotFound, models.ErrorKind(err))
	assert.Empty(t, report)
	assert.Empty(t, fx.publisher.events)
}

func TestToolsPublishEvents(t *testing.T) {
	fx := newFacadeFixture(t, entry(1, "123", fixedNow.Add(-time.Hour), "web", "login"))

	_, err := fx.facade.GetUserLogs(context.Background(), GetUserLogsInput{DocumentID: "123"})
	require.NoError(t, err)
	_, err = fx.facade.BuildReport(context.Background(), BuildReportInput{DocumentID: "123"})
	require.NoError(t, err)

	require.Len(t, fx.publisher.events, 2)
	assert.Equal(t, events.EventLogsFetched, fx.publisher.events[0].Type)
	assert.Equal(t, "123", fx.publisher.events[0].Payload["document_id"])
	assert.Equal(t, 1, fx.publisher.events[0].Payload["count"])

	assert.Equal(t, events.EventReportBuilt, fx.publisher.events[1].Type)
	assert.Equal(t, DefaultReportTemplate, fx.publisher.events[1].Payload["template"])
	assert.Equal(t, 1, fx.publisher.events[1].Payload["total"])
}

func TestToolsIgnorePublishFailures(t *testing.T) {
	fx := newFacadeFixture(t, entry(1, "123", fixedNow.Add(-time.Hour), "web", "login"))
	fx.publisher.err = errors.New("redis: connection refused")

	res, err := fx.facade.GetUserLogs(context.Background(), GetUserLogsInput{DocumentID: "123"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)

	report, err := fx.facade.BuildReport(context.Background(), BuildReportInput{DocumentID: "123"})
	require.NoError(t, err)
	assert.NotEmpty(t, report)
}

func TestNewToolFacadeDefaultsPublisher(t *testing.T) {
	f := NewToolFacade(nil, nil, nil, zap.NewNop())
	assert.IsType(t, events.NoopPublisher{}, f.publisher)
}

func TestToolsUseInvocationIDFromContext(t *testing.T) {
	fx := newFacadeFixture(t, entry(1, "123", fixedNow.Add(-time.Hour), "web", "login"))
	ctx := ContextWithInvocationID(context.Background(), "req-42")

	_, err := fx.facade.GetUserLogs(ctx, GetUserLogsInput{DocumentID: "123"})
	require.NoError(t, err)
	_, err = fx.facade.BuildReport(ctx, BuildReportInput{DocumentID: "123"})
	require.NoError(t, err)

	require.Len(t, fx.publisher.events, 2)
	for _, e := range fx.publisher.events {
		assert.Equal(t, "req-42", e.Payload["invocation_id"], e.Type)
	}
}

func TestToolsGenerateInvocationIDPerCall(t *testing.T) {
	fx := newFacadeFixture(t)

	for range 2 {
		_, err := fx.facade.GetUserLogs(context.Background(), GetUserLogsInput{DocumentID: "123"})
		require.NoError(t, err)
	}

	require.Len(t, fx.publisher.events, 2)
	first, _ := fx.publisher.events[0].Payload["invocation_id"].(string)
	second, _ := fx.publisher.events[1].Payload["invocation_id"].(string)
	assert.NotEmpty(t, first)
	assert.NotEmpty(t, second)
	assert.NotEqual(t, first, second)
}
