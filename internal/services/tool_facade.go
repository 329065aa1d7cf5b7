package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jfbarahonag/mcp-logs/internal/events"
	"github.com/jfbarahonag/mcp-logs/internal/metrics"
	"github.com/jfbarahonag/mcp-logs/internal/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	ToolGetUserLogs = "get_user_logs"
	ToolBuildReport = "build_report"
)

var tracer = otel.Tracer("github.com/jfbarahonag/mcp-logs/internal/services")

type GetUserLogsInput struct {
	DocumentID string  `json:"document_id" jsonschema:"user national ID / document number"`
	StartDate  *string `json:"start_date,omitempty" jsonschema:"first day to include, YYYY-MM-DD"`
	EndDate    *string `json:"end_date,omitempty" jsonschema:"last day to include, YYYY-MM-DD"`
	Limit      *int    `json:"limit,omitempty" jsonschema:"maximum rows to return (1-500, default 100)"`
}

type GetUserLogsResult struct {
	Count int             `json:"count"`
	Rows  []models.LogRow `json:"rows"`
}

type BuildReportInput struct {
	DocumentID   string  `json:"document_id" jsonschema:"user national ID / document number"`
	StartDate    *string `json:"start_date,omitempty" jsonschema:"first day to include, YYYY-MM-DD"`
	EndDate      *string `json:"end_date,omitempty" jsonschema:"last day to include, YYYY-MM-DD"`
	TemplateName *string `json:"template_name,omitempty" jsonschema:"template file name under the templates directory (default report.md.j2)"`
}

// LogFetcher is the query side the facade runs; *LogService implements it.
type LogFetcher interface {
	Fetch(ctx context.Context, q models.QueryRange) ([]models.LogEntry, error)
}

// ReportRenderer turns a summary and its rows into report text; *Renderer
// implements it.
type ReportRenderer interface {
	Render(templateName, documentID string, generatedAt time.Time, summary models.ReportSummary, rows []models.LogEntry) (string, error)
}

// ToolFacade is the entry point shared by the MCP tools and the REST
// handlers. It holds no per-request state.
type ToolFacade struct {
	logs      LogFetcher
	renderer  ReportRenderer
	publisher events.Publisher
	now       func() time.Time
	log       *zap.Logger
}

// NewToolFacade falls back to a no-op publisher when publisher is nil.
func NewToolFacade(logs LogFetcher, renderer ReportRenderer, publisher events.Publisher, log *zap.Logger) *ToolFacade {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &ToolFacade{
		logs:      logs,
		renderer:  renderer,
		publisher: publisher,
		now:       time.Now,
		log:       log,
	}
}

// GetUserLogs returns up to limit entries for the document, newest first.
// An absent limit means 100; out-of-range values are clamped to [1, 500].
func (f *ToolFacade) GetUserLogs(ctx context.Context, in GetUserLogsInput) (result GetUserLogsResult, err error) {
	ctx, done := f.begin(ctx, ToolGetUserLogs, in.DocumentID)
	defer func() { done(err, zap.Int("count", result.Count)) }()

	if err := requireDocumentID(in.DocumentID); err != nil {
		return GetUserLogsResult{}, err
	}

	limit := models.DefaultQueryLimit
	if in.Limit != nil {
		limit = models.ClampLimit(*in.Limit)
	}

	start, end, err := ResolveRange(in.StartDate, in.EndDate, f.now())
	if err != nil {
		return GetUserLogsResult{}, err
	}

	entries, err := f.logs.Fetch(ctx, models.QueryRange{DocumentID: in.DocumentID, Start: start, End: end, Limit: limit})
	if err != nil {
		return GetUserLogsResult{}, err
	}

	rows := make([]models.LogRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, e.Row())
	}

	f.publish(ctx, events.EventLogsFetched, map[string]any{
		"document_id": in.DocumentID,
		"count":       len(rows),
		"start":       start.Format(time.RFC3339),
		"end":         end.Format(time.RFC3339),
	})
	return GetUserLogsResult{Count: len(rows), Rows: rows}, nil
}

// BuildReport renders a report over up to 500 entries, whatever limit the
// caller may use elsewhere.
func (f *ToolFacade) BuildReport(ctx context.Context, in BuildReportInput) (report string, err error) {
	ctx, done := f.begin(ctx, ToolBuildReport, in.DocumentID)
	defer func() { done(err, zap.Int("bytes", len(report))) }()

	if err := requireDocumentID(in.DocumentID); err != nil {
		return "", err
	}

	templateName := DefaultReportTemplate
	if in.TemplateName != nil && *in.TemplateName != "" {
		templateName = *in.TemplateName
	}

	start, end, err := ResolveRange(in.StartDate, in.EndDate, f.now())
	if err != nil {
		return "", err
	}

	entries, err := f.logs.Fetch(ctx, models.QueryRange{DocumentID: in.DocumentID, Start: start, End: end, Limit: models.MaxQueryLimit})
	if err != nil {
		return "", err
	}

	summary := Aggregate(entries, models.Period{Start: in.StartDate, End: in.EndDate})

	report, err = f.renderer.Render(templateName, in.DocumentID, f.now(), summary, entries)
	if err != nil {
		return "", err
	}

	f.publish(ctx, events.EventReportBuilt, map[string]any{
		"document_id": in.DocumentID,
		"template":    templateName,
		"total":       summary.Total,
	})
	return report, nil
}

// begin opens the span, metrics and log context of one invocation. The
// returned func records the outcome.
func (f *ToolFacade) begin(ctx context.Context, tool, documentID string) (context.Context, func(error, ...zap.Field)) {
	invocationID := InvocationIDFromContext(ctx)
	if invocationID == "" {
		invocationID = uuid.NewString()
		ctx = ContextWithInvocationID(ctx, invocationID)
	}
	started := time.Now()

	ctx, span := tracer.Start(ctx, "tool."+tool, trace.WithAttributes(
		attribute.String("tool.name", tool),
		attribute.String("tool.invocation_id", invocationID),
		attribute.String("logs.document_id", documentID),
	))

	log := f.log.With(
		zap.String("tool", tool),
		zap.String("invocation_id", invocationID),
		zap.String("document_id", documentID),
	)

	return ctx, func(err error, fields ...zap.Field) {
		elapsed := time.Since(started)
		metrics.ToolCallDuration.WithLabelValues(tool).Observe(elapsed.Seconds())

		outcome := "ok"
		if err != nil {
			outcome = models.ErrorKind(err)
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
			log.Warn("tool call failed", zap.String("kind", outcome), zap.Duration("latency", elapsed), zap.Error(err))
		} else {
			log.Info("tool call", append(fields, zap.Duration("latency", elapsed))...)
		}
		metrics.ToolCallsTotal.WithLabelValues(tool, outcome).Inc()
		span.End()
	}
}

// publish is best effort: a lost event is logged and counted, never returned.
func (f *ToolFacade) publish(ctx context.Context, eventType string, payload map[string]any) {
	payload["invocation_id"] = InvocationIDFromContext(ctx)
	if err := f.publisher.Publish(ctx, events.StreamLogs, events.Event{Type: eventType, Payload: payload}); err != nil {
		metrics.EventsPublishFailed.Inc()
		f.log.Warn("failed to publish event", zap.String("type", eventType), zap.Error(err))
	}
}

type invocationIDKey struct{}

// ContextWithInvocationID makes id the invocation id of tool calls made with
// the returned context, so a caller's request id follows the call into logs,
// spans and events.
func ContextWithInvocationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, invocationIDKey{}, id)
}

func InvocationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(invocationIDKey{}).(string)
	return id
}

func requireDocumentID(documentID string) error {
	if strings.TrimSpace(documentID) == "" {
		return fmt.Errorf("%w: document_id is required", models.ErrInvalidArgument)
	}
	return nil
}
