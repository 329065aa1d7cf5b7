package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ToolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcp_logs_tool_calls_total",
			Help: "Total number of tool invocations by outcome",
		},
		[]string{"tool", "outcome"}, // outcome: ok or an error kind
	)

	ToolCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mcp_logs_tool_call_duration_seconds",
			Help:    "Tool invocation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"tool"},
	)

	LogRowsFetched = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mcp_logs_rows_fetched",
			Help:    "Rows returned by a single log query",
			Buckets: []float64{0, 1, 10, 50, 100, 250, 500},
		},
	)

	ReportsRendered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcp_logs_reports_rendered_total",
			Help: "Reports rendered by template and outcome",
		},
		[]string{"template", "outcome"},
	)

	EventsPublishFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mcp_logs_events_publish_failed_total",
			Help: "Events that could not be published",
		},
	)
)
