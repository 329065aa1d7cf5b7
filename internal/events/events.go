package events

import "context"

const StreamLogs = "events:logs"

// Event types
const (
	EventLogsFetched = "logs_fetched"
	EventReportBuilt = "report_built"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}

// NoopPublisher drops events; used when Redis is not configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, Event) error { return nil }
