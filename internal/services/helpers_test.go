package services

import (
	"context"
	"sort"
	"time"

	"github.com/jfbarahonag/mcp-logs/internal/events"
	"github.com/jfbarahonag/mcp-logs/internal/models"
)

// memoryStore answers queries the way the SQL does: document match,
// [Start, End), newest first, at most Limit rows.
type memoryStore struct {
	entries []models.LogEntry
	err     error
	queries []models.QueryRange
}

func (s *memoryStore) FetchByDocument(_ context.Context, q models.QueryRange) ([]models.LogEntry, error) {
	s.queries = append(s.queries, q)
	if s.err != nil {
		return nil, s.err
	}

	out := make([]models.LogEntry, 0)
	for _, e := range s.entries {
		if e.DocumentID == q.DocumentID && !e.EventAt.Before(q.Start) && e.EventAt.Before(q.End) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EventAt.After(out[j].EventAt) })
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, e events.Event) error {
	p.events = append(p.events, e)
	return p.err
}

func entry(id int64, doc string, at time.Time, channel, action string) models.LogEntry {
	return models.LogEntry{ID: id, DocumentID: doc, EventAt: at, Channel: channel, Action: action}
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
