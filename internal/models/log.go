package models

import "time"

const (
	MinQueryLimit     = 1
	MaxQueryLimit     = 500
	DefaultQueryLimit = 100
)

// LogEntry is one row of the logs table. Nullable text columns are pointers.
type LogEntry struct {
	ID         int64     `json:"id"`
	DocumentID string    `json:"document_id"`
	EventAt    time.Time `json:"event_at"`
	Channel    string    `json:"channel"`
	Action     string    `json:"action"`
	IP         *string   `json:"ip"`
	BranchCode *string   `json:"branch_code"`
	DeviceID   *string   `json:"device_id"`
	Meta       any       `json:"meta"`
}

// LogRow is the plain-data shape of a LogEntry handed to tool callers.
type LogRow struct {
	ID         int64   `json:"id"`
	DocumentID string  `json:"document_id"`
	EventAt    string  `json:"event_at"` // RFC 3339
	Channel    string  `json:"channel"`
	Action     string  `json:"action"`
	IP         *string `json:"ip"`
	BranchCode *string `json:"branch_code"`
	DeviceID   *string `json:"device_id"`
	Meta       any     `json:"meta"`
}

func (e LogEntry) Row() LogRow {
	return LogRow{
		ID:         e.ID,
		DocumentID: e.DocumentID,
		EventAt:    e.EventAt.Format(time.RFC3339Nano),
		Channel:    e.Channel,
		Action:     e.Action,
		IP:         e.IP,
		BranchCode: e.BranchCode,
		DeviceID:   e.DeviceID,
		Meta:       e.Meta,
	}
}

// QueryRange bounds a single fetch: [Start, End) and at most Limit rows.
type QueryRange struct {
	DocumentID string
	Start      time.Time
	End        time.Time
	Limit      int
}

func IsValidLimit(limit int) bool {
	return limit >= MinQueryLimit && limit <= MaxQueryLimit
}

// ClampLimit pulls limit into [MinQueryLimit, MaxQueryLimit].
func ClampLimit(limit int) int {
	if limit < MinQueryLimit {
		return MinQueryLimit
	}
	if limit > MaxQueryLimit {
		return MaxQueryLimit
	}
	return limit
}
