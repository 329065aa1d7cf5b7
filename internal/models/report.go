package models

import "time"

// Period holds the caller's date strings exactly as given.
type Period struct {
	Start *string `json:"start"`
	End   *string `json:"end"`
}

type ReportSummary struct {
	Total      int            `json:"total"`
	ByChannel  map[string]int `json:"by_channel"`
	ByAction   map[string]int `json:"by_action"`
	FirstEvent *time.Time     `json:"first_event"`
	LastEvent  *time.Time     `json:"last_event"`
	Period     Period         `json:"period"`
}
