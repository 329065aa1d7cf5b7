package services

import "github.com/jfbarahonag/mcp-logs/internal/models"

// Aggregate summarizes rows, which must be ordered newest first. It does no
// I/O and never fails; an empty input yields zero counts and nil event times.
func Aggregate(rows []models.LogEntry, period models.Period) models.ReportSummary {
	summary := models.ReportSummary{
		Total:     len(rows),
		ByChannel: make(map[string]int),
		ByAction:  make(map[string]int),
		Period:    period,
	}

	for _, r := range rows {
		summary.ByChannel[r.Channel]++
		summary.ByAction[r.Action]++
	}

	if len(rows) > 0 {
		first := rows[len(rows)-1].EventAt
		last := rows[0].EventAt
		summary.FirstEvent = &first
		summary.LastEvent = &last
	}

	return summary
}
