package services

import (
	"fmt"
	"time"

	"github.com/jfbarahonag/mcp-logs/internal/models"
)

const defaultLookback = 30 * 24 * time.Hour

// ResolveRange turns the caller's optional YYYY-MM-DD strings into the
// half-open interval [start, end). A missing start means 30 days before now,
// a missing end means today; the end bound is always midnight after the end
// day so that whole day is included. Inverted ranges are returned as is.
func ResolveRange(startDate, endDate *string, now time.Time) (time.Time, time.Time, error) {
	now = now.UTC()

	start := now.Add(-defaultLookback)
	if s := deref(startDate); s != "" {
		parsed, err := parseDate("start_date", s)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = parsed
	}

	endDay := now
	if s := deref(endDate); s != "" {
		parsed, err := parseDate("end_date", s)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		endDay = parsed
	}
	y, m, d := endDay.Date()
	end := time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)

	return start, end, nil
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s %q: %w", field, value, models.ErrInvalidDateFormat)
	}
	return t, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
