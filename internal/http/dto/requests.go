package dto

// LogsQuery holds the query string of the logs and report endpoints. Empty
// values mean the parameter was not given.
type LogsQuery struct {
	StartDate string `query:"start_date"`
	EndDate   string `query:"end_date"`
	Limit     string `query:"limit"`
	Template  string `query:"template"`
}
