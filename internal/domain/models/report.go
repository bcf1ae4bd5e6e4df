package models

// ErrorMarker is the wire value substituted for any report field whose
// backing sub-call failed.
const ErrorMarker = "error"

// SummaryResult is one price-summary field of an aggregate report.
type SummaryResult struct {
	AveragePrice float64
	Failed       bool
}

// LogsResult is one recent-logs field of an aggregate report.
type LogsResult struct {
	Entries []LogEntry
	Failed  bool
}

// AggregateReport is built per request by the scatter-gather aggregator.
// Every configured symbol has both fields present; a failed sub-call leaves
// the field marked failed rather than aborting the report. Never persisted.
type AggregateReport struct {
	PriceSummaries map[string]SummaryResult
	RecentLogs     map[string]LogsResult
}

// NewAggregateReport returns a report with failed placeholders for every
// symbol, so partial gather results still yield a fully populated report.
func NewAggregateReport(symbols []string) *AggregateReport {
	r := &AggregateReport{
		PriceSummaries: make(map[string]SummaryResult, len(symbols)),
		RecentLogs:     make(map[string]LogsResult, len(symbols)),
	}
	for _, s := range symbols {
		r.PriceSummaries[s] = SummaryResult{Failed: true}
		r.RecentLogs[s] = LogsResult{Failed: true}
	}
	return r
}

// Wire converts the report to its JSON shape: failed fields become the
// literal "error" marker, successful ones the raw value.
func (r *AggregateReport) Wire() map[string]interface{} {
	summaries := make(map[string]interface{}, len(r.PriceSummaries))
	for sym, res := range r.PriceSummaries {
		if res.Failed {
			summaries[sym] = ErrorMarker
			continue
		}
		summaries[sym] = res.AveragePrice
	}

	logs := make(map[string]interface{}, len(r.RecentLogs))
	for sym, res := range r.RecentLogs {
		if res.Failed {
			logs[sym] = ErrorMarker
			continue
		}
		entries := res.Entries
		if entries == nil {
			entries = []LogEntry{}
		}
		logs[sym] = entries
	}

	return map[string]interface{}{
		"price_summaries": summaries,
		"recent_logs":     logs,
	}
}
