package models

import (
	"testing"
	"time"
)

func TestNewAggregateReportStartsFailed(t *testing.T) {
	r := NewAggregateReport([]string{"bitcoin", "ethereum"})
	w := r.Wire()

	summaries := w["price_summaries"].(map[string]interface{})
	logs := w["recent_logs"].(map[string]interface{})
	for _, sym := range []string{"bitcoin", "ethereum"} {
		if summaries[sym] != ErrorMarker {
			t.Fatalf("%s summary placeholder = %v, want %q", sym, summaries[sym], ErrorMarker)
		}
		if logs[sym] != ErrorMarker {
			t.Fatalf("%s logs placeholder = %v, want %q", sym, logs[sym], ErrorMarker)
		}
	}
}

func TestWirePartialFailure(t *testing.T) {
	r := NewAggregateReport([]string{"bitcoin", "ethereum"})
	r.PriceSummaries["bitcoin"] = SummaryResult{AveragePrice: 45123.5}
	r.RecentLogs["bitcoin"] = LogsResult{Entries: []LogEntry{
		{Symbol: "bitcoin", Price: 45123.5, Timestamp: time.Now()},
	}}

	w := r.Wire()
	summaries := w["price_summaries"].(map[string]interface{})
	logs := w["recent_logs"].(map[string]interface{})

	if summaries["bitcoin"] != 45123.5 {
		t.Fatalf("bitcoin summary = %v", summaries["bitcoin"])
	}
	if summaries["ethereum"] != ErrorMarker {
		t.Fatalf("ethereum summary should stay failed, got %v", summaries["ethereum"])
	}
	entries, ok := logs["bitcoin"].([]LogEntry)
	if !ok || len(entries) != 1 {
		t.Fatalf("bitcoin logs = %v", logs["bitcoin"])
	}
	if logs["ethereum"] != ErrorMarker {
		t.Fatalf("ethereum logs should stay failed, got %v", logs["ethereum"])
	}
}

func TestWireNilEntriesBecomeEmptySlice(t *testing.T) {
	r := NewAggregateReport([]string{"bitcoin"})
	r.RecentLogs["bitcoin"] = LogsResult{}

	logs := r.Wire()["recent_logs"].(map[string]interface{})
	entries, ok := logs["bitcoin"].([]LogEntry)
	if !ok {
		t.Fatalf("expected entries slice, got %T", logs["bitcoin"])
	}
	if entries == nil || len(entries) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", entries)
	}
}
