package models

import "time"

// LogEntry is one persisted price observation. Entries are append-only and
// never updated or deleted; retrieval is most-recent-first.
type LogEntry struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// PriceSummary is the payload of the average-price endpoint.
type PriceSummary struct {
	Symbol       string  `json:"symbol"`
	AveragePrice float64 `json:"average_price"`
	LogCount     int     `json:"log_count"`
}
