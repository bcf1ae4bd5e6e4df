package repository

import (
	"context"
	"time"

	"QuoteFlow/internal/domain/models"
)

// QuoteSource produces a fresh quote set from the upstream producer.
type QuoteSource interface {
	Fetch(ctx context.Context) (models.Quote, error)
}

// Broker is the publish-subscribe distribution channel. Publish is
// fire-and-forget broadcast: no acknowledgment, no replay for subscribers
// that connect later.
type Broker interface {
	Publish(ctx context.Context, q models.Quote) error
	Subscribe(ctx context.Context) (<-chan models.Quote, error)
	Health(ctx context.Context) error
	Close() error
}

// LogStore is the append-only quote log of a single shard.
type LogStore interface {
	Insert(ctx context.Context, symbol string, price float64, ts time.Time) error
	Recent(ctx context.Context, symbol string, limit int) ([]models.LogEntry, error)
	Average(ctx context.Context, symbol string, limit int) (avg float64, count int, err error)
	Health(ctx context.Context) error
	Close() error
}

// SummaryClient reads price summaries from the quote service.
type SummaryClient interface {
	AveragePrice(ctx context.Context, symbol string) (models.PriceSummary, error)
}

// Metrics records operational signals.
type Metrics interface {
	RecordPublished(sink, symbol string)
	RecordCycle(outcome string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
