package usecase

import (
	"context"
	"time"

	"QuoteFlow/internal/cache"
	"QuoteFlow/internal/domain/models"
	"QuoteFlow/internal/domain/repository"
	applogger "QuoteFlow/pkg/logger"
)

// QuoteFetcher wraps the upstream source with a bounded-retry circuit
// breaker. Transport failures and upstream rejections are retried with a
// fixed wait; a malformed payload is a contract break and propagates
// immediately. When every attempt fails the fetcher falls back to the last
// known quote instead of erroring, so callers cannot tell a stale value
// from a fresh one.
type QuoteFetcher struct {
	source      repository.QuoteSource
	last        *cache.LastKnown
	metrics     repository.Metrics
	logger      *applogger.Logger
	maxAttempts int
	retryWait   time.Duration
}

func NewQuoteFetcher(
	source repository.QuoteSource,
	last *cache.LastKnown,
	metrics repository.Metrics,
	lgr *applogger.Logger,
	maxAttempts int,
	retryWait time.Duration,
) *QuoteFetcher {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &QuoteFetcher{
		source:      source,
		last:        last,
		metrics:     metrics,
		logger:      lgr,
		maxAttempts: maxAttempts,
		retryWait:   retryWait,
	}
}

// Fetch attempts the upstream call up to maxAttempts times. Success
// atomically replaces the last-known quote. Exhaustion returns the current
// last-known quote with nil error; only a malformed payload or context
// cancellation produces an error.
func (f *QuoteFetcher) Fetch(ctx context.Context) (models.Quote, error) {
	start := time.Now()
	var lastErr error

	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		q, err := f.source.Fetch(ctx)
		if err == nil {
			f.last.Set(q)
			f.metrics.RecordLatency("fetch", time.Since(start).Seconds())
			return q, nil
		}
		if !models.Retryable(err) {
			f.metrics.RecordError("payload")
			return nil, err
		}

		lastErr = err
		f.metrics.RecordError("fetch_attempt")
		f.logger.Warn("upstream fetch attempt failed",
			applogger.Int("attempt", attempt),
			applogger.Int("max_attempts", f.maxAttempts),
			applogger.Error(err),
		)

		if attempt == f.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.retryWait):
		}
	}

	f.metrics.RecordError("fetch_exhausted")
	f.logger.Error("upstream fetch exhausted, serving last known quote",
		applogger.Error(lastErr),
	)
	return f.last.Get(), nil
}

// LastKnown exposes the cache cell for the direct-read endpoint.
func (f *QuoteFetcher) LastKnown() *cache.LastKnown {
	return f.last
}
