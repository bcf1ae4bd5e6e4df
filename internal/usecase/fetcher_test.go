package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"QuoteFlow/internal/cache"
	"QuoteFlow/internal/domain/models"
)

func TestFetchSuccessReplacesLastKnown(t *testing.T) {
	last := cache.NewLastKnown([]string{"bitcoin", "ethereum"})
	src := &fakeSource{results: []fetchResult{
		{q: models.Quote{"bitcoin": 45000, "ethereum": 3000}},
	}}
	f := NewQuoteFetcher(src, last, newFakeMetrics(), testLogger(t), 3, time.Millisecond)

	q, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if q["bitcoin"] != 45000 {
		t.Fatalf("quote = %v", q)
	}
	if p, _ := last.Price("ethereum"); p != 3000 {
		t.Fatalf("last known not replaced: %v", p)
	}
}

func TestFetchExhaustionFallsBackToLastKnown(t *testing.T) {
	last := cache.NewLastKnown([]string{"bitcoin"})
	last.Set(models.Quote{"bitcoin": 44000})
	src := &fakeSource{results: []fetchResult{
		{err: &models.UpstreamError{Status: 503}},
	}}
	f := NewQuoteFetcher(src, last, newFakeMetrics(), testLogger(t), 3, time.Millisecond)

	q, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("exhaustion must not error: %v", err)
	}
	if src.callCount() != 3 {
		t.Fatalf("attempts = %d, want 3", src.callCount())
	}
	if q["bitcoin"] != 44000 {
		t.Fatalf("expected last known fallback, got %v", q)
	}
}

func TestFetchExhaustionBeforeFirstSuccess(t *testing.T) {
	// Before any successful fetch the fallback is the seeded zero quote.
	last := cache.NewLastKnown([]string{"bitcoin", "ethereum"})
	src := &fakeSource{results: []fetchResult{
		{err: errors.New("connection refused")},
	}}
	f := NewQuoteFetcher(src, last, newFakeMetrics(), testLogger(t), 3, time.Millisecond)

	q, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("exhaustion must not error: %v", err)
	}
	if !q.IsZero() || len(q) != 2 {
		t.Fatalf("expected seeded zero quote, got %v", q)
	}
}

func TestFetchRecoversMidRetry(t *testing.T) {
	last := cache.NewLastKnown([]string{"bitcoin"})
	src := &fakeSource{results: []fetchResult{
		{err: &models.UpstreamError{Status: 503}},
		{err: errors.New("timeout")},
		{q: models.Quote{"bitcoin": 46000}},
	}}
	f := NewQuoteFetcher(src, last, newFakeMetrics(), testLogger(t), 3, time.Millisecond)

	q, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if src.callCount() != 3 {
		t.Fatalf("attempts = %d, want 3", src.callCount())
	}
	if q["bitcoin"] != 46000 {
		t.Fatalf("quote = %v", q)
	}
}

func TestFetchMalformedPayloadNoRetry(t *testing.T) {
	last := cache.NewLastKnown([]string{"bitcoin"})
	src := &fakeSource{results: []fetchResult{
		{err: &models.PayloadError{Err: errors.New("bad json")}},
	}}
	f := NewQuoteFetcher(src, last, newFakeMetrics(), testLogger(t), 3, time.Millisecond)

	_, err := f.Fetch(context.Background())
	if err == nil {
		t.Fatalf("expected payload error")
	}
	var pe *models.PayloadError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v", err)
	}
	if src.callCount() != 1 {
		t.Fatalf("attempts = %d, want 1", src.callCount())
	}
}

func TestFetchCancelledDuringWait(t *testing.T) {
	last := cache.NewLastKnown([]string{"bitcoin"})
	src := &fakeSource{results: []fetchResult{
		{err: &models.UpstreamError{Status: 503}},
	}}
	f := NewQuoteFetcher(src, last, newFakeMetrics(), testLogger(t), 3, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := f.Fetch(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
