package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"QuoteFlow/internal/domain/models"
	applogger "QuoteFlow/pkg/logger"
)

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

// fakeSource replays a scripted sequence of fetch results.
type fakeSource struct {
	mu      sync.Mutex
	results []fetchResult
	calls   int
}

type fetchResult struct {
	q   models.Quote
	err error
}

func (s *fakeSource) Fetch(ctx context.Context) (models.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	if i >= len(s.results) {
		i = len(s.results) - 1
	}
	return s.results[i].q, s.results[i].err
}

func (s *fakeSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fakeBroker struct {
	mu        sync.Mutex
	published []models.Quote
	err       error
}

func (b *fakeBroker) Publish(ctx context.Context, q models.Quote) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.published = append(b.published, q.Clone())
	return nil
}

func (b *fakeBroker) Subscribe(ctx context.Context) (<-chan models.Quote, error) {
	ch := make(chan models.Quote)
	close(ch)
	return ch, nil
}

func (b *fakeBroker) Health(ctx context.Context) error { return nil }
func (b *fakeBroker) Close() error                     { return nil }

func (b *fakeBroker) publishedCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.published)
}

type insertedRow struct {
	symbol string
	price  float64
}

type fakeStore struct {
	mu        sync.Mutex
	inserted  []insertedRow
	insertErr error
	recent    []models.LogEntry
	recentErr error
	avg       float64
	count     int
	avgErr    error
}

func (s *fakeStore) Insert(ctx context.Context, symbol string, price float64, ts time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserted = append(s.inserted, insertedRow{symbol, price})
	return nil
}

func (s *fakeStore) Recent(ctx context.Context, symbol string, limit int) ([]models.LogEntry, error) {
	if s.recentErr != nil {
		return nil, s.recentErr
	}
	return s.recent, nil
}

func (s *fakeStore) Average(ctx context.Context, symbol string, limit int) (float64, int, error) {
	return s.avg, s.count, s.avgErr
}

func (s *fakeStore) Health(ctx context.Context) error { return nil }
func (s *fakeStore) Close() error                     { return nil }

func (s *fakeStore) rows() []insertedRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]insertedRow, len(s.inserted))
	copy(out, s.inserted)
	return out
}

type fakeSummaries struct {
	summaries map[string]models.PriceSummary
	errs      map[string]error
}

func (f *fakeSummaries) AveragePrice(ctx context.Context, symbol string) (models.PriceSummary, error) {
	if err := f.errs[symbol]; err != nil {
		return models.PriceSummary{}, err
	}
	return f.summaries[symbol], nil
}

type fakeMetrics struct {
	mu     sync.Mutex
	cycles map[string]int
	errors map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{cycles: make(map[string]int), errors: make(map[string]int)}
}

func (m *fakeMetrics) RecordPublished(sink, symbol string) {}

func (m *fakeMetrics) RecordCycle(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cycles[outcome]++
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

func (m *fakeMetrics) RecordLastPrice(symbol string, price float64) {}
func (m *fakeMetrics) RecordLatency(op string, seconds float64)     {}

func (m *fakeMetrics) cycleCount(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cycles[outcome]
}
