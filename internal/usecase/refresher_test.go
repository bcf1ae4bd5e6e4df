package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"QuoteFlow/internal/cache"
	"QuoteFlow/internal/domain/models"
	"QuoteFlow/internal/shard"
)

func newTestRouter(t *testing.T, stores map[string]*fakeStore) *shard.Router {
	t.Helper()
	r := shard.NewRouter()
	for sym, st := range stores {
		if err := r.Register(&shard.Shard{Name: "shard_" + sym, Store: st}, sym); err != nil {
			t.Fatalf("register %s: %v", sym, err)
		}
	}
	return r
}

func newTestLoop(t *testing.T, src *fakeSource, b *fakeBroker, router *shard.Router, m *fakeMetrics, symbols []string, extras ...QuoteSink) *RefreshLoop {
	t.Helper()
	last := cache.NewLastKnown(symbols)
	f := NewQuoteFetcher(src, last, m, testLogger(t), 3, time.Millisecond)
	return NewRefreshLoop(f, b, router, m, testLogger(t), 10*time.Millisecond, extras...)
}

func TestCycleSkipsZeroQuote(t *testing.T) {
	st := &fakeStore{}
	router := newTestRouter(t, map[string]*fakeStore{"bitcoin": st})
	b := &fakeBroker{}
	m := newFakeMetrics()
	src := &fakeSource{results: []fetchResult{
		{q: models.Quote{"bitcoin": 0}},
	}}

	loop := newTestLoop(t, src, b, router, m, []string{"bitcoin"})
	loop.runCycle(context.Background())

	if b.publishedCount() != 0 {
		t.Fatalf("zero quote must not be published")
	}
	if len(st.rows()) != 0 {
		t.Fatalf("zero quote must not be persisted")
	}
	if m.cycleCount("skipped") != 1 {
		t.Fatalf("expected skipped cycle")
	}
}

func TestCyclePublishesAndPersists(t *testing.T) {
	btc := &fakeStore{}
	eth := &fakeStore{}
	router := newTestRouter(t, map[string]*fakeStore{"bitcoin": btc, "ethereum": eth})
	b := &fakeBroker{}
	m := newFakeMetrics()
	src := &fakeSource{results: []fetchResult{
		{q: models.Quote{"bitcoin": 45000, "ethereum": 3000}},
	}}

	loop := newTestLoop(t, src, b, router, m, []string{"bitcoin", "ethereum"})
	loop.runCycle(context.Background())

	if b.publishedCount() != 1 {
		t.Fatalf("published = %d", b.publishedCount())
	}
	if rows := btc.rows(); len(rows) != 1 || rows[0].symbol != "bitcoin" || rows[0].price != 45000 {
		t.Fatalf("bitcoin rows = %v", rows)
	}
	if rows := eth.rows(); len(rows) != 1 || rows[0].symbol != "ethereum" {
		t.Fatalf("ethereum rows = %v", rows)
	}
	if m.cycleCount("ok") != 1 {
		t.Fatalf("expected ok cycle")
	}
}

func TestCycleBrokerFailureStillPersists(t *testing.T) {
	st := &fakeStore{}
	router := newTestRouter(t, map[string]*fakeStore{"bitcoin": st})
	b := &fakeBroker{err: errors.New("redis down")}
	m := newFakeMetrics()
	src := &fakeSource{results: []fetchResult{
		{q: models.Quote{"bitcoin": 45000}},
	}}

	loop := newTestLoop(t, src, b, router, m, []string{"bitcoin"})
	loop.runCycle(context.Background())

	if len(st.rows()) != 1 {
		t.Fatalf("persist must survive a broker failure")
	}
	if m.cycleCount("ok") != 1 {
		t.Fatalf("publish failure is swallowed, cycle still ok")
	}
}

func TestCycleInsertFailuresAreIndependent(t *testing.T) {
	btc := &fakeStore{insertErr: errors.New("shard down")}
	eth := &fakeStore{}
	router := newTestRouter(t, map[string]*fakeStore{"bitcoin": btc, "ethereum": eth})
	b := &fakeBroker{}
	src := &fakeSource{results: []fetchResult{
		{q: models.Quote{"bitcoin": 45000, "ethereum": 3000}},
	}}

	loop := newTestLoop(t, src, b, router, newFakeMetrics(), []string{"bitcoin", "ethereum"})
	loop.runCycle(context.Background())

	if rows := eth.rows(); len(rows) != 1 {
		t.Fatalf("healthy shard must still receive its row, got %v", rows)
	}
}

func TestCycleDropsUnroutedSymbol(t *testing.T) {
	st := &fakeStore{}
	router := newTestRouter(t, map[string]*fakeStore{"bitcoin": st})
	b := &fakeBroker{}
	src := &fakeSource{results: []fetchResult{
		{q: models.Quote{"bitcoin": 45000, "dogecoin": 1}},
	}}

	loop := newTestLoop(t, src, b, router, newFakeMetrics(), []string{"bitcoin"})
	loop.runCycle(context.Background())

	rows := st.rows()
	if len(rows) != 1 || rows[0].symbol != "bitcoin" {
		t.Fatalf("rows = %v", rows)
	}
}

func TestCycleMirrorFailureIsSwallowed(t *testing.T) {
	st := &fakeStore{}
	router := newTestRouter(t, map[string]*fakeStore{"bitcoin": st})
	b := &fakeBroker{}
	mirror := &fakeBroker{err: errors.New("kafka down")}
	m := newFakeMetrics()
	src := &fakeSource{results: []fetchResult{
		{q: models.Quote{"bitcoin": 45000}},
	}}

	loop := newTestLoop(t, src, b, router, m, []string{"bitcoin"}, mirror)
	loop.runCycle(context.Background())

	if b.publishedCount() != 1 {
		t.Fatalf("primary publish must succeed")
	}
	if m.cycleCount("ok") != 1 {
		t.Fatalf("mirror failure must not fail the cycle")
	}
}

func TestLoopStops(t *testing.T) {
	st := &fakeStore{}
	router := newTestRouter(t, map[string]*fakeStore{"bitcoin": st})
	b := &fakeBroker{}
	src := &fakeSource{results: []fetchResult{
		{q: models.Quote{"bitcoin": 45000}},
	}}

	loop := newTestLoop(t, src, b, router, newFakeMetrics(), []string{"bitcoin"})
	loop.Start(context.Background())
	time.Sleep(35 * time.Millisecond)
	loop.Stop()

	count := b.publishedCount()
	if count == 0 {
		t.Fatalf("loop never ran a cycle")
	}
	time.Sleep(25 * time.Millisecond)
	if b.publishedCount() != count {
		t.Fatalf("loop kept running after Stop")
	}
}
