package usecase

import (
	"context"
	"sync"
	"time"

	"QuoteFlow/internal/domain/models"
	"QuoteFlow/internal/domain/repository"
	"QuoteFlow/internal/shard"
	applogger "QuoteFlow/pkg/logger"
)

// QuoteSink receives every published quote. The broker is the primary sink;
// extras (the Kafka mirror) ride along best-effort.
type QuoteSink interface {
	Publish(ctx context.Context, q models.Quote) error
}

// RefreshLoop drives the periodic fetch → publish → persist cycle. It is a
// single long-lived background task, started once; every failure inside a
// cycle is logged and swallowed, the loop itself only stops on cancellation.
type RefreshLoop struct {
	fetcher  *QuoteFetcher
	broker   repository.Broker
	extras   []QuoteSink
	router   *shard.Router
	metrics  repository.Metrics
	logger   *applogger.Logger
	interval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRefreshLoop(
	fetcher *QuoteFetcher,
	broker repository.Broker,
	router *shard.Router,
	metrics repository.Metrics,
	lgr *applogger.Logger,
	interval time.Duration,
	extras ...QuoteSink,
) *RefreshLoop {
	return &RefreshLoop{
		fetcher:  fetcher,
		broker:   broker,
		extras:   extras,
		router:   router,
		metrics:  metrics,
		logger:   lgr,
		interval: interval,
	}
}

// Start launches the loop. Not re-entrant; call once at startup.
func (l *RefreshLoop) Start(ctx context.Context) {
	ctx, l.cancel = context.WithCancel(ctx)
	l.wg.Add(1)
	go l.run(ctx)
	l.logger.Info("refresh loop started", applogger.Duration("interval", l.interval))
}

// Stop cancels the loop and waits for the current cycle to finish.
func (l *RefreshLoop) Stop() {
	if l.cancel != nil {
		l.cancel()
	}
	l.wg.Wait()
	l.logger.Info("refresh loop stopped")
}

func (l *RefreshLoop) run(ctx context.Context) {
	defer l.wg.Done()
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.runCycle(ctx)
		}
	}
}

func (l *RefreshLoop) runCycle(ctx context.Context) {
	start := time.Now()

	quote, err := l.fetcher.Fetch(ctx)
	if err != nil {
		// Malformed payload or shutdown; nothing to distribute this cycle.
		l.metrics.RecordCycle("error")
		l.logger.Error("refresh cycle fetch failed", applogger.Error(err))
		return
	}

	// An empty or still-zero quote means the upstream never delivered real
	// data yet; skipping is the no-data-yet path, not an error.
	if quote.IsZero() {
		l.metrics.RecordCycle("skipped")
		l.logger.Debug("refresh cycle skipped, no data yet")
		return
	}

	l.publish(ctx, quote)
	l.persist(ctx, quote)

	l.metrics.RecordCycle("ok")
	l.metrics.RecordLatency("refresh_cycle", time.Since(start).Seconds())
}

func (l *RefreshLoop) publish(ctx context.Context, quote models.Quote) {
	if err := l.broker.Publish(ctx, quote); err != nil {
		l.metrics.RecordError("publish")
		l.logger.Error("broker publish failed", applogger.Error(err))
	} else {
		for sym := range quote {
			l.metrics.RecordPublished("broker", sym)
		}
	}

	for _, sink := range l.extras {
		if err := sink.Publish(ctx, quote); err != nil {
			l.metrics.RecordError("publish_mirror")
			l.logger.Warn("mirror publish failed", applogger.Error(err))
		}
	}
}

// persist writes one log row per symbol. Writes are independent: a failed
// insert never blocks or rolls back its siblings.
func (l *RefreshLoop) persist(ctx context.Context, quote models.Quote) {
	now := time.Now().UTC()
	for sym, price := range quote {
		sh, err := l.router.Route(sym)
		if err != nil {
			l.metrics.RecordError("route")
			l.logger.Warn("no shard for symbol, dropping log entry",
				applogger.String("symbol", sym))
			continue
		}
		if err := sh.Store.Insert(ctx, sym, price, now); err != nil {
			l.metrics.RecordError("insert")
			l.logger.Error("shard insert failed",
				applogger.String("shard", sh.Name),
				applogger.String("symbol", sym),
				applogger.Error(err),
			)
			continue
		}
		l.metrics.RecordPublished("shard:"+sh.Name, sym)
		l.metrics.RecordLastPrice(sym, price)
	}
}
