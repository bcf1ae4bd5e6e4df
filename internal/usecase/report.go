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

// ReportBuilder assembles the full aggregate report by scatter-gather: one
// price-summary call and one recent-logs query per configured symbol, all
// concurrent, all awaited. A failed sub-call degrades its own field to the
// error marker and nothing else; BuildReport itself never fails.
type ReportBuilder struct {
	summaries   repository.SummaryClient
	router      *shard.Router
	logger      *applogger.Logger
	symbols     []string
	recentLimit int
	timeout     time.Duration
}

func NewReportBuilder(
	summaries repository.SummaryClient,
	router *shard.Router,
	lgr *applogger.Logger,
	symbols []string,
	recentLimit int,
	timeout time.Duration,
) *ReportBuilder {
	if recentLimit <= 0 {
		recentLimit = 5
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ReportBuilder{
		summaries:   summaries,
		router:      router,
		logger:      lgr,
		symbols:     symbols,
		recentLimit: recentLimit,
		timeout:     timeout,
	}
}

type gatherItem struct {
	symbol  string
	kind    string // "summary" or "logs"
	summary models.PriceSummary
	entries []models.LogEntry
	err     error
}

// BuildReport scatters the sub-calls and gathers every result.
func (b *ReportBuilder) BuildReport(ctx context.Context) *models.AggregateReport {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	report := models.NewAggregateReport(b.symbols)

	ch := make(chan gatherItem, len(b.symbols)*2)
	var wg sync.WaitGroup

	for _, sym := range b.symbols {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			s, err := b.summaries.AveragePrice(ctx, sym)
			ch <- gatherItem{symbol: sym, kind: "summary", summary: s, err: err}
		}(sym)

		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			entries, err := b.recentLogs(ctx, sym)
			ch <- gatherItem{symbol: sym, kind: "logs", entries: entries, err: err}
		}(sym)
	}

	go func() { wg.Wait(); close(ch) }()

	for it := range ch {
		if it.err != nil {
			b.logger.Warn("report sub-call failed",
				applogger.String("symbol", it.symbol),
				applogger.String("kind", it.kind),
				applogger.Error(it.err),
			)
			continue // placeholder already marks the field failed
		}
		switch it.kind {
		case "summary":
			report.PriceSummaries[it.symbol] = models.SummaryResult{AveragePrice: it.summary.AveragePrice}
		case "logs":
			report.RecentLogs[it.symbol] = models.LogsResult{Entries: it.entries}
		}
	}

	return report
}

func (b *ReportBuilder) recentLogs(ctx context.Context, symbol string) ([]models.LogEntry, error) {
	sh, err := b.router.Route(symbol)
	if err != nil {
		return nil, err
	}
	return sh.Store.Recent(ctx, symbol, b.recentLimit)
}
