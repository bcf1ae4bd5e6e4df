package di

import (
	"context"
	"fmt"
	"time"

	"QuoteFlow/internal/broker"
	"QuoteFlow/internal/cache"
	"QuoteFlow/internal/domain/repository"
	"QuoteFlow/internal/handler/api"
	"QuoteFlow/internal/handler/ws"
	internalrepo "QuoteFlow/internal/repository"
	"QuoteFlow/internal/service/upstream"
	"QuoteFlow/internal/shard"
	"QuoteFlow/internal/usecase"
	pkgch "QuoteFlow/pkg/clickhouse"
	"QuoteFlow/pkg/config"
	xhttp "QuoteFlow/pkg/http"
	pkgkafka "QuoteFlow/pkg/kafka"
	applogger "QuoteFlow/pkg/logger"
	"QuoteFlow/pkg/metrics"
	"QuoteFlow/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideBroker creates the Redis pub/sub broker.
func ProvideBroker(cfg *config.Config, lgr *applogger.Logger) repository.Broker {
	return broker.NewRedisBroker(lgr, broker.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Channel:  cfg.Redis.Channel,
	})
}

// ProvideRouter builds the shard routing table: one ClickHouse client per
// configured shard, schema bootstrapped, symbols claimed.
func ProvideRouter(cfg *config.Config) (*shard.Router, error) {
	router := shard.NewRouter()
	for _, sc := range cfg.Shards {
		client, err := pkgch.NewClient(sc.Name,
			pkgch.WithAddr(sc.ClickHouse.Host, sc.ClickHouse.Port),
			pkgch.WithDatabase(sc.ClickHouse.Database),
			pkgch.WithCredentials(sc.ClickHouse.User, sc.ClickHouse.Password),
			pkgch.WithMaxConnections(10, 5),
			pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
			pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
			pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
			pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
		)
		if err != nil {
			_ = router.Close()
			return nil, fmt.Errorf("shard %s: %w", sc.Name, err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = client.InitSchema(ctx, internalrepo.Schema(sc.ClickHouse.Database))
		cancel()
		if err != nil {
			_ = client.Close()
			_ = router.Close()
			return nil, fmt.Errorf("shard %s: %w", sc.Name, err)
		}

		store := internalrepo.NewClickHouseQuoteLog(client, sc.ClickHouse.Database+".quote_logs")
		if err := router.Register(&shard.Shard{Name: sc.Name, Store: store}, sc.Symbols...); err != nil {
			_ = client.Close()
			_ = router.Close()
			return nil, err
		}
	}
	return router, nil
}

// ProvideLastKnown seeds the atomic quote cell with every configured symbol
// at zero.
func ProvideLastKnown(cfg *config.Config) *cache.LastKnown {
	return cache.NewLastKnown(cfg.Symbols())
}

// ProvideQuoteSource creates the upstream HTTP client.
func ProvideQuoteSource(cfg *config.Config) repository.QuoteSource {
	return upstream.New(cfg.Upstream.URL, cfg.Upstream.Timeout)
}

// ProvideFetcher creates the retrying quote fetcher.
func ProvideFetcher(
	source repository.QuoteSource,
	last *cache.LastKnown,
	m repository.Metrics,
	lgr *applogger.Logger,
	cfg *config.Config,
) *usecase.QuoteFetcher {
	return usecase.NewQuoteFetcher(source, last, m, lgr, cfg.Upstream.MaxAttempts, cfg.Upstream.RetryWait)
}

// ProvideKafkaMirror creates the optional Kafka mirror sink. Returns nil
// when mirroring is disabled.
func ProvideKafkaMirror(cfg *config.Config) (*internalrepo.KafkaMirror, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithBatching(cfg.Kafka.BatchSize, cfg.Kafka.BatchBytes, cfg.Kafka.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.ReadTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaMirror(producer, cfg.Kafka.Topic), nil
}

// ProvideRefreshLoop assembles the periodic fetch/publish/persist cycle.
func ProvideRefreshLoop(
	fetcher *usecase.QuoteFetcher,
	b repository.Broker,
	router *shard.Router,
	m repository.Metrics,
	lgr *applogger.Logger,
	cfg *config.Config,
	mirror *internalrepo.KafkaMirror,
) *usecase.RefreshLoop {
	var extras []usecase.QuoteSink
	if mirror != nil {
		extras = append(extras, mirror)
	}
	return usecase.NewRefreshLoop(fetcher, b, router, m, lgr, cfg.Refresh.Interval, extras...)
}

// ProvideHandlers bundles the quote service's HTTP and websocket handlers.
func ProvideHandlers(
	lgr *applogger.Logger,
	last *cache.LastKnown,
	router *shard.Router,
	b repository.Broker,
	cfg *config.Config,
) xhttp.Handler {
	return xhttp.Handlers{
		api.NewQuotesHandler(lgr, last, router, b),
		ws.NewStreamHandler(lgr, b, cfg.WebSocket.BufferSize),
	}
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	lgr *applogger.Logger,
	loop *usecase.RefreshLoop,
	router *shard.Router,
	b repository.Broker,
	mirror *internalrepo.KafkaMirror,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, lgr, loop, router, b, mirror, handler)
}
