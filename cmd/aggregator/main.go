package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"QuoteFlow/internal/di"
	"QuoteFlow/internal/handler/api"
	"QuoteFlow/internal/service/upstream"
	"QuoteFlow/internal/usecase"
	"QuoteFlow/pkg/config"
	xhttp "QuoteFlow/pkg/http"
	applogger "QuoteFlow/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	lgr, err := di.ProvideLogger(cfg)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}

	// Recent-logs queries hit the shards directly; summaries go through the
	// quote service's HTTP endpoint.
	router, err := di.ProvideRouter(cfg)
	if err != nil {
		log.Fatalf("shard init failed: %v", err)
	}

	summaries := upstream.NewSummaryClient(cfg.Aggregator.QuoteServiceURL, cfg.Aggregator.Timeout)
	builder := usecase.NewReportBuilder(summaries, router, lgr,
		cfg.Symbols(), cfg.Aggregator.RecentLimit, cfg.Aggregator.Timeout)

	srv := xhttp.NewServer(api.NewReportHandler(lgr, builder, router),
		xhttp.WithPort(cfg.Aggregator.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(lgr),
	)
	if err := srv.Start(); err != nil {
		log.Fatalf("http server start failed: %v", err)
	}
	lgr.Info("aggregator up",
		applogger.Int("port", cfg.Aggregator.Port),
		applogger.String("quote_service", cfg.Aggregator.QuoteServiceURL),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	lgr.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		lgr.Error("http shutdown error", applogger.Error(err))
	}
	if err := router.Close(); err != nil {
		lgr.Warn("shard close error", applogger.Error(err))
	}
	lgr.Info("shutdown complete")
}
