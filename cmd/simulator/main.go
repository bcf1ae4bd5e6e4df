package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"QuoteFlow/internal/di"
	"QuoteFlow/internal/simulator"
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

	sim := simulator.New(lgr, cfg.Simulator.InitialPrices, cfg.Simulator.FailureRate)
	sim.StartDrift(context.Background(), cfg.Simulator.DriftInterval)

	srv := xhttp.NewServer(sim,
		xhttp.WithPort(cfg.Simulator.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(lgr),
	)
	if err := srv.Start(); err != nil {
		log.Fatalf("http server start failed: %v", err)
	}
	lgr.Info("simulator up",
		applogger.Int("port", cfg.Simulator.Port),
		applogger.Float64("failure_rate", cfg.Simulator.FailureRate),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	lgr.Info("shutdown signal received")
	sim.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		lgr.Error("http shutdown error", applogger.Error(err))
	}
	lgr.Info("shutdown complete")
}
