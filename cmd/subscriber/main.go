package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"QuoteFlow/internal/broker"
	"QuoteFlow/internal/di"
	"QuoteFlow/pkg/config"
	applogger "QuoteFlow/pkg/logger"
)

// Console subscriber: attaches to the broadcast channel and prints every
// quote as it arrives. Useful for watching the stream during development.
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

	b := broker.NewRedisBroker(lgr, broker.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Channel:  cfg.Redis.Channel,
	})
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		lgr.Info("shutdown signal received")
		cancel()
	}()

	quotes, err := b.Subscribe(ctx)
	if err != nil {
		log.Fatalf("subscribe failed: %v", err)
	}
	lgr.Info("subscribed", applogger.String("channel", cfg.Redis.Channel))

	for q := range quotes {
		symbols := make([]string, 0, len(q))
		for sym := range q {
			symbols = append(symbols, sym)
		}
		sort.Strings(symbols)
		for _, sym := range symbols {
			fmt.Printf("%-12s %12.2f\n", sym, q[sym])
		}
		fmt.Println("---")
	}
	lgr.Info("stream closed")
}
