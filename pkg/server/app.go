package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"QuoteFlow/internal/domain/repository"
	internalrepo "QuoteFlow/internal/repository"
	"QuoteFlow/internal/shard"
	"QuoteFlow/internal/usecase"
	"QuoteFlow/pkg/config"
	xhttp "QuoteFlow/pkg/http"
	applogger "QuoteFlow/pkg/logger"
)

// App bundles the quote service's long-lived pieces: the refresh loop, the
// HTTP surface, and the infrastructure clients that need closing on the way
// out.
type App struct {
	cfg     *config.Config
	logger  *applogger.Logger
	loop    *usecase.RefreshLoop
	router  *shard.Router
	broker  repository.Broker
	mirror  *internalrepo.KafkaMirror
	handler xhttp.Handler

	httpServer *xhttp.Server
}

func New(
	cfg *config.Config,
	lgr *applogger.Logger,
	loop *usecase.RefreshLoop,
	router *shard.Router,
	broker repository.Broker,
	mirror *internalrepo.KafkaMirror,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:     cfg,
		logger:  lgr,
		loop:    loop,
		router:  router,
		broker:  broker,
		mirror:  mirror,
		handler: handler,
	}
}

// Run starts the refresh loop and HTTP server, then blocks until SIGINT or
// SIGTERM.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(a.logger),
	)

	a.loop.Start(ctx)

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("quote service up",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.Strings("symbols", a.cfg.Symbols()),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown stops the loop first so no cycle races the closing clients.
func (a *App) shutdown(ctx context.Context) error {
	a.loop.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if a.mirror != nil {
		if err := a.mirror.Close(); err != nil {
			a.logger.Warn("kafka mirror close error", applogger.Error(err))
		}
	}
	if err := a.broker.Close(); err != nil {
		a.logger.Warn("broker close error", applogger.Error(err))
	}
	if err := a.router.Close(); err != nil {
		a.logger.Warn("shard close error", applogger.Error(err))
	}

	a.logger.Info("shutdown complete")
	return nil
}
