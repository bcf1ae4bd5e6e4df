//go:build wireinject
// +build wireinject

package di

import (
	"QuoteFlow/pkg/config"
	"QuoteFlow/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideBroker,
		ProvideRouter,
		ProvideKafkaMirror,

		// State and upstream access
		ProvideLastKnown,
		ProvideQuoteSource,

		// Use cases
		ProvideFetcher,
		ProvideRefreshLoop,

		// HTTP surface
		ProvideHandlers,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
