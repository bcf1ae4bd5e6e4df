package simulator

import (
	"context"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"QuoteFlow/internal/domain/models"
	applogger "QuoteFlow/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Simulator stands in for the upstream quote producer. Prices drift
// randomly in the background and a configurable share of /quote requests
// fail with 503 to exercise the fetcher's retry path.
type Simulator struct {
	logger      *applogger.Logger
	failureRate float64

	mu     sync.RWMutex
	prices models.Quote

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(lgr *applogger.Logger, initial map[string]float64, failureRate float64) *Simulator {
	prices := make(models.Quote, len(initial))
	for sym, p := range initial {
		prices[sym] = p
	}
	return &Simulator{
		logger:      lgr,
		failureRate: failureRate,
		prices:      prices,
	}
}

// StartDrift launches the background price walk: every interval each price
// moves by a uniform ±1%.
func (s *Simulator) StartDrift(ctx context.Context, interval time.Duration) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.drift()
			}
		}
	}()
}

// Stop cancels the drift loop.
func (s *Simulator) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Simulator) drift() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sym := range s.prices {
		change := (rand.Float64()*2 - 1) / 100
		s.prices[sym] *= 1 + change
	}
}

// Snapshot returns a copy of the current prices.
func (s *Simulator) Snapshot() models.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prices.Clone()
}

func (s *Simulator) RegisterRoutes(e *echo.Echo) {
	e.GET("/quote", s.Quote)
}

// Quote serves the current prices, or an injected 503.
func (s *Simulator) Quote(c echo.Context) error {
	if rand.Float64() < s.failureRate {
		s.logger.Debug("injected upstream failure")
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"detail": "service unavailable, try again later",
		})
	}
	return c.JSON(http.StatusOK, s.Snapshot())
}
