package cache

import (
	"sync/atomic"

	"QuoteFlow/internal/domain/models"
)

// LastKnown holds the most recent successfully-fetched quote. Single writer
// (the fetcher), many readers. The whole map is swapped atomically on write
// so a reader never observes a partially-updated quote; stored maps are
// read-only by convention.
type LastKnown struct {
	v atomic.Pointer[models.Quote]
}

// NewLastKnown seeds the cell with zero prices for the given symbols.
func NewLastKnown(symbols []string) *LastKnown {
	l := &LastKnown{}
	seed := models.Seed(symbols)
	l.v.Store(&seed)
	return l
}

// Get returns the current quote. Callers must treat it as immutable.
func (l *LastKnown) Get() models.Quote {
	return *l.v.Load()
}

// Set replaces the stored quote. The caller hands over ownership of q and
// must not mutate it afterwards.
func (l *LastKnown) Set(q models.Quote) {
	l.v.Store(&q)
}

// Price returns the last known price of one symbol.
func (l *LastKnown) Price(symbol string) (float64, bool) {
	p, ok := l.Get()[symbol]
	return p, ok
}
