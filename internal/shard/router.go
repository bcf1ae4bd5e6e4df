package shard

import (
	"context"
	"fmt"

	"QuoteFlow/internal/domain/models"
	"QuoteFlow/internal/domain/repository"
)

// Shard is one independent storage backend and the symbols it owns.
type Shard struct {
	Name  string
	Store repository.LogStore
}

// Router maps symbols to shards through a data-driven table. Adding a shard
// or symbol is a registration, not a code change. Routing is deterministic:
// the same symbol always resolves to the same shard.
type Router struct {
	shards   []*Shard
	bySymbol map[string]*Shard
	symbols  []string
}

func NewRouter() *Router {
	return &Router{bySymbol: make(map[string]*Shard)}
}

// Register adds a shard and claims its symbols. A symbol already owned by
// another shard is a configuration error.
func (r *Router) Register(s *Shard, symbols ...string) error {
	for _, sym := range symbols {
		if owner, ok := r.bySymbol[sym]; ok {
			return fmt.Errorf("symbol %q already routed to shard %q", sym, owner.Name)
		}
	}
	r.shards = append(r.shards, s)
	for _, sym := range symbols {
		r.bySymbol[sym] = s
		r.symbols = append(r.symbols, sym)
	}
	return nil
}

// Route resolves a symbol to its shard. Unknown symbols are rejected, never
// silently dropped.
func (r *Router) Route(symbol string) (*Shard, error) {
	s, ok := r.bySymbol[symbol]
	if !ok {
		return nil, fmt.Errorf("route %q: %w", symbol, models.ErrUnknownSymbol)
	}
	return s, nil
}

// Symbols returns every routed symbol in registration order.
func (r *Router) Symbols() []string {
	return r.symbols
}

// Shards returns all registered shards.
func (r *Router) Shards() []*Shard {
	return r.shards
}

// Health pings every shard.
func (r *Router) Health(ctx context.Context) error {
	for _, s := range r.shards {
		if err := s.Store.Health(ctx); err != nil {
			return fmt.Errorf("shard %s: %w", s.Name, err)
		}
	}
	return nil
}

// Close closes every shard store, returning the first error seen.
func (r *Router) Close() error {
	var firstErr error
	for _, s := range r.shards {
		if err := s.Store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
