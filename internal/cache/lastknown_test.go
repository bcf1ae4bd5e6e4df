package cache

import (
	"sync"
	"testing"

	"QuoteFlow/internal/domain/models"
)

func TestSeededZeros(t *testing.T) {
	l := NewLastKnown([]string{"bitcoin", "ethereum"})
	p, ok := l.Price("bitcoin")
	if !ok || p != 0 {
		t.Fatalf("expected seeded zero, got %v %v", p, ok)
	}
	if _, ok := l.Price("dogecoin"); ok {
		t.Fatalf("unseeded symbol should be absent")
	}
}

func TestSetReplacesWholeQuote(t *testing.T) {
	l := NewLastKnown([]string{"bitcoin", "ethereum"})
	l.Set(models.Quote{"bitcoin": 45000})

	if p, _ := l.Price("bitcoin"); p != 45000 {
		t.Fatalf("bitcoin = %v", p)
	}
	// The swap is whole-map: symbols missing from the new quote are gone.
	if _, ok := l.Price("ethereum"); ok {
		t.Fatalf("ethereum should be absent after swap")
	}
}

func TestConcurrentReaders(t *testing.T) {
	l := NewLastKnown([]string{"bitcoin"})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				q := l.Get()
				if len(q) != 1 {
					t.Errorf("observed partial quote: %v", q)
					return
				}
			}
		}()
	}
	for i := 0; i < 1000; i++ {
		l.Set(models.Quote{"bitcoin": float64(i)})
	}
	wg.Wait()
}
