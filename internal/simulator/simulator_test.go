package simulator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	applogger "QuoteFlow/pkg/logger"

	"github.com/labstack/echo/v4"
)

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func TestQuoteServesPrices(t *testing.T) {
	sim := New(testLogger(t), map[string]float64{"bitcoin": 45000, "ethereum": 3000}, 0)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/quote", nil)
	rec := httptest.NewRecorder()
	if err := sim.Quote(e.NewContext(req, rec)); err != nil {
		t.Fatalf("quote: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var got map[string]float64
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["bitcoin"] != 45000 || got["ethereum"] != 3000 {
		t.Fatalf("prices = %v", got)
	}
}

func TestQuoteAlwaysFails(t *testing.T) {
	sim := New(testLogger(t), map[string]float64{"bitcoin": 45000}, 1)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/quote", nil)
	rec := httptest.NewRecorder()
	if err := sim.Quote(e.NewContext(req, rec)); err != nil {
		t.Fatalf("quote: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestDriftStaysBounded(t *testing.T) {
	sim := New(testLogger(t), map[string]float64{"bitcoin": 45000}, 0)
	for i := 0; i < 100; i++ {
		sim.drift()
	}
	p := sim.Snapshot()["bitcoin"]
	// 100 steps of at most ±1% each.
	if p < 45000*0.3 || p > 45000*3 {
		t.Fatalf("price drifted out of bounds: %v", p)
	}
	if p == 45000 {
		t.Fatalf("price never moved")
	}
}

func TestDriftLoopStops(t *testing.T) {
	sim := New(testLogger(t), map[string]float64{"bitcoin": 45000}, 0)
	sim.StartDrift(context.Background(), time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	sim.Stop()

	p := sim.Snapshot()["bitcoin"]
	time.Sleep(10 * time.Millisecond)
	if sim.Snapshot()["bitcoin"] != p {
		t.Fatalf("drift continued after Stop")
	}
}
