package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"QuoteFlow/internal/domain/models"
)

func TestFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"bitcoin": 45000.5, "ethereum": 3000}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	q, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if q["bitcoin"] != 45000.5 || q["ethereum"] != 3000 {
		t.Fatalf("quote = %v", q)
	}
}

func TestFetchUpstreamRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	_, err := c.Fetch(context.Background())
	var ue *models.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if ue.Status != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", ue.Status)
	}
	if !models.Retryable(err) {
		t.Fatalf("rejection must be retryable")
	}
}

func TestFetchMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"bitcoin": "not a number"`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	_, err := c.Fetch(context.Background())
	var pe *models.PayloadError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PayloadError, got %v", err)
	}
	if models.Retryable(err) {
		t.Fatalf("malformed payload must not be retryable")
	}
}

func TestFetchTransportError(t *testing.T) {
	c := New("http://127.0.0.1:1/quote", 100*time.Millisecond)
	_, err := c.Fetch(context.Background())
	if err == nil {
		t.Fatalf("expected transport error")
	}
	if !models.Retryable(err) {
		t.Fatalf("transport error must be retryable")
	}
}

func TestAveragePriceSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/average/bitcoin" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"symbol": "bitcoin", "average_price": 45100.25, "log_count": 10}`))
	}))
	defer srv.Close()

	c := NewSummaryClient(srv.URL, time.Second)
	s, err := c.AveragePrice(context.Background(), "bitcoin")
	if err != nil {
		t.Fatalf("average: %v", err)
	}
	if s.AveragePrice != 45100.25 || s.LogCount != 10 {
		t.Fatalf("summary = %+v", s)
	}
}

func TestAveragePriceUnknownSymbol(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewSummaryClient(srv.URL, time.Second)
	_, err := c.AveragePrice(context.Background(), "dogecoin")
	if !errors.Is(err, models.ErrUnknownSymbol) {
		t.Fatalf("expected ErrUnknownSymbol, got %v", err)
	}
}
