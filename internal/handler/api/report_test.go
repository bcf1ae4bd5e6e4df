package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"QuoteFlow/internal/domain/models"
	"QuoteFlow/internal/shard"
	"QuoteFlow/internal/usecase"

	"github.com/labstack/echo/v4"
)

type stubSummaries struct {
	summaries map[string]models.PriceSummary
	errs      map[string]error
}

func (f *stubSummaries) AveragePrice(ctx context.Context, symbol string) (models.PriceSummary, error) {
	if err := f.errs[symbol]; err != nil {
		return models.PriceSummary{}, err
	}
	return f.summaries[symbol], nil
}

func TestFullReportAlwaysOK(t *testing.T) {
	router := shard.NewRouter()
	if err := router.Register(&shard.Shard{
		Name:  "shard1",
		Store: &stubStore{recentErr: errors.New("shard down")},
	}, "bitcoin"); err != nil {
		t.Fatalf("register: %v", err)
	}
	summaries := &stubSummaries{errs: map[string]error{"bitcoin": errors.New("service down")}}
	builder := usecase.NewReportBuilder(summaries, router, testLogger(t), []string{"bitcoin"}, 5, time.Second)
	h := NewReportHandler(testLogger(t), builder, router)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/report/full", nil)
	rec := httptest.NewRecorder()
	if err := h.FullReport(e.NewContext(req, rec)); err != nil {
		t.Fatalf("report: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: the report endpoint never fails", rec.Code)
	}
	var body map[string]map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["price_summaries"]["bitcoin"] != models.ErrorMarker {
		t.Fatalf("summary = %v", body["price_summaries"]["bitcoin"])
	}
	if body["recent_logs"]["bitcoin"] != models.ErrorMarker {
		t.Fatalf("logs = %v", body["recent_logs"]["bitcoin"])
	}
}

func TestFullReportHealthyBackends(t *testing.T) {
	router := shard.NewRouter()
	entry := models.LogEntry{Symbol: "bitcoin", Price: 45000, Timestamp: time.Now().UTC()}
	if err := router.Register(&shard.Shard{
		Name:  "shard1",
		Store: &stubStore{recent: []models.LogEntry{entry}},
	}, "bitcoin"); err != nil {
		t.Fatalf("register: %v", err)
	}
	summaries := &stubSummaries{summaries: map[string]models.PriceSummary{
		"bitcoin": {Symbol: "bitcoin", AveragePrice: 45100, LogCount: 10},
	}}
	builder := usecase.NewReportBuilder(summaries, router, testLogger(t), []string{"bitcoin"}, 5, time.Second)
	h := NewReportHandler(testLogger(t), builder, router)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/report/full", nil)
	rec := httptest.NewRecorder()
	if err := h.FullReport(e.NewContext(req, rec)); err != nil {
		t.Fatalf("report: %v", err)
	}

	var body map[string]map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["price_summaries"]["bitcoin"] != 45100.0 {
		t.Fatalf("summary = %v", body["price_summaries"]["bitcoin"])
	}
	logs, ok := body["recent_logs"]["bitcoin"].([]interface{})
	if !ok || len(logs) != 1 {
		t.Fatalf("logs = %v", body["recent_logs"]["bitcoin"])
	}
}
