package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"QuoteFlow/internal/domain/models"
	"QuoteFlow/internal/domain/repository"
	xhttp "QuoteFlow/pkg/http"
)

// Client reads fresh quote sets from the upstream producer. Failure modes
// are classified for the fetcher's retry policy: transport errors and
// non-2xx responses are retryable, a malformed body is not.
type Client struct {
	http *xhttp.Client
	url  string
}

func New(url string, timeout time.Duration) *Client {
	return &Client{
		http: xhttp.NewClient(xhttp.WithTimeout(timeout)),
		url:  url,
	}
}

// Fetch performs one GET /quote call.
func (c *Client) Fetch(ctx context.Context) (models.Quote, error) {
	resp, err := c.http.SendRequest(ctx, &xhttp.RequestOptions{
		Method: http.MethodGet,
		URL:    c.url,
	})
	if err != nil {
		return nil, fmt.Errorf("upstream fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, &models.UpstreamError{Status: resp.StatusCode}
	}

	var q models.Quote
	if err := json.NewDecoder(resp.Body).Decode(&q); err != nil {
		return nil, &models.PayloadError{Err: err}
	}
	return q, nil
}

var _ repository.QuoteSource = (*Client)(nil)

// SummaryClient reads price summaries from the quote service's average
// endpoint. Used by the aggregator's scatter phase.
type SummaryClient struct {
	http    *xhttp.Client
	baseURL string
}

func NewSummaryClient(baseURL string, timeout time.Duration) *SummaryClient {
	return &SummaryClient{
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
		baseURL: baseURL,
	}
}

// AveragePrice performs GET /average/{symbol}. A 404 maps to
// models.ErrUnknownSymbol.
func (c *SummaryClient) AveragePrice(ctx context.Context, symbol string) (models.PriceSummary, error) {
	var summary models.PriceSummary
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: http.MethodGet,
		URL:    fmt.Sprintf("%s/average/%s", c.baseURL, symbol),
	}, &summary)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return models.PriceSummary{}, fmt.Errorf("average %s: %w", symbol, models.ErrUnknownSymbol)
		}
		return models.PriceSummary{}, fmt.Errorf("average %s: %w", symbol, err)
	}
	return summary, nil
}

var _ repository.SummaryClient = (*SummaryClient)(nil)
