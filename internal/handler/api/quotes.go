package api

import (
	"net/http"

	"QuoteFlow/internal/cache"
	"QuoteFlow/internal/domain/models"
	"QuoteFlow/internal/domain/repository"
	"QuoteFlow/internal/shard"
	xhttp "QuoteFlow/pkg/http"
	xlogger "QuoteFlow/pkg/logger"

	"github.com/labstack/echo/v4"
)

// QuotesHandler serves the quote service's read endpoints.
type QuotesHandler struct {
	logger *xlogger.Logger
	last   *cache.LastKnown
	router *shard.Router
	broker repository.Broker
}

func NewQuotesHandler(lgr *xlogger.Logger, last *cache.LastKnown, router *shard.Router, broker repository.Broker) *QuotesHandler {
	return &QuotesHandler{logger: lgr, last: last, router: router, broker: broker}
}

func (h *QuotesHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/quote/:symbol", h.Quote)
	e.GET("/average/:symbol", h.Average)
	e.GET("/healthz", h.Health)
}

// SymbolRequest binds the symbol path parameter. Persisted symbols are
// capped at 10 characters, so longer ones are rejected up front.
type SymbolRequest struct {
	Symbol string `param:"symbol" validate:"required,max=10"`
}

// AverageRequest binds the average endpoint's parameters.
type AverageRequest struct {
	Symbol string `param:"symbol" validate:"required,max=10"`
	Limit  int    `query:"limit" default:"10" validate:"gte=1,lte=1000"`
}

// Quote returns the last known price of one symbol.
func (h *QuotesHandler) Quote(c echo.Context) error {
	req := &SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	price, ok := h.last.Price(req.Symbol)
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("symbol %q not found", req.Symbol))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"symbol": req.Symbol,
		"price":  price,
	})
}

// Average returns the mean over the most recent log entries of one symbol,
// read from its shard. An empty log yields a zero summary, not an error.
func (h *QuotesHandler) Average(c echo.Context) error {
	req := &AverageRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	sh, err := h.router.Route(req.Symbol)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("symbol %q not supported for logs", req.Symbol))
	}

	avg, count, err := sh.Store.Average(c.Request().Context(), req.Symbol, req.Limit)
	if err != nil {
		h.logger.Error("average query failed",
			xlogger.String("shard", sh.Name),
			xlogger.String("symbol", req.Symbol),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, xhttp.InternalError("average query failed").WithError(err))
	}

	return c.JSON(http.StatusOK, models.PriceSummary{
		Symbol:       req.Symbol,
		AveragePrice: avg,
		LogCount:     count,
	})
}

// Health pings every shard and the broker.
func (h *QuotesHandler) Health(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.router.Health(ctx); err != nil {
		return xhttp.AppErrorResponse(c, xhttp.UnavailableError("shard unavailable").WithError(err))
	}
	if err := h.broker.Health(ctx); err != nil {
		return xhttp.AppErrorResponse(c, xhttp.UnavailableError("broker unavailable").WithError(err))
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
