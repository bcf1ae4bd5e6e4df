package api

import (
	"net/http"

	"QuoteFlow/internal/shard"
	"QuoteFlow/internal/usecase"
	xhttp "QuoteFlow/pkg/http"
	xlogger "QuoteFlow/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ReportHandler serves the aggregator's scatter-gather endpoint.
type ReportHandler struct {
	logger  *xlogger.Logger
	builder *usecase.ReportBuilder
	router  *shard.Router
}

func NewReportHandler(lgr *xlogger.Logger, builder *usecase.ReportBuilder, router *shard.Router) *ReportHandler {
	return &ReportHandler{logger: lgr, builder: builder, router: router}
}

func (h *ReportHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/report/full", h.FullReport)
	e.GET("/healthz", h.Health)
}

// FullReport always answers 200: partial backend failure shows up as
// per-field error markers, never as a failed request.
func (h *ReportHandler) FullReport(c echo.Context) error {
	report := h.builder.BuildReport(c.Request().Context())
	return c.JSON(http.StatusOK, report.Wire())
}

func (h *ReportHandler) Health(c echo.Context) error {
	if err := h.router.Health(c.Request().Context()); err != nil {
		return xhttp.AppErrorResponse(c, xhttp.UnavailableError("shard unavailable").WithError(err))
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
