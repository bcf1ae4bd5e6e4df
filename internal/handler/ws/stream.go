package ws

import (
	"net/http"

	"QuoteFlow/internal/domain/models"
	"QuoteFlow/internal/domain/repository"
	applogger "QuoteFlow/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// StreamHandler bridges the broker to websocket clients. Each connection
// gets its own broker subscription fanned through a bounded buffer with a
// drop-oldest policy, so one slow client never backs up the publisher.
type StreamHandler struct {
	logger   *applogger.Logger
	broker   repository.Broker
	upgrader websocket.Upgrader
	buffer   int
}

func NewStreamHandler(lgr *applogger.Logger, broker repository.Broker, buffer int) *StreamHandler {
	if buffer <= 0 {
		buffer = 16
	}
	return &StreamHandler{
		logger: lgr,
		broker: broker,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		buffer: buffer,
	}
}

func (h *StreamHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/quotes", h.Stream)
}

// Stream upgrades the connection and forwards quotes until either side
// closes. Closing the socket cancels the broker subscription.
func (h *StreamHandler) Stream(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx := c.Request().Context()
	quotes, err := h.broker.Subscribe(ctx)
	if err != nil {
		h.logger.Error("websocket subscribe failed", applogger.Error(err))
		return nil
	}

	buffered := h.fanOut(quotes)

	// Reader goroutine: only watches for the client closing its side.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return nil
		case q, ok := <-buffered:
			if !ok {
				return nil
			}
			if err := conn.WriteJSON(q); err != nil {
				h.logger.Debug("websocket write failed, closing", applogger.Error(err))
				return nil
			}
		}
	}
}

// fanOut decouples the subscription from the socket writer. When the buffer
// fills, the oldest quote is dropped in favor of the newest.
func (h *StreamHandler) fanOut(in <-chan models.Quote) <-chan models.Quote {
	out := make(chan models.Quote, h.buffer)
	go func() {
		defer close(out)
		for q := range in {
			select {
			case out <- q:
			default:
				select {
				case <-out:
				default:
				}
				select {
				case out <- q:
				default:
				}
			}
		}
	}()
	return out
}
