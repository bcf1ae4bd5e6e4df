package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"QuoteFlow/internal/domain/models"
	"QuoteFlow/internal/domain/repository"
	applogger "QuoteFlow/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// RedisBroker distributes quotes over a Redis pub/sub channel. Publish is
// fire-and-forget broadcast: every currently connected subscriber receives
// every message, nobody gets a replay.
type RedisBroker struct {
	logger  *applogger.Logger
	client  *redis.Client
	channel string
}

type Config struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

func NewRedisBroker(lgr *applogger.Logger, cfg Config) *RedisBroker {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisBroker{logger: lgr, client: client, channel: cfg.Channel}
}

// Publish broadcasts a quote as a JSON object on the configured channel.
func (b *RedisBroker) Publish(ctx context.Context, q models.Quote) error {
	payload, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("marshal quote: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", b.channel, err)
	}
	return nil
}

// Subscribe opens a dedicated subscription and streams decoded quotes until
// ctx is cancelled. Each call gets its own connection, so concurrent
// subscribers all see every message. Malformed payloads are logged and
// skipped; they are a subscriber-side concern.
func (b *RedisBroker) Subscribe(ctx context.Context) (<-chan models.Quote, error) {
	sub := b.client.Subscribe(ctx, b.channel)
	// Force the subscription handshake so a dead broker surfaces here
	// instead of as a silent empty stream.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", b.channel, err)
	}

	out := make(chan models.Quote)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var q models.Quote
				if err := json.Unmarshal([]byte(msg.Payload), &q); err != nil {
					b.logger.Warn("dropping malformed broker payload", applogger.Error(err))
					continue
				}
				select {
				case out <- q:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (b *RedisBroker) Health(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *RedisBroker) Close() error {
	return b.client.Close()
}

var _ repository.Broker = (*RedisBroker)(nil)
