package repository

import (
	"context"

	"QuoteFlow/internal/domain/models"
	pkgkafka "QuoteFlow/pkg/kafka"
)

// KafkaMirror republishes every broker-bound quote to a Kafka topic so
// downstream pipelines can consume the stream without touching Redis.
// Best effort: the refresh loop logs and swallows mirror errors.
type KafkaMirror struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaMirror(producer *pkgkafka.Producer, topic string) *KafkaMirror {
	return &KafkaMirror{producer: producer, topic: topic}
}

func (m *KafkaMirror) Publish(ctx context.Context, q models.Quote) error {
	return m.producer.Publish(ctx, m.topic, nil, q)
}

func (m *KafkaMirror) Close() error {
	if m.producer != nil {
		return m.producer.Close()
	}
	return nil
}
