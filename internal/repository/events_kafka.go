package repository

import (
	"context"
	"fmt"
	"time"

	domrepo "TempQuant/internal/domain/repository"
	"TempQuant/pkg/config"
	"TempQuant/pkg/kafka"
)

// KafkaEventPublisher pushes engine events to the analytics topic. Events
// are an observability feed; publish failures do not block trading.
type KafkaEventPublisher struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaEventPublisher(cfg *config.Config) (*KafkaEventPublisher, error) {
	producer, err := kafka.NewProducer(
		kafka.WithBrokers(cfg.Events.Brokers),
		kafka.WithCompression(cfg.Events.Compression),
	)
	if err != nil {
		return nil, fmt.Errorf("create event producer: %w", err)
	}
	return &KafkaEventPublisher{producer: producer, topic: cfg.Events.Topic}, nil
}

type event struct {
	Kind    string      `json:"kind"`
	At      time.Time   `json:"at"`
	Payload interface{} `json:"payload"`
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, kind, key string, payload interface{}) error {
	return p.producer.Publish(ctx, p.topic, []byte(key), event{
		Kind:    kind,
		At:      time.Now().UTC(),
		Payload: payload,
	})
}

func (p *KafkaEventPublisher) Close() error {
	return p.producer.Close()
}

// NopEventPublisher discards events; used when no brokers are configured.
type NopEventPublisher struct{}

func (NopEventPublisher) Publish(context.Context, string, string, interface{}) error { return nil }
func (NopEventPublisher) Close() error                                               { return nil }

var (
	_ domrepo.EventPublisher = (*KafkaEventPublisher)(nil)
	_ domrepo.EventPublisher = NopEventPublisher{}
)
