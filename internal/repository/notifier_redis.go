package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domrepo "TempQuant/internal/domain/repository"
	"TempQuant/pkg/config"
	"TempQuant/pkg/logger"
)

// RedisNotifier delivers operator notifications onto a Redis stream that a
// separate bot process relays to chat. Delivery is best effort: failures
// are logged, never propagated into the trading path.
type RedisNotifier struct {
	client *redis.Client
	stream string
	log    *logger.Logger
}

func NewRedisNotifier(cfg *config.Config, log *logger.Logger) *RedisNotifier {
	return &RedisNotifier{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Notify.RedisAddr,
			Password: cfg.Notify.RedisPassword,
			DB:       cfg.Notify.RedisDB,
		}),
		stream: cfg.Notify.Stream,
		log:    log,
	}
}

func (n *RedisNotifier) SendText(ctx context.Context, text string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := n.client.XAdd(ctx, &redis.XAddArgs{
		Stream: n.stream,
		MaxLen: 1000,
		Approx: true,
		Values: map[string]interface{}{
			"text": text,
			"ts":   time.Now().UTC().Format(time.RFC3339),
		},
	}).Err()
	if err != nil {
		n.log.Warn("notification delivery failed", logger.Error(err))
		return fmt.Errorf("xadd notification: %w", err)
	}
	return nil
}

func (n *RedisNotifier) Close() error {
	return n.client.Close()
}

// LogNotifier is the fallback used when no Redis address is configured;
// notifications land in the structured log only.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendText(_ context.Context, text string) error {
	n.log.Info("notification", logger.String("text", text))
	return nil
}

var (
	_ domrepo.Notifier = (*RedisNotifier)(nil)
	_ domrepo.Notifier = (*LogNotifier)(nil)
)
