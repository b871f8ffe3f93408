package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-redis/redis/v8"
)

// DefaultRedisChannel is the pub/sub channel alerts are published on.
const DefaultRedisChannel = "fxsignal:alerts"

// publisher is the subset of *redis.Client used here.
type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisNotifier publishes alerts as JSON on a Redis pub/sub channel.
type RedisNotifier struct {
	rdb     publisher
	channel string
	log     *slog.Logger
}

// NewRedisNotifier creates a notifier on an existing client.
func NewRedisNotifier(rdb *redis.Client, channel string, log *slog.Logger) *RedisNotifier {
	return newRedisNotifier(rdb, channel, log)
}

func newRedisNotifier(rdb publisher, channel string, log *slog.Logger) *RedisNotifier {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	if log == nil {
		log = slog.Default()
	}
	return &RedisNotifier{rdb: rdb, channel: channel, log: log.With("component", "redis_notify")}
}

func (r *RedisNotifier) Send(ctx context.Context, alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("redis notify: marshal: %w", err)
	}
	receivers, err := r.rdb.Publish(ctx, r.channel, payload).Result()
	if err != nil {
		return fmt.Errorf("redis notify: publish %s: %w", r.channel, err)
	}
	r.log.DebugContext(ctx, "published alert", "channel", r.channel, "receivers", receivers, "title", alert.Title)
	return nil
}
