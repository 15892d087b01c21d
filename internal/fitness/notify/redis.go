package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

var _ Notifier = (*RedisNotifier)(nil)

// RedisNotifier publishes signals as JSON on a redis channel.
type RedisNotifier struct {
	redisClient *redis.Client
	channel     string
}

func NewRedisNotifier(redisClient *redis.Client, channel string) *RedisNotifier {
	return &RedisNotifier{
		redisClient: redisClient,
		channel:     channel,
	}
}

func (n *RedisNotifier) Notify(ctx context.Context, signal Signal) error {
	payload, err := json.Marshal(signal)
	if err != nil {
		return fmt.Errorf("marshal signal: %w", err)
	}
	if err := n.redisClient.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", n.channel, err)
	}
	return nil
}
