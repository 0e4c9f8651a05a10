package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Channel carrying portal notification events. Clients poll the API for data;
// this stream exists so other processes (ops tooling, future push gateway)
// can observe new-message and overdue events as they happen.
const Channel = "portal:events"

// RedisNotifier publishes notifications on a Redis pub/sub channel.
type RedisNotifier struct {
	client *redis.Client
}

// NewRedisNotifier constructs a Redis-backed notifier.
func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

// Send publishes the message as JSON on the events channel.
func (n *RedisNotifier) Send(ctx context.Context, message Message) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	if err := n.client.Publish(ctx, Channel, payload).Err(); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}
