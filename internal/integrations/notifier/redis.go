package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisNotifier публикует события в канал Redis pub/sub
type RedisNotifier struct {
	client  *redis.Client
	channel string
	log     Logger
}

// NewRedisNotifier создает новый экземпляр Redis нотификатора
func NewRedisNotifier(client *redis.Client, channel string, log Logger) *RedisNotifier {
	return &RedisNotifier{
		client:  client,
		channel: channel,
		log:     log,
	}
}

// Notify публикует событие в JSON
func (n *RedisNotifier) Notify(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: failed to encode event: %v", ErrInternal, err)
	}

	receivers, err := n.client.Publish(ctx, n.channel, payload).Result()
	if err != nil {
		return fmt.Errorf("%w: channel %s: %w", ErrPublish, n.channel, err)
	}

	n.log.Info("Redis: event %s booking=%d published to %s, receivers=%d",
		event.Outcome, event.BookingID, n.channel, receivers)
	return nil
}
