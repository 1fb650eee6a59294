package live

import (
	"context"
	"sync"

	"github.com/go-redis/redis/v8"
)

// RedisNotifier fans change signals out over Redis pub/sub, so every server
// replica observes writes made by the others.
type RedisNotifier struct {
	client *redis.Client
}

// NewRedisNotifier creates a notifier backed by the given Redis client
func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

// Publish signals the topic's subscribers across all replicas
func (n *RedisNotifier) Publish(ctx context.Context, topic string) error {
	return n.client.Publish(ctx, topic, "changed").Err()
}

// Subscribe registers a Redis pub/sub subscription for the topic
func (n *RedisNotifier) Subscribe(topic string) (<-chan struct{}, func()) {
	pubsub := n.client.Subscribe(context.Background(), topic)

	changes := make(chan struct{}, 1)
	done := make(chan struct{})

	go func() {
		defer close(changes)
		messages := pubsub.Channel()
		for {
			select {
			case <-done:
				return
			case _, ok := <-messages:
				if !ok {
					return
				}
				select {
				case changes <- struct{}{}:
				default:
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			pubsub.Close()
		})
	}

	return changes, cancel
}
