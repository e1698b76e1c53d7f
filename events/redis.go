package events

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

// RedisBus carries events across worker processes via Redis pub/sub.
type RedisBus struct {
	rdb *redis.Client
}

func NewRedisBus(rdb *redis.Client) *RedisBus {
	return &RedisBus{rdb: rdb}
}

func (b *RedisBus) Publish(ctx context.Context, channel string, payload []byte) error {
	return b.rdb.Publish(ctx, channel, payload).Err()
}

// Subscribe spawns a goroutine that dispatches messages until ctx is
// cancelled. Malformed or empty messages are skipped, not fatal.
func (b *RedisBus) Subscribe(ctx context.Context, channel string, handler Handler) error {
	sub := b.rdb.Subscribe(ctx, channel)

	// Force the subscription to be established before returning.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return err
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					log.Printf("[events] subscription to %s closed", channel)
					return
				}
				handler([]byte(msg.Payload))
			}
		}
	}()

	return nil
}
