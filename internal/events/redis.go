package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DefaultChannel = "joyeria:changes"

// RedisBroker publishes events on a Redis channel so every replica's
// subscribers see writes made by any replica. Local delivery goes through
// a MemoryBroker fed by a single Redis subscription.
type RedisBroker struct {
	client  *redis.Client
	channel string
	local   *MemoryBroker
	pubsub  *redis.PubSub
	done    chan struct{}
}

func NewRedisBroker(ctx context.Context, client *redis.Client, channel string) (*RedisBroker, error) {
	if channel == "" {
		channel = DefaultChannel
	}

	pubsub := client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", channel, err)
	}

	b := &RedisBroker{
		client:  client,
		channel: channel,
		local:   NewMemoryBroker(),
		pubsub:  pubsub,
		done:    make(chan struct{}),
	}
	go b.forward()
	return b, nil
}

func (b *RedisBroker) forward() {
	defer close(b.done)
	for msg := range b.pubsub.Channel() {
		var event Event
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Warn().Err(err).Str("channel", msg.Channel).Msg("Discarding malformed change event")
			continue
		}
		_ = b.local.Publish(context.Background(), event)
	}
}

func (b *RedisBroker) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode change event: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish failed: %w", err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context, tables ...string) (<-chan Event, func()) {
	return b.local.Subscribe(ctx, tables...)
}

func (b *RedisBroker) Close() error {
	err := b.pubsub.Close()
	<-b.done
	_ = b.local.Close()
	return err
}
