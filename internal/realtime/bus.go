package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const busChannel = "realtime:events"

// Envelope carries a frame between instances. An empty Target means every
// instance broadcasts the frame to all of its connections.
type Envelope struct {
	Origin string `json:"origin"`
	Target string `json:"target,omitempty"`
	UserID string `json:"user_id,omitempty"`
	Frame  Frame  `json:"frame"`
}

// Bus fans envelopes out to the other instances.
type Bus interface {
	Publish(ctx context.Context, env Envelope) error
}

// RedisBus implements Bus on Redis pub/sub.
type RedisBus struct {
	rdb    *redis.Client
	logger zerolog.Logger
}

func NewRedisBus(rdb *redis.Client, logger zerolog.Logger) *RedisBus {
	return &RedisBus{
		rdb:    rdb,
		logger: logger.With().Str("component", "realtime-bus").Logger(),
	}
}

func (b *RedisBus) Publish(ctx context.Context, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode envelope: %w", err)
	}
	if err := b.rdb.Publish(ctx, busChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish envelope: %w", err)
	}
	return nil
}

// Subscribe hands every envelope published by any instance to handle until
// ctx is cancelled.
func (b *RedisBus) Subscribe(ctx context.Context, handle func(Envelope)) error {
	sub := b.rdb.Subscribe(ctx, busChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", busChannel, err)
	}
	b.logger.Info().Str("channel", busChannel).Msg("subscribed to realtime bus")

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.logger.Warn().Err(err).Msg("dropping malformed envelope")
				continue
			}
			handle(env)
		}
	}
}
