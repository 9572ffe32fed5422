package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/matheus3301/eventd/internal/event"
)

// ChannelResolver determines which Redis channels an envelope is
// published to.
type ChannelResolver interface {
	ResolveChannels(evt event.Envelope) []string
}

// PrefixResolver publishes every envelope to <prefix><domain>, so
// subscribers can listen per domain ("events:user", "events:ui").
type PrefixResolver struct {
	Prefix string
}

// ResolveChannels returns the single channel for the envelope's domain.
func (r PrefixResolver) ResolveChannels(evt event.Envelope) []string {
	return []string{r.Prefix + event.Domain(evt.Kind)}
}

// Redis publishes accepted envelopes to Redis pub/sub channels as JSON.
type Redis struct {
	client   *redis.Client
	resolver ChannelResolver
}

// NewRedis wraps a Redis client and a channel resolver as a delivery
// sink.
func NewRedis(client *redis.Client, resolver ChannelResolver) *Redis {
	return &Redis{client: client, resolver: resolver}
}

// Deliver publishes the envelope to every resolved channel. The first
// failed publish fails the delivery.
func (s *Redis) Deliver(ctx context.Context, evt event.Envelope) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshaling envelope %s: %w", evt.ID, err)
	}
	for _, channel := range s.resolver.ResolveChannels(evt) {
		if err := s.client.Publish(ctx, channel, data).Err(); err != nil {
			return fmt.Errorf("publishing to %s: %w", channel, err)
		}
	}
	return nil
}
