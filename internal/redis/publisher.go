package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Publisher pushes serialized chat envelopes onto room channels so every
// server instance can relay them to its own websocket clients.
type Publisher struct {
	client redis.UniversalClient
}

func NewPublisher(client redis.UniversalClient) *Publisher {
	return &Publisher{client: client}
}

// Publish sends payload to every subscriber of channel. Empty payloads
// are dropped; nothing downstream can decode them.
func (p *Publisher) Publish(ctx context.Context, channel string, payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	return p.client.Publish(ctx, channel, payload).Err()
}
