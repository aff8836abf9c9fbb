package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Subscriber fans room-channel traffic into a handler. It subscribes by
// pattern so one consumer also covers channels created after it started.
type Subscriber struct {
	client redis.UniversalClient
}

func NewSubscriber(client redis.UniversalClient) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe blocks, invoking handler for every message matching the given
// patterns. A cancelled context is a clean shutdown, not an error.
func (s *Subscriber) Subscribe(ctx context.Context, patterns []string, handler func(channel string, payload []byte)) error {
	sub := s.client.PSubscribe(ctx, patterns...)
	defer sub.Close()

	for {
		msg, err := sub.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		handler(msg.Channel, []byte(msg.Payload))
	}
}
