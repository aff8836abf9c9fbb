package websocket

import (
	"context"
	"strings"

	"ummah-chat/internal/events"
)

// RedisBridge fans room broadcasts from the event channels out to local
// hub members. Each server instance runs one bridge, so mutations made
// anywhere reach every connected client.
type RedisBridge struct {
	subscriber events.Subscriber
	hub        *Hub
}

func NewRedisBridge(subscriber events.Subscriber, hub *Hub) *RedisBridge {
	return &RedisBridge{subscriber: subscriber, hub: hub}
}

func (b *RedisBridge) Run(ctx context.Context) error {
	return b.subscriber.Subscribe(ctx, []string{events.ChannelPatternRooms}, func(channel string, payload []byte) {
		b.hub.Broadcast(roomKey(channel), payload)
	})
}

func roomKey(channel string) string {
	return strings.TrimPrefix(channel, events.ChannelPrefixRoom)
}
