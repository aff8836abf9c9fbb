package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// PresenceStore tracks which users currently hold a live connection into a
// room. Membership here is derived state, scoped to connection lifetime;
// the canonical participant list lives in Postgres.
type PresenceStore struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewPresenceStore(client *goredis.Client, ttl time.Duration) *PresenceStore {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &PresenceStore{client: client, ttl: ttl}
}

func presenceKey(roomID string) string {
	return fmt.Sprintf("presence:room:%s", roomID)
}

// SetOnline adds the user to the room's presence set.
func (p *PresenceStore) SetOnline(ctx context.Context, roomID, userID string) error {
	pipe := p.client.Pipeline()
	pipe.SAdd(ctx, presenceKey(roomID), userID)
	pipe.Expire(ctx, presenceKey(roomID), p.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// SetOffline removes the user from the room's presence set.
func (p *PresenceStore) SetOffline(ctx context.Context, roomID, userID string) error {
	return p.client.SRem(ctx, presenceKey(roomID), userID).Err()
}

// Heartbeat refreshes the presence set TTL for a room with live connections.
func (p *PresenceStore) Heartbeat(ctx context.Context, roomID string) error {
	return p.client.Expire(ctx, presenceKey(roomID), p.ttl).Err()
}

// OnlineUsers returns the ids of users currently connected to the room.
func (p *PresenceStore) OnlineUsers(ctx context.Context, roomID string) ([]string, error) {
	return p.client.SMembers(ctx, presenceKey(roomID)).Result()
}

// OnlineCount returns the number of users currently connected to the room.
func (p *PresenceStore) OnlineCount(ctx context.Context, roomID string) (int64, error) {
	return p.client.SCard(ctx, presenceKey(roomID)).Result()
}
