package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store mirrors room occupancy into Redis so operators and sibling instances
// can observe who is connected where. Keys expire on their own; the relay
// itself never reads them back, so a restart simply starts from empty.
//
// Keys used:
// - <prefix>:room:<roomID> -> set of connection ids
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	log    *zap.SugaredLogger
}

func NewStore(client *redis.Client, prefix string, ttl time.Duration, log *zap.SugaredLogger) *Store {
	if prefix == "" {
		prefix = "signaling"
	}
	return &Store{client: client, prefix: prefix, ttl: ttl, log: log}
}

func (s *Store) roomKey(roomID string) string {
	return fmt.Sprintf("%s:room:%s", s.prefix, roomID)
}

// MemberJoined records a connection in the room's occupancy set. Safe to call
// on a nil Store (presence disabled).
func (s *Store) MemberJoined(ctx context.Context, roomID, connID string) {
	if s == nil {
		return
	}
	key := s.roomKey(roomID)
	if err := s.client.SAdd(ctx, key, connID).Err(); err != nil {
		s.log.Warnw("presence add failed", "room", roomID, "conn", connID, "error", err)
		return
	}
	_ = s.client.Expire(ctx, key, s.ttl).Err()
}

// MemberLeft removes a connection from the room's occupancy set and deletes
// the key once the set empties. Safe to call on a nil Store.
func (s *Store) MemberLeft(ctx context.Context, roomID, connID string) {
	if s == nil {
		return
	}
	key := s.roomKey(roomID)
	if err := s.client.SRem(ctx, key, connID).Err(); err != nil {
		s.log.Warnw("presence remove failed", "room", roomID, "conn", connID, "error", err)
		return
	}
	if cnt, err := s.client.SCard(ctx, key).Result(); err == nil && cnt == 0 {
		_ = s.client.Del(ctx, key).Err()
	}
}
