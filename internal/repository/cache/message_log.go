package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// MessageLog records dispatched WhatsApp message ids in Redis so redelivered
// callbacks are recognised across restarts and replicas.
type MessageLog struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMessageLog stores ids under wamsg:{id} for ttl.
func NewMessageLog(client *redis.Client, ttl time.Duration) *MessageLog {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &MessageLog{client: client, ttl: ttl}
}

// FirstSeen reports whether id was recorded by this call.
func (l *MessageLog) FirstSeen(ctx context.Context, id string) (bool, error) {
	created, err := l.client.SetNX(ctx, messageKey(id), 1, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("record message %s: %w", id, err)
	}
	return created, nil
}

func messageKey(id string) string {
	return "wamsg:" + id
}
