package whatsapp

import (
	"context"
	"sync"
	"time"
)

// Meta redelivers unacknowledged callbacks for up to a day.
const defaultSeenTTL = 24 * time.Hour

// MessageLog remembers inbound message ids that were already dispatched.
type MessageLog interface {
	// FirstSeen records id and reports whether it had not been recorded before.
	FirstSeen(ctx context.Context, id string) (bool, error)
}

// MemoryMessageLog is a process-local MessageLog with expiring entries.
type MemoryMessageLog struct {
	mu   sync.Mutex
	ttl  time.Duration
	seen map[string]time.Time
	now  func() time.Time
}

// NewMemoryMessageLog creates a log forgetting ids after ttl.
func NewMemoryMessageLog(ttl time.Duration) *MemoryMessageLog {
	if ttl <= 0 {
		ttl = defaultSeenTTL
	}
	return &MemoryMessageLog{ttl: ttl, seen: make(map[string]time.Time), now: time.Now}
}

func (l *MemoryMessageLog) FirstSeen(_ context.Context, id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for k, at := range l.seen {
		if now.Sub(at) > l.ttl {
			delete(l.seen, k)
		}
	}

	if _, ok := l.seen[id]; ok {
		return false, nil
	}
	l.seen[id] = now
	return true, nil
}
