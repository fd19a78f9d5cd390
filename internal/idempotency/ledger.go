// Package idempotency keeps billing webhook processing exactly-once per event
// id and serializes concurrent work on the same account.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// ErrInFlight means another worker holds the event; the sender should retry later.
var ErrInFlight = errors.New("event is already in-flight")

// Ledger runs fn at most once to completion per event id.
type Ledger interface {
	// Do reports already=true without calling fn when eventID completed before.
	Do(ctx context.Context, eventID string, fn func(ctx context.Context) error) (already bool, err error)
}

const lockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// RedisLedger stores completion markers in Redis so every replica shares them.
type RedisLedger struct {
	client  *redis.Client
	script  *redis.Script
	prefix  string
	doneTTL time.Duration
	lockTTL time.Duration
}

func NewRedisLedger(client *redis.Client, doneTTL time.Duration) *RedisLedger {
	return &RedisLedger{
		client:  client,
		script:  redis.NewScript(lockReleaseScript),
		prefix:  "catalogo:billing-event:",
		doneTTL: doneTTL,
		lockTTL: 2 * time.Minute,
	}
}

func (l *RedisLedger) Do(ctx context.Context, eventID string, fn func(ctx context.Context) error) (bool, error) {
	if strings.TrimSpace(eventID) == "" {
		return false, errors.New("event id is required")
	}
	doneKey := l.prefix + eventID + ":done"
	lockKey := l.prefix + eventID + ":lock"

	n, err := l.client.Exists(ctx, doneKey).Result()
	if err != nil {
		return false, fmt.Errorf("check event %s: %w", eventID, err)
	}
	if n > 0 {
		return true, nil
	}

	token := uuid.NewString()
	acquired, err := l.client.SetNX(ctx, lockKey, token, l.lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("lock event %s: %w", eventID, err)
	}
	if !acquired {
		// The holder may have finished between the two checks.
		if n, err := l.client.Exists(ctx, doneKey).Result(); err == nil && n > 0 {
			return true, nil
		}
		return false, ErrInFlight
	}
	defer func() {
		_ = l.script.Run(context.WithoutCancel(ctx), l.client, []string{lockKey}, token).Err()
	}()

	if err := fn(ctx); err != nil {
		return false, err
	}
	if err := l.client.Set(ctx, doneKey, time.Now().UTC().Unix(), l.doneTTL).Err(); err != nil {
		return false, fmt.Errorf("mark event %s done: %w", eventID, err)
	}
	return false, nil
}

// MemoryLedger is the single-process Ledger used when Redis is not configured.
type MemoryLedger struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
	done     map[string]time.Time
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryLedger(ttl time.Duration) *MemoryLedger {
	return &MemoryLedger{
		inFlight: make(map[string]struct{}),
		done:     make(map[string]time.Time),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (l *MemoryLedger) Do(ctx context.Context, eventID string, fn func(ctx context.Context) error) (bool, error) {
	if strings.TrimSpace(eventID) == "" {
		return false, errors.New("event id is required")
	}

	l.mu.Lock()
	l.evictLocked()
	if _, ok := l.done[eventID]; ok {
		l.mu.Unlock()
		return true, nil
	}
	if _, ok := l.inFlight[eventID]; ok {
		l.mu.Unlock()
		return false, ErrInFlight
	}
	l.inFlight[eventID] = struct{}{}
	l.mu.Unlock()

	err := fn(ctx)

	l.mu.Lock()
	delete(l.inFlight, eventID)
	if err == nil {
		l.done[eventID] = l.now()
	}
	l.mu.Unlock()
	return false, err
}

func (l *MemoryLedger) evictLocked() {
	if l.ttl <= 0 {
		return
	}
	cutoff := l.now().Add(-l.ttl)
	for id, at := range l.done {
		if at.Before(cutoff) {
			delete(l.done, id)
		}
	}
}
