package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionRegistry maps a user id to the instance holding that user's socket.
// The most recent registration wins.
type SessionRegistry interface {
	Register(ctx context.Context, userID, instanceID string) error
	// Unregister removes the entry only if it still points at instanceID.
	Unregister(ctx context.Context, userID, instanceID string) error
	Lookup(ctx context.Context, userID string) (instanceID string, ok bool, err error)
}

// LocalRegistry is an in-process SessionRegistry for single-instance deployments.
type LocalRegistry struct {
	mu       sync.RWMutex
	sessions map[string]string
}

func NewLocalRegistry() *LocalRegistry {
	return &LocalRegistry{sessions: make(map[string]string)}
}

func (r *LocalRegistry) Register(_ context.Context, userID, instanceID string) error {
	r.mu.Lock()
	r.sessions[userID] = instanceID
	r.mu.Unlock()
	return nil
}

func (r *LocalRegistry) Unregister(_ context.Context, userID, instanceID string) error {
	r.mu.Lock()
	if r.sessions[userID] == instanceID {
		delete(r.sessions, userID)
	}
	r.mu.Unlock()
	return nil
}

func (r *LocalRegistry) Lookup(_ context.Context, userID string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	instanceID, ok := r.sessions[userID]
	return instanceID, ok, nil
}

const sessionKeyPrefix = "realtime:session:"

// unregisterScript deletes KEYS[1] only when it still holds ARGV[1].
var unregisterScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisRegistry shares session ownership between instances through Redis.
// Entries expire after ttl unless refreshed.
type RedisRegistry struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisRegistry(rdb *redis.Client, ttl time.Duration) *RedisRegistry {
	return &RedisRegistry{rdb: rdb, ttl: ttl}
}

func sessionKey(userID string) string {
	return sessionKeyPrefix + userID
}

func (r *RedisRegistry) Register(ctx context.Context, userID, instanceID string) error {
	if err := r.rdb.Set(ctx, sessionKey(userID), instanceID, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to register session: %w", err)
	}
	return nil
}

func (r *RedisRegistry) Unregister(ctx context.Context, userID, instanceID string) error {
	if err := unregisterScript.Run(ctx, r.rdb, []string{sessionKey(userID)}, instanceID).Err(); err != nil {
		return fmt.Errorf("failed to unregister session: %w", err)
	}
	return nil
}

func (r *RedisRegistry) Lookup(ctx context.Context, userID string) (string, bool, error) {
	instanceID, err := r.rdb.Get(ctx, sessionKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to look up session: %w", err)
	}
	return instanceID, true, nil
}
