package presence

import (
	"context"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

// DefaultKey is the hash holding connection counts.
const DefaultKey = "presence:connections"

// decrement lowers a user's count and removes the field once it reaches zero.
var decrement = redis.NewScript(`
local n = redis.call('HINCRBY', KEYS[1], ARGV[1], -1)
if n <= 0 then
	redis.call('HDEL', KEYS[1], ARGV[1])
	return 0
end
return n
`)

// RedisTracker is a Tracker shared by every process using the same Redis hash.
type RedisTracker struct {
	client *redis.Client
	key    string
}

var _ Tracker = (*RedisTracker)(nil)

// NewRedisTracker creates a RedisTracker storing counts under key.
func NewRedisTracker(client *redis.Client, key string) *RedisTracker {
	if key == "" {
		key = DefaultKey
	}
	return &RedisTracker{client: client, key: key}
}

// Connected implements Tracker.
func (t *RedisTracker) Connected(ctx context.Context, userID string) (int64, error) {
	n, err := t.client.HIncrBy(ctx, t.key, userID, 1).Result()
	if err != nil {
		return 0, fmt.Errorf("presence connect error: %w", err)
	}
	return n, nil
}

// Disconnected implements Tracker.
func (t *RedisTracker) Disconnected(ctx context.Context, userID string) (int64, error) {
	n, err := decrement.Run(ctx, t.client, []string{t.key}, userID).Int64()
	if err != nil {
		return 0, fmt.Errorf("presence disconnect error: %w", err)
	}
	return n, nil
}

// IsOnline implements Tracker.
func (t *RedisTracker) IsOnline(ctx context.Context, userID string) (bool, error) {
	ok, err := t.client.HExists(ctx, t.key, userID).Result()
	if err != nil {
		return false, fmt.Errorf("presence lookup error: %w", err)
	}
	return ok, nil
}

// Online implements Tracker.
func (t *RedisTracker) Online(ctx context.Context) ([]string, error) {
	ids, err := t.client.HKeys(ctx, t.key).Result()
	if err != nil {
		return nil, fmt.Errorf("presence list error: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Ping checks the Redis connection.
func (t *RedisTracker) Ping(ctx context.Context) error {
	return t.client.Ping(ctx).Err()
}
