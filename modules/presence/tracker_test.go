package presence

import (
	"context"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRedisAddr = "localhost:6379"

// setupRedisTracker returns a RedisTracker on a scratch key, skipping when
// Redis is not reachable.
func setupRedisTracker(t *testing.T) *RedisTracker {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: testRedisAddr})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}

	key := "test:presence:" + t.Name()
	client.Del(ctx, key)
	t.Cleanup(func() {
		client.Del(ctx, key)
		_ = client.Close()
	})

	return NewRedisTracker(client, key)
}

func exerciseTracker(t *testing.T, tracker Tracker) {
	ctx := context.Background()

	n, err := tracker.Connected(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = tracker.Connected(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = tracker.Connected(ctx, "bob")
	require.NoError(t, err)

	online, err := tracker.Online(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, online)

	n, err = tracker.Disconnected(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	ok, err := tracker.IsOnline(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	n, err = tracker.Disconnected(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, n)

	ok, err = tracker.IsOnline(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	// A stray disconnect never drives the count negative.
	n, err = tracker.Disconnected(ctx, "carol")
	require.NoError(t, err)
	assert.Zero(t, n)

	online, err = tracker.Online(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, online)
}

func TestMemoryTracker(t *testing.T) {
	exerciseTracker(t, NewMemoryTracker())
}

func TestRedisTracker(t *testing.T) {
	exerciseTracker(t, setupRedisTracker(t))
}

func TestMemoryTracker_Concurrent(t *testing.T) {
	ctx := context.Background()
	tracker := NewMemoryTracker()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = tracker.Connected(ctx, "alice")
			_, _ = tracker.Disconnected(ctx, "alice")
		}()
	}
	wg.Wait()

	ok, err := tracker.IsOnline(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPresenceModule_DefaultsToMemory(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")

	m := NewModule(&mockLogger{})
	require.NoError(t, m.Start(context.Background()))
	defer func() { _ = m.Stop(context.Background()) }()

	_, err := m.Connected(context.Background(), "alice")
	require.NoError(t, err)

	status := m.Health(context.Background())
	assert.True(t, status.Healthy)
	assert.Equal(t, "memory", status.Details["backend"])
	assert.Equal(t, 1, status.Details["online_users"])
}
