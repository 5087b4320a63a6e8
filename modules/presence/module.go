package presence

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/redis/go-redis/v9"
)

// PresenceModule provides the connection Tracker, backed by Redis when
// REDIS_ADDR is set and by process memory otherwise.
type PresenceModule struct {
	tracker       Tracker
	client        *redis.Client
	redisAddr     string
	redisPassword string
	logger        types.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*PresenceModule)(nil)
var _ mono.HealthCheckableModule = (*PresenceModule)(nil)
var _ Tracker = (*PresenceModule)(nil)

// NewModule creates a new PresenceModule.
func NewModule(logger types.Logger) *PresenceModule {
	return &PresenceModule{
		tracker:       NewMemoryTracker(),
		redisAddr:     os.Getenv("REDIS_ADDR"),
		redisPassword: os.Getenv("REDIS_PASSWORD"),
		logger:        logger,
	}
}

// Name returns the module name.
func (m *PresenceModule) Name() string {
	return "presence"
}

// Start connects to Redis when configured.
func (m *PresenceModule) Start(ctx context.Context) error {
	if m.redisAddr == "" {
		m.logger.Info("Presence module started", "backend", "memory")
		return nil
	}

	m.client = redis.NewClient(&redis.Options{
		Addr:         m.redisAddr,
		Password:     m.redisPassword,
		PoolSize:     20,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := m.client.Ping(ctx).Err(); err != nil {
		_ = m.client.Close()
		m.client = nil
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	m.tracker = NewRedisTracker(m.client, DefaultKey)
	m.logger.Info("Presence module started", "backend", "redis", "addr", m.redisAddr)
	return nil
}

// Stop closes the Redis connection.
func (m *PresenceModule) Stop(_ context.Context) error {
	if m.client != nil {
		if err := m.client.Close(); err != nil {
			return fmt.Errorf("failed to close Redis connection: %w", err)
		}
	}
	m.logger.Info("Presence module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *PresenceModule) Health(ctx context.Context) mono.HealthStatus {
	backend := "memory"
	if rt, ok := m.tracker.(*RedisTracker); ok {
		backend = "redis"
		if err := rt.Ping(ctx); err != nil {
			return mono.HealthStatus{
				Healthy: false,
				Message: fmt.Sprintf("redis ping failed: %v", err),
			}
		}
	}

	online, err := m.tracker.Online(ctx)
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: err.Error(),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"backend":      backend,
			"online_users": len(online),
		},
	}
}

// Connected implements Tracker using the backend selected at Start.
func (m *PresenceModule) Connected(ctx context.Context, userID string) (int64, error) {
	return m.tracker.Connected(ctx, userID)
}

// Disconnected implements Tracker.
func (m *PresenceModule) Disconnected(ctx context.Context, userID string) (int64, error) {
	return m.tracker.Disconnected(ctx, userID)
}

// IsOnline implements Tracker.
func (m *PresenceModule) IsOnline(ctx context.Context, userID string) (bool, error) {
	return m.tracker.IsOnline(ctx, userID)
}

// Online implements Tracker.
func (m *PresenceModule) Online(ctx context.Context) ([]string, error) {
	return m.tracker.Online(ctx)
}
