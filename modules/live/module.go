package live

import (
	"context"
	"fmt"

	user "github.com/example/blog-realtime-demo/domain/user"
	"github.com/example/blog-realtime-demo/events"
	"github.com/example/blog-realtime-demo/modules/auth"
	"github.com/example/blog-realtime-demo/modules/blog"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
)

// LiveModule hosts the live Service and publishes its mutations on the
// EventBus.
type LiveModule struct {
	service  *Service
	store    Store
	auth     *auth.AuthAdapter
	presence PresenceTracker
	eventBus mono.EventBus
	cfg      Config
	logger   types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*LiveModule)(nil)
	_ mono.DependentModule       = (*LiveModule)(nil)
	_ mono.EventBusAwareModule   = (*LiveModule)(nil)
	_ mono.EventEmitterModule    = (*LiveModule)(nil)
	_ mono.HealthCheckableModule = (*LiveModule)(nil)
)

// NewModule creates a new LiveModule.
func NewModule(logger types.Logger) *LiveModule {
	return &LiveModule{
		cfg:    LoadConfig(),
		logger: logger,
	}
}

// Name returns the module name.
func (m *LiveModule) Name() string {
	return "live"
}

// Dependencies returns the list of module dependencies.
func (m *LiveModule) Dependencies() []string {
	return []string{"auth", "blog"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *LiveModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.auth = auth.NewAuthAdapter(container)
	case "blog":
		m.store = blog.NewBlogAdapter(container)
	}
}

// SetPresence sets the presence tracker (called from main.go).
func (m *LiveModule) SetPresence(tracker PresenceTracker) {
	m.presence = tracker
}

// SetEventBus receives the EventBus from the framework.
func (m *LiveModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *LiveModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.CommentAddedV1.ToBase(),
		events.CommentUpdatedV1.ToBase(),
		events.CommentDeletedV1.ToBase(),
		events.PostLikesUpdatedV1.ToBase(),
		events.CommentLikesUpdatedV1.ToBase(),
	}
}

// Start builds the live service.
func (m *LiveModule) Start(_ context.Context) error {
	if m.auth == nil {
		return fmt.Errorf("auth adapter dependency not set")
	}
	if m.store == nil {
		return fmt.Errorf("blog adapter dependency not set")
	}

	m.service = NewService(m.store, m.auth, m.auth, m.presence, m.logger, m.cfg)
	if m.eventBus != nil {
		m.service.SetNotifier(busNotifier{bus: m.eventBus, logger: m.logger})
	}

	m.logger.Info("Live module started",
		"eventsPerSecond", m.cfg.EventsPerSecond,
		"eventBurst", m.cfg.EventBurst,
		"sendBuffer", m.cfg.SendBuffer)
	return nil
}

// Stop drains in-flight mutations and closes every connection queue.
func (m *LiveModule) Stop(ctx context.Context) error {
	if m.service == nil {
		return nil
	}
	clients := m.service.Registry().ClientCount()
	if err := m.service.Shutdown(ctx); err != nil {
		m.logger.Warn("Live shutdown incomplete", "error", err)
	}
	m.logger.Info("Live module stopped", "clients", clients)
	return nil
}

// Health returns the health status.
func (m *LiveModule) Health(_ context.Context) mono.HealthStatus {
	if m.service == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "service not started",
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"connected_clients": m.service.Registry().ClientCount(),
			"rooms":             m.service.Registry().RoomCount(),
			"active_lanes":      m.service.ActiveLanes(),
		},
	}
}

// Handshake authenticates a connection credential.
func (m *LiveModule) Handshake(ctx context.Context, credential string) (user.Identity, error) {
	if m.service == nil {
		return user.Identity{}, fmt.Errorf("%w: live service not started", ErrUnauthenticated)
	}
	return m.service.Handshake(ctx, credential)
}

// Connect registers a connection for identity.
func (m *LiveModule) Connect(ctx context.Context, identity user.Identity) *Client {
	return m.service.Connect(ctx, identity)
}

// Dispatch routes one inbound frame from c.
func (m *LiveModule) Dispatch(ctx context.Context, c *Client, raw []byte) {
	m.service.Dispatch(ctx, c, raw)
}

// Disconnect releases c.
func (m *LiveModule) Disconnect(ctx context.Context, c *Client) {
	m.service.Disconnect(ctx, c)
}

// ClientCount returns the number of open live connections.
func (m *LiveModule) ClientCount() int {
	if m.service == nil {
		return 0
	}
	return m.service.Registry().ClientCount()
}

// RoomSize returns the number of connections watching postID.
func (m *LiveModule) RoomSize(postID string) int {
	if m.service == nil {
		return 0
	}
	return m.service.Registry().RoomSize(postID)
}
