// Package live is the real-time fan-out layer: it authenticates connections,
// tracks which posts each connection watches, runs comment and like
// mutations against the store and broadcasts the results to the post's room.
package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	user "github.com/example/blog-realtime-demo/domain/user"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/go-playground/validator/v10"
)

// Service wires the authenticator, registry and router together for every
// connection.
type Service struct {
	store     Store
	auth      Authenticator
	directory Directory
	presence  PresenceTracker
	notifier  Notifier
	logger    types.Logger
	cfg       Config

	registry *Registry
	lanes    *lanes
	router   map[string]route
	validate *validator.Validate
}

// NewService creates a new Service. presence may be nil, in which case the
// registry's identity index decides when a user goes offline.
func NewService(store Store, auth Authenticator, directory Directory, presence PresenceTracker, logger types.Logger, cfg Config) *Service {
	s := &Service{
		store:     store,
		auth:      auth,
		directory: directory,
		presence:  presence,
		notifier:  nopNotifier{},
		logger:    logger,
		cfg:       cfg,
		registry:  NewRegistry(),
		lanes:     newLanes(),
		validate:  newValidator(),
	}
	s.router = s.routes()
	return s
}

// SetNotifier installs the Notifier told about committed mutations.
func (s *Service) SetNotifier(n Notifier) {
	if n == nil {
		n = nopNotifier{}
	}
	s.notifier = n
}

// Registry returns the room registry.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Handshake resolves credential to an identity. Every failure wraps
// ErrUnauthenticated.
func (s *Service) Handshake(ctx context.Context, credential string) (user.Identity, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return user.Identity{}, fmt.Errorf("%w: missing credential", ErrUnauthenticated)
	}

	identity, err := s.auth.Authenticate(ctx, credential)
	if err != nil {
		return user.Identity{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if identity.Anonymous() {
		return user.Identity{}, fmt.Errorf("%w: credential has no subject", ErrUnauthenticated)
	}
	return identity, nil
}

// Connect registers a connection for an authenticated identity and greets it.
func (s *Service) Connect(ctx context.Context, identity user.Identity) *Client {
	c := newClient(identity, s.cfg)
	s.registry.Add(c)

	if s.presence != nil {
		if _, err := s.presence.Connected(ctx, identity.ID); err != nil {
			s.logger.Warn("Failed to record presence", "userID", identity.ID, "error", err)
		}
	}

	s.send(c, EventConnected, ConnectedData{UserID: identity.ID, Username: identity.Username})
	s.logger.Info("Live connection opened", "clientID", c.ID, "userID", identity.ID)
	return c
}

// Dispatch routes one inbound frame. Frames that cannot be decoded or name an
// unknown event are ignored. Handler failures are reported to c only.
func (s *Service) Dispatch(ctx context.Context, c *Client, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Event == "" {
		s.logger.Debug("Ignoring malformed frame", "clientID", c.ID)
		return
	}

	r, ok := s.router[env.Event]
	if !ok {
		s.logger.Debug("Ignoring unknown event", "clientID", c.ID, "event", env.Event)
		return
	}

	if !c.allow() {
		s.fail(c, r.errorEvent, errRateLimited)
		return
	}

	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("Handler panicked", "event", env.Event, "clientID", c.ID, "panic", p)
			s.fail(c, r.errorEvent, classify(fmt.Errorf("panic: %v", p)))
		}
	}()

	if err := r.handle(ctx, c, env.Data); err != nil {
		s.fail(c, r.errorEvent, err)
	}
}

// Disconnect removes c from every room, closes its queue and, when it was the
// identity's last connection, tells the remaining co-members the user went
// offline. Calling it more than once is a no-op.
func (s *Service) Disconnect(ctx context.Context, c *Client) {
	rooms, ok := s.registry.Drop(c)
	if !ok {
		return
	}
	c.close()

	remaining := int64(s.registry.UserConnections(c.Identity.ID))
	if s.presence != nil {
		n, err := s.presence.Disconnected(ctx, c.Identity.ID)
		if err != nil {
			s.logger.Warn("Failed to record presence", "userID", c.Identity.ID, "error", err)
		} else {
			remaining = n
		}
	}

	if remaining == 0 && len(rooms) > 0 {
		frame, err := s.encode(EventUserStatus, UserStatusData{
			UserID:   c.Identity.ID,
			Username: c.Identity.Username,
			Status:   StatusOffline,
		})
		if err == nil {
			s.registry.Fanout(rooms, frame, nil)
		}
	}

	s.logger.Info("Live connection closed", "clientID", c.ID, "userID", c.Identity.ID, "rooms", len(rooms))
}

// Wait blocks until every queued mutation has been committed and broadcast.
func (s *Service) Wait() {
	s.lanes.wait()
}

// Shutdown waits for queued mutations, bounded by ctx, then closes every
// remaining connection queue.
func (s *Service) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.lanes.wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = fmt.Errorf("live shutdown: %w", ctx.Err())
	}

	for _, c := range s.registry.Clients() {
		s.Disconnect(context.WithoutCancel(ctx), c)
	}
	return err
}

// ActiveLanes returns the number of rooms with mutations in flight.
func (s *Service) ActiveLanes() int {
	return s.lanes.active()
}

// inRoom runs job on roomID's lane. Jobs outlive the connection that queued
// them and failures are reported to that connection when it is still open.
func (s *Service) inRoom(ctx context.Context, c *Client, roomID, errorEvent string, job func(ctx context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	s.lanes.submit(roomID, func() {
		defer func() {
			if p := recover(); p != nil {
				s.logger.Error("Room job panicked", "roomID", roomID, "clientID", c.ID, "panic", p)
				s.fail(c, errorEvent, classify(fmt.Errorf("panic: %v", p)))
			}
		}()
		if err := job(ctx); err != nil {
			s.fail(c, errorEvent, err)
		}
	})
}

func (s *Service) encode(event string, data any) ([]byte, error) {
	frame, err := encode(event, data)
	if err != nil {
		s.logger.Error("Failed to encode frame", "event", event, "error", err)
		return nil, err
	}
	return frame, nil
}

func (s *Service) send(c *Client, event string, data any) {
	frame, err := s.encode(event, data)
	if err != nil {
		return
	}
	if !c.enqueue(frame) {
		s.logger.Debug("Dropped frame", "clientID", c.ID, "event", event)
	}
}

// broadcast queues an event for roomID, skipping exclude when it is set.
func (s *Service) broadcast(roomID, event string, data any, exclude *Client) {
	frame, err := s.encode(event, data)
	if err != nil {
		return
	}
	n := s.registry.Broadcast(roomID, frame, exclude)
	s.logger.Debug("Broadcast", "roomID", roomID, "event", event, "delivered", n)
}

// fail reports err to c alone on errorEvent.
func (s *Service) fail(c *Client, errorEvent string, err error) {
	err = classify(err)
	if errors.Is(err, ErrPersistence) {
		s.logger.Error("Live mutation failed", "clientID", c.ID, "userID", c.Identity.ID, "error", errors.Unwrap(err))
	} else {
		s.logger.Debug("Live event rejected", "clientID", c.ID, "event", errorEvent, "error", err)
	}

	data := ErrorData{Error: err.Error(), Code: errorCode(err)}
	var verr *ValidationError
	if errors.As(err, &verr) {
		data.Fields = verr.Fields
	}
	s.send(c, errorEvent, data)
}
