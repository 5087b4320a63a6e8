// Package activity consumes the live module's events and keeps per-post
// activity counters for the HTTP API.
package activity

import (
	"context"
	"fmt"

	"github.com/example/blog-realtime-demo/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// ActivityModule is an EventConsumerModule that tallies live activity per post.
type ActivityModule struct {
	tally  *tally
	logger types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*ActivityModule)(nil)
	_ mono.EventConsumerModule   = (*ActivityModule)(nil)
	_ mono.HealthCheckableModule = (*ActivityModule)(nil)
)

// NewModule creates a new ActivityModule.
func NewModule(logger types.Logger) *ActivityModule {
	return &ActivityModule{
		tally:  newTally(),
		logger: logger,
	}
}

// Name returns the module name.
func (m *ActivityModule) Name() string {
	return "activity"
}

// Start initializes the module.
func (m *ActivityModule) Start(_ context.Context) error {
	m.logger.Info("Activity module started")
	return nil
}

// Stop shuts down the module.
func (m *ActivityModule) Stop(_ context.Context) error {
	m.logger.Info("Activity module stopped", "posts", m.tally.size())
	return nil
}

// Health returns the health status.
func (m *ActivityModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"tracked_posts": m.tally.size(),
		},
	}
}

// RegisterEventConsumers registers event handlers.
func (m *ActivityModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.CommentAddedV1, m.handleCommentAdded, m,
	); err != nil {
		return fmt.Errorf("failed to register CommentAdded consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.CommentUpdatedV1, m.handleCommentUpdated, m,
	); err != nil {
		return fmt.Errorf("failed to register CommentUpdated consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.CommentDeletedV1, m.handleCommentDeleted, m,
	); err != nil {
		return fmt.Errorf("failed to register CommentDeleted consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.PostLikesUpdatedV1, m.handlePostLikesUpdated, m,
	); err != nil {
		return fmt.Errorf("failed to register PostLikesUpdated consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.CommentLikesUpdatedV1, m.handleCommentLikesUpdated, m,
	); err != nil {
		return fmt.Errorf("failed to register CommentLikesUpdated consumer: %w", err)
	}

	m.logger.Info("Registered event consumers",
		"events", "CommentAdded, CommentUpdated, CommentDeleted, PostLikesUpdated, CommentLikesUpdated")
	return nil
}

// Event handlers

func (m *ActivityModule) handleCommentAdded(_ context.Context, event events.CommentAddedEvent, _ *mono.Msg) error {
	m.tally.record(event.PostID, event.AuthorID, event.Timestamp, func(s *PostStats) {
		s.CommentsAdded++
		if event.ParentID != "" {
			s.Replies++
		}
	})
	m.logger.Debug("Recorded comment", "postID", event.PostID, "commentID", event.CommentID)
	return nil
}

func (m *ActivityModule) handleCommentUpdated(_ context.Context, event events.CommentUpdatedEvent, _ *mono.Msg) error {
	m.tally.record(event.PostID, event.EditorID, event.Timestamp, func(s *PostStats) {
		s.CommentsUpdated++
	})
	return nil
}

func (m *ActivityModule) handleCommentDeleted(_ context.Context, event events.CommentDeletedEvent, _ *mono.Msg) error {
	m.tally.record(event.PostID, event.DeletedBy, event.Timestamp, func(s *PostStats) {
		s.CommentsDeleted++
	})
	return nil
}

func (m *ActivityModule) handlePostLikesUpdated(_ context.Context, event events.LikesUpdatedEvent, _ *mono.Msg) error {
	m.tally.record(event.PostID, event.UserID, event.Timestamp, func(s *PostStats) {
		s.PostLikes = event.Likes
		s.LikeChanges++
	})
	return nil
}

func (m *ActivityModule) handleCommentLikesUpdated(_ context.Context, event events.LikesUpdatedEvent, _ *mono.Msg) error {
	m.tally.record(event.PostID, event.UserID, event.Timestamp, func(s *PostStats) {
		s.LikeChanges++
	})
	return nil
}

// Stats returns the counters for postID. The second result is false when no
// activity has been seen for it.
func (m *ActivityModule) Stats(postID string) (PostStats, bool) {
	return m.tally.get(postID)
}

// Recent returns up to n posts ordered by most recent activity.
func (m *ActivityModule) Recent(n int) []PostStats {
	return m.tally.top(n)
}
