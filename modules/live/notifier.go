package live

import (
	"context"
	"time"

	blog "github.com/example/blog-realtime-demo/domain/blog"
	"github.com/example/blog-realtime-demo/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
)

// busNotifier publishes committed mutations on the mono EventBus.
type busNotifier struct {
	bus    mono.EventBus
	logger types.Logger
}

var _ Notifier = busNotifier{}

func (n busNotifier) CommentAdded(_ context.Context, comment *blog.Comment) {
	event := events.CommentAddedEvent{
		CommentID: comment.ID,
		PostID:    comment.PostID,
		AuthorID:  comment.AuthorID,
		Timestamp: time.Now(),
	}
	if comment.ParentID != nil {
		event.ParentID = *comment.ParentID
	}
	if err := events.CommentAddedV1.Publish(n.bus, event, nil); err != nil {
		n.logger.Warn("Failed to publish CommentAdded event", "commentID", comment.ID, "error", err)
	}
}

func (n busNotifier) CommentUpdated(_ context.Context, comment *blog.Comment, editorID string) {
	event := events.CommentUpdatedEvent{
		CommentID: comment.ID,
		PostID:    comment.PostID,
		EditorID:  editorID,
		Timestamp: time.Now(),
	}
	if err := events.CommentUpdatedV1.Publish(n.bus, event, nil); err != nil {
		n.logger.Warn("Failed to publish CommentUpdated event", "commentID", comment.ID, "error", err)
	}
}

func (n busNotifier) CommentDeleted(_ context.Context, comment *blog.Comment, deletedBy string) {
	event := events.CommentDeletedEvent{
		CommentID: comment.ID,
		PostID:    comment.PostID,
		DeletedBy: deletedBy,
		Timestamp: time.Now(),
	}
	if err := events.CommentDeletedV1.Publish(n.bus, event, nil); err != nil {
		n.logger.Warn("Failed to publish CommentDeleted event", "commentID", comment.ID, "error", err)
	}
}

func (n busNotifier) PostLikesUpdated(_ context.Context, postID, userID string, result blog.LikeResult) {
	event := events.LikesUpdatedEvent{
		PostID:    postID,
		UserID:    userID,
		Action:    result.Action(),
		Likes:     result.Count,
		Timestamp: time.Now(),
	}
	if err := events.PostLikesUpdatedV1.Publish(n.bus, event, nil); err != nil {
		n.logger.Warn("Failed to publish PostLikesUpdated event", "postID", postID, "error", err)
	}
}

func (n busNotifier) CommentLikesUpdated(_ context.Context, postID, commentID, userID string, result blog.LikeResult) {
	event := events.LikesUpdatedEvent{
		PostID:    postID,
		CommentID: commentID,
		UserID:    userID,
		Action:    result.Action(),
		Likes:     result.Count,
		Timestamp: time.Now(),
	}
	if err := events.CommentLikesUpdatedV1.Publish(n.bus, event, nil); err != nil {
		n.logger.Warn("Failed to publish CommentLikesUpdated event", "commentID", commentID, "error", err)
	}
}
