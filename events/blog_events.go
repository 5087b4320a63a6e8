package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// CommentAddedEvent is emitted after a comment is persisted.
type CommentAddedEvent struct {
	CommentID string    `json:"comment_id"`
	PostID    string    `json:"post_id"`
	ParentID  string    `json:"parent_id,omitempty"`
	AuthorID  string    `json:"author_id"`
	Timestamp time.Time `json:"timestamp"`
}

// CommentUpdatedEvent is emitted after a comment body is edited.
type CommentUpdatedEvent struct {
	CommentID string    `json:"comment_id"`
	PostID    string    `json:"post_id"`
	EditorID  string    `json:"editor_id"`
	Timestamp time.Time `json:"timestamp"`
}

// CommentDeletedEvent is emitted after a comment is removed.
type CommentDeletedEvent struct {
	CommentID string    `json:"comment_id"`
	PostID    string    `json:"post_id"`
	DeletedBy string    `json:"deleted_by"`
	Timestamp time.Time `json:"timestamp"`
}

// LikesUpdatedEvent is emitted after a post or comment like set changes.
// CommentID is empty for post likes.
type LikesUpdatedEvent struct {
	PostID    string    `json:"post_id"`
	CommentID string    `json:"comment_id,omitempty"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	Likes     int       `json:"likes"`
	Timestamp time.Time `json:"timestamp"`
}

// Event definitions for the live module.
// Subject: events.live.v1.<event-name>
var (
	CommentAddedV1 = helper.EventDefinition[CommentAddedEvent](
		"live", "CommentAdded", "v1",
	)

	CommentUpdatedV1 = helper.EventDefinition[CommentUpdatedEvent](
		"live", "CommentUpdated", "v1",
	)

	CommentDeletedV1 = helper.EventDefinition[CommentDeletedEvent](
		"live", "CommentDeleted", "v1",
	)

	PostLikesUpdatedV1 = helper.EventDefinition[LikesUpdatedEvent](
		"live", "PostLikesUpdated", "v1",
	)

	CommentLikesUpdatedV1 = helper.EventDefinition[LikesUpdatedEvent](
		"live", "CommentLikesUpdated", "v1",
	)
)
