package live

import (
	"encoding/json"
	"time"

	blog "github.com/example/blog-realtime-demo/domain/blog"
)

// Inbound event names.
const (
	EventJoinPost       = "join-post"
	EventLeavePost      = "leave-post"
	EventNewComment     = "new-comment"
	EventUpdateComment  = "update-comment"
	EventDeleteComment  = "delete-comment"
	EventPostLike       = "post-like"
	EventCommentLike    = "comment-like"
	EventTypingStart    = "typing-start"
	EventTypingStop     = "typing-stop"
	EventUserOnline     = "user-online"
	EventPrivateMessage = "private-message"
)

// Outbound event names. EventPrivateMessage is used in both directions.
const (
	EventConnected           = "connected"
	EventCommentAdded        = "comment-added"
	EventCommentUpdated      = "comment-updated"
	EventCommentDeleted      = "comment-deleted"
	EventPostLikesUpdated    = "post-likes-updated"
	EventCommentLikesUpdated = "comment-likes-updated"
	EventUserTyping          = "user-typing"
	EventUserStoppedTyping   = "user-stopped-typing"
	EventUserStatus          = "user-status"
	EventCommentError        = "comment-error"
	EventPostError           = "post-error"
	EventMessageError        = "message-error"
)

// Presence statuses.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// MaxMessageLength bounds direct message bodies.
const MaxMessageLength = 2000

// Envelope is the frame exchanged in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

func encode(event string, data any) ([]byte, error) {
	return json.Marshal(outbound{Event: event, Data: data})
}

// Inbound payloads.

// RoomPayload is carried by join-post, leave-post and typing-stop.
type RoomPayload struct {
	PostID string `json:"postId" validate:"required,max=64"`
}

// NewCommentPayload is carried by new-comment.
type NewCommentPayload struct {
	PostID        string  `json:"postId" validate:"required,max=64"`
	Content       string  `json:"content" validate:"comment"`
	ParentComment *string `json:"parentComment" validate:"omitempty,min=1,max=64"`
}

// UpdateCommentPayload is carried by update-comment.
type UpdateCommentPayload struct {
	CommentID string `json:"commentId" validate:"required,max=64"`
	PostID    string `json:"postId" validate:"required,max=64"`
	Content   string `json:"content" validate:"comment"`
}

// DeleteCommentPayload is carried by delete-comment.
type DeleteCommentPayload struct {
	CommentID string `json:"commentId" validate:"required,max=64"`
	PostID    string `json:"postId" validate:"required,max=64"`
}

// PostLikePayload is carried by post-like. An empty action toggles.
type PostLikePayload struct {
	PostID string `json:"postId" validate:"required,max=64"`
	Action string `json:"action" validate:"omitempty,oneof=like unlike"`
}

// CommentLikePayload is carried by comment-like. An empty action toggles.
type CommentLikePayload struct {
	CommentID string `json:"commentId" validate:"required,max=64"`
	PostID    string `json:"postId" validate:"required,max=64"`
	Action    string `json:"action" validate:"omitempty,oneof=like unlike"`
}

// TypingStartPayload is carried by typing-start.
type TypingStartPayload struct {
	PostID string `json:"postId" validate:"required,max=64"`
	Type   string `json:"type" validate:"max=32"`
}

// UserOnlinePayload is carried by user-online.
type UserOnlinePayload struct{}

// PrivateMessagePayload is carried by an inbound private-message.
type PrivateMessagePayload struct {
	ToUserID string `json:"toUserId" validate:"required,max=64"`
	Message  string `json:"message" validate:"nonblank,max=2000"`
}

func likeMode(action string) blog.LikeMode {
	switch action {
	case string(blog.LikeModeLike):
		return blog.LikeModeLike
	case string(blog.LikeModeUnlike):
		return blog.LikeModeUnlike
	default:
		return blog.LikeModeToggle
	}
}

// Outbound payloads.

// ConnectedData is sent to a connection once its handshake succeeds.
type ConnectedData struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// CommentData is carried by comment-added and comment-updated.
type CommentData struct {
	Comment *blog.Comment `json:"comment"`
	PostID  string        `json:"postId"`
}

// CommentDeletedData is carried by comment-deleted.
type CommentDeletedData struct {
	CommentID string `json:"commentId"`
	PostID    string `json:"postId"`
}

// PostLikesData is carried by post-likes-updated.
type PostLikesData struct {
	PostID string `json:"postId"`
	Likes  int    `json:"likes"`
	Action string `json:"action"`
	UserID string `json:"userId"`
}

// CommentLikesData is carried by comment-likes-updated.
type CommentLikesData struct {
	CommentID string `json:"commentId"`
	PostID    string `json:"postId"`
	Likes     int    `json:"likes"`
	Action    string `json:"action"`
	UserID    string `json:"userId"`
}

// TypingData is carried by user-typing and user-stopped-typing.
type TypingData struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	PostID   string `json:"postId"`
	Type     string `json:"type,omitempty"`
}

// UserStatusData is carried by user-status.
type UserStatusData struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Status   string `json:"status"`
}

// PrivateMessageData is carried by an outbound private-message.
type PrivateMessageData struct {
	From         string    `json:"from"`
	FromUsername string    `json:"fromUsername"`
	To           string    `json:"to"`
	Message      string    `json:"message"`
	Timestamp    time.Time `json:"timestamp"`
}

// ErrorData is carried by the scoped error events.
type ErrorData struct {
	Error  string       `json:"error"`
	Code   string       `json:"code"`
	Fields []FieldError `json:"fields,omitempty"`
}
