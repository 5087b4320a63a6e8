package live

import (
	"context"

	blog "github.com/example/blog-realtime-demo/domain/blog"
	user "github.com/example/blog-realtime-demo/domain/user"
)

// Store is the persistence collaborator for posts, comments and like sets.
// Missing entities are reported with the domain/blog not-found errors.
type Store interface {
	GetPost(ctx context.Context, postID string) (*blog.Post, error)
	GetComment(ctx context.Context, commentID string) (*blog.Comment, error)
	CreateComment(ctx context.Context, draft blog.Comment) (*blog.Comment, error)
	UpdateComment(ctx context.Context, commentID, content string) (*blog.Comment, error)
	DeleteComment(ctx context.Context, commentID string) (*blog.Comment, error)
	SetPostLike(ctx context.Context, postID, userID string, mode blog.LikeMode) (blog.LikeResult, error)
	SetCommentLike(ctx context.Context, commentID, userID string, mode blog.LikeMode) (blog.LikeResult, error)
}

// Authenticator resolves a bearer credential to an identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (user.Identity, error)
}

// Directory looks up registered users.
type Directory interface {
	LookupUser(ctx context.Context, userID string) (user.Identity, error)
}

// PresenceTracker counts open connections per identity.
type PresenceTracker interface {
	Connected(ctx context.Context, userID string) (int64, error)
	Disconnected(ctx context.Context, userID string) (int64, error)
}

// Notifier is told about every committed mutation after it is broadcast.
type Notifier interface {
	CommentAdded(ctx context.Context, comment *blog.Comment)
	CommentUpdated(ctx context.Context, comment *blog.Comment, editorID string)
	CommentDeleted(ctx context.Context, comment *blog.Comment, deletedBy string)
	PostLikesUpdated(ctx context.Context, postID, userID string, result blog.LikeResult)
	CommentLikesUpdated(ctx context.Context, postID, commentID, userID string, result blog.LikeResult)
}

type nopNotifier struct{}

func (nopNotifier) CommentAdded(context.Context, *blog.Comment) {}

func (nopNotifier) CommentUpdated(context.Context, *blog.Comment, string) {}

func (nopNotifier) CommentDeleted(context.Context, *blog.Comment, string) {}

func (nopNotifier) PostLikesUpdated(context.Context, string, string, blog.LikeResult) {}

func (nopNotifier) CommentLikesUpdated(context.Context, string, string, string, blog.LikeResult) {}
