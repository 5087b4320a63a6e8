package blog

import (
	"errors"

	domain "github.com/example/blog-realtime-demo/domain/blog"
)

// Service names registered in the service container.
const (
	ServiceCreatePost     = "create-post"
	ServicePublishPost    = "publish-post"
	ServiceGetPost        = "get-post"
	ServiceListComments   = "list-comments"
	ServiceCreateComment  = "create-comment"
	ServiceGetComment     = "get-comment"
	ServiceUpdateComment  = "update-comment"
	ServiceDeleteComment  = "delete-comment"
	ServiceSetPostLike    = "set-post-like"
	ServiceSetCommentLike = "set-comment-like"
)

// Failure carries a repository error across the service container.
type Failure struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var failureCodes = map[string]error{
	"post_not_found":    domain.ErrPostNotFound,
	"not_published":     domain.ErrPostNotPublished,
	"comment_not_found": domain.ErrCommentNotFound,
	"invalid_parent":    domain.ErrInvalidParent,
	"invalid_like_mode": domain.ErrInvalidLikeMode,
	"invalid_post":      domain.ErrInvalidPost,
	"invalid_content":   domain.ErrInvalidContent,
}

func newFailure(err error) *Failure {
	for code, sentinel := range failureCodes {
		if errors.Is(err, sentinel) {
			return &Failure{Code: code, Message: sentinel.Error()}
		}
	}
	return &Failure{Code: "internal", Message: err.Error()}
}

// Err converts the failure back into an error.
func (f *Failure) Err() error {
	if f == nil {
		return nil
	}
	if sentinel, ok := failureCodes[f.Code]; ok {
		return sentinel
	}
	return errors.New(f.Message)
}

// CreatePostRequest represents a create post request.
type CreatePostRequest struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	AuthorID   string `json:"author_id"`
	AuthorName string `json:"author_name"`
	Publish    bool   `json:"publish"`
}

// PostRequest identifies a post.
type PostRequest struct {
	PostID string `json:"post_id"`
}

// PostResponse carries a post.
type PostResponse struct {
	Post    *domain.Post `json:"post,omitempty"`
	Failure *Failure     `json:"failure,omitempty"`
}

// CommentsResponse carries the comments of a post.
type CommentsResponse struct {
	Comments []*domain.Comment `json:"comments"`
	Failure  *Failure          `json:"failure,omitempty"`
}

// CreateCommentRequest represents a create comment request.
type CreateCommentRequest struct {
	PostID     string  `json:"post_id"`
	ParentID   *string `json:"parent_id,omitempty"`
	Content    string  `json:"content"`
	AuthorID   string  `json:"author_id"`
	AuthorName string  `json:"author_name"`
}

// CommentRequest identifies a comment.
type CommentRequest struct {
	CommentID string `json:"comment_id"`
}

// UpdateCommentRequest represents an update comment request.
type UpdateCommentRequest struct {
	CommentID string `json:"comment_id"`
	Content   string `json:"content"`
}

// CommentResponse carries a comment.
type CommentResponse struct {
	Comment *domain.Comment `json:"comment,omitempty"`
	Failure *Failure        `json:"failure,omitempty"`
}

// LikeRequest applies a like mode to a post or comment like set.
type LikeRequest struct {
	TargetID string          `json:"target_id"`
	UserID   string          `json:"user_id"`
	Mode     domain.LikeMode `json:"mode"`
}

// LikeResponse carries the like set state after a mutation.
type LikeResponse struct {
	Result  domain.LikeResult `json:"result"`
	Failure *Failure          `json:"failure,omitempty"`
}
