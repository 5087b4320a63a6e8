package blog

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/blog-realtime-demo/domain/blog"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// BlogPort defines the interface other modules use to reach posts and comments.
type BlogPort interface {
	CreatePost(ctx context.Context, req CreatePostRequest) (*domain.Post, error)
	PublishPost(ctx context.Context, postID string) (*domain.Post, error)
	GetPost(ctx context.Context, postID string) (*domain.Post, error)
	ListComments(ctx context.Context, postID string) ([]*domain.Comment, error)
	CreateComment(ctx context.Context, draft domain.Comment) (*domain.Comment, error)
	GetComment(ctx context.Context, commentID string) (*domain.Comment, error)
	UpdateComment(ctx context.Context, commentID, content string) (*domain.Comment, error)
	DeleteComment(ctx context.Context, commentID string) (*domain.Comment, error)
	SetPostLike(ctx context.Context, postID, userID string, mode domain.LikeMode) (domain.LikeResult, error)
	SetCommentLike(ctx context.Context, commentID, userID string, mode domain.LikeMode) (domain.LikeResult, error)
}

// BlogAdapter implements BlogPort using the service container.
type BlogAdapter struct {
	container mono.ServiceContainer
}

var _ BlogPort = (*BlogAdapter)(nil)

// NewBlogAdapter creates a new BlogAdapter.
func NewBlogAdapter(container mono.ServiceContainer) *BlogAdapter {
	if container == nil {
		panic("blog: ServiceContainer is nil")
	}
	return &BlogAdapter{
		container: container,
	}
}

// CreatePost creates a post.
func (a *BlogAdapter) CreatePost(ctx context.Context, req CreatePostRequest) (*domain.Post, error) {
	var resp PostResponse
	if err := call(ctx, a.container, ServiceCreatePost, &req, &resp); err != nil {
		return nil, err
	}
	return resp.post()
}

// PublishPost publishes a draft post.
func (a *BlogAdapter) PublishPost(ctx context.Context, postID string) (*domain.Post, error) {
	req := PostRequest{PostID: postID}
	var resp PostResponse
	if err := call(ctx, a.container, ServicePublishPost, &req, &resp); err != nil {
		return nil, err
	}
	return resp.post()
}

// GetPost retrieves a post with its like set.
func (a *BlogAdapter) GetPost(ctx context.Context, postID string) (*domain.Post, error) {
	req := PostRequest{PostID: postID}
	var resp PostResponse
	if err := call(ctx, a.container, ServiceGetPost, &req, &resp); err != nil {
		return nil, err
	}
	return resp.post()
}

// ListComments returns the comments of a post.
func (a *BlogAdapter) ListComments(ctx context.Context, postID string) ([]*domain.Comment, error) {
	req := PostRequest{PostID: postID}
	var resp CommentsResponse
	if err := call(ctx, a.container, ServiceListComments, &req, &resp); err != nil {
		return nil, err
	}
	if resp.Failure != nil {
		return nil, resp.Failure.Err()
	}
	return resp.Comments, nil
}

// CreateComment persists draft and returns the stored comment.
func (a *BlogAdapter) CreateComment(ctx context.Context, draft domain.Comment) (*domain.Comment, error) {
	req := CreateCommentRequest{
		PostID:     draft.PostID,
		ParentID:   draft.ParentID,
		Content:    draft.Content,
		AuthorID:   draft.AuthorID,
		AuthorName: draft.AuthorName,
	}
	var resp CommentResponse
	if err := call(ctx, a.container, ServiceCreateComment, &req, &resp); err != nil {
		return nil, err
	}
	return resp.comment()
}

// GetComment retrieves a comment with its like set.
func (a *BlogAdapter) GetComment(ctx context.Context, commentID string) (*domain.Comment, error) {
	req := CommentRequest{CommentID: commentID}
	var resp CommentResponse
	if err := call(ctx, a.container, ServiceGetComment, &req, &resp); err != nil {
		return nil, err
	}
	return resp.comment()
}

// UpdateComment replaces a comment body.
func (a *BlogAdapter) UpdateComment(ctx context.Context, commentID, content string) (*domain.Comment, error) {
	req := UpdateCommentRequest{CommentID: commentID, Content: content}
	var resp CommentResponse
	if err := call(ctx, a.container, ServiceUpdateComment, &req, &resp); err != nil {
		return nil, err
	}
	return resp.comment()
}

// DeleteComment removes a comment and its replies.
func (a *BlogAdapter) DeleteComment(ctx context.Context, commentID string) (*domain.Comment, error) {
	req := CommentRequest{CommentID: commentID}
	var resp CommentResponse
	if err := call(ctx, a.container, ServiceDeleteComment, &req, &resp); err != nil {
		return nil, err
	}
	return resp.comment()
}

// SetPostLike applies a like mode to a post.
func (a *BlogAdapter) SetPostLike(ctx context.Context, postID, userID string, mode domain.LikeMode) (domain.LikeResult, error) {
	return a.setLike(ctx, ServiceSetPostLike, postID, userID, mode)
}

// SetCommentLike applies a like mode to a comment.
func (a *BlogAdapter) SetCommentLike(ctx context.Context, commentID, userID string, mode domain.LikeMode) (domain.LikeResult, error) {
	return a.setLike(ctx, ServiceSetCommentLike, commentID, userID, mode)
}

func (a *BlogAdapter) setLike(ctx context.Context, service, targetID, userID string, mode domain.LikeMode) (domain.LikeResult, error) {
	req := LikeRequest{TargetID: targetID, UserID: userID, Mode: mode}
	var resp LikeResponse
	if err := call(ctx, a.container, service, &req, &resp); err != nil {
		return domain.LikeResult{}, err
	}
	if resp.Failure != nil {
		return domain.LikeResult{}, resp.Failure.Err()
	}
	return resp.Result, nil
}

func call[Req, Resp any](ctx context.Context, container mono.ServiceContainer, service string, req *Req, resp *Resp) error {
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return fmt.Errorf("%s request failed: %w", service, err)
	}
	return nil
}

func (r *PostResponse) post() (*domain.Post, error) {
	if r.Failure != nil {
		return nil, r.Failure.Err()
	}
	return r.Post, nil
}

func (r *CommentResponse) comment() (*domain.Comment, error) {
	if r.Failure != nil {
		return nil, r.Failure.Err()
	}
	return r.Comment, nil
}
