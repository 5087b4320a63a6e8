package blog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/example/blog-realtime-demo/database"
	domain "github.com/example/blog-realtime-demo/domain/blog"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BlogModule owns posts, comments and like sets and serves them over the
// service container.
type BlogModule struct {
	db     *gorm.DB
	repo   *Repository
	dbPath string
	debug  bool
	logger types.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*BlogModule)(nil)
var _ mono.ServiceProviderModule = (*BlogModule)(nil)
var _ mono.HealthCheckableModule = (*BlogModule)(nil)

// NewModule creates a new BlogModule.
func NewModule(logger types.Logger) *BlogModule {
	dbPath := os.Getenv("BLOG_DB_PATH")
	if dbPath == "" {
		dbPath = "blog.db"
	}
	return &BlogModule{
		dbPath: dbPath,
		debug:  os.Getenv("DB_DEBUG") == "true",
		logger: logger,
	}
}

// Name returns the module name.
func (m *BlogModule) Name() string {
	return "blog"
}

// Start opens the blog store and migrates its tables.
func (m *BlogModule) Start(_ context.Context) error {
	db, err := database.OpenSQLite(m.dbPath, m.debug)
	if err != nil {
		return err
	}
	m.db = db
	m.repo = NewRepository(db)

	if err := m.repo.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	m.logger.Info("Blog module started", "database", m.dbPath)
	return nil
}

// Stop closes the blog store.
func (m *BlogModule) Stop(_ context.Context) error {
	if err := database.Close(m.db); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	m.logger.Info("Blog module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *BlogModule) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get database connection: %v", err),
		}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	var posts, comments int64
	m.db.WithContext(ctx).Model(&domain.Post{}).Count(&posts)
	m.db.WithContext(ctx).Model(&domain.Comment{}).Count(&comments)

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"database": m.dbPath,
			"posts":    posts,
			"comments": comments,
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *BlogModule) RegisterServices(container mono.ServiceContainer) error {
	registrations := []struct {
		name     string
		register func() error
	}{
		{ServiceCreatePost, func() error {
			return helper.RegisterTypedRequestReplyService(container, ServiceCreatePost, json.Unmarshal, json.Marshal, m.handleCreatePost)
		}},
		{ServicePublishPost, func() error {
			return helper.RegisterTypedRequestReplyService(container, ServicePublishPost, json.Unmarshal, json.Marshal, m.handlePublishPost)
		}},
		{ServiceGetPost, func() error {
			return helper.RegisterTypedRequestReplyService(container, ServiceGetPost, json.Unmarshal, json.Marshal, m.handleGetPost)
		}},
		{ServiceListComments, func() error {
			return helper.RegisterTypedRequestReplyService(container, ServiceListComments, json.Unmarshal, json.Marshal, m.handleListComments)
		}},
		{ServiceCreateComment, func() error {
			return helper.RegisterTypedRequestReplyService(container, ServiceCreateComment, json.Unmarshal, json.Marshal, m.handleCreateComment)
		}},
		{ServiceGetComment, func() error {
			return helper.RegisterTypedRequestReplyService(container, ServiceGetComment, json.Unmarshal, json.Marshal, m.handleGetComment)
		}},
		{ServiceUpdateComment, func() error {
			return helper.RegisterTypedRequestReplyService(container, ServiceUpdateComment, json.Unmarshal, json.Marshal, m.handleUpdateComment)
		}},
		{ServiceDeleteComment, func() error {
			return helper.RegisterTypedRequestReplyService(container, ServiceDeleteComment, json.Unmarshal, json.Marshal, m.handleDeleteComment)
		}},
		{ServiceSetPostLike, func() error {
			return helper.RegisterTypedRequestReplyService(container, ServiceSetPostLike, json.Unmarshal, json.Marshal, m.handleSetPostLike)
		}},
		{ServiceSetCommentLike, func() error {
			return helper.RegisterTypedRequestReplyService(container, ServiceSetCommentLike, json.Unmarshal, json.Marshal, m.handleSetCommentLike)
		}},
	}

	names := make([]string, 0, len(registrations))
	for _, r := range registrations {
		if err := r.register(); err != nil {
			return fmt.Errorf("failed to register %s service: %w", r.name, err)
		}
		names = append(names, r.name)
	}

	m.logger.Info("Registered blog services", "services", names)
	return nil
}

// Repository returns the blog repository. It is nil until Start.
func (m *BlogModule) Repository() *Repository {
	return m.repo
}

func (m *BlogModule) handleCreatePost(ctx context.Context, req CreatePostRequest, _ *mono.Msg) (PostResponse, error) {
	post := &domain.Post{
		ID:         uuid.New().String(),
		Title:      req.Title,
		Content:    req.Content,
		AuthorID:   req.AuthorID,
		AuthorName: req.AuthorName,
		Status:     domain.StatusDraft,
	}
	if req.Publish {
		post.Status = domain.StatusPublished
	}

	if err := m.repo.CreatePost(ctx, post); err != nil {
		return PostResponse{Failure: newFailure(err)}, nil
	}

	m.logger.Info("Post created", "postID", post.ID, "authorID", post.AuthorID, "status", post.Status)
	return PostResponse{Post: post}, nil
}

func (m *BlogModule) handlePublishPost(ctx context.Context, req PostRequest, _ *mono.Msg) (PostResponse, error) {
	post, err := m.repo.PublishPost(ctx, req.PostID)
	if err != nil {
		return PostResponse{Failure: newFailure(err)}, nil
	}
	m.logger.Info("Post published", "postID", post.ID)
	return PostResponse{Post: post}, nil
}

func (m *BlogModule) handleGetPost(ctx context.Context, req PostRequest, _ *mono.Msg) (PostResponse, error) {
	post, err := m.repo.GetPost(ctx, req.PostID)
	if err != nil {
		return PostResponse{Failure: newFailure(err)}, nil
	}
	return PostResponse{Post: post}, nil
}

func (m *BlogModule) handleListComments(ctx context.Context, req PostRequest, _ *mono.Msg) (CommentsResponse, error) {
	comments, err := m.repo.ListComments(ctx, req.PostID)
	if err != nil {
		return CommentsResponse{Failure: newFailure(err)}, nil
	}
	return CommentsResponse{Comments: comments}, nil
}

func (m *BlogModule) handleCreateComment(ctx context.Context, req CreateCommentRequest, _ *mono.Msg) (CommentResponse, error) {
	comment := &domain.Comment{
		ID:         uuid.New().String(),
		Content:    req.Content,
		AuthorID:   req.AuthorID,
		AuthorName: req.AuthorName,
		PostID:     req.PostID,
		ParentID:   req.ParentID,
	}
	if err := m.repo.CreateComment(ctx, comment); err != nil {
		return CommentResponse{Failure: newFailure(err)}, nil
	}
	return CommentResponse{Comment: comment}, nil
}

func (m *BlogModule) handleGetComment(ctx context.Context, req CommentRequest, _ *mono.Msg) (CommentResponse, error) {
	comment, err := m.repo.GetComment(ctx, req.CommentID)
	if err != nil {
		return CommentResponse{Failure: newFailure(err)}, nil
	}
	return CommentResponse{Comment: comment}, nil
}

func (m *BlogModule) handleUpdateComment(ctx context.Context, req UpdateCommentRequest, _ *mono.Msg) (CommentResponse, error) {
	comment, err := m.repo.UpdateComment(ctx, req.CommentID, req.Content)
	if err != nil {
		return CommentResponse{Failure: newFailure(err)}, nil
	}
	return CommentResponse{Comment: comment}, nil
}

func (m *BlogModule) handleDeleteComment(ctx context.Context, req CommentRequest, _ *mono.Msg) (CommentResponse, error) {
	comment, err := m.repo.DeleteComment(ctx, req.CommentID)
	if err != nil {
		return CommentResponse{Failure: newFailure(err)}, nil
	}
	return CommentResponse{Comment: comment}, nil
}

func (m *BlogModule) handleSetPostLike(ctx context.Context, req LikeRequest, _ *mono.Msg) (LikeResponse, error) {
	result, err := m.repo.SetPostLike(ctx, req.TargetID, req.UserID, req.Mode)
	if err != nil {
		return LikeResponse{Failure: newFailure(err)}, nil
	}
	return LikeResponse{Result: result}, nil
}

func (m *BlogModule) handleSetCommentLike(ctx context.Context, req LikeRequest, _ *mono.Msg) (LikeResponse, error) {
	result, err := m.repo.SetCommentLike(ctx, req.TargetID, req.UserID, req.Mode)
	if err != nil {
		return LikeResponse{Failure: newFailure(err)}, nil
	}
	return LikeResponse{Result: result}, nil
}
