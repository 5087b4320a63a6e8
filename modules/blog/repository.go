package blog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/example/blog-realtime-demo/domain/blog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// likeSet describes one of the like join tables.
type likeSet struct {
	column string
	model  func() any
	row    func(ownerID, userID string, at time.Time) any
}

var (
	postLikes = likeSet{
		column: "post_id",
		model:  func() any { return &domain.PostLike{} },
		row: func(ownerID, userID string, at time.Time) any {
			return &domain.PostLike{PostID: ownerID, UserID: userID, CreatedAt: at}
		},
	}
	commentLikes = likeSet{
		column: "comment_id",
		model:  func() any { return &domain.CommentLike{} },
		row: func(ownerID, userID string, at time.Time) any {
			return &domain.CommentLike{CommentID: ownerID, UserID: userID, CreatedAt: at}
		},
	}
)

// Repository provides access to posts, comments and their like sets.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new blog repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates or updates the blog tables.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&domain.Post{}, &domain.Comment{}, &domain.PostLike{}, &domain.CommentLike{})
}

// CreatePost saves a new post.
func (r *Repository) CreatePost(ctx context.Context, post *domain.Post) error {
	if strings.TrimSpace(post.Title) == "" || strings.TrimSpace(post.Content) == "" {
		return domain.ErrInvalidPost
	}
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	post.Likes = []string{}
	return nil
}

// PublishPost marks a post as published.
func (r *Repository) PublishPost(ctx context.Context, id string) (*domain.Post, error) {
	result := r.db.WithContext(ctx).Model(&domain.Post{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": domain.StatusPublished, "updated_at": time.Now()})
	if err := result.Error; err != nil {
		return nil, fmt.Errorf("failed to publish post: %w", err)
	}
	if result.RowsAffected == 0 {
		return nil, domain.ErrPostNotFound
	}
	return r.GetPost(ctx, id)
}

// GetPost retrieves a post and its like set.
func (r *Repository) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	var post domain.Post
	db := r.db.WithContext(ctx)
	if err := db.First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to find post: %w", err)
	}

	likes, err := loadLikes(db, postLikes, id)
	if err != nil {
		return nil, err
	}
	post.Likes = likes
	return &post, nil
}

// ListComments returns the comments of a post, oldest first.
func (r *Repository) ListComments(ctx context.Context, postID string) ([]*domain.Comment, error) {
	db := r.db.WithContext(ctx)

	var comments []*domain.Comment
	if err := db.Where("post_id = ?", postID).Order("created_at ASC").Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	if len(comments) == 0 {
		return comments, nil
	}

	ids := make([]string, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
		c.Likes = []string{}
	}

	var rows []domain.CommentLike
	if err := db.Where("comment_id IN ?", ids).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load comment likes: %w", err)
	}

	byID := make(map[string]*domain.Comment, len(comments))
	for _, c := range comments {
		byID[c.ID] = c
	}
	for _, row := range rows {
		if c, ok := byID[row.CommentID]; ok {
			c.Likes = append(c.Likes, row.UserID)
		}
	}
	return comments, nil
}

// CreateComment inserts a comment with its body trimmed. The post must exist
// and be published and a parent, when set, must be a top-level comment on the
// same post.
func (r *Repository) CreateComment(ctx context.Context, comment *domain.Comment) error {
	if !domain.ValidCommentContent(comment.Content) {
		return domain.ErrInvalidContent
	}
	comment.Content = domain.NormalizeCommentContent(comment.Content)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post domain.Post
		if err := tx.Select("id", "status").First(&post, "id = ?", comment.PostID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrPostNotFound
			}
			return err
		}
		if !post.Published() {
			return domain.ErrPostNotPublished
		}

		if comment.ParentID != nil {
			var parent domain.Comment
			if err := tx.Select("id", "post_id", "parent_id").First(&parent, "id = ?", *comment.ParentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.ErrCommentNotFound
				}
				return err
			}
			if parent.PostID != comment.PostID || parent.ParentID != nil {
				return domain.ErrInvalidParent
			}
		}

		return tx.Create(comment).Error
	})
	if err != nil {
		return wrapUnlessSentinel("failed to create comment", err)
	}
	comment.Likes = []string{}
	return nil
}

// GetComment retrieves a comment and its like set.
func (r *Repository) GetComment(ctx context.Context, id string) (*domain.Comment, error) {
	return getComment(r.db.WithContext(ctx), id)
}

// UpdateComment replaces the body of a comment and marks it edited.
func (r *Repository) UpdateComment(ctx context.Context, id, content string) (*domain.Comment, error) {
	if !domain.ValidCommentContent(content) {
		return nil, domain.ErrInvalidContent
	}
	content = domain.NormalizeCommentContent(content)
	var updated *domain.Comment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.Comment{}).
			Where("id = ?", id).
			Updates(map[string]any{"content": content, "is_edited": true, "updated_at": time.Now()})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrCommentNotFound
		}

		c, err := getComment(tx, id)
		if err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, wrapUnlessSentinel("failed to update comment", err)
	}
	return updated, nil
}

// DeleteComment removes a comment together with its replies and their likes,
// returning the removed comment.
func (r *Repository) DeleteComment(ctx context.Context, id string) (*domain.Comment, error) {
	var deleted domain.Comment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&deleted, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrCommentNotFound
			}
			return err
		}

		ids := []string{id}
		frontier := []string{id}
		for len(frontier) > 0 {
			var children []string
			if err := tx.Model(&domain.Comment{}).Where("parent_id IN ?", frontier).Pluck("id", &children).Error; err != nil {
				return err
			}
			ids = append(ids, children...)
			frontier = children
		}

		if err := tx.Where("comment_id IN ?", ids).Delete(&domain.CommentLike{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&domain.Comment{}).Error
	})
	if err != nil {
		return nil, wrapUnlessSentinel("failed to delete comment", err)
	}
	return &deleted, nil
}

// SetPostLike applies mode to userID's membership in the post's like set and
// returns the resulting state.
func (r *Repository) SetPostLike(ctx context.Context, postID, userID string, mode domain.LikeMode) (domain.LikeResult, error) {
	var result domain.LikeResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&domain.Post{}, "id = ?", postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrPostNotFound
			}
			return err
		}
		res, err := postLikes.apply(tx, postID, userID, mode)
		result = res
		return err
	})
	if err != nil {
		return domain.LikeResult{}, wrapUnlessSentinel("failed to update post likes", err)
	}
	return result, nil
}

// SetCommentLike applies mode to userID's membership in the comment's like
// set and returns the resulting state.
func (r *Repository) SetCommentLike(ctx context.Context, commentID, userID string, mode domain.LikeMode) (domain.LikeResult, error) {
	var result domain.LikeResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&domain.Comment{}, "id = ?", commentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrCommentNotFound
			}
			return err
		}
		res, err := commentLikes.apply(tx, commentID, userID, mode)
		result = res
		return err
	})
	if err != nil {
		return domain.LikeResult{}, wrapUnlessSentinel("failed to update comment likes", err)
	}
	return result, nil
}

// apply runs inside a transaction, so the membership check, the write and the
// count observe the same state.
func (s likeSet) apply(tx *gorm.DB, ownerID, userID string, mode domain.LikeMode) (domain.LikeResult, error) {
	cond := s.column + " = ? AND user_id = ?"

	var present int64
	if err := tx.Model(s.model()).Where(cond, ownerID, userID).Count(&present).Error; err != nil {
		return domain.LikeResult{}, err
	}
	liked := present > 0

	var want bool
	switch mode {
	case domain.LikeModeLike:
		want = true
	case domain.LikeModeUnlike:
		want = false
	case domain.LikeModeToggle:
		want = !liked
	default:
		return domain.LikeResult{}, domain.ErrInvalidLikeMode
	}

	switch {
	case want && !liked:
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(s.row(ownerID, userID, time.Now())).Error; err != nil {
			return domain.LikeResult{}, err
		}
	case !want && liked:
		if err := tx.Where(cond, ownerID, userID).Delete(s.model()).Error; err != nil {
			return domain.LikeResult{}, err
		}
	}

	var count int64
	if err := tx.Model(s.model()).Where(s.column+" = ?", ownerID).Count(&count).Error; err != nil {
		return domain.LikeResult{}, err
	}
	return domain.LikeResult{Liked: want, Count: int(count)}, nil
}

func getComment(db *gorm.DB, id string) (*domain.Comment, error) {
	var comment domain.Comment
	if err := db.First(&comment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}

	likes, err := loadLikes(db, commentLikes, id)
	if err != nil {
		return nil, err
	}
	comment.Likes = likes
	return &comment, nil
}

func loadLikes(db *gorm.DB, set likeSet, ownerID string) ([]string, error) {
	likes := []string{}
	if err := db.Model(set.model()).Where(set.column+" = ?", ownerID).Order("created_at ASC").Pluck("user_id", &likes).Error; err != nil {
		return nil, fmt.Errorf("failed to load likes: %w", err)
	}
	return likes, nil
}

var sentinels = []error{
	domain.ErrPostNotFound,
	domain.ErrPostNotPublished,
	domain.ErrCommentNotFound,
	domain.ErrInvalidParent,
	domain.ErrInvalidLikeMode,
	domain.ErrInvalidContent,
}

func wrapUnlessSentinel(msg string, err error) error {
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return err
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}
