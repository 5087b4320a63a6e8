package blog

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Post statuses.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Comment content bounds, in characters.
const (
	MinCommentLength = 1
	MaxCommentLength = 1000
)

// NormalizeCommentContent returns content as it is stored and broadcast.
func NormalizeCommentContent(content string) string {
	return strings.TrimSpace(content)
}

// ValidCommentContent reports whether content is within the comment bounds.
// The raw body is bounded too, so padding cannot carry an oversized frame.
func ValidCommentContent(content string) bool {
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return false
	}
	n := utf8.RuneCountInString(NormalizeCommentContent(content))
	return n >= MinCommentLength && n <= MaxCommentLength
}

// Post is a blog post. Likes is the set of user ids that liked it and is
// loaded from the post_likes table.
type Post struct {
	ID         string    `gorm:"primaryKey;type:text" json:"id"`
	Title      string    `gorm:"size:200;not null" json:"title"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	AuthorID   string    `gorm:"index;not null;type:text" json:"author_id"`
	AuthorName string    `gorm:"type:text" json:"author_name"`
	Status     string    `gorm:"index;not null;type:text;default:draft" json:"status"`
	Likes      []string  `gorm:"-" json:"likes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName returns the table name for Post.
func (Post) TableName() string {
	return "posts"
}

// Published reports whether the post accepts comments.
func (p *Post) Published() bool {
	return p.Status == StatusPublished
}

// Comment is a comment on a post, optionally replying to another comment.
type Comment struct {
	ID         string    `gorm:"primaryKey;type:text" json:"id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	AuthorID   string    `gorm:"index;not null;type:text" json:"author_id"`
	AuthorName string    `gorm:"type:text" json:"author_name"`
	PostID     string    `gorm:"index;not null;type:text" json:"post_id"`
	ParentID   *string   `gorm:"index;type:text" json:"parent_id,omitempty"`
	Likes      []string  `gorm:"-" json:"likes"`
	IsEdited   bool      `gorm:"not null;default:false" json:"is_edited"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName returns the table name for Comment.
func (Comment) TableName() string {
	return "comments"
}

// PostLike is one member of a post's like set.
type PostLike struct {
	PostID    string `gorm:"primaryKey;type:text"`
	UserID    string `gorm:"primaryKey;type:text"`
	CreatedAt time.Time
}

// TableName returns the table name for PostLike.
func (PostLike) TableName() string {
	return "post_likes"
}

// CommentLike is one member of a comment's like set.
type CommentLike struct {
	CommentID string `gorm:"primaryKey;type:text"`
	UserID    string `gorm:"primaryKey;type:text"`
	CreatedAt time.Time
}

// TableName returns the table name for CommentLike.
func (CommentLike) TableName() string {
	return "comment_likes"
}

// LikeMode selects how a like mutation treats the caller's membership.
type LikeMode string

const (
	LikeModeLike   LikeMode = "like"
	LikeModeUnlike LikeMode = "unlike"
	LikeModeToggle LikeMode = "toggle"
)

// LikeResult is the state of a like set right after a mutation.
type LikeResult struct {
	Liked bool `json:"liked"`
	Count int  `json:"count"`
}

// Action names the resulting membership state as "like" or "unlike".
func (r LikeResult) Action() string {
	if r.Liked {
		return string(LikeModeLike)
	}
	return string(LikeModeUnlike)
}
