package api

import (
	"time"

	blogdomain "github.com/example/blog-realtime-demo/domain/blog"
)

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest represents a token refresh request.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse represents an authentication token response.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// UserResponse represents a user response.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// CreatePostRequest represents a create post request.
type CreatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Publish bool   `json:"publish"`
}

// PostView is a post as seen by the caller.
type PostView struct {
	*blogdomain.Post
	LikeCount int           `json:"like_count"`
	Liked     bool          `json:"liked"`
	Watchers  int           `json:"watchers"`
	Comments  []CommentView `json:"comments"`
}

// CommentView is a comment as seen by the caller.
type CommentView struct {
	*blogdomain.Comment
	LikeCount int  `json:"like_count"`
	Liked     bool `json:"liked"`
}

// HealthResponse represents the health endpoint payload.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
