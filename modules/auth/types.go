package auth

import (
	"errors"
	"time"
)

// Service names registered in the service container.
const (
	ServiceRegister      = "register"
	ServiceLogin         = "login"
	ServiceRefreshToken  = "refresh-token"
	ServiceValidateToken = "validate-token"
	ServiceGetUser       = "get-user"
)

// Failure carries a service error across the service container.
type Failure struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var failureCodes = map[string]error{
	"invalid_credentials": ErrInvalidCredentials,
	"invalid_email":       ErrInvalidEmail,
	"invalid_username":    ErrInvalidUsername,
	"weak_password":       ErrWeakPassword,
	"password_too_long":   ErrPasswordTooLong,
	"user_exists":         ErrUserExists,
	"user_not_found":      ErrUserNotFound,
	"invalid_token":       ErrInvalidToken,
	"expired_token":       ErrExpiredToken,
}

// newFailure converts err into a Failure, keeping known sentinels addressable.
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

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse represents a user registration response.
type RegisterResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	Failure   *Failure  `json:"failure,omitempty"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries a token pair for login and refresh.
type TokenResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"`
	TokenType    string   `json:"token_type"`
	Failure      *Failure `json:"failure,omitempty"`
}

// RefreshRequest represents a token refresh request.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ValidateTokenRequest represents a token validation request.
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateTokenResponse represents a token validation response.
type ValidateTokenResponse struct {
	Valid    bool     `json:"valid"`
	UserID   string   `json:"user_id,omitempty"`
	Username string   `json:"username,omitempty"`
	Role     string   `json:"role,omitempty"`
	Failure  *Failure `json:"failure,omitempty"`
}

// GetUserRequest represents a get user request.
type GetUserRequest struct {
	UserID string `json:"user_id"`
}

// GetUserResponse represents a get user response.
type GetUserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	Failure   *Failure  `json:"failure,omitempty"`
}
