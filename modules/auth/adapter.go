package auth

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/blog-realtime-demo/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// AuthPort defines the interface other modules use to reach auth functionality.
type AuthPort interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
	Login(ctx context.Context, email, password string) (*domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	Authenticate(ctx context.Context, token string) (domain.Identity, error)
	LookupUser(ctx context.Context, userID string) (domain.Identity, error)
}

// AuthAdapter implements AuthPort using the service container.
type AuthAdapter struct {
	container mono.ServiceContainer
}

var _ AuthPort = (*AuthAdapter)(nil)

// NewAuthAdapter creates a new AuthAdapter.
func NewAuthAdapter(container mono.ServiceContainer) *AuthAdapter {
	if container == nil {
		panic("auth: ServiceContainer is nil")
	}
	return &AuthAdapter{
		container: container,
	}
}

// Register creates a new account.
func (a *AuthAdapter) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var resp RegisterResponse
	if err := call(ctx, a.container, ServiceRegister, &req, &resp); err != nil {
		return nil, err
	}
	if resp.Failure != nil {
		return nil, resp.Failure.Err()
	}
	return &resp, nil
}

// Login exchanges credentials for a token pair.
func (a *AuthAdapter) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	req := LoginRequest{Email: email, Password: password}
	var resp TokenResponse
	if err := call(ctx, a.container, ServiceLogin, &req, &resp); err != nil {
		return nil, err
	}
	return resp.tokenPair()
}

// Refresh exchanges a refresh token for a new token pair.
func (a *AuthAdapter) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	req := RefreshRequest{RefreshToken: refreshToken}
	var resp TokenResponse
	if err := call(ctx, a.container, ServiceRefreshToken, &req, &resp); err != nil {
		return nil, err
	}
	return resp.tokenPair()
}

// Authenticate resolves an access token to the identity it was issued for.
func (a *AuthAdapter) Authenticate(ctx context.Context, token string) (domain.Identity, error) {
	req := ValidateTokenRequest{Token: token}
	var resp ValidateTokenResponse
	if err := call(ctx, a.container, ServiceValidateToken, &req, &resp); err != nil {
		return domain.Identity{}, err
	}
	if !resp.Valid {
		if resp.Failure != nil {
			return domain.Identity{}, resp.Failure.Err()
		}
		return domain.Identity{}, ErrInvalidToken
	}
	return domain.Identity{ID: resp.UserID, Username: resp.Username, Role: resp.Role}, nil
}

// LookupUser returns the identity of a registered user.
func (a *AuthAdapter) LookupUser(ctx context.Context, userID string) (domain.Identity, error) {
	req := GetUserRequest{UserID: userID}
	var resp GetUserResponse
	if err := call(ctx, a.container, ServiceGetUser, &req, &resp); err != nil {
		return domain.Identity{}, err
	}
	if resp.Failure != nil {
		return domain.Identity{}, resp.Failure.Err()
	}
	return domain.Identity{ID: resp.ID, Username: resp.Username, Role: resp.Role}, nil
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

func (r *TokenResponse) tokenPair() (*domain.TokenPair, error) {
	if r.Failure != nil {
		return nil, r.Failure.Err()
	}
	return &domain.TokenPair{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		ExpiresIn:    r.ExpiresIn,
		TokenType:    r.TokenType,
	}, nil
}
