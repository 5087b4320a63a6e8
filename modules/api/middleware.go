package api

import (
	"context"
	"strings"

	user "github.com/example/blog-realtime-demo/domain/user"
	"github.com/gofiber/fiber/v2"
)

const (
	// IdentityKey is the key used to store the caller identity in the Fiber context.
	IdentityKey = "identity"
)

// Authenticator resolves an access token to an identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (user.Identity, error)
}

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware(authenticator Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Authorization header is required",
			})
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid authorization header format. Use: Bearer <token>",
			})
		}

		identity, err := authenticator.Authenticate(c.UserContext(), token)
		if err != nil || identity.Anonymous() {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid or expired token",
			})
		}

		c.Locals(IdentityKey, identity)
		return c.Next()
	}
}

// OptionalAuthMiddleware attaches the caller identity when a valid bearer
// token is present and lets every request through.
func OptionalAuthMiddleware(authenticator Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token, ok := bearerToken(c.Get(fiber.HeaderAuthorization)); ok {
			if identity, err := authenticator.Authenticate(c.UserContext(), token); err == nil && !identity.Anonymous() {
				c.Locals(IdentityKey, identity)
			}
		}
		return c.Next()
	}
}

// identityFrom returns the identity stored by the auth middleware, or an
// anonymous identity.
func identityFrom(c *fiber.Ctx) user.Identity {
	identity, _ := c.Locals(IdentityKey).(user.Identity)
	return identity
}

func bearerToken(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
