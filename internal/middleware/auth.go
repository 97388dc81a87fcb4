// Package middleware provides authentication, logging, metrics, tracing and rate
// limiting middleware for the HTTP server.
package middleware

import (
	"context"
	"strings"

	"devconnect/internal/auth"
	"devconnect/internal/models"

	"github.com/gofiber/fiber/v2"
)

// TokenHeader is the header the web client sends its token in.
const TokenHeader = "x-auth-token"

// TokenVerifier is satisfied by *auth.TokenManager.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*auth.Identity, error)
}

// AuthRequired verifies the caller's token and stores the identity in
// c.Locals("userID") and c.Locals("identity").
func AuthRequired(tokens TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := tokens.Verify(c.UserContext(), ExtractToken(c))
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}

		c.Locals("userID", identity.ID)
		c.Locals("identity", identity)
		c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, identity.ID))

		return c.Next()
	}
}

// ExtractToken reads x-auth-token, falling back to "Authorization: Bearer <token>"
// and, for websocket upgrades only, the token query parameter.
func ExtractToken(c *fiber.Ctx) string {
	if token := strings.TrimSpace(c.Get(TokenHeader)); token != "" {
		return token
	}

	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}

	if strings.EqualFold(c.Get(fiber.HeaderUpgrade), "websocket") {
		return c.Query("token")
	}
	return ""
}

// CurrentUserID returns the verified caller id stored by AuthRequired.
func CurrentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals("userID").(string)
	return id
}

// CurrentIdentity returns the verified identity stored by AuthRequired.
func CurrentIdentity(c *fiber.Ctx) *auth.Identity {
	identity, _ := c.Locals("identity").(*auth.Identity)
	return identity
}
