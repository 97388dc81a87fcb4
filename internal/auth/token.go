// Package auth issues and verifies the bearer tokens carried in x-auth-token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"devconnect/internal/config"
	"devconnect/internal/models"
	"devconnect/internal/observability"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	issuer   = "devconnect-api"
	audience = "devconnect-client"

	revokedKeyPrefix = "revoked:"
)

// Claims is the token payload. The nested user object mirrors what the web
// client reads; sub carries the same id for standard JWT tooling.
type Claims struct {
	User ClaimUser `json:"user"`
	jwt.RegisteredClaims
}

// ClaimUser is the identity embedded in a token.
type ClaimUser struct {
	ID string `json:"id"`
}

// Identity is the verified caller attached to a request.
type Identity struct {
	ID        string
	TokenID   string
	ExpiresAt time.Time
}

// TokenManager signs and verifies HS256 tokens with the configured secret.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	rdb    *redis.Client
	now    func() time.Time
}

// NewTokenManager builds a manager from configuration. rdb is optional; without
// it tokens cannot be revoked before they expire.
func NewTokenManager(cfg *config.Config, rdb *redis.Client) *TokenManager {
	return &TokenManager{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.TokenTTL(),
		rdb:    rdb,
		now:    time.Now,
	}
}

// Issue signs a token for the account.
func (m *TokenManager) Issue(accountID string) (string, error) {
	if len(m.secret) == 0 {
		return "", fmt.Errorf("JWT secret not configured")
	}
	id := models.CanonicalID(accountID)
	if id == "" {
		return "", fmt.Errorf("account id is required")
	}

	now := m.now()
	claims := Claims{
		User: ClaimUser{ID: id},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify validates raw and returns the identity it carries.
func (m *TokenManager) Verify(ctx context.Context, raw string) (*Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		observability.AuthFailures.WithLabelValues(models.ReasonMissingToken).Inc()
		return nil, models.NewAuthError(models.ReasonMissingToken, "No token, authorization denied")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(_ *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, invalidToken(err)
	}

	id := claims.User.ID
	if id == "" {
		id = claims.Subject
	}
	id = models.CanonicalID(id)
	if id == "" {
		return nil, invalidToken(errors.New("token carries no identity"))
	}

	if claims.ID != "" && m.rdb != nil {
		n, err := m.rdb.Exists(ctx, revokedKeyPrefix+claims.ID).Result()
		if err == nil && n > 0 {
			return nil, invalidToken(errors.New("token revoked"))
		}
	}

	identity := &Identity{ID: id, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}

// Revoke blocks the token until its natural expiry.
func (m *TokenManager) Revoke(ctx context.Context, identity *Identity) error {
	if m.rdb == nil || identity == nil || identity.TokenID == "" {
		return nil
	}
	ttl := identity.ExpiresAt.Sub(m.now())
	if ttl <= 0 {
		return nil
	}
	return m.rdb.Set(ctx, revokedKeyPrefix+identity.TokenID, identity.ID, ttl).Err()
}

func invalidToken(cause error) error {
	observability.AuthFailures.WithLabelValues(models.ReasonInvalidToken).Inc()
	appErr := models.NewAuthError(models.ReasonInvalidToken, "Token is not valid")
	appErr.Err = cause
	return appErr
}
