// Package auth signs and verifies bearer tokens and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"campus-market/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims holds the typed JWT payload.
type Claims struct {
	ID    string     `json:"id"`
	Email string     `json:"email"`
	Rol   model.Role `json:"rol"`
	jwt.RegisteredClaims
}

// TokenIssuer signs tokens for authenticated users.
type TokenIssuer interface {
	Issue(user *model.User) (string, error)
}

// TokenVerifier turns a bearer token into the caller's identity.
type TokenVerifier interface {
	Verify(token string) (model.Identity, error)
}

// TokenManager issues and verifies HS256 tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a token manager signing with secret.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue creates a signed token carrying {id, email, rol}.
func (m *TokenManager) Issue(user *model.User) (string, error) {
	now := m.now()
	claims := Claims{
		ID:    user.ID.String(),
		Email: user.Email,
		Rol:   user.Rol,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses token and returns the identity it carries. Any failure is
// reported as model.ErrInvalidToken.
func (m *TokenManager) Verify(token string) (model.Identity, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return model.Identity{}, errors.Join(model.ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return model.Identity{}, model.ErrInvalidToken
	}

	id, err := uuid.Parse(claims.ID)
	if err != nil {
		return model.Identity{}, errors.Join(model.ErrInvalidToken, err)
	}

	return model.Identity{
		UserID: id,
		Email:  claims.Email,
		Role:   claims.Rol,
	}, nil
}
