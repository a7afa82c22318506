package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/BradenHooton/srm/internal/models"
)

// UserTokenKeyFetcher looks up the per-user key mixed into session signatures.
type UserTokenKeyFetcher interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// SessionManager issues and validates the signed session token carried in the
// session cookie. Tokens are signed with the global secret concatenated with
// the user's TokenKey, so rotating the key ends every session of that user.
type SessionManager struct {
	secret   string
	lifetime time.Duration
	users    UserTokenKeyFetcher
	now      func() time.Time
}

func NewSessionManager(secret string, lifetime time.Duration, users UserTokenKeyFetcher) *SessionManager {
	return &SessionManager{
		secret:   secret,
		lifetime: lifetime,
		users:    users,
		now:      time.Now,
	}
}

// Lifetime is how long an issued session stays valid.
func (m *SessionManager) Lifetime() time.Duration {
	return m.lifetime
}

func (m *SessionManager) signingKey(user *models.User) []byte {
	return []byte(m.secret + user.TokenKey)
}

// Issue starts a new browser session for user. The claims' ID is fresh for
// every call and scopes per-browser state.
func (m *SessionManager) Issue(user *models.User) (string, *models.SessionClaims, error) {
	now := m.now()
	claims := &models.SessionClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.lifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.signingKey(user))
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return signed, claims, nil
}

// Validate verifies tokenString and returns its claims. Any failure,
// including an unknown user, is reported as models.ErrUnauthorized.
func (m *SessionManager) Validate(ctx context.Context, tokenString string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if claims.UserID == "" {
			return nil, errors.New("session token has no user")
		}
		user, err := m.users.GetByID(ctx, claims.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to load session user: %w", err)
		}
		return m.signingKey(user), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUnauthorized, err)
	}
	if !token.Valid || claims.ID == "" {
		return nil, models.ErrUnauthorized
	}

	return claims, nil
}
