package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/srm/internal/models"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// SessionContextKey is the key for storing session claims in context
	SessionContextKey contextKey = "session"
)

// LoginRequiredNotice is flashed when an anonymous visitor hits a protected page.
const LoginRequiredNotice = "You must be logged in to view details"

// SessionRevocationChecker reports whether a session was ended by logout.
type SessionRevocationChecker interface {
	IsSessionRevoked(ctx context.Context, jti string) (bool, error)
}

// SessionMiddleware resolves the session cookie into claims.
type SessionMiddleware struct {
	sessions    *SessionManager
	revocations SessionRevocationChecker
	cookies     CookieConfig
	logger      *slog.Logger
}

func NewSessionMiddleware(sessions *SessionManager, revocations SessionRevocationChecker, cookies CookieConfig, logger *slog.Logger) *SessionMiddleware {
	return &SessionMiddleware{
		sessions:    sessions,
		revocations: revocations,
		cookies:     cookies,
		logger:      logger,
	}
}

// authenticate returns the claims of a live session on r.
func (m *SessionMiddleware) authenticate(r *http.Request) (*models.SessionClaims, error) {
	token, err := GetSessionCookie(r)
	if err != nil || token == "" {
		return nil, models.ErrUnauthorized
	}

	claims, err := m.sessions.Validate(r.Context(), token)
	if err != nil {
		return nil, err
	}

	if m.revocations != nil {
		revoked, err := m.revocations.IsSessionRevoked(r.Context(), claims.ID)
		if err != nil {
			// Fail open: the signature and expiry have already been verified.
			m.logger.Error("failed to check session revocation",
				slog.String("user_id", claims.UserID),
				slog.Any("error", err))
		}
		if revoked {
			return nil, models.ErrUnauthorized
		}
	}

	return claims, nil
}

// LoadSession attaches the session claims when the request carries a valid
// session and passes anonymous requests through untouched.
func (m *SessionMiddleware) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.authenticate(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), claims)))
	})
}

// RequireSession redirects anonymous requests to the landing page with a
// login notice.
func (m *SessionMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.authenticate(r)
		if err != nil {
			if !errors.Is(err, models.ErrUnauthorized) {
				m.logger.Error("failed to authenticate session", slog.Any("error", err))
			}
			m.logger.Warn("anonymous access to protected page",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path))

			AddFlash(w, r, LoginRequiredNotice, m.cookies)
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), claims)))
	})
}

// WithSession returns a copy of ctx carrying claims.
func WithSession(ctx context.Context, claims *models.SessionClaims) context.Context {
	return context.WithValue(ctx, SessionContextKey, claims)
}

// GetSessionFromContext extracts session claims from request context
func GetSessionFromContext(r *http.Request) *models.SessionClaims {
	claims, ok := r.Context().Value(SessionContextKey).(*models.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}
