package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/moodlist/internal/models"
	"github.com/desertthunder/moodlist/internal/shared"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const userContextKey contextKey = "moodlist.user"

// UserLoader resolves a session's user ID to a stored user.
// Implemented by repositories.UserRepository.
type UserLoader interface {
	Get(id string) (*models.User, error)
}

// sessionClaims are the JWT claims carried in the session cookie. The user ID
// rides in the registered Subject claim.
type sessionClaims struct {
	jwt.RegisteredClaims
}

// SessionManager issues and verifies signed session cookies.
type SessionManager struct {
	secret     []byte
	ttl        time.Duration
	cookieName string
	users      UserLoader
}

// NewSessionManager creates a session manager signing with the given secret.
func NewSessionManager(secret, cookieName string, ttl time.Duration, users UserLoader) *SessionManager {
	if cookieName == "" {
		cookieName = "moodlist_session"
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &SessionManager{
		secret:     []byte(secret),
		ttl:        ttl,
		cookieName: cookieName,
		users:      users,
	}
}

// Issue creates a signed session token for the given user ID.
func (s *SessionManager) Issue(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signed, nil
}

// Verify parses a session token and returns the user ID it was issued for.
func (s *SessionManager) Verify(tokenString string) (string, error) {
	claims := &sessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidSession, err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", shared.ErrInvalidSession
	}

	return claims.Subject, nil
}

// SetCookie writes the session cookie.
func (s *SessionManager) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func (s *SessionManager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// WithUser returns middleware that resolves the session cookie to a stored
// user and attaches it to the request context. Requests without a valid
// session pass through anonymously.
func (s *SessionManager) WithUser() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(s.cookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := s.Verify(cookie.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			user, err := s.users.Get(userID)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
		})
	}
}

func withUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the session's user, or nil for anonymous requests.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}

// RequireUser returns the session's user or writes a 401 error and returns nil.
func RequireUser(w http.ResponseWriter, r *http.Request) *models.User {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, fmt.Errorf("%w: login required", shared.ErrNotAuthenticated))
		return nil
	}
	return user
}
