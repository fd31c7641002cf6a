package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodlist/internal/models"
	"github.com/desertthunder/moodlist/internal/services"
	"github.com/desertthunder/moodlist/internal/shared"
)

// stateCookieName holds the OAuth CSRF state between the login redirect and
// the provider callback.
const stateCookieName = "moodlist_oauth_state"

// UserStore is the user persistence surface the auth flow needs.
// Implemented by repositories.UserRepository.
type UserStore interface {
	UserLoader
	GetBySpotifyID(spotifyID string) (*models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error
	ClearTokens(userID string) error
}

// AuthHandler implements the Spotify OAuth2 authorization code flow and
// session endpoints.
type AuthHandler struct {
	provider services.Provider
	users    UserStore
	sessions *SessionManager
	logger   *log.Logger
}

// NewAuthHandler creates an [AuthHandler].
func NewAuthHandler(provider services.Provider, users UserStore, sessions *SessionManager, logger *log.Logger) *AuthHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &AuthHandler{
		provider: provider,
		users:    users,
		sessions: sessions,
		logger:   logger.With("handler", "auth"),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *AuthHandler) Routes() []string {
	return []string{
		"GET /auth/login",
		"GET /auth/callback",
		"GET /auth/profile",
		"POST /auth/logout",
	}
}

// ServeHTTP dispatches to the matched auth endpoint.
func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/auth/login":
		h.login(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/auth/callback":
		h.callback(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/auth/profile":
		h.profile(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/auth/logout":
		h.logout(w, r)
	default:
		writeError(w, fmt.Errorf("%w: no such route", shared.ErrInvalidInput))
	}
}

// login starts the authorization code flow with a fresh CSRF state.
func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	state := shared.GenerateID()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/auth",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.provider.AuthURL(state), http.StatusFound)
}

// callback completes the flow: verify state, exchange the code, fetch the
// profile, upsert the user, and issue a session cookie.
func (h *AuthHandler) callback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookieName)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		writeError(w, fmt.Errorf("%w: state mismatch", shared.ErrAuthFailed))
		return
	}

	// State is single use.
	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Value: "", Path: "/auth", MaxAge: -1})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		writeError(w, fmt.Errorf("%w: provider returned %q", shared.ErrAuthFailed, errParam))
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, fmt.Errorf("%w: missing authorization code", shared.ErrAuthFailed))
		return
	}

	token, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		writeError(w, fmt.Errorf("%w: code exchange failed: %v", shared.ErrAuthFailed, err))
		return
	}

	profile, err := h.provider.Profile(r.Context(), services.AppAuth(token.AccessToken))
	if err != nil {
		writeError(w, fmt.Errorf("%w: profile fetch failed: %v", shared.ErrAuthFailed, err))
		return
	}

	user, err := h.upsertUser(profile, token.AccessToken, token.RefreshToken, token.Expiry)
	if err != nil {
		writeError(w, err)
		return
	}

	session, err := h.sessions.Issue(user.ID())
	if err != nil {
		writeError(w, err)
		return
	}
	h.sessions.SetCookie(w, session)

	h.logger.Info("user logged in", "user_id", user.ID(), "spotify_id", user.SpotifyID())

	writeJSON(w, http.StatusOK, userPayload(user))
}

func (h *AuthHandler) upsertUser(profile *services.SpotifyUser, access, refresh string, expiry time.Time) (*models.User, error) {
	user, err := h.users.GetBySpotifyID(profile.ID)
	switch {
	case errors.Is(err, shared.ErrUserNotFound):
		user = models.NewUser(0, profile.ID, profile.DisplayName, profile.Email, profile.Country)
		if err := user.SetTokens(access, refresh, expiry); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidCredentials, err)
		}
		if err := h.users.Create(user); err != nil {
			return nil, err
		}
		return user, nil
	case err != nil:
		return nil, err
	}

	user.SetProfile(profile.DisplayName, profile.Email, profile.Country)
	if err := user.SetTokens(access, refresh, expiry); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidCredentials, err)
	}
	if err := h.users.Update(user); err != nil {
		return nil, err
	}

	return user, nil
}

// profile returns the session user's stored profile.
func (h *AuthHandler) profile(w http.ResponseWriter, r *http.Request) {
	user := RequireUser(w, r)
	if user == nil {
		return
	}

	writeJSON(w, http.StatusOK, userPayload(user))
}

// logout clears the stored credential pair and expires the session cookie.
func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	user := RequireUser(w, r)
	if user == nil {
		return
	}

	if err := h.users.ClearTokens(user.ID()); err != nil {
		writeError(w, err)
		return
	}

	h.sessions.ClearCookie(w)
	h.logger.Info("user logged out", "user_id", user.ID())

	writeJSON(w, http.StatusNoContent, nil)
}

func userPayload(user *models.User) map[string]any {
	return map[string]any{
		"id":           user.ID(),
		"spotify_id":   user.SpotifyID(),
		"display_name": user.DisplayName(),
		"email":        user.Email(),
		"market":       user.Market(),
		"connected":    user.Connected(),
	}
}
