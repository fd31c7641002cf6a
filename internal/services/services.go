// package services defines interface Provider for interacting with music provider APIs
package services

import (
	"context"
	"time"

	"github.com/desertthunder/moodlist/internal/models"
	"golang.org/x/oauth2"
)

// Provider defines the upstream operations the playlist pipeline depends on.
type Provider interface {
	// AuthURL returns the OAuth2 authorization URL for user login.
	AuthURL(state string) string

	// Exchange trades an authorization code for a token pair.
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)

	// AppAuthorization fetches an application-level (client credentials)
	// authorization for calls made without a user credential.
	AppAuthorization(ctx context.Context) (Authorization, error)

	// Profile retrieves the profile behind the authorization.
	Profile(ctx context.Context, auth Authorization) (*SpotifyUser, error)

	// Search performs a keyword track search scoped to a market.
	Search(ctx context.Context, auth Authorization, query string, limit int, market string) ([]models.Track, error)

	// TopTracks retrieves the user's most played tracks.
	TopTracks(ctx context.Context, auth Authorization, limit int) ([]models.Track, error)

	// TopArtists retrieves the user's most played artists.
	TopArtists(ctx context.Context, auth Authorization, limit int) ([]SpotifyArtist, error)

	// ArtistTopTracks retrieves an artist's most popular tracks in a market.
	ArtistTopTracks(ctx context.Context, auth Authorization, artistID, market string) ([]models.Track, error)

	// AudioFeatures retrieves audio attributes for up to 100 tracks in one
	// batched call, keyed by track id.
	AudioFeatures(ctx context.Context, auth Authorization, trackIDs []string) (map[string]SpotifyAudioFeatures, error)

	// CreatePlaylist creates a playlist owned by the given provider user.
	CreatePlaylist(ctx context.Context, auth Authorization, spotifyUserID, name, description string, public bool) (*SpotifyPlaylist, error)

	// AddTracks appends up to 100 track URIs to a playlist.
	AddTracks(ctx context.Context, auth Authorization, playlistID string, uris []string) error

	// Name returns the name of the provider (e.g., "Spotify")
	Name() string
}

// CredentialStore persists rotated token pairs after a successful refresh.
// Implemented by the user repository.
type CredentialStore interface {
	UpdateTokens(userID, access, refresh string, expiry time.Time) error
}

// Authorization is the token attached to an outbound call, resolved once per
// request. A zero userID marks an application token, which cannot be
// refreshed.
type Authorization struct {
	userID  string
	access  string
	refresh string
}

// UserAuthorization builds an authorization from a stored user credential.
func UserAuthorization(userID, access, refresh string) Authorization {
	return Authorization{userID: userID, access: access, refresh: refresh}
}

// AppAuth builds an application-level authorization from a client-credentials token.
func AppAuth(access string) Authorization {
	return Authorization{access: access}
}

func (a Authorization) Token() string  { return a.access }
func (a Authorization) UserID() string { return a.userID }

// CanRefresh reports whether a 401 can be recovered by a refresh_token grant.
func (a Authorization) CanRefresh() bool {
	return a.userID != "" && a.refresh != ""
}
