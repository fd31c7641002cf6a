// Spotify API implementation of [Provider]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodlist/internal/models"
	"github.com/desertthunder/moodlist/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// Spotify caps batched audio-features lookups and playlist track adds.
	maxAudioFeatureIDs = 100
	maxAddTrackURIs    = 100
)

type followers struct {
	Total int `json:"total"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Email       string         `json:"email"`
	Country     string         `json:"country"`
	Product     string         `json:"product"` // premium, free, etc.
	Followers   followers      `json:"followers"`
	Images      []SpotifyImage `json:"images"`
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	Explicit   bool            `json:"explicit"`
	Popularity int             `json:"popularity"`
	PreviewURL string          `json:"preview_url"`
	URI        string          `json:"uri"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Genres []string       `json:"genres"`
	Images []SpotifyImage `json:"images"`
	URI    string         `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []SpotifyArtist `json:"artists"`
	ReleaseDate string          `json:"release_date"`
	Images      []SpotifyImage  `json:"images"`
	URI         string          `json:"uri"`
}

// SpotifyAudioFeatures represents the numeric audio descriptors of a track.
type SpotifyAudioFeatures struct {
	ID               string  `json:"id"`
	Energy           float64 `json:"energy"`
	Valence          float64 `json:"valence"`
	Danceability     float64 `json:"danceability"`
	Instrumentalness float64 `json:"instrumentalness"`
	Acousticness     float64 `json:"acousticness"`
	Tempo            float64 `json:"tempo"`
}

// Attribute returns the named audio attribute value.
func (f SpotifyAudioFeatures) Attribute(name string) (float64, bool) {
	switch name {
	case "energy":
		return f.Energy, true
	case "valence":
		return f.Valence, true
	case "danceability":
		return f.Danceability, true
	case "instrumentalness":
		return f.Instrumentalness, true
	case "acousticness":
		return f.Acousticness, true
	case "tempo":
		return f.Tempo, true
	default:
		return 0, false
	}
}

type playlistOwner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Owner       playlistOwner `json:"owner"`
	Public      bool          `json:"public"`
	URI         string        `json:"uri"`
}

// tokenResponse is the token endpoint payload for the refresh_token grant.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// SpotifyService implements the Provider interface for Spotify API interactions.
// Uses [oauth2] for user authentication, [clientcredentials] for the app-level
// fallback token, and a [rate.Limiter] to pace outbound calls.
type SpotifyService struct {
	config     *oauth2.Config
	appConfig  *clientcredentials.Config
	httpClient *http.Client
	limiter    *rate.Limiter
	creds      CredentialStore
	logger     *log.Logger
	baseURL    string
	market     string
}

var _ Provider = (*SpotifyService)(nil)

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("missing client_id in credentials")
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("missing client_secret in credentials")
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://localhost:3000/auth/callback"
	}

	market, ok := credentials["market"]
	if !ok || market == "" {
		market = "US"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"user-read-private",
			"user-read-email",
			"user-top-read",
			"playlist-modify-private",
			"playlist-modify-public",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	appConfig := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyTokenURL,
	}

	return &SpotifyService{
		config:     config,
		appConfig:  appConfig,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(10), 5),
		logger:     shared.NewLogger(nil).With("service", "spotify"),
		baseURL:    spotifyBaseURL,
		market:     market,
	}, nil
}

// SetCredentialStore wires the store used to persist rotated token pairs.
func (s *SpotifyService) SetCredentialStore(store CredentialStore) {
	s.creds = store
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// AuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) AuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a token pair.
func (s *SpotifyService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: code exchange: %v", shared.ErrAuthFailed, err)
	}
	return token, nil
}

// AppAuthorization fetches a fresh client-credentials token. The token carries
// no user context and cannot be refreshed via a refresh_token grant.
func (s *SpotifyService) AppAuthorization(ctx context.Context) (Authorization, error) {
	token, err := s.appConfig.Token(ctx)
	if err != nil {
		return Authorization{}, fmt.Errorf("%w: client credentials: %v", shared.ErrAuthFailed, err)
	}
	return AppAuth(token.AccessToken), nil
}

// doRequest performs an authenticated HTTP request to the Spotify API.
//
// On a 401 with a refreshable authorization it performs exactly one
// refresh-and-retry cycle; a second 401 propagates as ErrTokenExpired.
// Non-401 upstream failures propagate immediately.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, query url.Values, body any, result any, auth Authorization) error {
	refreshed := false

	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		apiURL := s.baseURL + endpoint
		if len(query) > 0 {
			apiURL += "?" + query.Encode()
		}

		var reqBody *bytes.Reader
		if body != nil {
			data, err := json.Marshal(body)
			if err != nil {
				return fmt.Errorf("failed to encode request body: %w", err)
			}
			reqBody = bytes.NewReader(data)
		} else {
			reqBody = bytes.NewReader(nil)
		}

		req, err := http.NewRequestWithContext(ctx, method, apiURL, reqBody)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+auth.Token())
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}

		if resp.StatusCode == http.StatusUnauthorized {
			resp.Body.Close()

			if refreshed || !auth.CanRefresh() {
				return fmt.Errorf("%w: %s %s", shared.ErrTokenExpired, method, endpoint)
			}

			auth, err = s.refreshAuthorization(ctx, auth)
			if err != nil {
				return err
			}
			refreshed = true
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return fmt.Errorf("%w: status %d for %s %s", shared.ErrAPIRequest, resp.StatusCode, method, endpoint)
		}

		if result != nil {
			if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
				resp.Body.Close()
				return fmt.Errorf("failed to decode response: %w", err)
			}
		}

		resp.Body.Close()
		return nil
	}
}

// refreshAuthorization performs a refresh_token grant and persists the rotated
// pair through the credential store. Spotify may omit a new refresh token, in
// which case the stored one is kept.
func (s *SpotifyService) refreshAuthorization(ctx context.Context, auth Authorization) (Authorization, error) {
	if auth.refresh == "" {
		return Authorization{}, shared.ErrNoRefreshToken
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {auth.refresh},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.Endpoint.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Authorization{}, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}
	req.SetBasicAuth(s.config.ClientID, s.config.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Authorization{}, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Authorization{}, fmt.Errorf("%w: status %d", shared.ErrRefreshFailed, resp.StatusCode)
	}

	var payload tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Authorization{}, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}
	if payload.AccessToken == "" {
		return Authorization{}, fmt.Errorf("%w: empty access token", shared.ErrRefreshFailed)
	}

	refresh := payload.RefreshToken
	if refresh == "" {
		refresh = auth.refresh
	}

	expiry := time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	if s.creds != nil {
		if err := s.creds.UpdateTokens(auth.userID, payload.AccessToken, refresh, expiry); err != nil {
			s.logger.Warn("failed to persist refreshed tokens", "user_id", auth.userID, "error", err)
		}
	}

	s.logger.Debug("refreshed access token", "user_id", auth.userID)

	return UserAuthorization(auth.userID, payload.AccessToken, refresh), nil
}

// Profile retrieves the profile behind the authorization.
func (s *SpotifyService) Profile(ctx context.Context, auth Authorization) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, nil, &user, auth); err != nil {
		return nil, err
	}
	return &user, nil
}

// Search performs a keyword track search scoped to a market.
func (s *SpotifyService) Search(ctx context.Context, auth Authorization, query string, limit int, market string) ([]models.Track, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}
	if market == "" {
		market = s.market
	}

	params := url.Values{
		"q":      {query},
		"type":   {"track"},
		"limit":  {fmt.Sprintf("%d", limit)},
		"market": {market},
	}

	var response struct {
		Tracks struct {
			Items []SpotifyTrack `json:"items"`
		} `json:"tracks"`
	}

	if err := s.doRequest(ctx, http.MethodGet, "/search", params, nil, &response, auth); err != nil {
		return nil, err
	}

	return mapTracks(response.Tracks.Items), nil
}

// TopTracks retrieves the user's most played tracks.
func (s *SpotifyService) TopTracks(ctx context.Context, auth Authorization, limit int) ([]models.Track, error) {
	if limit <= 0 {
		limit = 5
	}

	params := url.Values{"limit": {fmt.Sprintf("%d", limit)}}

	var response struct {
		Items []SpotifyTrack `json:"items"`
	}

	if err := s.doRequest(ctx, http.MethodGet, "/me/top/tracks", params, nil, &response, auth); err != nil {
		return nil, err
	}

	return mapTracks(response.Items), nil
}

// TopArtists retrieves the user's most played artists.
func (s *SpotifyService) TopArtists(ctx context.Context, auth Authorization, limit int) ([]SpotifyArtist, error) {
	if limit <= 0 {
		limit = 5
	}

	params := url.Values{"limit": {fmt.Sprintf("%d", limit)}}

	var response struct {
		Items []SpotifyArtist `json:"items"`
	}

	if err := s.doRequest(ctx, http.MethodGet, "/me/top/artists", params, nil, &response, auth); err != nil {
		return nil, err
	}

	return response.Items, nil
}

// ArtistTopTracks retrieves an artist's most popular tracks in a market.
func (s *SpotifyService) ArtistTopTracks(ctx context.Context, auth Authorization, artistID, market string) ([]models.Track, error) {
	if market == "" {
		market = s.market
	}

	endpoint := fmt.Sprintf("/artists/%s/top-tracks", artistID)
	params := url.Values{"market": {market}}

	var response struct {
		Tracks []SpotifyTrack `json:"tracks"`
	}

	if err := s.doRequest(ctx, http.MethodGet, endpoint, params, nil, &response, auth); err != nil {
		return nil, err
	}

	return mapTracks(response.Tracks), nil
}

// AudioFeatures retrieves audio attributes for up to 100 tracks in one batched call.
// Tracks without available analysis are omitted from the result map.
func (s *SpotifyService) AudioFeatures(ctx context.Context, auth Authorization, trackIDs []string) (map[string]SpotifyAudioFeatures, error) {
	if len(trackIDs) == 0 {
		return map[string]SpotifyAudioFeatures{}, nil
	}
	if len(trackIDs) > maxAudioFeatureIDs {
		return nil, fmt.Errorf("maximum %d track IDs allowed", maxAudioFeatureIDs)
	}

	params := url.Values{"ids": {strings.Join(trackIDs, ",")}}

	var response struct {
		AudioFeatures []*SpotifyAudioFeatures `json:"audio_features"`
	}

	if err := s.doRequest(ctx, http.MethodGet, "/audio-features", params, nil, &response, auth); err != nil {
		return nil, err
	}

	features := make(map[string]SpotifyAudioFeatures, len(response.AudioFeatures))
	for _, f := range response.AudioFeatures {
		if f == nil || f.ID == "" {
			continue
		}
		features[f.ID] = *f
	}

	return features, nil
}

// CreatePlaylist creates a playlist owned by the given Spotify user.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, auth Authorization, spotifyUserID, name, description string, public bool) (*SpotifyPlaylist, error) {
	if spotifyUserID == "" {
		return nil, fmt.Errorf("%w: spotify user id required", shared.ErrInvalidArgument)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: playlist name required", shared.ErrInvalidArgument)
	}

	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(spotifyUserID))
	body := map[string]any{
		"name":        name,
		"description": description,
		"public":      public,
	}

	var playlist SpotifyPlaylist
	if err := s.doRequest(ctx, http.MethodPost, endpoint, nil, body, &playlist, auth); err != nil {
		return nil, err
	}

	return &playlist, nil
}

// AddTracks appends track URIs to a playlist. Spotify caps a single call at
// 100 URIs; batching across calls is the caller's responsibility.
func (s *SpotifyService) AddTracks(ctx context.Context, auth Authorization, playlistID string, uris []string) error {
	if len(uris) == 0 {
		return fmt.Errorf("%w: no track URIs provided", shared.ErrInvalidArgument)
	}
	if len(uris) > maxAddTrackURIs {
		return fmt.Errorf("maximum %d track URIs allowed", maxAddTrackURIs)
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", playlistID)
	body := map[string]any{"uris": uris}

	return s.doRequest(ctx, http.MethodPost, endpoint, nil, body, nil, auth)
}

// mapTracks projects Spotify wire tracks to the public track shape.
func mapTracks(tracks []SpotifyTrack) []models.Track {
	mapped := make([]models.Track, 0, len(tracks))
	for _, t := range tracks {
		mapped = append(mapped, mapTrack(t))
	}
	return mapped
}

// mapTrack joins artist names and takes the first album image, when present.
func mapTrack(t SpotifyTrack) models.Track {
	names := make([]string, 0, len(t.Artists))
	for _, artist := range t.Artists {
		names = append(names, artist.Name)
	}

	var imageURL string
	if len(t.Album.Images) > 0 {
		imageURL = t.Album.Images[0].URL
	}

	return models.Track{
		ID:         t.ID,
		Name:       t.Name,
		Artists:    strings.Join(names, ", "),
		URI:        t.URI,
		ImageURL:   imageURL,
		PreviewURL: t.PreviewURL,
	}
}
