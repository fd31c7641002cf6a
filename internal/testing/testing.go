// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/desertthunder/moodlist/internal/models"
	"github.com/desertthunder/moodlist/internal/services"
	"github.com/desertthunder/moodlist/internal/shared"
	"golang.org/x/oauth2"
)

// MockProvider is a test double for [services.Provider]. Behavior is
// customized per test by assigning the function fields; unset fields return
// empty results.
type MockProvider struct {
	AuthURLFunc         func(state string) string
	ExchangeFunc        func(ctx context.Context, code string) (*oauth2.Token, error)
	AppAuthFunc         func(ctx context.Context) (services.Authorization, error)
	ProfileFunc         func(ctx context.Context, auth services.Authorization) (*services.SpotifyUser, error)
	SearchFunc          func(ctx context.Context, auth services.Authorization, query string, limit int, market string) ([]models.Track, error)
	TopTracksFunc       func(ctx context.Context, auth services.Authorization, limit int) ([]models.Track, error)
	TopArtistsFunc      func(ctx context.Context, auth services.Authorization, limit int) ([]services.SpotifyArtist, error)
	ArtistTopTracksFunc func(ctx context.Context, auth services.Authorization, artistID, market string) ([]models.Track, error)
	AudioFeaturesFunc   func(ctx context.Context, auth services.Authorization, trackIDs []string) (map[string]services.SpotifyAudioFeatures, error)
	CreatePlaylistFunc  func(ctx context.Context, auth services.Authorization, spotifyUserID, name, description string, public bool) (*services.SpotifyPlaylist, error)
	AddTracksFunc       func(ctx context.Context, auth services.Authorization, playlistID string, uris []string) error
}

var _ services.Provider = (*MockProvider)(nil)

func (m *MockProvider) AuthURL(state string) string {
	if m.AuthURLFunc != nil {
		return m.AuthURLFunc(state)
	}
	return "https://accounts.example.com/authorize?state=" + state
}

func (m *MockProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, code)
	}
	return &oauth2.Token{AccessToken: "mock_access", RefreshToken: "mock_refresh"}, nil
}

func (m *MockProvider) AppAuthorization(ctx context.Context) (services.Authorization, error) {
	if m.AppAuthFunc != nil {
		return m.AppAuthFunc(ctx)
	}
	return services.AppAuth("mock_app_token"), nil
}

func (m *MockProvider) Profile(ctx context.Context, auth services.Authorization) (*services.SpotifyUser, error) {
	if m.ProfileFunc != nil {
		return m.ProfileFunc(ctx, auth)
	}
	return &services.SpotifyUser{ID: "mock_user"}, nil
}

func (m *MockProvider) Search(ctx context.Context, auth services.Authorization, query string, limit int, market string) ([]models.Track, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, auth, query, limit, market)
	}
	return nil, nil
}

func (m *MockProvider) TopTracks(ctx context.Context, auth services.Authorization, limit int) ([]models.Track, error) {
	if m.TopTracksFunc != nil {
		return m.TopTracksFunc(ctx, auth, limit)
	}
	return nil, nil
}

func (m *MockProvider) TopArtists(ctx context.Context, auth services.Authorization, limit int) ([]services.SpotifyArtist, error) {
	if m.TopArtistsFunc != nil {
		return m.TopArtistsFunc(ctx, auth, limit)
	}
	return nil, nil
}

func (m *MockProvider) ArtistTopTracks(ctx context.Context, auth services.Authorization, artistID, market string) ([]models.Track, error) {
	if m.ArtistTopTracksFunc != nil {
		return m.ArtistTopTracksFunc(ctx, auth, artistID, market)
	}
	return nil, nil
}

func (m *MockProvider) AudioFeatures(ctx context.Context, auth services.Authorization, trackIDs []string) (map[string]services.SpotifyAudioFeatures, error) {
	if m.AudioFeaturesFunc != nil {
		return m.AudioFeaturesFunc(ctx, auth, trackIDs)
	}
	return map[string]services.SpotifyAudioFeatures{}, nil
}

func (m *MockProvider) CreatePlaylist(ctx context.Context, auth services.Authorization, spotifyUserID, name, description string, public bool) (*services.SpotifyPlaylist, error) {
	if m.CreatePlaylistFunc != nil {
		return m.CreatePlaylistFunc(ctx, auth, spotifyUserID, name, description, public)
	}
	return &services.SpotifyPlaylist{ID: "mock_playlist", Name: name}, nil
}

func (m *MockProvider) AddTracks(ctx context.Context, auth services.Authorization, playlistID string, uris []string) error {
	if m.AddTracksFunc != nil {
		return m.AddTracksFunc(ctx, auth, playlistID, uris)
	}
	return nil
}

func (m *MockProvider) Name() string { return "mock" }

// MemoryDraftStore is an in-memory draft store for engine tests.
type MemoryDraftStore struct {
	Drafts map[string]*models.Draft
}

func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{Drafts: make(map[string]*models.Draft)}
}

func (s *MemoryDraftStore) Create(draft *models.Draft) error {
	if draft.ID() == "" {
		draft.SetID(shared.GenerateID())
	}
	s.Drafts[draft.ID()] = draft
	return nil
}

func (s *MemoryDraftStore) Get(id string) (*models.Draft, error) {
	draft, ok := s.Drafts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrDraftNotFound, id)
	}
	return draft, nil
}

func (s *MemoryDraftStore) Update(draft *models.Draft) error {
	if _, ok := s.Drafts[draft.ID()]; !ok {
		return fmt.Errorf("%w: %s", shared.ErrDraftNotFound, draft.ID())
	}
	s.Drafts[draft.ID()] = draft
	return nil
}

func (s *MemoryDraftStore) Delete(id string) error {
	delete(s.Drafts, id)
	return nil
}

func (s *MemoryDraftStore) List(criteria map[string]any) ([]*models.Draft, error) {
	var out []*models.Draft
	for _, draft := range s.Drafts {
		if userID, ok := criteria["user_id"]; ok && draft.UserID() != userID {
			continue
		}
		out = append(out, draft)
	}
	return out, nil
}

// MemoryHistoryStore is an in-memory published playlist store for engine tests.
type MemoryHistoryStore struct {
	Records []*models.PublishedPlaylist
}

func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{}
}

func (s *MemoryHistoryStore) Create(playlist *models.PublishedPlaylist) error {
	if playlist.ID() == "" {
		playlist.SetID(shared.GenerateID())
	}
	s.Records = append(s.Records, playlist)
	return nil
}

func (s *MemoryHistoryStore) List(criteria map[string]any) ([]*models.PublishedPlaylist, error) {
	var out []*models.PublishedPlaylist
	for _, record := range s.Records {
		if userID, ok := criteria["user_id"]; ok && record.UserID() != userID {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
