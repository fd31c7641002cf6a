package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/desertthunder/moodlist/internal/models"
	"github.com/desertthunder/moodlist/internal/services"
	"github.com/desertthunder/moodlist/internal/shared"
	tu "github.com/desertthunder/moodlist/internal/testing"
)

func connectedUser(t *testing.T) *models.User {
	t.Helper()
	user := models.NewUser(1, "spotify_user", "Test User", "test@example.com", "US")
	user.SetID("user-1")
	if err := user.SetTokens("access_token", "refresh_token", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Failed to set tokens: %v", err)
	}
	return user
}

func testTrack(id string) models.Track {
	return models.Track{
		ID:      id,
		Name:    "Track " + id,
		Artists: "Artist " + id,
		URI:     "spotify:track:" + id,
	}
}

func newTestEngine(provider services.Provider) (*GeneratorEngine, *tu.MemoryDraftStore, *tu.MemoryHistoryStore) {
	drafts := tu.NewMemoryDraftStore()
	history := tu.NewMemoryHistoryStore()
	return NewGeneratorEngine(provider, drafts, history, shared.NewLogger(nil)), drafts, history
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("Requires Mood", func(t *testing.T) {
		engine, _, _ := newTestEngine(&tu.MockProvider{})
		_, err := engine.Generate(ctx, nil, GenerateRequest{Genres: []string{"rock"}})
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Requires Genres", func(t *testing.T) {
		engine, _, _ := newTestEngine(&tu.MockProvider{})
		_, err := engine.Generate(ctx, nil, GenerateRequest{Mood: "chill"})
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Empty Pool", func(t *testing.T) {
		engine, _, _ := newTestEngine(&tu.MockProvider{})
		_, err := engine.Generate(ctx, nil, GenerateRequest{Mood: "chill", Genres: []string{"rock"}})
		if !errors.Is(err, shared.ErrNoTracksFound) {
			t.Errorf("Expected ErrNoTracksFound, got %v", err)
		}
	})

	t.Run("Deduplicates And Filters By Mood", func(t *testing.T) {
		provider := &tu.MockProvider{
			TopTracksFunc: func(ctx context.Context, auth services.Authorization, limit int) ([]models.Track, error) {
				return []models.Track{testTrack("a"), testTrack("b")}, nil
			},
			SearchFunc: func(ctx context.Context, auth services.Authorization, query string, limit int, market string) ([]models.Track, error) {
				return []models.Track{testTrack("b"), testTrack("c"), testTrack("loud")}, nil
			},
			AudioFeaturesFunc: func(ctx context.Context, auth services.Authorization, trackIDs []string) (map[string]services.SpotifyAudioFeatures, error) {
				if len(trackIDs) != 4 {
					t.Errorf("Expected 4 deduplicated track IDs, got %d", len(trackIDs))
				}
				return map[string]services.SpotifyAudioFeatures{
					"a":    {ID: "a", Energy: 0.3, Valence: 0.5},
					"b":    {ID: "b", Energy: 0.4, Valence: 0.6},
					"c":    {ID: "c", Energy: 0.2, Valence: 0.4},
					"loud": {ID: "loud", Energy: 0.9, Valence: 0.5},
				}, nil
			},
		}

		engine, drafts, _ := newTestEngine(provider)
		user := connectedUser(t)

		draft, err := engine.Generate(ctx, user, GenerateRequest{Mood: "chill", Genres: []string{"rock"}, Count: 10})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}

		if len(draft.Tracks()) != 3 {
			t.Errorf("Expected 3 tracks after mood filter, got %d", len(draft.Tracks()))
		}
		for _, track := range draft.Tracks() {
			if track.ID == "loud" {
				t.Error("High energy track should have been filtered out of a chill draft")
			}
		}

		if draft.UserID() != user.ID() {
			t.Errorf("Expected draft owner %s, got %s", user.ID(), draft.UserID())
		}
		if _, ok := drafts.Drafts[draft.ID()]; !ok {
			t.Error("Expected draft to be persisted for an authenticated user")
		}
	})

	t.Run("Anonymous Generation Is Transient", func(t *testing.T) {
		appTokenUsed := false
		provider := &tu.MockProvider{
			AppAuthFunc: func(ctx context.Context) (services.Authorization, error) {
				appTokenUsed = true
				return services.AppAuth("app_token"), nil
			},
			SearchFunc: func(ctx context.Context, auth services.Authorization, query string, limit int, market string) ([]models.Track, error) {
				return []models.Track{testTrack("a"), testTrack("b"), testTrack("c")}, nil
			},
		}

		engine, drafts, _ := newTestEngine(provider)

		draft, err := engine.Generate(ctx, nil, GenerateRequest{Mood: "zen", Genres: []string{"ambient"}, Count: 2})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}

		if !appTokenUsed {
			t.Error("Expected anonymous generation to use the app token")
		}
		if draft.ID() == "" {
			t.Error("Expected transient draft to have an ID")
		}
		if len(draft.Tracks()) != 2 {
			t.Errorf("Expected 2 tracks, got %d", len(draft.Tracks()))
		}
		if len(drafts.Drafts) != 0 {
			t.Errorf("Expected no persisted drafts, got %d", len(drafts.Drafts))
		}
	})

	t.Run("Feature Lookup Failure Skips Filter", func(t *testing.T) {
		provider := &tu.MockProvider{
			SearchFunc: func(ctx context.Context, auth services.Authorization, query string, limit int, market string) ([]models.Track, error) {
				return []models.Track{testTrack("a"), testTrack("b")}, nil
			},
			AudioFeaturesFunc: func(ctx context.Context, auth services.Authorization, trackIDs []string) (map[string]services.SpotifyAudioFeatures, error) {
				return nil, fmt.Errorf("%w: 503", shared.ErrAPIRequest)
			},
		}

		engine, _, _ := newTestEngine(provider)

		draft, err := engine.Generate(ctx, nil, GenerateRequest{Mood: "chill", Genres: []string{"rock"}})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if len(draft.Tracks()) != 2 {
			t.Errorf("Expected the unfiltered pool, got %d tracks", len(draft.Tracks()))
		}
	})

	t.Run("Empty Filter Result Falls Back To Pool", func(t *testing.T) {
		provider := &tu.MockProvider{
			SearchFunc: func(ctx context.Context, auth services.Authorization, query string, limit int, market string) ([]models.Track, error) {
				return []models.Track{testTrack("a"), testTrack("b")}, nil
			},
			AudioFeaturesFunc: func(ctx context.Context, auth services.Authorization, trackIDs []string) (map[string]services.SpotifyAudioFeatures, error) {
				return map[string]services.SpotifyAudioFeatures{
					"a": {ID: "a", Energy: 0.95, Valence: 0.5},
					"b": {ID: "b", Energy: 0.99, Valence: 0.5},
				}, nil
			},
		}

		engine, _, _ := newTestEngine(provider)

		draft, err := engine.Generate(ctx, nil, GenerateRequest{Mood: "chill", Genres: []string{"rock"}})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if len(draft.Tracks()) != 2 {
			t.Errorf("Expected fallback to the unfiltered pool, got %d tracks", len(draft.Tracks()))
		}
	})
}

func TestPublish(t *testing.T) {
	ctx := context.Background()

	seedDraft := func(t *testing.T, drafts *tu.MemoryDraftStore, userID string, trackCount int) *models.Draft {
		t.Helper()
		tracks := make([]models.Track, trackCount)
		for i := range tracks {
			tracks[i] = testTrack(fmt.Sprintf("t%03d", i))
		}
		draft := models.NewDraft(1, userID, "chill", []string{"rock"}, trackCount, tracks)
		if err := drafts.Create(draft); err != nil {
			t.Fatalf("Failed to seed draft: %v", err)
		}
		return draft
	}

	t.Run("Requires Connected User", func(t *testing.T) {
		engine, _, _ := newTestEngine(&tu.MockProvider{})

		if _, err := engine.Publish(ctx, nil, "draft-1"); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("Expected ErrNotAuthenticated for nil user, got %v", err)
		}

		disconnected := models.NewUser(1, "spotify_user", "Test User", "", "US")
		if _, err := engine.Publish(ctx, disconnected, "draft-1"); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("Expected ErrNotAuthenticated for disconnected user, got %v", err)
		}
	})

	t.Run("Unknown Draft", func(t *testing.T) {
		engine, _, _ := newTestEngine(&tu.MockProvider{})
		_, err := engine.Publish(ctx, connectedUser(t), "missing")
		if !errors.Is(err, shared.ErrDraftNotFound) {
			t.Errorf("Expected ErrDraftNotFound, got %v", err)
		}
	})

	t.Run("Draft Owned By Someone Else", func(t *testing.T) {
		engine, drafts, _ := newTestEngine(&tu.MockProvider{})
		draft := seedDraft(t, drafts, "other-user", 3)

		_, err := engine.Publish(ctx, connectedUser(t), draft.ID())
		if !errors.Is(err, shared.ErrDraftNotFound) {
			t.Errorf("Expected ErrDraftNotFound for foreign draft, got %v", err)
		}
	})

	t.Run("Batches Track Additions", func(t *testing.T) {
		var batches []int
		provider := &tu.MockProvider{
			CreatePlaylistFunc: func(ctx context.Context, auth services.Authorization, spotifyUserID, name, description string, public bool) (*services.SpotifyPlaylist, error) {
				if public {
					t.Error("Expected a private playlist")
				}
				if name != "Chill Mix" {
					t.Errorf("Expected playlist name 'Chill Mix', got %q", name)
				}
				return &services.SpotifyPlaylist{ID: "pl-1", Name: name}, nil
			},
			AddTracksFunc: func(ctx context.Context, auth services.Authorization, playlistID string, uris []string) error {
				batches = append(batches, len(uris))
				return nil
			},
		}

		engine, drafts, history := newTestEngine(provider)
		user := connectedUser(t)
		draft := seedDraft(t, drafts, user.ID(), 250)

		record, err := engine.Publish(ctx, user, draft.ID())
		if err != nil {
			t.Fatalf("Publish failed: %v", err)
		}

		want := []int{100, 100, 50}
		if len(batches) != len(want) {
			t.Fatalf("Expected %d add-tracks calls, got %d", len(want), len(batches))
		}
		for i, size := range want {
			if batches[i] != size {
				t.Errorf("Batch %d: expected %d URIs, got %d", i, size, batches[i])
			}
		}

		if record.SpotifyPlaylistID() != "pl-1" {
			t.Errorf("Expected record to reference pl-1, got %s", record.SpotifyPlaylistID())
		}
		if len(history.Records) != 1 {
			t.Errorf("Expected 1 history record, got %d", len(history.Records))
		}
		if _, ok := drafts.Drafts[draft.ID()]; ok {
			t.Error("Expected draft to be removed after publishing")
		}
	})

	t.Run("Add Failure Keeps Draft", func(t *testing.T) {
		provider := &tu.MockProvider{
			AddTracksFunc: func(ctx context.Context, auth services.Authorization, playlistID string, uris []string) error {
				return fmt.Errorf("%w: 502", shared.ErrAPIRequest)
			},
		}

		engine, drafts, history := newTestEngine(provider)
		user := connectedUser(t)
		draft := seedDraft(t, drafts, user.ID(), 5)

		if _, err := engine.Publish(ctx, user, draft.ID()); err == nil {
			t.Fatal("Expected Publish to fail when adding tracks fails")
		}

		if _, ok := drafts.Drafts[draft.ID()]; !ok {
			t.Error("Expected draft to survive a failed publish")
		}
		if len(history.Records) != 0 {
			t.Errorf("Expected no history records, got %d", len(history.Records))
		}
	})
}

func TestRemoveTrack(t *testing.T) {
	engine, drafts, _ := newTestEngine(&tu.MockProvider{})
	user := connectedUser(t)

	draft := models.NewDraft(1, user.ID(), "happy", []string{"pop"}, 3, []models.Track{
		testTrack("a"), testTrack("b"), testTrack("c"),
	})
	if err := drafts.Create(draft); err != nil {
		t.Fatalf("Failed to seed draft: %v", err)
	}

	t.Run("Removes Existing Track", func(t *testing.T) {
		updated, err := engine.RemoveTrack(user, draft.ID(), "b")
		if err != nil {
			t.Fatalf("RemoveTrack failed: %v", err)
		}
		if len(updated.Tracks()) != 2 {
			t.Errorf("Expected 2 tracks, got %d", len(updated.Tracks()))
		}
		for _, track := range updated.Tracks() {
			if track.ID == "b" {
				t.Error("Track b should have been removed")
			}
		}
	})

	t.Run("Unknown Track", func(t *testing.T) {
		if _, err := engine.RemoveTrack(user, draft.ID(), "zz"); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("Expected ErrTrackNotFound, got %v", err)
		}
	})
}
