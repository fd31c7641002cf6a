package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/moodlist/internal/models"
	"github.com/desertthunder/moodlist/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, repo *UserRepository) *models.User {
	t.Helper()

	user := models.NewUser(0, "spotify_abc", "Test User", "test@example.com", "US")
	if err := repo.Create(user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func testTracks() []models.Track {
	return []models.Track{
		{ID: "t1", Name: "First", Artists: "Artist A", URI: "spotify:track:t1"},
		{ID: "t2", Name: "Second", Artists: "Artist B", URI: "spotify:track:t2"},
	}
}

func TestUserRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewUserRepository(db)
		user := createTestUser(t, repo)

		if user.ID() == "" {
			t.Error("user ID should be set after creation")
		}
	})

	t.Run("Get And GetBySpotifyID", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewUserRepository(db)
		user := createTestUser(t, repo)

		retrieved, err := repo.Get(user.ID())
		if err != nil {
			t.Fatalf("failed to get user: %v", err)
		}
		if retrieved.SpotifyID() != "spotify_abc" {
			t.Errorf("expected spotify ID spotify_abc, got %s", retrieved.SpotifyID())
		}
		if retrieved.Market() != "US" {
			t.Errorf("expected market US, got %s", retrieved.Market())
		}

		bySpotify, err := repo.GetBySpotifyID("spotify_abc")
		if err != nil {
			t.Fatalf("failed to get user by spotify ID: %v", err)
		}
		if bySpotify.ID() != user.ID() {
			t.Errorf("expected ID %s, got %s", user.ID(), bySpotify.ID())
		}

		if _, err := repo.Get("missing"); !errors.Is(err, shared.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("Token Round Trip", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewUserRepository(db)
		user := createTestUser(t, repo)

		expiry := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
		if err := repo.UpdateTokens(user.ID(), "access_1", "refresh_1", expiry); err != nil {
			t.Fatalf("failed to update tokens: %v", err)
		}

		retrieved, err := repo.Get(user.ID())
		if err != nil {
			t.Fatalf("failed to get user: %v", err)
		}
		if !retrieved.Connected() {
			t.Error("user should be connected after token update")
		}
		if retrieved.AccessToken() != "access_1" || retrieved.RefreshToken() != "refresh_1" {
			t.Errorf("unexpected token pair: %s / %s", retrieved.AccessToken(), retrieved.RefreshToken())
		}

		if err := repo.ClearTokens(user.ID()); err != nil {
			t.Fatalf("failed to clear tokens: %v", err)
		}

		retrieved, err = repo.Get(user.ID())
		if err != nil {
			t.Fatalf("failed to get user: %v", err)
		}
		if retrieved.Connected() {
			t.Error("user should be disconnected after clearing tokens")
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewUserRepository(db)
		user := createTestUser(t, repo)

		user.SetProfile("Renamed", "renamed@example.com", "GB")
		if err := repo.Update(user); err != nil {
			t.Fatalf("failed to update user: %v", err)
		}

		retrieved, err := repo.Get(user.ID())
		if err != nil {
			t.Fatalf("failed to get user: %v", err)
		}
		if retrieved.DisplayName() != "Renamed" {
			t.Errorf("expected display name Renamed, got %s", retrieved.DisplayName())
		}
		if retrieved.Market() != "GB" {
			t.Errorf("expected market GB, got %s", retrieved.Market())
		}
	})

	t.Run("Soft Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewUserRepository(db)
		user := createTestUser(t, repo)

		if err := repo.Delete(user.ID()); err != nil {
			t.Fatalf("failed to delete user: %v", err)
		}

		if _, err := repo.Get(user.ID()); !errors.Is(err, shared.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound after delete, got %v", err)
		}

		if err := repo.Delete(user.ID()); !errors.Is(err, shared.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound on double delete, got %v", err)
		}
	})
}

func TestDraftRepository(t *testing.T) {
	t.Run("Create And Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewDraftRepository(db)
		draft := models.NewDraft(0, "user-1", "chill", []string{"rock", "lo-fi"}, 20, testTracks())

		if err := repo.Create(draft); err != nil {
			t.Fatalf("failed to create draft: %v", err)
		}
		if draft.ID() == "" {
			t.Error("draft ID should be set after creation")
		}

		retrieved, err := repo.Get(draft.ID())
		if err != nil {
			t.Fatalf("failed to get draft: %v", err)
		}
		if retrieved.Mood() != "chill" {
			t.Errorf("expected mood chill, got %s", retrieved.Mood())
		}
		if len(retrieved.Genres()) != 2 || retrieved.Genres()[1] != "lo-fi" {
			t.Errorf("unexpected genres: %v", retrieved.Genres())
		}
		if len(retrieved.Tracks()) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(retrieved.Tracks()))
		}
		if retrieved.Tracks()[0].URI != "spotify:track:t1" {
			t.Errorf("unexpected first track URI: %s", retrieved.Tracks()[0].URI)
		}
		if retrieved.Status() != models.StatusDraft {
			t.Errorf("expected status draft, got %s", retrieved.Status())
		}
	})

	t.Run("Update Persists Track Removal", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewDraftRepository(db)
		draft := models.NewDraft(0, "user-1", "chill", []string{"rock"}, 20, testTracks())

		if err := repo.Create(draft); err != nil {
			t.Fatalf("failed to create draft: %v", err)
		}

		if !draft.RemoveTrack("t1") {
			t.Fatal("expected RemoveTrack to succeed")
		}
		if err := repo.Update(draft); err != nil {
			t.Fatalf("failed to update draft: %v", err)
		}

		retrieved, err := repo.Get(draft.ID())
		if err != nil {
			t.Fatalf("failed to get draft: %v", err)
		}
		if len(retrieved.Tracks()) != 1 || retrieved.Tracks()[0].ID != "t2" {
			t.Errorf("unexpected tracks after removal: %v", retrieved.Tracks())
		}
	})

	t.Run("List Scoped To User", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewDraftRepository(db)
		for _, userID := range []string{"user-1", "user-1", "user-2"} {
			draft := models.NewDraft(0, userID, "happy", []string{"pop"}, 10, testTracks())
			if err := repo.Create(draft); err != nil {
				t.Fatalf("failed to create draft: %v", err)
			}
		}

		drafts, err := repo.List(map[string]any{"user_id": "user-1"})
		if err != nil {
			t.Fatalf("failed to list drafts: %v", err)
		}
		if len(drafts) != 2 {
			t.Errorf("expected 2 drafts for user-1, got %d", len(drafts))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewDraftRepository(db)
		draft := models.NewDraft(0, "user-1", "sad", []string{"indie"}, 15, testTracks())

		if err := repo.Create(draft); err != nil {
			t.Fatalf("failed to create draft: %v", err)
		}
		if err := repo.Delete(draft.ID()); err != nil {
			t.Fatalf("failed to delete draft: %v", err)
		}

		if _, err := repo.Get(draft.ID()); !errors.Is(err, shared.ErrDraftNotFound) {
			t.Errorf("expected ErrDraftNotFound after delete, got %v", err)
		}
	})
}

func TestHistoryRepository(t *testing.T) {
	t.Run("Create And List Newest First", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewHistoryRepository(db)

		first := models.NewPublishedPlaylist(0, "user-1", "pl-1", "Chill Mix", "chill", []string{"rock"}, testTracks())
		second := models.NewPublishedPlaylist(0, "user-1", "pl-2", "Happy Mix", "happy", []string{"pop"}, testTracks())

		if err := repo.Create(first); err != nil {
			t.Fatalf("failed to create record: %v", err)
		}
		if err := repo.Create(second); err != nil {
			t.Fatalf("failed to create record: %v", err)
		}

		records, err := repo.List(map[string]any{"user_id": "user-1"})
		if err != nil {
			t.Fatalf("failed to list records: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
		if records[0].SpotifyPlaylistID() != "pl-2" {
			t.Errorf("expected newest record first, got %s", records[0].SpotifyPlaylistID())
		}
	})

	t.Run("Get Round Trip", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewHistoryRepository(db)
		record := models.NewPublishedPlaylist(0, "user-1", "pl-1", "Focus Mix", "focus", []string{"ambient"}, testTracks())

		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create record: %v", err)
		}

		retrieved, err := repo.Get(record.ID())
		if err != nil {
			t.Fatalf("failed to get record: %v", err)
		}
		if retrieved.Name() != "Focus Mix" {
			t.Errorf("expected name Focus Mix, got %s", retrieved.Name())
		}
		if len(retrieved.Tracks()) != 2 {
			t.Errorf("expected 2 tracks, got %d", len(retrieved.Tracks()))
		}
	})
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "drafts")
		if err != nil {
			t.Fatalf("failed to get sequence: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}
}
