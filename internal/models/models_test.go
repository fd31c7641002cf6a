package models

import (
	"testing"
	"time"
)

func TestUser(t *testing.T) {
	t.Run("Validate", func(t *testing.T) {
		user := NewUser(1, "spotify_user", "Test User", "test@example.com", "US")
		if err := user.Validate(); err != nil {
			t.Errorf("expected valid user, got %v", err)
		}

		empty := NewUser(2, "", "No Spotify", "", "US")
		if err := empty.Validate(); err == nil {
			t.Error("expected error for missing spotify id")
		}
	})

	t.Run("SetTokens", func(t *testing.T) {
		user := NewUser(1, "spotify_user", "Test User", "", "US")

		if err := user.SetTokens("access", "", time.Now()); err == nil {
			t.Error("expected error for incomplete credential pair")
		}
		if user.Connected() {
			t.Error("user should not be connected after rejected token update")
		}

		expiry := time.Now().Add(time.Hour)
		if err := user.SetTokens("access", "refresh", expiry); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !user.Connected() {
			t.Error("user should be connected")
		}
		if user.RefreshToken() != "refresh" {
			t.Errorf("expected refresh token to be stored, got %q", user.RefreshToken())
		}

		user.ClearTokens()
		if user.Connected() {
			t.Error("user should not be connected after ClearTokens")
		}
		if err := user.Validate(); err != nil {
			t.Errorf("cleared credentials should satisfy the pair invariant: %v", err)
		}
	})
}

func TestDraft(t *testing.T) {
	tracks := []Track{
		{ID: "t1", Name: "First", Artists: "A", URI: "spotify:track:t1"},
		{ID: "t2", Name: "Second", Artists: "B", URI: "spotify:track:t2"},
	}

	t.Run("Validate", func(t *testing.T) {
		draft := NewDraft(1, "user1", "chill", []string{"pop"}, 20, tracks)
		if err := draft.Validate(); err != nil {
			t.Errorf("expected valid draft, got %v", err)
		}
		if draft.Status() != StatusDraft {
			t.Errorf("expected status draft, got %s", draft.Status())
		}

		noMood := NewDraft(2, "user1", "", []string{"pop"}, 20, tracks)
		if err := noMood.Validate(); err == nil {
			t.Error("expected error for missing mood")
		}

		dup := NewDraft(3, "user1", "chill", []string{"pop"}, 20, []Track{
			{ID: "t1"}, {ID: "t1"},
		})
		if err := dup.Validate(); err == nil {
			t.Error("expected error for duplicate track ids")
		}
	})

	t.Run("RemoveTrack", func(t *testing.T) {
		draft := NewDraft(1, "user1", "chill", []string{"pop"}, 20, append([]Track{}, tracks...))

		if !draft.RemoveTrack("t1") {
			t.Error("expected removal of existing track to succeed")
		}
		if len(draft.Tracks()) != 1 {
			t.Errorf("expected 1 track remaining, got %d", len(draft.Tracks()))
		}
		if draft.RemoveTrack("missing") {
			t.Error("expected removal of missing track to fail")
		}
	})
}

func TestDedupeTracks(t *testing.T) {
	tracks := []Track{
		{ID: "a", Name: "first occurrence"},
		{ID: "b"},
		{ID: "a", Name: "duplicate"},
		{ID: "c"},
		{ID: "b", Name: "duplicate"},
	}

	deduped := DedupeTracks(tracks)

	if len(deduped) != 3 {
		t.Fatalf("expected 3 unique tracks, got %d", len(deduped))
	}

	want := []string{"a", "b", "c"}
	for i, id := range want {
		if deduped[i].ID != id {
			t.Errorf("expected track %d to be %s, got %s", i, id, deduped[i].ID)
		}
	}

	if deduped[0].Name != "first occurrence" {
		t.Error("dedupe should keep the first occurrence")
	}
}
