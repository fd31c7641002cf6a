package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/moodlist/internal/models"
	"github.com/desertthunder/moodlist/internal/services"
	"github.com/desertthunder/moodlist/internal/shared"
)

// Publish converts one of the user's drafts into a real Spotify playlist and
// archives it to history. Track URIs are added in sequential batches of at
// most 100 per call.
//
// A failure after playlist creation leaves the draft intact locally but does
// not roll back the playlist on Spotify; that window is logged rather than
// reconciled.
func (e *GeneratorEngine) Publish(ctx context.Context, user *models.User, draftID string) (*models.PublishedPlaylist, error) {
	if user == nil || !user.Connected() {
		return nil, fmt.Errorf("%w: Spotify connection required to publish", shared.ErrNotAuthenticated)
	}

	draft, err := e.ownedDraft(user, draftID)
	if err != nil {
		return nil, err
	}

	auth := services.UserAuthorization(user.ID(), user.AccessToken(), user.RefreshToken())

	name := PlaylistName(draft.Mood())
	description := fmt.Sprintf("Generated by Moodlist for a %s mood", draft.Mood())

	playlist, err := e.spotify.CreatePlaylist(ctx, auth, user.SpotifyID(), name, description, false)
	if err != nil {
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	}

	uris := models.TrackURIs(draft.Tracks())
	for start := 0; start < len(uris); start += publishBatchSize {
		end := min(start+publishBatchSize, len(uris))
		if err := e.spotify.AddTracks(ctx, auth, playlist.ID, uris[start:end]); err != nil {
			e.logger.Warn("playlist created on Spotify but adding tracks failed",
				"spotify_playlist_id", playlist.ID, "added", start, "total", len(uris), "error", err)
			return nil, fmt.Errorf("failed to add tracks: %w", err)
		}
	}

	draft.SetStatus(models.StatusConfirmed)

	record := models.NewPublishedPlaylist(0, user.ID(), playlist.ID, name, draft.Mood(), draft.Genres(), draft.Tracks())
	if err := e.history.Create(record); err != nil {
		e.logger.Warn("playlist exists on Spotify but history record failed",
			"spotify_playlist_id", playlist.ID, "error", err)
		return nil, fmt.Errorf("failed to record published playlist: %w", err)
	}

	if err := e.drafts.Delete(draft.ID()); err != nil {
		// Publish succeeded; a stale draft is preferable to failing the call.
		e.logger.Warn("failed to remove published draft", "draft_id", draft.ID(), "error", err)
	}

	e.logger.Info("published playlist",
		"draft_id", draft.ID(),
		"spotify_playlist_id", playlist.ID,
		"tracks", len(uris),
	)

	return record, nil
}
