package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/moodlist/internal/formatter"
	"github.com/desertthunder/moodlist/internal/models"
	"github.com/urfave/cli/v3"
)

func historyExportPayload(record *models.PublishedPlaylist) map[string]any {
	return map[string]any{
		"id":                  record.ID(),
		"spotify_playlist_id": record.SpotifyPlaylistID(),
		"name":                record.Name(),
		"mood":                record.Mood(),
		"genres":              record.Genres(),
		"tracks":              record.Tracks(),
		"published_at":        record.CreatedAt(),
	}
}

// HistoryList prints a user's published playlists, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	r.resolveConfig(cmd)

	if err := r.openDatabase(); err != nil {
		return err
	}

	user, err := r.requireUser(cmd)
	if err != nil {
		return err
	}

	records, err := r.engine.ListHistory(user)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if cmd.Bool("json") {
		payload := make([]map[string]any, 0, len(records))
		for _, record := range records {
			payload = append(payload, historyExportPayload(record))
		}
		return r.writeJSON(payload, cmd.Bool("pretty"))
	}

	if len(records) == 0 {
		r.writePlain("No published playlists yet.\n")
		return nil
	}

	r.writePlain("Found %d published playlists:\n\n", len(records))
	for i, record := range records {
		r.writePlain("%d. %s\n", i+1, record.Name())
		r.writePlain("   ID: %s\n", record.ID())
		r.writePlain("   Spotify: %s\n", record.SpotifyPlaylistID())
		r.writePlain("   Mood: %s | Genres: %s\n", record.Mood(), strings.Join(record.Genres(), ", "))
		r.writePlain("   Tracks: %d\n", len(record.Tracks()))
		r.writePlain("\n")
	}

	return nil
}

// HistoryExport writes a published playlist record to disk.
func (r *Runner) HistoryExport(ctx context.Context, cmd *cli.Command) error {
	r.resolveConfig(cmd)

	if err := r.openDatabase(); err != nil {
		return err
	}

	record, err := r.history.Get(cmd.String("id"))
	if err != nil {
		return err
	}

	return r.writeExport(formatter.FromHistory(record), cmd.String("format"), cmd.String("output"))
}
