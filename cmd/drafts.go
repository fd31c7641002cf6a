package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/moodlist/internal/formatter"
	"github.com/desertthunder/moodlist/internal/models"
	"github.com/desertthunder/moodlist/internal/shared"
	"github.com/desertthunder/moodlist/internal/tasks"
	"github.com/urfave/cli/v3"
)

func draftExportPayload(draft *models.Draft) map[string]any {
	return map[string]any{
		"id":              draft.ID(),
		"mood":            draft.Mood(),
		"genres":          draft.Genres(),
		"requested_count": draft.RequestedCount(),
		"status":          draft.Status(),
		"tracks":          draft.Tracks(),
		"created_at":      draft.CreatedAt(),
	}
}

// requireUser resolves the --user flag and rejects anonymous invocations.
func (r *Runner) requireUser(cmd *cli.Command) (*models.User, error) {
	spotifyID := cmd.String("user")
	if spotifyID == "" {
		return nil, fmt.Errorf("%w: --user", shared.ErrMissingArgument)
	}
	return r.loadUser(spotifyID)
}

// DraftsList prints a user's pending drafts.
func (r *Runner) DraftsList(ctx context.Context, cmd *cli.Command) error {
	r.resolveConfig(cmd)

	if err := r.openDatabase(); err != nil {
		return err
	}

	user, err := r.requireUser(cmd)
	if err != nil {
		return err
	}

	drafts, err := r.engine.ListDrafts(user)
	if err != nil {
		return fmt.Errorf("failed to list drafts: %w", err)
	}

	if cmd.Bool("json") {
		payload := make([]map[string]any, 0, len(drafts))
		for _, draft := range drafts {
			payload = append(payload, draftExportPayload(draft))
		}
		return r.writeJSON(payload, cmd.Bool("pretty"))
	}

	if len(drafts) == 0 {
		r.writePlain("No pending drafts.\n")
		return nil
	}

	r.writePlain("Found %d drafts:\n\n", len(drafts))
	for i, draft := range drafts {
		r.writePlain("%d. %s\n", i+1, tasks.PlaylistName(draft.Mood()))
		r.writePlain("   ID: %s\n", draft.ID())
		r.writePlain("   Genres: %s\n", strings.Join(draft.Genres(), ", "))
		r.writePlain("   Tracks: %d\n", len(draft.Tracks()))
		r.writePlain("\n")
	}

	return nil
}

// DraftsExport writes a draft's track listing to disk as CSV, Markdown, or plain text.
func (r *Runner) DraftsExport(ctx context.Context, cmd *cli.Command) error {
	r.resolveConfig(cmd)

	if err := r.openDatabase(); err != nil {
		return err
	}

	draft, err := r.drafts.Get(cmd.String("id"))
	if err != nil {
		return err
	}

	return r.writeExport(formatter.FromDraft(draft), cmd.String("format"), cmd.String("output"))
}

// DraftsPublish pushes a stored draft to the user's Spotify account.
func (r *Runner) DraftsPublish(ctx context.Context, cmd *cli.Command) error {
	r.resolveConfig(cmd)

	if err := r.openDatabase(); err != nil {
		return err
	}

	user, err := r.requireUser(cmd)
	if err != nil {
		return err
	}

	record, err := r.engine.Publish(ctx, user, cmd.String("id"))
	if err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}

	r.writePlainln("✓ Published %q to Spotify (playlist %s)", record.Name(), record.SpotifyPlaylistID())
	return nil
}

// writeExport dispatches to the formatter for the requested export format.
func (r *Runner) writeExport(export *formatter.Export, format, output string) error {
	switch format {
	case "csv", "":
		base := output
		if base == "" {
			base = export.ID
		}
		result, err := formatter.WriteCSVExport(export, base)
		if err != nil {
			return fmt.Errorf("failed to write CSV export: %w", err)
		}
		r.writePlain("✓ Tracks written to %s\n", result.TracksFile)
		r.writePlain("✓ Metadata written to %s\n", result.MetadataFile)
	case "markdown", "md":
		dir := output
		if dir == "" {
			dir = export.ID
		}
		result, err := formatter.WriteMarkdownExport(export, dir, "")
		if err != nil {
			return fmt.Errorf("failed to write Markdown export: %w", err)
		}
		r.writePlain("✓ Export written to %s/\n", result.Directory)
	case "text", "txt":
		path, err := formatter.WriteTextExport(export, output)
		if err != nil {
			return fmt.Errorf("failed to write text export: %w", err)
		}
		r.writePlain("✓ Export written to %s\n", path)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}

	return nil
}
