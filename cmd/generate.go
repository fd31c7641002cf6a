package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/moodlist/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Generate assembles a playlist draft for a mood and seed genres.
//
// With --user the draft is personalized from the user's listening history
// and persisted for later review. Without it the draft is anonymous and
// only printed.
func (r *Runner) Generate(ctx context.Context, cmd *cli.Command) error {
	r.resolveConfig(cmd)

	if err := r.openDatabase(); err != nil {
		return err
	}

	user, err := r.loadUser(cmd.String("user"))
	if err != nil {
		return err
	}

	req := tasks.GenerateRequest{
		Mood:   cmd.String("mood"),
		Genres: cmd.StringSlice("genre"),
		Count:  cmd.Int("count"),
	}

	r.logger.Info("generating draft", "mood", req.Mood, "genres", req.Genres, "count", req.Count)

	draft, err := r.engine.Generate(ctx, user, req)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(draftExportPayload(draft), cmd.Bool("pretty"))
	}

	r.writePlain("%s (%d tracks)\n", tasks.PlaylistName(draft.Mood()), len(draft.Tracks()))
	r.writePlain("Mood: %s | Genres: %s\n\n", draft.Mood(), strings.Join(draft.Genres(), ", "))
	for i, track := range draft.Tracks() {
		r.writePlain("%d. %s - %s\n", i+1, track.Artists, track.Name)
	}
	if user != nil {
		r.writePlainln("Draft saved with ID: %s", draft.ID())
	} else {
		r.writePlainln("Anonymous draft; pass --user to save it for publishing.")
	}

	return nil
}
