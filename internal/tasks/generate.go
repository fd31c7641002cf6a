package tasks

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/desertthunder/moodlist/internal/models"
	"github.com/desertthunder/moodlist/internal/services"
	"github.com/desertthunder/moodlist/internal/shared"
)

// Generate runs the full pipeline for one request: aggregate candidates,
// filter by mood, sample a draft. The user may be nil (anonymous); anonymous
// drafts are returned transiently and never persisted.
func (e *GeneratorEngine) Generate(ctx context.Context, user *models.User, req GenerateRequest) (*models.Draft, error) {
	if e.spotify == nil {
		return nil, fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}

	mood := strings.ToLower(strings.TrimSpace(req.Mood))
	if mood == "" {
		return nil, fmt.Errorf("%w: mood is required", shared.ErrInvalidInput)
	}

	seeds := NormalizeGenres(req.Genres)
	if len(seeds) == 0 {
		return nil, fmt.Errorf("%w: at least one genre is required", shared.ErrInvalidInput)
	}

	count := req.Count
	if count <= 0 {
		count = defaultDraftSize
	}

	auth, market, err := e.resolveAuthorization(ctx, user)
	if err != nil {
		return nil, err
	}

	pool := e.collectCandidates(ctx, auth, mood, seeds, market, user != nil && user.Connected())
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: for mood %q and genres %v", shared.ErrNoTracksFound, mood, seeds)
	}

	filtered := e.filterByMood(ctx, auth, pool, mood)
	selection := sampleTracks(filtered, count)

	userID := ""
	if user != nil {
		userID = user.ID()
	}

	draft := models.NewDraft(0, userID, mood, seeds, count, selection)

	if user != nil {
		if err := e.drafts.Create(draft); err != nil {
			return nil, fmt.Errorf("failed to persist draft: %w", err)
		}
	} else {
		draft.SetID(shared.GenerateID())
	}

	e.logger.Info("generated draft",
		"draft_id", draft.ID(),
		"mood", mood,
		"genres", seeds,
		"pool", len(pool),
		"selected", len(selection),
		"persisted", user != nil,
	)

	return draft, nil
}

// collectCandidates gathers tracks from personalization and seed-genre
// searches, deduplicated by track id in first-seen order. Every individual
// fetch failure here is non-fatal.
func (e *GeneratorEngine) collectCandidates(ctx context.Context, auth services.Authorization, mood string, seeds []string, market string, personalized bool) []models.Track {
	var pool []models.Track

	if personalized {
		var (
			wg         sync.WaitGroup
			topTracks  []models.Track
			topArtists []services.SpotifyArtist
		)

		wg.Add(2)
		go func() {
			defer wg.Done()
			tracks, err := e.spotify.TopTracks(ctx, auth, topItemLimit)
			if err != nil {
				e.logger.Warn("skipping top tracks", "error", err)
				return
			}
			topTracks = tracks
		}()
		go func() {
			defer wg.Done()
			artists, err := e.spotify.TopArtists(ctx, auth, topItemLimit)
			if err != nil {
				e.logger.Warn("skipping top artists", "error", err)
				return
			}
			topArtists = artists
		}()
		wg.Wait()

		pool = append(pool, topTracks...)

		for _, artist := range topArtists {
			tracks, err := e.spotify.ArtistTopTracks(ctx, auth, artist.ID, market)
			if err != nil {
				e.logger.Warn("skipping artist top tracks", "artist", artist.Name, "error", err)
				continue
			}
			if len(tracks) > topItemLimit {
				tracks = tracks[:topItemLimit]
			}
			pool = append(pool, tracks...)
		}
	}

	for _, seed := range seeds {
		query := fmt.Sprintf("%s %s", seed, mood)
		tracks, err := e.spotify.Search(ctx, auth, query, genreSearchLimit, market)
		if err != nil {
			e.logger.Warn("skipping genre search", "genre", seed, "error", err)
			continue
		}
		pool = append(pool, tracks...)
	}

	return models.DedupeTracks(pool)
}

// filterByMood narrows the pool using mood-derived attribute ranges. The
// attribute lookup is capped at 100 tracks; a failed lookup skips filtering,
// and an empty filtered set falls back to the unfiltered pool.
func (e *GeneratorEngine) filterByMood(ctx context.Context, auth services.Authorization, pool []models.Track, mood string) []models.Track {
	profile := MoodProfile(mood)
	if len(profile) == 0 {
		return pool
	}

	lookup := pool
	if len(lookup) > publishBatchSize {
		lookup = lookup[:publishBatchSize]
	}

	ids := make([]string, len(lookup))
	for i, track := range lookup {
		ids[i] = track.ID
	}

	features, err := e.spotify.AudioFeatures(ctx, auth, ids)
	if err != nil {
		e.logger.Warn("audio feature lookup failed, skipping mood filter", "mood", mood, "error", err)
		return pool
	}

	filtered := make([]models.Track, 0, len(pool))
	for _, track := range pool {
		attrs, ok := features[track.ID]
		if !ok {
			// Constraints are configured but no data came back for this
			// track; treat as non-matching.
			continue
		}
		if matchesProfile(attrs, profile) {
			filtered = append(filtered, track)
		}
	}

	if len(filtered) == 0 {
		e.logger.Info("mood filter excluded every candidate, using unfiltered pool", "mood", mood, "pool", len(pool))
		return pool
	}

	return filtered
}

// sampleTracks returns a uniform random sample of at most count tracks.
func sampleTracks(pool []models.Track, count int) []models.Track {
	shuffled := make([]models.Track, len(pool))
	copy(shuffled, pool)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if count > len(shuffled) {
		count = len(shuffled)
	}

	return shuffled[:count]
}
