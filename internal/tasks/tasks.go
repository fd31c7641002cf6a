package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodlist/internal/models"
	"github.com/desertthunder/moodlist/internal/services"
	"github.com/desertthunder/moodlist/internal/shared"
)

const (
	// defaultDraftSize is the number of tracks selected when the request
	// doesn't specify a count.
	defaultDraftSize = 20

	// topItemLimit bounds the personalization fetches (top tracks, top
	// artists, and tracks kept per top artist).
	topItemLimit = 5

	// genreSearchLimit is the page size for each seed-genre keyword search.
	genreSearchLimit = 50

	// publishBatchSize is the Spotify cap on URIs per add-tracks call.
	publishBatchSize = 100
)

// GenerateRequest carries the caller's input for playlist generation.
type GenerateRequest struct {
	Mood   string   `json:"mood"`
	Genres []string `json:"genres"`
	Count  int      `json:"count"`
}

// DraftStore persists drafts. Implemented by repositories.DraftRepository.
type DraftStore interface {
	Create(draft *models.Draft) error
	Get(id string) (*models.Draft, error)
	Update(draft *models.Draft) error
	Delete(id string) error
	List(criteria map[string]any) ([]*models.Draft, error)
}

// HistoryStore persists published playlist records. Implemented by repositories.HistoryRepository.
type HistoryStore interface {
	Create(playlist *models.PublishedPlaylist) error
	List(criteria map[string]any) ([]*models.PublishedPlaylist, error)
}

// GeneratorEngine orchestrates playlist generation and publishing.
// Contains dependencies on the Spotify provider and the persistence stores.
type GeneratorEngine struct {
	spotify services.Provider
	drafts  DraftStore
	history HistoryStore
	logger  *log.Logger
}

// NewGeneratorEngine creates a new GeneratorEngine with the provided dependencies.
func NewGeneratorEngine(spotify services.Provider, drafts DraftStore, history HistoryStore, logger *log.Logger) *GeneratorEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &GeneratorEngine{
		spotify: spotify,
		drafts:  drafts,
		history: history,
		logger:  logger.With("component", "generator"),
	}
}

// resolveAuthorization picks the token for this request once: the user's
// stored credential when present, otherwise a fresh app-level token.
func (e *GeneratorEngine) resolveAuthorization(ctx context.Context, user *models.User) (services.Authorization, string, error) {
	if user != nil && user.Connected() {
		return services.UserAuthorization(user.ID(), user.AccessToken(), user.RefreshToken()), user.Market(), nil
	}

	auth, err := e.spotify.AppAuthorization(ctx)
	if err != nil {
		return services.Authorization{}, "", fmt.Errorf("%w: no usable token: %v", shared.ErrAuthFailed, err)
	}

	return auth, "", nil
}

// ownedDraft loads a draft and verifies ownership.
func (e *GeneratorEngine) ownedDraft(user *models.User, draftID string) (*models.Draft, error) {
	if e.drafts == nil {
		return nil, fmt.Errorf("%w: draft store not initialized", shared.ErrServiceUnavailable)
	}

	draft, err := e.drafts.Get(draftID)
	if err != nil || draft.UserID() != user.ID() {
		return nil, fmt.Errorf("%w: %s", shared.ErrDraftNotFound, draftID)
	}

	return draft, nil
}

// ListDrafts returns the user's pending drafts.
func (e *GeneratorEngine) ListDrafts(user *models.User) ([]*models.Draft, error) {
	return e.drafts.List(map[string]any{"user_id": user.ID()})
}

// ListHistory returns the user's published playlist records.
func (e *GeneratorEngine) ListHistory(user *models.User) ([]*models.PublishedPlaylist, error) {
	return e.history.List(map[string]any{"user_id": user.ID()})
}

// RemoveTrack deletes a track from one of the user's drafts and persists the change.
func (e *GeneratorEngine) RemoveTrack(user *models.User, draftID, trackID string) (*models.Draft, error) {
	draft, err := e.ownedDraft(user, draftID)
	if err != nil {
		return nil, err
	}

	if !draft.RemoveTrack(trackID) {
		return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, trackID)
	}

	if err := e.drafts.Update(draft); err != nil {
		return nil, fmt.Errorf("failed to update draft: %w", err)
	}

	return draft, nil
}

// DeleteDraft removes one of the user's drafts.
func (e *GeneratorEngine) DeleteDraft(user *models.User, draftID string) error {
	draft, err := e.ownedDraft(user, draftID)
	if err != nil {
		return err
	}

	return e.drafts.Delete(draft.ID())
}
