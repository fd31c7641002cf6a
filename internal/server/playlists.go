package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodlist/internal/models"
	"github.com/desertthunder/moodlist/internal/shared"
	"github.com/desertthunder/moodlist/internal/tasks"
)

// PlaylistHandler exposes playlist generation, draft editing, publishing, and
// history over the JSON API.
type PlaylistHandler struct {
	engine *tasks.GeneratorEngine
	logger *log.Logger
}

// NewPlaylistHandler creates a [PlaylistHandler].
func NewPlaylistHandler(engine *tasks.GeneratorEngine, logger *log.Logger) *PlaylistHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &PlaylistHandler{
		engine: engine,
		logger: logger.With("handler", "playlists"),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *PlaylistHandler) Routes() []string {
	return []string{
		"POST /api/playlists/generate",
		"GET /api/drafts",
		"DELETE /api/drafts/{id}",
		"DELETE /api/drafts/{id}/tracks/{trackID}",
		"POST /api/drafts/{id}/push",
		"GET /api/history",
	}
}

// ServeHTTP dispatches to the matched playlist endpoint.
func (h *PlaylistHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/playlists/generate":
		h.generate(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/api/drafts":
		h.listDrafts(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/api/history":
		h.listHistory(w, r)
	case r.Method == http.MethodDelete && r.PathValue("trackID") != "":
		h.removeTrack(w, r)
	case r.Method == http.MethodDelete && r.PathValue("id") != "":
		h.deleteDraft(w, r)
	case r.Method == http.MethodPost && r.PathValue("id") != "":
		h.push(w, r)
	default:
		writeError(w, fmt.Errorf("%w: no such route", shared.ErrInvalidInput))
	}
}

// generate builds a draft for the request's mood and genres. Anonymous
// callers get a transient draft; session users get a persisted one.
func (h *PlaylistHandler) generate(w http.ResponseWriter, r *http.Request) {
	var req tasks.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: malformed request body: %v", shared.ErrInvalidInput, err))
		return
	}

	user := UserFromContext(r.Context())

	draft, err := h.engine.Generate(r.Context(), user, req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, draftPayload(draft))
}

func (h *PlaylistHandler) listDrafts(w http.ResponseWriter, r *http.Request) {
	user := RequireUser(w, r)
	if user == nil {
		return
	}

	drafts, err := h.engine.ListDrafts(user)
	if err != nil {
		writeError(w, err)
		return
	}

	payload := make([]map[string]any, 0, len(drafts))
	for _, draft := range drafts {
		payload = append(payload, draftPayload(draft))
	}

	writeJSON(w, http.StatusOK, map[string]any{"drafts": payload})
}

func (h *PlaylistHandler) deleteDraft(w http.ResponseWriter, r *http.Request) {
	user := RequireUser(w, r)
	if user == nil {
		return
	}

	if err := h.engine.DeleteDraft(user, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

func (h *PlaylistHandler) removeTrack(w http.ResponseWriter, r *http.Request) {
	user := RequireUser(w, r)
	if user == nil {
		return
	}

	draft, err := h.engine.RemoveTrack(user, r.PathValue("id"), r.PathValue("trackID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, draftPayload(draft))
}

// push publishes a draft to Spotify and returns the history record.
func (h *PlaylistHandler) push(w http.ResponseWriter, r *http.Request) {
	user := RequireUser(w, r)
	if user == nil {
		return
	}

	record, err := h.engine.Publish(r.Context(), user, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, historyPayload(record))
}

func (h *PlaylistHandler) listHistory(w http.ResponseWriter, r *http.Request) {
	user := RequireUser(w, r)
	if user == nil {
		return
	}

	records, err := h.engine.ListHistory(user)
	if err != nil {
		writeError(w, err)
		return
	}

	payload := make([]map[string]any, 0, len(records))
	for _, record := range records {
		payload = append(payload, historyPayload(record))
	}

	writeJSON(w, http.StatusOK, map[string]any{"history": payload})
}

func draftPayload(draft *models.Draft) map[string]any {
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

func historyPayload(record *models.PublishedPlaylist) map[string]any {
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
