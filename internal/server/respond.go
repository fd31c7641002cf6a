package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/desertthunder/moodlist/internal/shared"
)

// errorBody is the uniform error envelope returned by every API endpoint.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// writeJSON serializes payload with the given status code.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// writeError maps a domain error onto the error envelope.
func writeError(w http.ResponseWriter, err error) {
	status := statusFromErr(err)
	writeJSON(w, status, errorBody{Error: errorDetail{Status: status, Message: err.Error()}})
}

// statusFromErr maps domain sentinel errors to HTTP status codes. Unmapped
// errors are internal.
func statusFromErr(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidInput),
		errors.Is(err, shared.ErrInvalidArgument),
		errors.Is(err, shared.ErrMissingArgument):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrNotAuthenticated),
		errors.Is(err, shared.ErrInvalidSession),
		errors.Is(err, shared.ErrTokenExpired),
		errors.Is(err, shared.ErrAuthFailed):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrDraftNotFound),
		errors.Is(err, shared.ErrTrackNotFound),
		errors.Is(err, shared.ErrUserNotFound),
		errors.Is(err, shared.ErrNoTracksFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrAPIRequest):
		return http.StatusBadGateway
	case errors.Is(err, shared.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
