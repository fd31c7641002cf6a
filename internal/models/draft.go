package models

import (
	"fmt"
)

// DraftStatus enumerates the lifecycle states of a draft.
type DraftStatus string

const (
	StatusDraft     DraftStatus = "draft"
	StatusConfirmed DraftStatus = "confirmed"
)

// Draft is an unpublished, user-editable candidate playlist.
//
// Drafts are stored in their own keyed collection referencing the owning user
// id; a draft with an empty user id is transient (anonymous generation) and
// never persisted.
type Draft struct {
	entity
	userID         string
	mood           string
	genres         []string
	requestedCount int
	status         DraftStatus
	tracks         []Track
}

// NewDraft creates a draft in status "draft" for the given owner. The owner
// id may be empty for transient drafts.
func NewDraft(sequence int, userID, mood string, genres []string, requestedCount int, tracks []Track) *Draft {
	return &Draft{
		entity:         newEntity(sequence),
		userID:         userID,
		mood:           mood,
		genres:         genres,
		requestedCount: requestedCount,
		status:         StatusDraft,
		tracks:         tracks,
	}
}

func (d *Draft) UserID() string      { return d.userID }
func (d *Draft) Mood() string        { return d.mood }
func (d *Draft) Genres() []string    { return d.genres }
func (d *Draft) RequestedCount() int { return d.requestedCount }
func (d *Draft) Status() DraftStatus { return d.status }
func (d *Draft) Tracks() []Track     { return d.tracks }

func (d *Draft) SetStatus(status DraftStatus) { d.status = status }

// RemoveTrack deletes the track with the given id from the draft.
// Returns false if no track with that id is present.
func (d *Draft) RemoveTrack(trackID string) bool {
	for i, track := range d.tracks {
		if track.ID == trackID {
			d.tracks = append(d.tracks[:i], d.tracks[i+1:]...)
			return true
		}
	}
	return false
}

// Validate checks required fields and the no-duplicate-tracks invariant.
func (d *Draft) Validate() error {
	if d.mood == "" {
		return fmt.Errorf("mood is required")
	}
	if d.requestedCount <= 0 {
		return fmt.Errorf("requested count must be positive")
	}
	if d.status != StatusDraft && d.status != StatusConfirmed {
		return fmt.Errorf("invalid status: %s", d.status)
	}

	seen := make(map[string]struct{}, len(d.tracks))
	for _, track := range d.tracks {
		if _, ok := seen[track.ID]; ok {
			return fmt.Errorf("duplicate track id: %s", track.ID)
		}
		seen[track.ID] = struct{}{}
	}

	return nil
}
