package models

import "fmt"

// PublishedPlaylist is an append-only historical record of a draft that was
// pushed to Spotify. Created exactly once per published draft.
type PublishedPlaylist struct {
	entity
	userID            string
	spotifyPlaylistID string
	name              string
	mood              string
	genres            []string
	tracks            []Track
}

// NewPublishedPlaylist creates a history record referencing the Spotify playlist id.
func NewPublishedPlaylist(sequence int, userID, spotifyPlaylistID, name, mood string, genres []string, tracks []Track) *PublishedPlaylist {
	return &PublishedPlaylist{
		entity:            newEntity(sequence),
		userID:            userID,
		spotifyPlaylistID: spotifyPlaylistID,
		name:              name,
		mood:              mood,
		genres:            genres,
		tracks:            tracks,
	}
}

func (p *PublishedPlaylist) UserID() string            { return p.userID }
func (p *PublishedPlaylist) SpotifyPlaylistID() string { return p.spotifyPlaylistID }
func (p *PublishedPlaylist) Name() string              { return p.name }
func (p *PublishedPlaylist) Mood() string              { return p.mood }
func (p *PublishedPlaylist) Genres() []string          { return p.genres }
func (p *PublishedPlaylist) Tracks() []Track           { return p.tracks }

func (p *PublishedPlaylist) Validate() error {
	if p.userID == "" {
		return fmt.Errorf("user id is required")
	}
	if p.spotifyPlaylistID == "" {
		return fmt.Errorf("spotify playlist id is required")
	}
	if p.name == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}
