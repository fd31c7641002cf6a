package models

// Track is the public track shape returned from playlist generation and
// embedded in drafts and published playlists.
//
// Identity is the Spotify track ID; the struct is an immutable snapshot of provider data.
type Track struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Artists    string `json:"artists"` // Joined artist names, e.g. "Artist A, Artist B"
	URI        string `json:"uri"`
	ImageURL   string `json:"image_url,omitempty"`
	PreviewURL string `json:"preview_url,omitempty"`
}

// DedupeTracks returns tracks with duplicate IDs removed, preserving first-seen order.
func DedupeTracks(tracks []Track) []Track {
	seen := make(map[string]struct{}, len(tracks))
	deduped := make([]Track, 0, len(tracks))

	for _, track := range tracks {
		if _, ok := seen[track.ID]; ok {
			continue
		}
		seen[track.ID] = struct{}{}
		deduped = append(deduped, track)
	}

	return deduped
}

// TrackURIs returns the Spotify URIs of the given tracks in order.
func TrackURIs(tracks []Track) []string {
	uris := make([]string, len(tracks))
	for i, track := range tracks {
		uris[i] = track.URI
	}
	return uris
}
