package tasks

import (
	"strings"

	"github.com/desertthunder/moodlist/internal/services"
)

// AttributeRange is an inclusive [Min, Max] bound on a named audio attribute.
type AttributeRange struct {
	Min float64
	Max float64
}

// moodProfiles maps moods to audio attribute constraints. A mood not in the
// table yields an empty constraint set, which disables filtering.
var moodProfiles = map[string]map[string]AttributeRange{
	"happy": {
		"valence": {Min: 0.6, Max: 1.0},
		"energy":  {Min: 0.5, Max: 1.0},
	},
	"chill": {
		"energy":  {Min: 0.0, Max: 0.5},
		"valence": {Min: 0.3, Max: 0.9},
	},
	"sad": {
		"valence": {Min: 0.0, Max: 0.4},
		"energy":  {Min: 0.0, Max: 0.6},
	},
	"energetic": {
		"energy":       {Min: 0.7, Max: 1.0},
		"danceability": {Min: 0.5, Max: 1.0},
	},
	"party": {
		"danceability": {Min: 0.7, Max: 1.0},
		"energy":       {Min: 0.6, Max: 1.0},
	},
	"focus": {
		"instrumentalness": {Min: 0.5, Max: 1.0},
		"energy":           {Min: 0.0, Max: 0.6},
	},
	"romantic": {
		"valence":      {Min: 0.4, Max: 0.9},
		"acousticness": {Min: 0.3, Max: 1.0},
	},
}

// MoodProfile returns the attribute constraints for a mood, or an empty map
// for unknown moods.
func MoodProfile(mood string) map[string]AttributeRange {
	return moodProfiles[strings.ToLower(strings.TrimSpace(mood))]
}

// matchesProfile reports whether every configured range holds for the track's
// audio features.
func matchesProfile(features services.SpotifyAudioFeatures, profile map[string]AttributeRange) bool {
	for name, bounds := range profile {
		value, ok := features.Attribute(name)
		if !ok {
			return false
		}
		if value < bounds.Min || value > bounds.Max {
			return false
		}
	}
	return true
}

// PlaylistName derives the published playlist name from a mood, e.g.
// "chill" -> "Chill Mix".
func PlaylistName(mood string) string {
	mood = strings.TrimSpace(mood)
	if mood == "" {
		return "Moodlist Mix"
	}
	return strings.ToUpper(mood[:1]) + strings.ToLower(mood[1:]) + " Mix"
}
