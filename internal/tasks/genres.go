package tasks

import "strings"

// maxSeedGenres caps how many normalized genres seed the search step.
const maxSeedGenres = 2

// genreSeeds maps common spellings to Spotify genre seed codes. Tags not in
// the table pass through lowercased.
var genreSeeds = map[string]string{
	"hip hop":       "hip-hop",
	"hiphop":        "hip-hop",
	"hip-hop":       "hip-hop",
	"r&b":           "r-n-b",
	"rnb":           "r-n-b",
	"r and b":       "r-n-b",
	"drum and bass": "drum-and-bass",
	"drum & bass":   "drum-and-bass",
	"dnb":           "drum-and-bass",
	"lofi":          "lo-fi",
	"lo fi":         "lo-fi",
	"kpop":          "k-pop",
	"k pop":         "k-pop",
	"jpop":          "j-pop",
	"j pop":         "j-pop",
	"electronic":    "electro",
	"synthpop":      "synth-pop",
	"synth pop":     "synth-pop",
	"alt rock":      "alt-rock",
	"alternative":   "alt-rock",
	"hard rock":     "hard-rock",
	"heavy metal":   "heavy-metal",
	"classic":       "classical",
	"bossa":         "bossa-nova",
	"bossa nova":    "bossa-nova",
}

// NormalizeGenres maps raw genre tags to seed genres, keeping at most the
// first two. Unknown tags are lowercased and passed through.
func NormalizeGenres(genres []string) []string {
	seeds := make([]string, 0, maxSeedGenres)

	for _, genre := range genres {
		tag := strings.ToLower(strings.TrimSpace(genre))
		if tag == "" {
			continue
		}

		if seed, ok := genreSeeds[tag]; ok {
			tag = seed
		}

		seeds = append(seeds, tag)
		if len(seeds) == maxSeedGenres {
			break
		}
	}

	return seeds
}
