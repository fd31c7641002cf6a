package tasks

import (
	"reflect"
	"testing"
)

func TestNormalizeGenres(t *testing.T) {
	cases := []struct {
		name  string
		input []string
		want  []string
	}{
		{"maps known aliases", []string{"Hip Hop", "R&B"}, []string{"hip-hop", "r-n-b"}},
		{"lowercases unknown tags", []string{"Shoegaze"}, []string{"shoegaze"}},
		{"caps seeds at two", []string{"rock", "pop", "jazz"}, []string{"rock", "pop"}},
		{"skips blank entries", []string{"  ", "dnb"}, []string{"drum-and-bass"}},
		{"empty input", nil, []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeGenres(tc.input)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("NormalizeGenres(%v) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestMoodProfile(t *testing.T) {
	t.Run("known mood has constraints", func(t *testing.T) {
		profile := MoodProfile("Chill")
		if len(profile) == 0 {
			t.Fatal("Expected constraints for chill")
		}
		bounds, ok := profile["energy"]
		if !ok {
			t.Fatal("Expected an energy bound for chill")
		}
		if bounds.Max != 0.5 {
			t.Errorf("Expected energy max 0.5, got %v", bounds.Max)
		}
	})

	t.Run("unknown mood has no constraints", func(t *testing.T) {
		if profile := MoodProfile("melancholic-but-hopeful"); len(profile) != 0 {
			t.Errorf("Expected empty profile, got %v", profile)
		}
	})
}

func TestPlaylistName(t *testing.T) {
	cases := map[string]string{
		"chill":  "Chill Mix",
		"HAPPY":  "Happy Mix",
		"  sad ": "Sad Mix",
		"":       "Moodlist Mix",
	}

	for mood, want := range cases {
		if got := PlaylistName(mood); got != want {
			t.Errorf("PlaylistName(%q) = %q, want %q", mood, got, want)
		}
	}
}
