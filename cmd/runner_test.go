package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/moodlist/internal/models"
	"github.com/desertthunder/moodlist/internal/services"
	"github.com/desertthunder/moodlist/internal/shared"
	tu "github.com/desertthunder/moodlist/internal/testing"
	"github.com/urfave/cli/v3"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			spotify := &tu.MockProvider{}

			runner := NewRunner(RunnerOpts{
				Config:  config,
				Logger:  logger,
				Output:  output,
				Spotify: spotify,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.spotify != services.Provider(spotify) {
				t.Error("expected spotify to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if result := output.String(); result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			// channels cannot be marshaled to JSON
			err := runner.writeJSON(make(chan int), false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if result := output.String(); result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			if err := runner.writePlain("test"); err == nil {
				t.Fatal("expected error from failing writer")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		expected := []string{"setup", "migrate", "serve", "generate", "drafts", "history", "tui"}
		if len(commands) != len(expected) {
			t.Fatalf("expected %d commands, got %d", len(expected), len(commands))
		}
		for i, name := range expected {
			if commands[i].Name != name {
				t.Errorf("expected command %d to be %q, got %q", i, name, commands[i].Name)
			}
		}
	})
}

// testConfig returns a config backed by a throwaway database file.
func testConfig(t *testing.T) *shared.Config {
	t.Helper()
	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(t.TempDir(), "test.db")
	return config
}

// migrateTestDB applies migrations to the config's database file so command
// actions can open it directly.
func migrateTestDB(t *testing.T, path string) {
	t.Helper()
	db, err := shared.NewDatabase(path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
}

func testApp(runner *Runner) *cli.Command {
	return &cli.Command{
		Name:     "moodlist",
		Commands: runner.register(),
	}
}

func TestGenerateAction(t *testing.T) {
	searchResults := []models.Track{
		{ID: "t1", Name: "First", Artists: "Artist A", URI: "spotify:track:t1"},
		{ID: "t2", Name: "Second", Artists: "Artist B", URI: "spotify:track:t2"},
	}
	provider := &tu.MockProvider{
		SearchFunc: func(ctx context.Context, auth services.Authorization, query string, limit int, market string) ([]models.Track, error) {
			return searchResults, nil
		},
	}

	t.Run("anonymous generation prints a track listing", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Config:  testConfig(t),
			Spotify: provider,
			Output:  output,
			Logger:  shared.NewLogger(&bytes.Buffer{}),
		})

		migrateTestDB(t, runner.config.Database.Path)

		args := []string{"moodlist", "generate", "--mood", "chill", "--genre", "rock"}
		if err := testApp(runner).Run(context.Background(), args); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "Chill Mix") {
			t.Errorf("expected playlist title in output, got %q", result)
		}
		if !strings.Contains(result, "Artist A - First") {
			t.Errorf("expected track listing in output, got %q", result)
		}
		if !strings.Contains(result, "Anonymous draft") {
			t.Errorf("expected anonymous notice, got %q", result)
		}
	})

	t.Run("json output", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Config:  testConfig(t),
			Spotify: provider,
			Output:  output,
			Logger:  shared.NewLogger(&bytes.Buffer{}),
		})

		migrateTestDB(t, runner.config.Database.Path)

		args := []string{"moodlist", "generate", "--mood", "chill", "--genre", "rock", "--json"}
		if err := testApp(runner).Run(context.Background(), args); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if !strings.Contains(result, `"mood":"chill"`) {
			t.Errorf("expected JSON payload with mood, got %q", result)
		}
	})

	t.Run("empty pool fails", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{
			Config:  testConfig(t),
			Spotify: &tu.MockProvider{},
			Output:  &bytes.Buffer{},
			Logger:  shared.NewLogger(&bytes.Buffer{}),
		})

		migrateTestDB(t, runner.config.Database.Path)

		args := []string{"moodlist", "generate", "--mood", "chill", "--genre", "rock"}
		err := testApp(runner).Run(context.Background(), args)
		if err == nil {
			t.Fatal("expected error when search returns nothing")
		}
		if !strings.Contains(err.Error(), shared.ErrNoTracksFound.Error()) {
			t.Errorf("expected no tracks error, got %v", err)
		}
	})
}
