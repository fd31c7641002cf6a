// package repositories provides persistence layer implementations for all model types.
//
// Each repository implements models.Repository[T] for a specific entity type,
// handling CRUD operations, soft deletes, and sequence generation.
package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/desertthunder/moodlist/internal/models"
)

// NextSequence atomically increments and returns the next sequence number for the given table.
//
// Sequence numbers provide human-readable ordering for entities (e.g., user #42, draft #15).
// They are NOT exposed in API output but used internally for sorting and debugging.
func NextSequence(db *sql.DB, table string) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequenceTable := table + "_sequence"

	_, err = tx.Exec(fmt.Sprintf("UPDATE %s SET value = value + 1 WHERE id = 1", sequenceTable))
	if err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	var sequence int
	err = tx.QueryRow(fmt.Sprintf("SELECT value FROM %s WHERE id = 1", sequenceTable)).Scan(&sequence)
	if err != nil {
		return 0, fmt.Errorf("failed to get sequence value: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sequence transaction: %w", err)
	}

	return sequence, nil
}

// requireRows fails with the entity's not-found sentinel when an UPDATE
// matched no live rows.
func requireRows(result sql.Result, notFound error, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", notFound, id)
	}
	return nil
}

// encodeTracks serializes a track list to its JSON column representation.
func encodeTracks(tracks []models.Track) (string, error) {
	if len(tracks) == 0 {
		return "[]", nil
	}

	data, err := json.Marshal(tracks)
	if err != nil {
		return "", fmt.Errorf("failed to encode tracks: %w", err)
	}

	return string(data), nil
}

// decodeTracks parses the JSON tracks column.
func decodeTracks(raw string) ([]models.Track, error) {
	if raw == "" || raw == "[]" {
		return nil, nil
	}

	var tracks []models.Track
	if err := json.Unmarshal([]byte(raw), &tracks); err != nil {
		return nil, fmt.Errorf("failed to decode tracks: %w", err)
	}

	return tracks, nil
}

// encodeGenres joins genre seeds into the comma-separated genres column.
func encodeGenres(genres []string) string {
	return strings.Join(genres, ",")
}

// decodeGenres splits the comma-separated genres column.
func decodeGenres(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}
