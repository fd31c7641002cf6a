package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/moodlist/internal/models"
	"github.com/desertthunder/moodlist/internal/shared"
)

// HistoryRepository implements [models.Repository] for [models.PublishedPlaylist] persistence.
//
// Records are append-only from the application's point of view; Delete exists
// to satisfy the repository contract and for operator cleanup.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new [HistoryRepository] with the given database connection
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Create inserts a new published playlist record with generated ID and sequence
func (r *HistoryRepository) Create(playlist *models.PublishedPlaylist) error {
	sequence, err := NextSequence(r.db, "published_playlists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	playlist.SetID(id)

	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tracks, err := encodeTracks(playlist.Tracks())
	if err != nil {
		return err
	}

	query := `
		INSERT INTO published_playlists (id, sequence, user_id, spotify_playlist_id, name, mood, genres, tracks, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, playlist.UserID(), playlist.SpotifyPlaylistID(), playlist.Name(),
		playlist.Mood(), encodeGenres(playlist.Genres()), tracks, playlist.CreatedAt(), playlist.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert published playlist: %w", err)
	}

	return nil
}

// Get retrieves a published playlist record by ID
func (r *HistoryRepository) Get(id string) (*models.PublishedPlaylist, error) {
	query := `
		SELECT id, sequence, user_id, spotify_playlist_id, name, mood, genres, tracks, created_at, updated_at, deleted_at
		FROM published_playlists
		WHERE id = ? AND deleted_at IS NULL
	`

	record, err := scanPublished(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("published playlist not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query published playlist: %w", err)
	}

	return record, nil
}

// Update modifies an existing record. History is effectively immutable but
// the repository contract requires it.
func (r *HistoryRepository) Update(playlist *models.PublishedPlaylist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tracks, err := encodeTracks(playlist.Tracks())
	if err != nil {
		return err
	}

	now := time.Now()
	playlist.SetUpdatedAt(now)

	query := `
		UPDATE published_playlists
		SET name = ?, mood = ?, genres = ?, tracks = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, playlist.Name(), playlist.Mood(), encodeGenres(playlist.Genres()),
		tracks, now, playlist.ID())
	if err != nil {
		return fmt.Errorf("failed to update published playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("published playlist not found: %s", playlist.ID())
	}

	return nil
}

// Delete soft-deletes a published playlist record by ID
func (r *HistoryRepository) Delete(id string) error {
	query := `
		UPDATE published_playlists
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete published playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("published playlist not found: %s", id)
	}

	return nil
}

// List retrieves published playlist records matching the given criteria, newest first
func (r *HistoryRepository) List(criteria map[string]any) ([]*models.PublishedPlaylist, error) {
	query := `
		SELECT id, sequence, user_id, spotify_playlist_id, name, mood, genres, tracks, created_at, updated_at, deleted_at
		FROM published_playlists
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}
	if mood, ok := criteria["mood"].(string); ok && mood != "" {
		query += " AND mood = ?"
		args = append(args, mood)
	}

	query += " ORDER BY sequence DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query published playlists: %w", err)
	}
	defer rows.Close()

	var records []*models.PublishedPlaylist
	for rows.Next() {
		record, err := scanPublished(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan published playlist: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

func scanPublished(row rowScanner) (*models.PublishedPlaylist, error) {
	var (
		recordID          string
		sequence          int
		userID            string
		spotifyPlaylistID string
		name              string
		mood              string
		genres            string
		rawTracks         string
		createdAt         time.Time
		updatedAt         time.Time
		deletedAt         sql.NullTime
	)

	err := row.Scan(&recordID, &sequence, &userID, &spotifyPlaylistID, &name, &mood, &genres,
		&rawTracks, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	tracks, err := decodeTracks(rawTracks)
	if err != nil {
		return nil, err
	}

	record := models.NewPublishedPlaylist(sequence, userID, spotifyPlaylistID, name, mood, decodeGenres(genres), tracks)
	record.SetID(recordID)
	record.SetCreatedAt(createdAt)
	record.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		record.SetDeletedAt(&deletedAt.Time)
	}

	return record, nil
}
