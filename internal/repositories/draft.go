package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/moodlist/internal/models"
	"github.com/desertthunder/moodlist/internal/shared"
)

// DraftRepository implements [models.Repository] for [models.Draft] persistence.
//
// Drafts live in their own table keyed by owning user; tracks are stored as a
// JSON column since they are always read and written as a unit.
type DraftRepository struct {
	db *sql.DB
}

// NewDraftRepository creates a new [DraftRepository] with the given database connection
func NewDraftRepository(db *sql.DB) *DraftRepository {
	return &DraftRepository{db: db}
}

// Create inserts a new draft into the database with generated ID and sequence
func (r *DraftRepository) Create(draft *models.Draft) error {
	sequence, err := NextSequence(r.db, "drafts")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	draft.SetID(id)

	if err := draft.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tracks, err := encodeTracks(draft.Tracks())
	if err != nil {
		return err
	}

	query := `
		INSERT INTO drafts (id, sequence, user_id, mood, genres, requested_count, status, tracks, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, draft.UserID(), draft.Mood(), encodeGenres(draft.Genres()),
		draft.RequestedCount(), string(draft.Status()), tracks, draft.CreatedAt(), draft.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert draft: %w", err)
	}

	return nil
}

// Get retrieves a draft by ID, excluding soft-deleted drafts
func (r *DraftRepository) Get(id string) (*models.Draft, error) {
	query := `
		SELECT id, sequence, user_id, mood, genres, requested_count, status, tracks, created_at, updated_at, deleted_at
		FROM drafts
		WHERE id = ? AND deleted_at IS NULL
	`

	draft, err := scanDraft(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrDraftNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query draft: %w", err)
	}

	return draft, nil
}

// Update modifies an existing draft in the database
func (r *DraftRepository) Update(draft *models.Draft) error {
	if err := draft.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tracks, err := encodeTracks(draft.Tracks())
	if err != nil {
		return err
	}

	now := time.Now()
	draft.SetUpdatedAt(now)

	query := `
		UPDATE drafts
		SET mood = ?, genres = ?, requested_count = ?, status = ?, tracks = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, draft.Mood(), encodeGenres(draft.Genres()), draft.RequestedCount(),
		string(draft.Status()), tracks, now, draft.ID())
	if err != nil {
		return fmt.Errorf("failed to update draft: %w", err)
	}

	return requireRows(result, shared.ErrDraftNotFound, draft.ID())
}

// Delete soft-deletes a draft by ID
func (r *DraftRepository) Delete(id string) error {
	query := `
		UPDATE drafts
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}

	return requireRows(result, shared.ErrDraftNotFound, id)
}

// List retrieves all drafts matching the given criteria, excluding soft-deleted drafts
func (r *DraftRepository) List(criteria map[string]any) ([]*models.Draft, error) {
	query := `
		SELECT id, sequence, user_id, mood, genres, requested_count, status, tracks, created_at, updated_at, deleted_at
		FROM drafts
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}
	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query drafts: %w", err)
	}
	defer rows.Close()

	var drafts []*models.Draft
	for rows.Next() {
		draft, err := scanDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		drafts = append(drafts, draft)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return drafts, nil
}

func scanDraft(row rowScanner) (*models.Draft, error) {
	var (
		draftID        string
		sequence       int
		userID         string
		mood           string
		genres         string
		requestedCount int
		status         string
		rawTracks      string
		createdAt      time.Time
		updatedAt      time.Time
		deletedAt      sql.NullTime
	)

	err := row.Scan(&draftID, &sequence, &userID, &mood, &genres, &requestedCount, &status,
		&rawTracks, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	tracks, err := decodeTracks(rawTracks)
	if err != nil {
		return nil, err
	}

	draft := models.NewDraft(sequence, userID, mood, decodeGenres(genres), requestedCount, tracks)
	draft.SetID(draftID)
	draft.SetStatus(models.DraftStatus(status))
	draft.SetCreatedAt(createdAt)
	draft.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		draft.SetDeletedAt(&deletedAt.Time)
	}

	return draft, nil
}
