// Package repositories implements SQLite persistence for all domain entities.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// All repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [UserRepository] : User accounts with embedded Spotify credentials and spotify_id lookups
//   - [DraftRepository] : Pending playlist drafts keyed by owning user
//   - [HistoryRepository] : Append-only records of playlists published to Spotify
//
// Sequence numbers provide stable, human-readable ordering (e.g., user #42, draft #15) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
