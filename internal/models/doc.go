// Package models defines domain entities and persistence interfaces for the Moodlist service.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing external service data
//   - [Track] : The public track shape returned from generation and stored inside drafts
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [User] : Local accounts with the embedded Spotify credential pair
//   - [Draft] : Unpublished candidate playlists owned by a user
//   - [PublishedPlaylist] : Append-only history of playlists pushed to Spotify
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
