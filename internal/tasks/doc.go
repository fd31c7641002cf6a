// Package tasks implements mood playlist generation and publishing.
//
// The core abstraction is [GeneratorEngine], which orchestrates the pipeline
// behind a generate request:
//
//  1. Candidate aggregation: the user's top tracks and top artists (fetched
//     concurrently), each top artist's most popular tracks, and one keyword
//     search per seed genre. Personalization and single-search failures are
//     logged and dropped; the pipeline degrades by narrowing its sources
//     rather than failing the request.
//  2. Attribute filtering: candidates are narrowed by mood-derived ranges
//     over Spotify audio features; over-filtering falls back to the
//     unfiltered pool.
//  3. Assembly: a uniform random sample of the pool becomes a draft, persisted
//     for authenticated users and transient otherwise.
//
// Publishing converts an accepted draft into a real Spotify playlist, adding
// tracks in sequential batches of at most 100 URIs, and archives the result.
package tasks
