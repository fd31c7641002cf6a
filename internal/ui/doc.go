// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for browsing and publishing drafts:
//  1. [DraftListView] : Browse the user's pending playlist drafts
//  2. [TrackListView] : Preview a draft's tracks and prune unwanted ones
//  3. [ConfirmView] : Confirm publishing the draft to Spotify
//  4. [PublishView] : Wait for the upstream playlist creation
//  5. [ResultView] : Display the published playlist or the failure
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, x, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
