// Package ui implements an interactive terminal interface for copying a playlist using bubbletea's Elm architecture.
//
// The TUI walks through:
//  1. [PlaylistListView] : Browse and select one of the account's playlists (skipped when a source id is given)
//  2. [VideoListView] : Preview the video ids in the order they will be appended
//  3. [ConfirmView] : Choose order and privacy, then confirm
//  4. [CopyView] : Spinner and progress bar fed by the copy engine
//  5. [ResultView] : Destination id, or the error and how far the copy got
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the CopyEngine, providing non-blocking status reporting during copies.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, o, p, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
