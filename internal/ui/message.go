package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/plcopy/internal/models"
	"github.com/desertthunder/plcopy/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPlaylistsFetched MsgKind = iota
	MsgVideosFetched
	MsgProgressUpdate
	MsgCopyComplete
)

type playlistsFetched struct {
	playlists []models.Playlist
	err       error
}

type videosFetched struct {
	export *models.PlaylistExport
	err    error
}

type copyComplete struct {
	result *tasks.CopyResult
	err    error
}

// playlistsFetchedMsg is the constructor for [MsgPlaylistsFetched]
func playlistsFetchedMsg(playlists []models.Playlist, err error) Msg {
	return Msg{kind: MsgPlaylistsFetched, data: playlistsFetched{playlists, err}}
}

// videosFetchedMsg is the constructor for [MsgVideosFetched]
func videosFetchedMsg(export *models.PlaylistExport, err error) Msg {
	return Msg{kind: MsgVideosFetched, data: videosFetched{export, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// copyCompleteMsg is the constructor for [MsgCopyComplete]
func copyCompleteMsg(result *tasks.CopyResult, err error) Msg {
	return Msg{kind: MsgCopyComplete, data: copyComplete{result, err}}
}
