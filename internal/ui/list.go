package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/plcopy/internal/formatter"
	"github.com/desertthunder/plcopy/internal/models"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = videoItem{}
)

// playlistItem wraps [models.Playlist] to implement [list.Item].
type playlistItem struct {
	playlist models.Playlist
}

func (i playlistItem) FilterValue() string { return i.playlist.Metadata.Title }
func (i playlistItem) Title() string       { return i.playlist.Metadata.Title }
func (i playlistItem) Description() string {
	desc := fmt.Sprintf("%d videos • %s", i.playlist.ItemCount, i.playlist.Metadata.Visibility)
	if i.playlist.Metadata.Description != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.playlist.Metadata.Description)
	}
	return desc
}

// videoItem is one video id in the order it will be appended.
type videoItem struct {
	position int
	videoID  string
}

func (i videoItem) FilterValue() string { return i.videoID }
func (i videoItem) Title() string       { return fmt.Sprintf("%d. %s", i.position, i.videoID) }
func (i videoItem) Description() string { return formatter.VideoURL(i.videoID) }
