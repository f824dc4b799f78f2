// package services defines the playlist operations used by the copy engine and implements them on the YouTube Data API
package services

import (
	"context"
	"iter"

	"github.com/desertthunder/plcopy/internal/models"
)

// PlaylistReader fetches playlist metadata.
type PlaylistReader interface {
	// GetMetadata returns the title, description, thumbnails, and visibility of a playlist.
	// An unknown id yields an error matching [shared.ErrPlaylistNotFound].
	GetMetadata(ctx context.Context, playlistID string) (*models.PlaylistMetadata, error)
}

// PlaylistEnumerator lists the video ids of a playlist.
type PlaylistEnumerator interface {
	// Pages yields one page of video ids at a time in service order. Each range starts from the first page.
	Pages(ctx context.Context, playlistID string) iter.Seq2[[]string, error]

	// VideoIDs returns every video id of the playlist, reversed once as a whole when order is [models.Descending].
	VideoIDs(ctx context.Context, playlistID string, order models.Order) ([]string, error)
}

// PlaylistWriter creates playlists and appends videos to them.
type PlaylistWriter interface {
	// CreatePlaylist creates a playlist from meta and returns its id. private selects "private" over "public".
	CreatePlaylist(ctx context.Context, meta *models.PlaylistMetadata, private bool) (string, error)

	// AppendVideo appends a single video to the end of a playlist.
	AppendVideo(ctx context.Context, playlistID, videoID string) (*models.InsertResult, error)

	// DeletePlaylist removes a playlist owned by the authenticated account.
	DeletePlaylist(ctx context.Context, playlistID string) error
}

// PlaylistService is everything the copy engine needs from the remote side.
type PlaylistService interface {
	PlaylistReader
	PlaylistEnumerator
	PlaylistWriter
}

// PlaylistLister lists the authenticated account's own playlists.
type PlaylistLister interface {
	ListMine(ctx context.Context) ([]models.Playlist, error)
}
