package models

import (
	"fmt"
	"strings"
)

// Visibility is the privacy status of a playlist.
type Visibility int

const (
	Private Visibility = iota
	Public
)

func (v Visibility) String() string {
	if v == Public {
		return "public"
	}
	return "private"
}

// MarshalText renders the visibility as "private" or "public".
func (v Visibility) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText accepts the same values as [VisibilityFromStatus].
func (v *Visibility) UnmarshalText(b []byte) error {
	*v = VisibilityFromStatus(string(b))
	return nil
}

// VisibilityFromStatus maps a remote privacy status to a [Visibility].
//
// Anything other than "public" (including "unlisted") is treated as [Private].
func VisibilityFromStatus(status string) Visibility {
	if strings.EqualFold(status, "public") {
		return Public
	}
	return Private
}

// Order is the sequence in which source items are appended to the destination.
type Order int

const (
	Ascending Order = iota
	Descending
)

func (o Order) String() string {
	if o == Descending {
		return "desc"
	}
	return "asc"
}

// ParseOrder parses "asc"/"ascending" and "desc"/"descending", case-insensitively.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	default:
		return Ascending, fmt.Errorf("invalid order %q (must be asc or desc)", s)
	}
}

// Thumbnail is a single image rendition of a playlist's artwork.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int64  `json:"width,omitempty"`
	Height int64  `json:"height,omitempty"`
}

// Thumbnail size labels used by the remote service.
var ThumbnailSizes = []string{"default", "medium", "high", "standard", "maxres"}

// PlaylistMetadata is the descriptive part of a playlist that gets copied to the destination.
type PlaylistMetadata struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Thumbnails  map[string]Thumbnail `json:"thumbnails"`
	Visibility  Visibility           `json:"visibility"`
}

// BestThumbnail returns the largest available thumbnail.
func (m PlaylistMetadata) BestThumbnail() (Thumbnail, bool) {
	for i := len(ThumbnailSizes) - 1; i >= 0; i-- {
		if th, ok := m.Thumbnails[ThumbnailSizes[i]]; ok && th.URL != "" {
			return th, true
		}
	}
	return Thumbnail{}, false
}

// Playlist is a remote playlist with its metadata.
type Playlist struct {
	ID        string           `json:"id"`
	Metadata  PlaylistMetadata `json:"metadata"`
	ItemCount int64            `json:"item_count"`
}

// PlaylistExport is a playlist together with its video ids in enumeration order.
type PlaylistExport struct {
	Playlist Playlist `json:"playlist"`
	Order    string   `json:"order"`
	VideoIDs []string `json:"video_ids"`
}

// InsertResult describes the playlist item created by appending a video.
type InsertResult struct {
	ItemID     string `json:"item_id"`
	PlaylistID string `json:"playlist_id"`
	VideoID    string `json:"video_id"`
	Position   int64  `json:"position"`
}
