package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plcopy/internal/models"
	"github.com/desertthunder/plcopy/internal/shared"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const (
	// PlaylistItemsPageSize is the page size requested when enumerating playlist items.
	PlaylistItemsPageSize int64 = 100
	// PlaylistsPageSize is the page size requested when listing the account's playlists.
	PlaylistsPageSize int64 = 50

	videoKind = "youtube#video"
)

var (
	_ PlaylistService = (*YouTubeClient)(nil)
	_ PlaylistLister  = (*YouTubeClient)(nil)
)

// ClientOptions configures [NewYouTubeClient].
type ClientOptions struct {
	PageSize int64                 // Items per playlistItems.list page, defaults to [PlaylistItemsPageSize]
	Logger   *log.Logger           // Defaults to a discard logger
	Extra    []option.ClientOption // Appended after the authorized HTTP client, e.g. option.WithEndpoint
}

// YouTubeClient implements [PlaylistService] on the YouTube Data API v3.
//
// No retries are attempted; every remote failure is returned to the caller.
type YouTubeClient struct {
	svc      *youtube.Service
	pageSize int64
	logger   *log.Logger
}

// NewYouTubeClient builds an API client whose requests are authorized by ts.
func NewYouTubeClient(ctx context.Context, ts oauth2.TokenSource, opts ClientOptions) (*YouTubeClient, error) {
	if ts == nil {
		return nil, fmt.Errorf("%w: token source is required", shared.ErrAuth)
	}
	if opts.PageSize <= 0 {
		opts.PageSize = PlaylistItemsPageSize
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}

	clientOpts := append([]option.ClientOption{option.WithHTTPClient(oauth2.NewClient(ctx, ts))}, opts.Extra...)
	svc, err := youtube.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create youtube service: %v", shared.ErrConfiguration, err)
	}

	return &YouTubeClient{svc: svc, pageSize: opts.PageSize, logger: shared.WithLogger(opts.Logger, "service", "youtube")}, nil
}

// GetMetadata issues one playlists.list call for playlistID.
func (c *YouTubeClient) GetMetadata(ctx context.Context, playlistID string) (*models.PlaylistMetadata, error) {
	resp, err := c.svc.Playlists.List([]string{"snippet", "status"}).Id(playlistID).Context(ctx).Do()
	if err != nil {
		return nil, wrapError("playlists.list", err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}

	meta := toMetadata(resp.Items[0])
	return &meta, nil
}

// Pages follows nextPageToken until the service stops returning one.
//
// Items without a resource id are skipped with a warning.
func (c *YouTubeClient) Pages(ctx context.Context, playlistID string) iter.Seq2[[]string, error] {
	return func(yield func([]string, error) bool) {
		token := ""
		for {
			call := c.svc.PlaylistItems.List([]string{"snippet"}).
				PlaylistId(playlistID).
				MaxResults(c.pageSize).
				Context(ctx)
			if token != "" {
				call = call.PageToken(token)
			}

			resp, err := call.Do()
			if err != nil {
				yield(nil, wrapError("playlistItems.list", err))
				return
			}

			ids := make([]string, 0, len(resp.Items))
			for _, item := range resp.Items {
				if item.Snippet == nil || item.Snippet.ResourceId == nil || item.Snippet.ResourceId.VideoId == "" {
					c.logger.Warn("skipping playlist item without a video", "item", item.Id)
					continue
				}
				ids = append(ids, item.Snippet.ResourceId.VideoId)
			}

			if !yield(ids, nil) || resp.NextPageToken == "" {
				return
			}
			token = resp.NextPageToken
		}
	}
}

// VideoIDs materializes every page before applying order.
func (c *YouTubeClient) VideoIDs(ctx context.Context, playlistID string, order models.Order) ([]string, error) {
	var ids []string
	for page, err := range c.Pages(ctx, playlistID) {
		if err != nil {
			return nil, err
		}
		ids = append(ids, page...)
	}

	if order == models.Descending {
		slices.Reverse(ids)
	}
	return ids, nil
}

// CreatePlaylist issues one playlists.insert call. Thumbnails are always sent, as {} when meta has none.
func (c *YouTubeClient) CreatePlaylist(ctx context.Context, meta *models.PlaylistMetadata, private bool) (string, error) {
	playlist := &youtube.Playlist{
		Snippet: &youtube.PlaylistSnippet{
			Title:       meta.Title,
			Description: meta.Description,
			Thumbnails:  toThumbnailDetails(meta.Thumbnails),
		},
		Status: &youtube.PlaylistStatus{PrivacyStatus: privacyStatus(private)},
	}

	resp, err := c.svc.Playlists.Insert([]string{"snippet", "status"}, playlist).Context(ctx).Do()
	if err != nil {
		return "", wrapError("playlists.insert", err)
	}

	c.logger.Debug("created playlist", "id", resp.Id, "title", meta.Title, "privacy", playlist.Status.PrivacyStatus)
	return resp.Id, nil
}

// AppendVideo issues one playlistItems.insert call.
func (c *YouTubeClient) AppendVideo(ctx context.Context, playlistID, videoID string) (*models.InsertResult, error) {
	item := &youtube.PlaylistItem{
		Snippet: &youtube.PlaylistItemSnippet{
			PlaylistId: playlistID,
			ResourceId: &youtube.ResourceId{Kind: videoKind, VideoId: videoID},
		},
	}

	resp, err := c.svc.PlaylistItems.Insert([]string{"snippet"}, item).Context(ctx).Do()
	if err != nil {
		return nil, wrapError("playlistItems.insert", err)
	}

	result := &models.InsertResult{ItemID: resp.Id, PlaylistID: playlistID, VideoID: videoID}
	if resp.Snippet != nil {
		result.Position = resp.Snippet.Position
	}

	c.logger.Debug("inserted playlist item", "item", result.ItemID, "video", videoID, "position", result.Position)
	return result, nil
}

// DeletePlaylist issues one playlists.delete call.
func (c *YouTubeClient) DeletePlaylist(ctx context.Context, playlistID string) error {
	if err := c.svc.Playlists.Delete(playlistID).Context(ctx).Do(); err != nil {
		return wrapError("playlists.delete", err)
	}
	c.logger.Debug("deleted playlist", "id", playlistID)
	return nil
}

// ListMine pages through the authenticated account's playlists.
func (c *YouTubeClient) ListMine(ctx context.Context) ([]models.Playlist, error) {
	var playlists []models.Playlist
	call := c.svc.Playlists.List([]string{"snippet", "status", "contentDetails"}).
		Mine(true).
		MaxResults(PlaylistsPageSize)

	err := call.Pages(ctx, func(resp *youtube.PlaylistListResponse) error {
		for _, item := range resp.Items {
			pl := models.Playlist{ID: item.Id, Metadata: toMetadata(item)}
			if item.ContentDetails != nil {
				pl.ItemCount = item.ContentDetails.ItemCount
			}
			playlists = append(playlists, pl)
		}
		return nil
	})
	if err != nil {
		return nil, wrapError("playlists.list", err)
	}
	return playlists, nil
}

// Export returns a playlist's metadata and video ids in the requested order.
func (c *YouTubeClient) Export(ctx context.Context, playlistID string, order models.Order) (*models.PlaylistExport, error) {
	meta, err := c.GetMetadata(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	ids, err := c.VideoIDs(ctx, playlistID, order)
	if err != nil {
		return nil, err
	}

	return &models.PlaylistExport{
		Playlist: models.Playlist{ID: playlistID, Metadata: *meta, ItemCount: int64(len(ids))},
		Order:    order.String(),
		VideoIDs: ids,
	}, nil
}

func privacyStatus(private bool) string {
	if private {
		return models.Private.String()
	}
	return models.Public.String()
}

func toMetadata(pl *youtube.Playlist) models.PlaylistMetadata {
	meta := models.PlaylistMetadata{Thumbnails: map[string]models.Thumbnail{}}
	if pl.Snippet != nil {
		meta.Title = pl.Snippet.Title
		meta.Description = pl.Snippet.Description
		meta.Thumbnails = fromThumbnailDetails(pl.Snippet.Thumbnails)
	}
	if pl.Status != nil {
		meta.Visibility = models.VisibilityFromStatus(pl.Status.PrivacyStatus)
	}
	return meta
}

func thumbnailSlots(d *youtube.ThumbnailDetails) map[string]**youtube.Thumbnail {
	return map[string]**youtube.Thumbnail{
		"default":  &d.Default,
		"medium":   &d.Medium,
		"high":     &d.High,
		"standard": &d.Standard,
		"maxres":   &d.Maxres,
	}
}

func fromThumbnailDetails(d *youtube.ThumbnailDetails) map[string]models.Thumbnail {
	out := map[string]models.Thumbnail{}
	if d == nil {
		return out
	}
	for size, slot := range thumbnailSlots(d) {
		if th := *slot; th != nil {
			out[size] = models.Thumbnail{URL: th.Url, Width: th.Width, Height: th.Height}
		}
	}
	return out
}

// toThumbnailDetails never returns nil so an empty mapping serializes as {}.
func toThumbnailDetails(in map[string]models.Thumbnail) *youtube.ThumbnailDetails {
	d := &youtube.ThumbnailDetails{}
	slots := thumbnailSlots(d)
	for size, th := range in {
		if slot, ok := slots[size]; ok {
			*slot = &youtube.Thumbnail{Url: th.URL, Width: th.Width, Height: th.Height}
		}
	}
	return d
}

// wrapError maps a failed call to the error kinds callers match on.
func wrapError(op string, err error) error {
	var gerr *googleapi.Error
	switch {
	case errors.As(err, &gerr):
		msg := gerr.Message
		if msg == "" {
			msg = http.StatusText(gerr.Code)
		}
		return &shared.APIError{Op: op, Status: gerr.Code, Message: msg, Err: err}
	case errors.Is(err, shared.ErrAuth),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return &shared.APIError{Op: op, Message: err.Error(), Err: err}
	}
}
