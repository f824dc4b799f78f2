// package tasks copies a playlist into a new playlist owned by the authenticated account.
//
// The core abstraction is CopyEngine, which drives a single sequential copy through a fixed state machine.
// Progress is emitted via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plcopy/internal/models"
	"github.com/desertthunder/plcopy/internal/services"
	"github.com/desertthunder/plcopy/internal/shared"
)

// PrivacyPolicy decides the visibility of the destination playlist.
type PrivacyPolicy int

const (
	PrivacyPrivate PrivacyPolicy = iota // Always private
	PrivacyPublic                       // Always public
	PrivacySource                       // Same visibility as the source
)

func (p PrivacyPolicy) String() string {
	switch p {
	case PrivacyPublic:
		return "public"
	case PrivacySource:
		return "source"
	default:
		return "private"
	}
}

// ParsePrivacyPolicy parses "private", "public", or "source". Empty means private.
func ParsePrivacyPolicy(s string) (PrivacyPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "private":
		return PrivacyPrivate, nil
	case "public":
		return PrivacyPublic, nil
	case "source":
		return PrivacySource, nil
	default:
		return PrivacyPrivate, fmt.Errorf("%w: privacy %q (must be private, public, or source)", shared.ErrInvalidArgument, s)
	}
}

func (p PrivacyPolicy) private(meta *models.PlaylistMetadata) bool {
	switch p {
	case PrivacyPublic:
		return false
	case PrivacySource:
		return meta.Visibility != models.Public
	default:
		return true
	}
}

// CopyOptions configures a single copy.
type CopyOptions struct {
	Order            models.Order  // Order in which source items are appended
	Privacy          PrivacyPolicy // Visibility of the new playlist
	CleanupOnFailure bool          // Delete a partially filled destination when a later step fails
	DryRun           bool          // Read and enumerate only
}

// CopyResult reports how far a copy got. It is returned alongside errors.
type CopyResult struct {
	State         State                    // Last state reached
	FailedAt      State                    // Last state reached before the copy failed
	SourceID      string                   // Source playlist id
	Metadata      *models.PlaylistMetadata // Source metadata, once fetched
	DestinationID string                   // Created playlist id (empty for dry runs)
	VideoIDs      []string                 // Enumerated ids in insertion order
	Items         []models.InsertResult    // Successful inserts in order
	CleanedUp     bool                     // Partial destination was deleted after a failure
	RunID         string                   // Copy history id, when recorded
}

// Appended is the number of videos inserted so far.
func (r *CopyResult) Appended() int { return len(r.Items) }

// RunRecorder persists copy history. Failures are logged and never fail a copy.
type RunRecorder interface {
	Create(run *models.CopyRun) error
	Update(run *models.CopyRun) error
}

// CopyEngine copies playlists through a [services.PlaylistService].
//
// A copy is not idempotent: every call creates a new destination.
type CopyEngine struct {
	svc      services.PlaylistService
	recorder RunRecorder
	logger   *log.Logger
}

// NewCopyEngine creates a CopyEngine. A nil logger discards output.
func NewCopyEngine(svc services.PlaylistService, logger *log.Logger) *CopyEngine {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &CopyEngine{svc: svc, logger: logger}
}

// WithRecorder attaches copy history.
func (e *CopyEngine) WithRecorder(r RunRecorder) *CopyEngine {
	e.recorder = r
	return e
}

// sendProgress sends a progress update through the channel without blocking.
func (e *CopyEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Copy creates a new playlist with the source's metadata and appends every source video in opts.Order.
//
// The first failing step aborts the rest; the returned error still matches its original kind with [errors.Is].
// On success result.DestinationID holds the new playlist id.
func (e *CopyEngine) Copy(ctx context.Context, sourceID string, opts CopyOptions, progress chan<- ProgressUpdate) (*CopyResult, error) {
	if e.svc == nil {
		return nil, fmt.Errorf("%w: playlist service not initialized", shared.ErrConfiguration)
	}
	if strings.TrimSpace(sourceID) == "" {
		return nil, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	result := &CopyResult{State: Start, SourceID: sourceID}
	run := e.beginRun(sourceID, opts)
	if run != nil {
		result.RunID = run.ID()
	}

	err := e.run(ctx, sourceID, opts, result, progress)
	if err != nil {
		failedAt := result.State
		result.State, result.FailedAt = Failed, failedAt
		e.logger.Error("copy failed", "source", sourceID, "state", failedAt, "appended", result.Appended(), "error", err)

		if opts.CleanupOnFailure && result.DestinationID != "" {
			err = e.cleanup(ctx, result, err, progress)
		}
		e.sendProgress(progress, failedUpdate(failedAt, err))
	}

	e.finishRun(run, result, err)
	return result, err
}

func (e *CopyEngine) run(ctx context.Context, sourceID string, opts CopyOptions, result *CopyResult, progress chan<- ProgressUpdate) error {
	e.sendProgress(progress, startUpdate(sourceID))

	meta, err := e.svc.GetMetadata(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("fetch metadata for %s: %w", sourceID, err)
	}
	result.Metadata = meta
	result.State = MetadataFetched
	e.sendProgress(progress, metadataUpdate(meta))

	if opts.DryRun {
		ids, err := e.svc.VideoIDs(ctx, sourceID, opts.Order)
		if err != nil {
			return fmt.Errorf("enumerate items of %s: %w", sourceID, err)
		}
		result.VideoIDs = ids
		result.State = ItemsEnumerated
		e.sendProgress(progress, enumeratedUpdate(len(ids), opts.Order))

		result.State = Done
		e.sendProgress(progress, dryRunUpdate(len(ids)))
		return nil
	}

	destID, err := e.svc.CreatePlaylist(ctx, meta, opts.Privacy.private(meta))
	if err != nil {
		return fmt.Errorf("create playlist %q: %w", meta.Title, err)
	}
	result.DestinationID = destID
	result.State = DestinationCreated
	e.sendProgress(progress, createdUpdate(destID, meta))

	ids, err := e.svc.VideoIDs(ctx, sourceID, opts.Order)
	if err != nil {
		return fmt.Errorf("enumerate items of %s: %w", sourceID, err)
	}
	result.VideoIDs = ids
	result.State = ItemsEnumerated
	e.sendProgress(progress, enumeratedUpdate(len(ids), opts.Order))

	total := len(ids)
	for i, videoID := range ids {
		result.State = Appending
		item, err := e.svc.AppendVideo(ctx, destID, videoID)
		if err != nil {
			return fmt.Errorf("append video %s (%d/%d): %w", videoID, i+1, total, err)
		}
		result.Items = append(result.Items, *item)
		e.logger.Debug("appended video", "item", item.ItemID, "video", videoID, "position", item.Position)
		e.sendProgress(progress, appendUpdate(i+1, total, item))
	}

	result.State = Done
	e.sendProgress(progress, doneUpdate(destID, total))
	return nil
}

// cleanup deletes the partial destination. It runs even when ctx was canceled.
func (e *CopyEngine) cleanup(ctx context.Context, result *CopyResult, cause error, progress chan<- ProgressUpdate) error {
	e.sendProgress(progress, cleanupUpdate(result.DestinationID))

	if err := e.svc.DeletePlaylist(context.WithoutCancel(ctx), result.DestinationID); err != nil {
		e.logger.Warn("failed to delete partial playlist", "id", result.DestinationID, "error", err)
		return errors.Join(cause, fmt.Errorf("delete partial playlist %s: %w", result.DestinationID, err))
	}

	e.logger.Info("deleted partial playlist", "id", result.DestinationID)
	result.CleanedUp = true
	return cause
}

func (e *CopyEngine) beginRun(sourceID string, opts CopyOptions) *models.CopyRun {
	if e.recorder == nil || opts.DryRun {
		return nil
	}

	run := models.NewCopyRun(0, sourceID, opts.Order.String(), opts.Privacy.String())
	run.Start()
	if err := e.recorder.Create(run); err != nil {
		e.logger.Warn("failed to record copy run", "error", err)
		return nil
	}
	return run
}

func (e *CopyEngine) finishRun(run *models.CopyRun, result *CopyResult, err error) {
	if run == nil {
		return
	}

	if !result.CleanedUp {
		run.SetDestinationPlaylistID(result.DestinationID)
	}
	run.SetItemsTotal(len(result.VideoIDs))
	run.SetItemsCopied(result.Appended())
	run.Finish(err)

	if uerr := e.recorder.Update(run); uerr != nil {
		e.logger.Warn("failed to update copy run", "id", run.ID(), "error", uerr)
	}
}
