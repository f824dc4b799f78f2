package main

import (
	"cmp"
	"context"
	"fmt"

	"github.com/desertthunder/plcopy/internal/formatter"
	"github.com/desertthunder/plcopy/internal/models"
	"github.com/desertthunder/plcopy/internal/repositories"
	"github.com/desertthunder/plcopy/internal/shared"
	"github.com/desertthunder/plcopy/internal/tasks"
	"github.com/desertthunder/plcopy/internal/ui"
	"github.com/urfave/cli/v3"
)

// Copy copies --playlist-id into a new playlist and prints the new playlist ID.
func (r *Runner) Copy(ctx context.Context, cmd *cli.Command) error {
	sourceID := cmd.String("playlist-id")
	interactive := cmd.Bool("tui")
	if sourceID == "" && !interactive {
		return fmt.Errorf("%w: --playlist-id", shared.ErrMissingArgument)
	}

	opts, err := r.copyOptions(cmd)
	if err != nil {
		return err
	}

	if interactive {
		if err := r.useFileLogger(); err != nil {
			return err
		}
	}

	svc, err := r.connect(ctx, cmd)
	if err != nil {
		return err
	}

	engine := tasks.NewCopyEngine(svc, r.logger)
	if r.config.Copy.RecordHistory && !opts.DryRun {
		db, err := shared.OpenDatabase(r.config.Database)
		if err != nil {
			r.logger.Warn("copy history disabled", "error", err)
		} else {
			defer db.Close()
			engine.WithRecorder(repositories.NewCopyRunRepository(db))
		}
	}

	if interactive {
		return r.runTUI(ctx, svc, engine, ui.Options{SourceID: sourceID, Copy: opts})
	}

	r.logger.Info("copying playlist", "source", sourceID, "order", opts.Order, "privacy", opts.Privacy)

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logProgress(update)
		}
	}()

	result, err := engine.Copy(ctx, sourceID, opts, progress)
	close(progress)
	<-done

	if cmd.Bool("report") {
		if werr := r.writeBytes(formatter.CopyReport(result, err)); werr != nil {
			r.logger.Error("failed to write report", "error", werr)
		}
		return err
	}
	if err != nil {
		return err
	}

	if result.DestinationID == "" {
		return r.writePlain("dry run: %d videos would be copied\n", len(result.VideoIDs))
	}
	return r.writePlain("%s\n", result.DestinationID)
}

// copyOptions resolves order, privacy, and cleanup from flags, falling back to the [copy] config.
func (r *Runner) copyOptions(cmd *cli.Command) (tasks.CopyOptions, error) {
	order, err := models.ParseOrder(cmp.Or(cmd.String("order"), r.config.Copy.Order, "asc"))
	if err != nil {
		return tasks.CopyOptions{}, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	privacy, err := tasks.ParsePrivacyPolicy(cmp.Or(cmd.String("privacy"), r.config.Copy.Privacy))
	if err != nil {
		return tasks.CopyOptions{}, err
	}

	return tasks.CopyOptions{
		Order:            order,
		Privacy:          privacy,
		CleanupOnFailure: cmd.Bool("cleanup-on-failure") || r.config.Copy.CleanupOnFailure,
		DryRun:           cmd.Bool("dry-run"),
	}, nil
}

func (r *Runner) logProgress(update tasks.ProgressUpdate) {
	switch update.State {
	case tasks.Appending:
		r.logger.Debug(update.Message, "step", update.Step, "total", update.Total)
	case tasks.Failed:
		r.logger.Error(update.Message)
	default:
		r.logger.Info(update.Message, "state", update.State)
	}
}
