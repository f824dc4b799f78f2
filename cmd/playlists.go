package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/plcopy/internal/formatter"
	"github.com/desertthunder/plcopy/internal/models"
	"github.com/desertthunder/plcopy/internal/shared"
	"github.com/urfave/cli/v3"
)

// Playlists lists the authorized account's playlists.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.connect(ctx, cmd)
	if err != nil {
		return err
	}

	playlists, err := svc.ListMine(ctx)
	if err != nil {
		return err
	}
	r.logger.Debug("listed playlists", "count", len(playlists))

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}
	if len(playlists) == 0 {
		return r.writePlain("No playlists found\n")
	}
	return r.writeBytes(formatter.PlaylistsTable(playlists))
}

// PlaylistShow renders a playlist's metadata and video ids to stdout or --output.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	order, err := models.ParseOrder(cmd.String("order"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	svc, err := r.connect(ctx, cmd)
	if err != nil {
		return err
	}

	export, err := svc.Export(ctx, cmd.String("id"), order)
	if err != nil {
		return err
	}

	output := cmd.String("output")
	if output == "" {
		data, err := formatter.Render(export, format)
		if err != nil {
			return err
		}
		return r.writeBytes(data)
	}

	files, err := formatter.WriteExport(export, format, output)
	if err != nil {
		return err
	}
	for _, f := range files {
		r.logger.Info("wrote export", "file", f)
		r.writePlain("%s\n", f)
	}
	return nil
}
