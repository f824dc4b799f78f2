package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/plcopy/internal/formatter"
	"github.com/desertthunder/plcopy/internal/repositories"
	"github.com/desertthunder/plcopy/internal/shared"
	"github.com/urfave/cli/v3"
)

// HistoryList prints recorded copy runs, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := repositories.NewCopyRunRepository(db).List(map[string]any{
		"status":             cmd.String("status"),
		"source_playlist_id": cmd.String("source"),
		"limit":              int(cmd.Int("limit")),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(formatter.RunViews(runs), cmd.Bool("pretty"))
	}
	if len(runs) == 0 {
		return r.writePlain("No copy runs recorded\n")
	}
	return r.writeBytes(formatter.RunsTable(runs))
}

// HistoryShow prints one copy run.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	id := cmd.String("id")
	run, err := repositories.NewCopyRunRepository(db).Get(id)
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: copy run %s", shared.ErrInvalidArgument, id)
	}
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(formatter.NewRunView(run), true)
	}
	return r.writeBytes(formatter.RunDetail(run))
}
