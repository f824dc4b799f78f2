package formatter

import (
	"bytes"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/desertthunder/plcopy/internal/models"
	"github.com/desertthunder/plcopy/internal/tasks"
)

// CopyReport summarizes a finished or failed copy for terminal output.
func CopyReport(result *tasks.CopyResult, err error) []byte {
	var buf bytes.Buffer
	if result == nil {
		if err != nil {
			fmt.Fprintf(&buf, "Error: %v\n", err)
		}
		return buf.Bytes()
	}

	title := result.SourceID
	if result.Metadata != nil {
		title = fmt.Sprintf("%s (%s)", result.Metadata.Title, result.SourceID)
	}
	fmt.Fprintf(&buf, "Source: %s\n", title)

	switch {
	case err != nil:
		fmt.Fprintf(&buf, "Status: failed during %s\n", result.FailedAt)
	case result.DestinationID == "":
		buf.WriteString("Status: dry run\n")
	default:
		buf.WriteString("Status: completed\n")
	}

	if result.DestinationID != "" {
		fmt.Fprintf(&buf, "Destination: %s\n", result.DestinationID)
	}
	fmt.Fprintf(&buf, "Videos: %d/%d\n", result.Appended(), len(result.VideoIDs))

	if result.CleanedUp {
		buf.WriteString("Partial playlist deleted\n")
	}
	if result.RunID != "" {
		fmt.Fprintf(&buf, "Run: %s\n", result.RunID)
	}
	if err != nil {
		fmt.Fprintf(&buf, "Error: %v\n", err)
	}

	return buf.Bytes()
}

// RunView is the serializable form of a [models.CopyRun].
type RunView struct {
	ID            string     `json:"id"`
	Sequence      int        `json:"sequence"`
	SourceID      string     `json:"source_playlist_id"`
	DestinationID string     `json:"destination_playlist_id,omitempty"`
	Order         string     `json:"order"`
	Privacy       string     `json:"privacy"`
	Status        string     `json:"status"`
	ItemsTotal    int        `json:"items_total"`
	ItemsCopied   int        `json:"items_copied"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// NewRunView copies the fields of run.
func NewRunView(run *models.CopyRun) RunView {
	return RunView{
		ID:            run.ID(),
		Sequence:      run.Sequence(),
		SourceID:      run.SourcePlaylistID(),
		DestinationID: run.DestinationPlaylistID(),
		Order:         run.Order(),
		Privacy:       run.Privacy(),
		Status:        run.Status(),
		ItemsTotal:    run.ItemsTotal(),
		ItemsCopied:   run.ItemsCopied(),
		ErrorMessage:  run.ErrorMessage(),
		StartedAt:     run.StartedAt(),
		CompletedAt:   run.CompletedAt(),
		CreatedAt:     run.CreatedAt(),
	}
}

// RunViews converts a slice of runs.
func RunViews(runs []*models.CopyRun) []RunView {
	views := make([]RunView, len(runs))
	for i, run := range runs {
		views[i] = NewRunView(run)
	}
	return views
}

// RunsTable renders runs as an aligned table.
func RunsTable(runs []*models.CopyRun) []byte {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "#\tSTATUS\tSOURCE\tDESTINATION\tORDER\tVIDEOS\tCREATED")
	for _, run := range runs {
		dest := run.DestinationPlaylistID()
		if dest == "" {
			dest = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d/%d\t%s\n",
			run.Sequence(),
			run.Status(),
			run.SourcePlaylistID(),
			dest,
			run.Order(),
			run.ItemsCopied(),
			run.ItemsTotal(),
			run.CreatedAt().Local().Format(time.DateTime),
		)
	}
	w.Flush()

	return buf.Bytes()
}

// RunDetail renders every field of a single run.
func RunDetail(run *models.CopyRun) []byte {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 1, ' ', 0)

	row := func(k, v string) { fmt.Fprintf(w, "%s:\t%s\n", k, v) }
	ts := func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.Local().Format(time.DateTime)
	}

	row("ID", run.ID())
	row("Run", fmt.Sprintf("#%d", run.Sequence()))
	row("Status", run.Status())
	row("Source", run.SourcePlaylistID())
	if run.DestinationPlaylistID() != "" {
		row("Destination", run.DestinationPlaylistID())
	}
	row("Order", run.Order())
	row("Privacy", run.Privacy())
	row("Videos", fmt.Sprintf("%d/%d", run.ItemsCopied(), run.ItemsTotal()))
	row("Started", ts(run.StartedAt()))
	row("Completed", ts(run.CompletedAt()))
	if run.ErrorMessage() != "" {
		row("Error", run.ErrorMessage())
	}
	w.Flush()

	return buf.Bytes()
}

// PlaylistsTable renders a playlist listing as an aligned table.
func PlaylistsTable(playlists []models.Playlist) []byte {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "ID\tTITLE\tVIDEOS\tVISIBILITY")
	for _, pl := range playlists {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", pl.ID, pl.Metadata.Title, pl.ItemCount, pl.Metadata.Visibility)
	}
	w.Flush()

	return buf.Bytes()
}
