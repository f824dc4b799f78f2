package tasks

import (
	"fmt"

	"github.com/desertthunder/plcopy/internal/models"
)

// ProgressUpdate represents a progress event during a copy.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	State   State  // State the copy just entered
	Step    int    // Current step number within the state
	Total   int    // Total steps in this state
	Message string // Human-readable message for display
	Data    any    // Optional state-specific data for advanced UIs
}

// State is a step of the copy state machine.
//
//	Start → MetadataFetched → DestinationCreated → ItemsEnumerated → Appending → Done
//
// Any state may move to Failed.
type State int

const (
	Start State = iota
	MetadataFetched
	DestinationCreated
	ItemsEnumerated
	Appending
	Done
	Failed
	CleaningUp
)

func (s State) String() string {
	switch s {
	case Start:
		return "start"
	case MetadataFetched:
		return "metadata_fetched"
	case DestinationCreated:
		return "destination_created"
	case ItemsEnumerated:
		return "items_enumerated"
	case Appending:
		return "appending"
	case Done:
		return "done"
	case Failed:
		return "failed"
	case CleaningUp:
		return "cleaning_up"
	default:
		return ""
	}
}

// Terminal reports whether no further updates follow.
func (s State) Terminal() bool {
	return s == Done || s == Failed
}

func startUpdate(sourceID string) ProgressUpdate {
	return ProgressUpdate{
		State:   Start,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Fetching source playlist %s...", sourceID),
	}
}

func metadataUpdate(meta *models.PlaylistMetadata) ProgressUpdate {
	return ProgressUpdate{
		State:   MetadataFetched,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found playlist: %s", meta.Title),
		Data:    meta,
	}
}

func createdUpdate(id string, meta *models.PlaylistMetadata) ProgressUpdate {
	return ProgressUpdate{
		State:   DestinationCreated,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist created: %s (ID: %s)", meta.Title, id),
		Data:    id,
	}
}

func enumeratedUpdate(n int, order models.Order) ProgressUpdate {
	return ProgressUpdate{
		State:   ItemsEnumerated,
		Step:    0,
		Total:   n,
		Message: fmt.Sprintf("Found %d videos (%s)", n, order),
	}
}

func appendUpdate(step, total int, item *models.InsertResult) ProgressUpdate {
	return ProgressUpdate{
		State:   Appending,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, item.VideoID),
		Data:    item,
	}
}

func doneUpdate(id string, total int) ProgressUpdate {
	return ProgressUpdate{
		State:   Done,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("Copied %d videos to %s", total, id),
		Data:    id,
	}
}

func dryRunUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		State:   Done,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("Dry run: %d videos would be copied", total),
	}
}

func cleanupUpdate(id string) ProgressUpdate {
	return ProgressUpdate{
		State:   CleaningUp,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Deleting partial playlist %s...", id),
		Data:    id,
	}
}

func failedUpdate(at State, err error) ProgressUpdate {
	return ProgressUpdate{
		State:   Failed,
		Message: fmt.Sprintf("Failed after %s: %v", at, err),
		Data:    err,
	}
}
