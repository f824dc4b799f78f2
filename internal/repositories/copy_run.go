package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/plcopy/internal/models"
	"github.com/desertthunder/plcopy/internal/shared"
)

const copyRunColumns = `
	id, sequence, source_playlist_id, destination_playlist_id, sort_order,
	privacy, status, items_total, items_copied, error_message, started_at,
	completed_at, created_at, updated_at, deleted_at`

var _ models.Repository[*models.CopyRun] = (*CopyRunRepository)(nil)

// CopyRunRepository implements models.Repository[*models.CopyRun] for copy history.
//
// Rows are soft-deleted and excluded from every query once deleted_at is set.
type CopyRunRepository struct {
	db *sql.DB
}

// NewCopyRunRepository creates a new CopyRunRepository with the given database connection
func NewCopyRunRepository(db *sql.DB) *CopyRunRepository {
	return &CopyRunRepository{db: db}
}

// Create inserts a new run with a generated ID and sequence
func (r *CopyRunRepository) Create(run *models.CopyRun) error {
	sequence, err := NextSequence(r.db, "copy_runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	run.SetID(shared.GenerateID())
	run.SetSequence(sequence)

	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO copy_runs (
			id, sequence, source_playlist_id, destination_playlist_id, sort_order,
			privacy, status, items_total, items_copied, error_message, started_at,
			completed_at, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		run.ID(),
		run.Sequence(),
		run.SourcePlaylistID(),
		nullString(run.DestinationPlaylistID()),
		run.Order(),
		run.Privacy(),
		run.Status(),
		run.ItemsTotal(),
		run.ItemsCopied(),
		nullString(run.ErrorMessage()),
		run.StartedAt(),
		run.CompletedAt(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert copy run: %w", err)
	}

	return nil
}

// Get retrieves a run by ID, excluding soft-deleted runs
func (r *CopyRunRepository) Get(id string) (*models.CopyRun, error) {
	query := `SELECT` + copyRunColumns + `
		FROM copy_runs
		WHERE id = ? AND deleted_at IS NULL
	`

	run, err := scanCopyRun(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: copy run %s", ErrNotFound, id)
	}
	return run, err
}

// Update writes the mutable fields of run
func (r *CopyRunRepository) Update(run *models.CopyRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	run.SetUpdatedAt(time.Now())

	query := `
		UPDATE copy_runs
		SET destination_playlist_id = ?, status = ?, items_total = ?,
			items_copied = ?, error_message = ?, started_at = ?,
			completed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		nullString(run.DestinationPlaylistID()),
		run.Status(),
		run.ItemsTotal(),
		run.ItemsCopied(),
		nullString(run.ErrorMessage()),
		run.StartedAt(),
		run.CompletedAt(),
		run.UpdatedAt(),
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update copy run: %w", err)
	}

	return checkAffected(result, run.ID())
}

// Delete soft-deletes a run
func (r *CopyRunRepository) Delete(id string) error {
	result, err := r.db.Exec(
		`UPDATE copy_runs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete copy run: %w", err)
	}

	return checkAffected(result, id)
}

// List returns runs matching criteria, newest first.
//
// Supported criteria: "status" and "source_playlist_id" (string), "limit" (int).
func (r *CopyRunRepository) List(criteria map[string]any) ([]*models.CopyRun, error) {
	query := `SELECT` + copyRunColumns + `
		FROM copy_runs
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	if sourceID, ok := criteria["source_playlist_id"].(string); ok && sourceID != "" {
		query += " AND source_playlist_id = ?"
		args = append(args, sourceID)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query copy runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.CopyRun
	for rows.Next() {
		run, err := scanCopyRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

func checkAffected(result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: copy run %s", ErrNotFound, id)
	}
	return nil
}

// scanner is satisfied by both [sql.Row] and [sql.Rows]
type scanner interface {
	Scan(dest ...any) error
}

func scanCopyRun(s scanner) (*models.CopyRun, error) {
	var (
		id                    string
		sequence              int
		sourcePlaylistID      string
		destinationPlaylistID sql.NullString
		order                 string
		privacy               string
		status                string
		itemsTotal            int
		itemsCopied           int
		errorMessage          sql.NullString
		startedAt             sql.NullTime
		completedAt           sql.NullTime
		createdAt             time.Time
		updatedAt             time.Time
		deletedAt             sql.NullTime
	)

	err := s.Scan(
		&id, &sequence, &sourcePlaylistID, &destinationPlaylistID, &order,
		&privacy, &status, &itemsTotal, &itemsCopied, &errorMessage, &startedAt,
		&completedAt, &createdAt, &updatedAt, &deletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan copy run: %w", err)
	}

	run := models.NewCopyRun(sequence, sourcePlaylistID, order, privacy)
	run.SetID(id)
	run.SetStatus(status)
	run.SetItemsTotal(itemsTotal)
	run.SetItemsCopied(itemsCopied)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)

	if destinationPlaylistID.Valid {
		run.SetDestinationPlaylistID(destinationPlaylistID.String)
	}
	if errorMessage.Valid {
		run.SetErrorMessage(errorMessage.String)
	}
	if startedAt.Valid {
		run.SetStartedAt(&startedAt.Time)
	}
	if completedAt.Valid {
		run.SetCompletedAt(&completedAt.Time)
	}
	if deletedAt.Valid {
		run.SetDeletedAt(&deletedAt.Time)
	}

	return run, nil
}
