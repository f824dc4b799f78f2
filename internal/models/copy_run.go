package models

import (
	"fmt"
	"time"
)

// CopyRun status values.
const (
	CopyRunPending   = "pending"
	CopyRunRunning   = "running"
	CopyRunCompleted = "completed"
	CopyRunFailed    = "failed"
)

var _ Model = (*CopyRun)(nil)

// CopyRun records one invocation of the copy operation.
type CopyRun struct {
	id                    string
	sequence              int
	sourcePlaylistID      string
	destinationPlaylistID string
	order                 string
	privacy               string
	status                string
	itemsTotal            int
	itemsCopied           int
	errorMessage          string
	startedAt             *time.Time
	completedAt           *time.Time
	createdAt             time.Time
	updatedAt             time.Time
	deletedAt             *time.Time
}

// NewCopyRun creates a pending run for sourcePlaylistID.
func NewCopyRun(sequence int, sourcePlaylistID, order, privacy string) *CopyRun {
	now := time.Now()
	return &CopyRun{
		sequence:         sequence,
		sourcePlaylistID: sourcePlaylistID,
		order:            order,
		privacy:          privacy,
		status:           CopyRunPending,
		createdAt:        now,
		updatedAt:        now,
	}
}

func (c *CopyRun) ID() string                    { return c.id }
func (c *CopyRun) Sequence() int                 { return c.sequence }
func (c *CopyRun) SourcePlaylistID() string      { return c.sourcePlaylistID }
func (c *CopyRun) DestinationPlaylistID() string { return c.destinationPlaylistID }
func (c *CopyRun) Order() string                 { return c.order }
func (c *CopyRun) Privacy() string               { return c.privacy }
func (c *CopyRun) Status() string                { return c.status }
func (c *CopyRun) ItemsTotal() int               { return c.itemsTotal }
func (c *CopyRun) ItemsCopied() int              { return c.itemsCopied }
func (c *CopyRun) ErrorMessage() string          { return c.errorMessage }
func (c *CopyRun) StartedAt() *time.Time         { return c.startedAt }
func (c *CopyRun) CompletedAt() *time.Time       { return c.completedAt }
func (c *CopyRun) CreatedAt() time.Time          { return c.createdAt }
func (c *CopyRun) UpdatedAt() time.Time          { return c.updatedAt }
func (c *CopyRun) DeletedAt() *time.Time         { return c.deletedAt }

func (c *CopyRun) SetID(id string)                    { c.id = id }
func (c *CopyRun) SetSequence(n int)                  { c.sequence = n }
func (c *CopyRun) SetDestinationPlaylistID(id string) { c.destinationPlaylistID = id }
func (c *CopyRun) SetStatus(s string)                 { c.status = s }
func (c *CopyRun) SetItemsTotal(n int)                { c.itemsTotal = n }
func (c *CopyRun) SetItemsCopied(n int)               { c.itemsCopied = n }
func (c *CopyRun) SetErrorMessage(msg string)         { c.errorMessage = msg }
func (c *CopyRun) SetStartedAt(t *time.Time)          { c.startedAt = t }
func (c *CopyRun) SetCompletedAt(t *time.Time)        { c.completedAt = t }
func (c *CopyRun) SetCreatedAt(t time.Time)           { c.createdAt = t }
func (c *CopyRun) SetUpdatedAt(t time.Time)           { c.updatedAt = t }
func (c *CopyRun) SetDeletedAt(t *time.Time)          { c.deletedAt = t }

// Start marks the run as running.
func (c *CopyRun) Start() {
	now := time.Now()
	c.status = CopyRunRunning
	c.startedAt = &now
}

// Finish marks the run completed, or failed with err's message when err is non-nil.
func (c *CopyRun) Finish(err error) {
	now := time.Now()
	c.completedAt = &now
	if err != nil {
		c.status = CopyRunFailed
		c.errorMessage = err.Error()
		return
	}
	c.status = CopyRunCompleted
	c.errorMessage = ""
}

// Validate checks required fields and status consistency.
func (c *CopyRun) Validate() error {
	if c.id == "" {
		return fmt.Errorf("id is required")
	}
	if c.sourcePlaylistID == "" {
		return fmt.Errorf("source playlist id is required")
	}
	if _, err := ParseOrder(c.order); err != nil {
		return err
	}

	switch c.status {
	case CopyRunPending, CopyRunRunning, CopyRunCompleted, CopyRunFailed:
	default:
		return fmt.Errorf("invalid status %q", c.status)
	}

	if c.itemsCopied < 0 || c.itemsTotal < 0 {
		return fmt.Errorf("item counts must not be negative")
	}
	if c.itemsCopied > c.itemsTotal {
		return fmt.Errorf("items copied (%d) exceeds items total (%d)", c.itemsCopied, c.itemsTotal)
	}
	if c.status == CopyRunCompleted && c.destinationPlaylistID == "" {
		return fmt.Errorf("completed run must have a destination playlist")
	}
	return nil
}
