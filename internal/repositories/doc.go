// Package repositories implements SQLite persistence for copy history.
//
// [CopyRunRepository] records one row per copy with its source, destination, order, privacy,
// status, and item counts. Rows are soft-deleted via deleted_at and excluded from queries afterwards.
//
// Sequence numbers provide stable, human-readable ordering (e.g. run #42) independent of UUIDs and timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
