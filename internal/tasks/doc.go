// Package tasks copies one playlist into a new playlist with progress reporting.
//
// # Copy
//
// [CopyEngine.Copy] walks a fixed sequence of steps:
//
//  1. Fetch the source metadata (title, description, thumbnails, visibility)
//  2. Create the destination playlist (private unless [PrivacyPublic] or [PrivacySource] says otherwise)
//  3. Enumerate every source video id, reversed once as a whole for descending order
//  4. Append each id with its own insert call, in order
//
// The first error stops the copy. Videos appended before it stay in the destination
// unless [CopyOptions.CleanupOnFailure] is set, in which case the destination is deleted.
//
// # Progress Reporting
//
// Progress is sent through a channel without blocking; a full or nil channel drops updates.
// [ProgressUpdate.State] mirrors the state machine and [ProgressUpdate.Data] carries the
// metadata, destination id, or [models.InsertResult] of the step.
//
// # History
//
// An optional [RunRecorder] (repositories.CopyRunRepository) stores each non-dry run.
package tasks
