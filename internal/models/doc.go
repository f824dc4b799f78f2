// Package models defines domain entities and persistence interfaces for plcopy.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs describing remote playlist data
//   - [PlaylistMetadata] : Title, description, thumbnails, and visibility of a playlist
//   - [Playlist] : A playlist id with its metadata, used for listings
//   - [PlaylistExport] : Playlist metadata with its ordered video ids
//   - [InsertResult] : The item created by appending a video to a playlist
//   - [Credential] : The persisted OAuth2 user credential
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [CopyRun] : One invocation of the copy operation, tracking progress and outcome
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
