// Package services talks to the YouTube Data API v3.
//
// [PlaylistService] groups what the copy engine needs: reading metadata, enumerating items page by page,
// creating a playlist, and appending videos one call at a time.
// [YouTubeClient] is the only implementation; tests substitute fakes.
package services
