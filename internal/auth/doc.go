// Package auth obtains and persists the OAuth2 user credential for the YouTube Data API.
//
// [Provider.Acquire] loads the stored [models.Credential] through a [Store], and runs the interactive
// consent [Flow] when the credential is missing, flagged invalid, expired without a refresh token,
// or granted for fewer scopes than requested. The new credential is persisted before it is returned.
//
// [Provider.TokenSource] wraps the credential in a token source that writes refreshed tokens back to
// the store. A refresh rejected with invalid_grant flags the stored credential invalid so the next run
// asks for consent again.
package auth
