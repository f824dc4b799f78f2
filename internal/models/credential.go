package models

import (
	"slices"

	"golang.org/x/oauth2"
)

// Credential is the persisted user authorization.
//
// Invalid is set when the refresh token has been rejected, forcing a new consent flow on the next run.
type Credential struct {
	Token   *oauth2.Token `json:"token"`
	Scopes  []string      `json:"scopes"`
	Invalid bool          `json:"invalid,omitempty"`
}

// HasScopes reports whether every scope in want was granted.
func (c *Credential) HasScopes(want []string) bool {
	for _, s := range want {
		if !slices.Contains(c.Scopes, s) {
			return false
		}
	}
	return true
}
