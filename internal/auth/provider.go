package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plcopy/internal/models"
	"github.com/desertthunder/plcopy/internal/shared"
	"golang.org/x/oauth2"
)

// Provider hands out a valid credential, running consent when the stored one cannot be used.
type Provider struct {
	config     *oauth2.Config
	store      Store
	authorizer Authorizer
	logger     *log.Logger
}

// NewProvider creates a Provider. config.Scopes are the scopes checked by [Provider.IsValid].
func NewProvider(config *oauth2.Config, store Store, authorizer Authorizer, logger *log.Logger) *Provider {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &Provider{config: config, store: store, authorizer: authorizer, logger: logger}
}

// IsValid reports whether c can be used for the provider's scopes without user interaction.
func (p *Provider) IsValid(c *models.Credential) bool {
	return isValid(c, p.config.Scopes)
}

func isValid(c *models.Credential, scopes []string) bool {
	switch {
	case c == nil, c.Invalid, c.Token == nil:
		return false
	case !c.HasScopes(scopes):
		return false
	case c.Token.RefreshToken == "" && !c.Token.Valid():
		return false
	}
	return true
}

// Acquire returns the stored credential when valid for scopes, otherwise runs consent and persists the result.
//
// Empty scopes means the provider's configured scopes.
func (p *Provider) Acquire(ctx context.Context, scopes []string) (*models.Credential, error) {
	if len(scopes) == 0 {
		scopes = p.config.Scopes
	}

	cred, err := p.store.Load()
	if err != nil {
		p.logger.Warn("ignoring unreadable credential", "error", err)
		cred = nil
	}

	if isValid(cred, scopes) {
		p.logger.Debug("using stored credential")
		return cred, nil
	}

	if p.authorizer == nil {
		return nil, shared.ErrNotAuthenticated
	}

	conf := *p.config
	conf.Scopes = scopes
	p.logger.Info("authorization required", "scopes", scopes)

	token, err := p.authorizer.Authorize(ctx, &conf)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, fmt.Errorf("%w: no token returned", shared.ErrAuth)
	}

	cred = &models.Credential{Token: token, Scopes: scopes}
	if err := p.store.Persist(cred); err != nil {
		return nil, err
	}
	p.logger.Info("credential stored")
	return cred, nil
}

// TokenSource returns a token source for cred that persists refreshed tokens to the provider's store.
func (p *Provider) TokenSource(ctx context.Context, cred *models.Credential) oauth2.TokenSource {
	return &persistingSource{
		base:   p.config.TokenSource(ctx, cred.Token),
		store:  p.store,
		cred:   cred,
		logger: p.logger,
	}
}

// persistingSource writes the credential back whenever the underlying source hands out a new token.
type persistingSource struct {
	mu     sync.Mutex
	base   oauth2.TokenSource
	store  Store
	cred   *models.Credential
	logger *log.Logger
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.base.Token()
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.ErrorCode == "invalid_grant" {
			s.cred.Invalid = true
			if perr := s.store.Persist(s.cred); perr != nil {
				s.logger.Error("failed to flag credential invalid", "error", perr)
			}
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidGrant, err)
		}
		return nil, fmt.Errorf("%w: token refresh failed: %v", shared.ErrAuth, err)
	}

	if changed(s.cred.Token, token) {
		s.cred.Token = token
		if err := s.store.Persist(s.cred); err != nil {
			s.logger.Warn("failed to persist refreshed token", "error", err)
		} else {
			s.logger.Debug("persisted refreshed token", "expiry", token.Expiry)
		}
	}
	return token, nil
}

func changed(old, cur *oauth2.Token) bool {
	if old == nil {
		return true
	}
	return old.AccessToken != cur.AccessToken ||
		old.RefreshToken != cur.RefreshToken ||
		!old.Expiry.Equal(cur.Expiry)
}
