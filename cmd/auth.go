package main

import (
	"context"
	"strings"

	"github.com/desertthunder/plcopy/internal/auth"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// AuthLogin runs the consent flow unless a usable credential is already stored.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	yt, _ := r.youtubeConfig(cmd)

	if cmd.Bool("force") {
		if err := auth.NewFileStore(yt.TokenPath()).Remove(); err != nil {
			return err
		}
		r.logger.Info("discarded stored credential", "path", yt.TokenPath())
	}

	provider, err := r.provider(cmd)
	if err != nil {
		return err
	}

	if _, err := provider.Acquire(ctx, nil); err != nil {
		return err
	}

	return r.writePlain("✓ Authorized\nCredential: %s\n", yt.TokenPath())
}

// AuthStatus reports whether the stored credential can be used without consent.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	yt, _ := r.youtubeConfig(cmd)
	store := auth.NewFileStore(yt.TokenPath())

	cred, err := store.Load()
	if err != nil {
		return err
	}

	r.writePlain("Credential: %s\n", store.Path())
	if cred == nil {
		return r.writePlain("Status: ✗ Not authenticated\n")
	}

	checker := auth.NewProvider(&oauth2.Config{Scopes: yt.Scopes}, store, nil, r.logger)
	switch {
	case checker.IsValid(cred):
		r.writePlain("Status: ✓ Authenticated\n")
	case cred.Invalid:
		r.writePlain("Status: ✗ Refresh token rejected, run 'auth login'\n")
	default:
		r.writePlain("Status: ✗ Expired or missing scopes, run 'auth login'\n")
	}

	r.writePlain("Scopes: %s\n", strings.Join(cred.Scopes, ", "))
	if cred.Token != nil && !cred.Token.Expiry.IsZero() {
		r.writePlain("Access token expiry: %s\n", cred.Token.Expiry.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}

// AuthLogout deletes the stored credential.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	yt, _ := r.youtubeConfig(cmd)
	if err := auth.NewFileStore(yt.TokenPath()).Remove(); err != nil {
		return err
	}
	r.logger.Info("credential removed", "path", yt.TokenPath())
	return r.writePlain("✓ Logged out\n")
}
