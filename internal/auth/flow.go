package auth

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plcopy/internal/server"
	"github.com/desertthunder/plcopy/internal/shared"
	"golang.org/x/oauth2"
)

// Authorizer runs an interactive consent flow and returns the granted token.
type Authorizer interface {
	Authorize(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error)
}

var _ Authorizer = (*Flow)(nil)

// Flow is the loopback authorization code flow with PKCE.
//
// It serves the redirect on Host:Port, prints the consent URL to Output,
// and opens it with OpenBrowser when set. A positive Timeout bounds the wait
// for the redirect.
type Flow struct {
	Host        string
	Port        int
	Output      io.Writer
	OpenBrowser func(url string) error
	Logger      *log.Logger
	Timeout     time.Duration
}

// Authorize runs the consent flow for config. The callback server is always shut down before returning.
func (f *Flow) Authorize(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	logger := f.Logger
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	host := f.Host
	if host == "" {
		host = "localhost"
	}

	router := server.NewBasicRouter()
	router.Use(server.LoggingMiddleware(logger))

	srv, err := server.Listen(net.JoinHostPort(host, strconv.Itoa(f.Port)), router, logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuth, err)
	}

	_, port, err := net.SplitHostPort(srv.Addr())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuth, err)
	}

	conf := *config
	conf.RedirectURL = "http://" + net.JoinHostPort(host, port) + server.CallbackPath

	verifier := oauth2.GenerateVerifier()
	state := shared.GenerateID()
	handler := server.NewOAuthHandler(&conf, state, oauth2.VerifierOption(verifier))
	router.Handler(handler)

	srv.Start()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("failed to stop callback server", "error", err)
		}
	}()

	authURL := conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(verifier),
	)

	if f.Output != nil {
		fmt.Fprintf(f.Output, "Open this URL in your browser to authorize access:\n\n  %s\n\n", authURL)
	}
	if f.OpenBrowser != nil {
		if err := f.OpenBrowser(authURL); err != nil {
			logger.Warn("could not open browser, open the URL manually", "error", err)
		}
	}
	logger.Info("waiting for authorization", "redirect", conf.RedirectURL)

	var deadline <-chan time.Time
	if f.Timeout > 0 {
		timer := time.NewTimer(f.Timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	select {
	case res := <-handler.Result():
		if err := res.Error(); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrAuth, err)
		}
		return res.Token, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: consent not completed: %v", shared.ErrAuth, ctx.Err())
	case <-deadline:
		return nil, fmt.Errorf("%w: consent not completed within %s", shared.ErrTimeout, f.Timeout)
	}
}
