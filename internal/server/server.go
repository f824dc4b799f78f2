// package server contains the router, middleware, and loopback listener used by the OAuth consent flow
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an [http.Handler] that also declares the path patterns it serves.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Server is an [http.Server] bound to an already-open listener.
//
// Binding happens in [Listen] so address errors surface before the browser is opened.
type Server struct {
	srv    *http.Server
	ln     net.Listener
	logger *log.Logger
	done   chan struct{}
}

// Listen binds addr and returns a Server that will serve h once [Server.Start] is called.
//
// Use port 0 to pick a free port.
func Listen(addr string, h http.Handler, logger *log.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Server{
		srv:    &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second},
		ln:     ln,
		logger: logger,
		done:   make(chan struct{}),
	}, nil
}

// Addr returns the bound address as host:port.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Start serves requests in a background goroutine.
func (s *Server) Start() {
	go func() {
		defer close(s.done)
		if err := s.srv.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("callback server stopped", "error", err)
		}
	}()
}

// Shutdown gracefully stops the server and waits for the serve goroutine to exit.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	select {
	case <-s.done:
	case <-ctx.Done():
	}
	return err
}
