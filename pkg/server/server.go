// Package server exposes repository analysis and GitHub sign-in over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"time"

	"stackscan/pkg/analyzer"
	"stackscan/pkg/auth"
	"stackscan/pkg/github"
	"stackscan/pkg/session"
	"stackscan/pkg/store"
)

// GitHubAPI is the subset of the GitHub client used by handlers
type GitHubAPI interface {
	CurrentUser(ctx context.Context) (*github.User, error)
	ListRepositories(ctx context.Context, opts github.ListOptions) ([]github.Repository, error)
}

// UserStore persists signed-in users
type UserStore interface {
	UpsertUser(ctx context.Context, u store.User) (*store.User, error)
	UserByID(ctx context.Context, id int64) (*store.User, error)
}

// Options wires the server's collaborators. Sessions, Users and OAuth are
// optional together: without them only bearer-token requests are accepted.
type Options struct {
	Analyzer *analyzer.Service
	GitHub   func(token string) GitHubAPI
	Sessions *session.Manager
	Users    UserStore
	OAuth    *auth.Provider

	// SecureCookies marks cookies Secure; set when served over HTTPS
	SecureCookies   bool
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	Logger          *log.Logger
}

// Server is the HTTP API
type Server struct {
	opts    Options
	logger  *log.Logger
	handler http.Handler
}

// New validates options and builds the route table
func New(opts Options) (*Server, error) {
	if opts.Analyzer == nil {
		return nil, errors.New("server requires an analyzer")
	}
	if opts.GitHub == nil {
		return nil, errors.New("server requires a GitHub client factory")
	}
	if (opts.OAuth != nil) && (opts.Sessions == nil || opts.Users == nil) {
		return nil, errors.New("GitHub sign-in requires sessions and a user store")
	}
	if opts.Logger == nil {
		opts.Logger = log.New(os.Stderr, "stackscan: ", log.LstdFlags)
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 15 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 90 * time.Second
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{opts: opts, logger: opts.Logger}
	s.handler = s.routes()
	return s, nil
}

// Handler returns the root handler with middleware applied
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/analyze/repository", s.handleAnalyze)
	mux.HandleFunc("GET /api/github/repositories", s.handleRepositories)
	mux.HandleFunc("GET /api/auth/session", s.handleSession)
	mux.HandleFunc("GET /auth/github/login", s.handleLogin)
	mux.HandleFunc("GET /auth/github/callback", s.handleCallback)
	mux.HandleFunc("POST /auth/logout", s.handleLogout)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, "ok")
	})

	return s.recoverPanics(s.logRequests(mux))
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       s.opts.ReadTimeout,
		ReadHeaderTimeout: s.opts.ReadTimeout,
		WriteTimeout:      s.opts.WriteTimeout,
		ErrorLog:          s.logger,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()

	s.logger.Printf("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
