package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"stackscan/pkg/analyzer"
	"stackscan/pkg/auth"
	"stackscan/pkg/config"
	"stackscan/pkg/github"
	"stackscan/pkg/server"
	"stackscan/pkg/session"
	"stackscan/pkg/store"
	"stackscan/pkg/util"
)

var (
	serveAddr    string
	serveEnvFile string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve repository analysis over HTTP",
	Long: `Start the HTTP API.

Requests authenticate with 'Authorization: Bearer <GitHub token>', or with a session cookie
after signing in at /auth/github/login. Browser sign-in needs github.client_id,
github.client_secret and server.session_secret; users are stored in the database named by
store.backend and store.dsn (SQLite under ~/.stackscan by default).`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if serveEnvFile != "" {
			applied, err := util.ApplyEnvFile(serveEnvFile)
			if err != nil {
				exitWithError("Error: %v", err)
			}
			util.Debug("applied %d variables from %s", len(applied), serveEnvFile)
			// environment changed after settings were loaded
			if err := loadSettings(cmd, args); err != nil {
				exitWithError("Error: %v", err)
			}
		}

		addr := serveAddr
		if addr == "" {
			addr = settings.Server.Addr
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		opts, cleanup, err := serverOptions(ctx, settings)
		if err != nil {
			exitWithError("Error: %v", err)
		}
		defer cleanup()

		srv, err := server.New(opts)
		if err != nil {
			exitWithError("Error: %v", err)
		}

		fmt.Fprintf(os.Stderr, "%s\n", endingMsgStyle.Render("stackscan API listening on "+addr))
		if err := srv.Run(ctx, addr); err != nil {
			exitWithError("Server error: %v", err)
		}
	},
}

// serverOptions wires the GitHub client, analyzer and, when configured, the
// session manager, user store and OAuth provider
func serverOptions(ctx context.Context, cfg *config.Config) (server.Options, func(), error) {
	noop := func() {}

	base, err := github.ParseBaseURL(cfg.GitHub.APIURL)
	if err != nil {
		return server.Options{}, noop, err
	}
	ghcfg := github.Config{BaseURL: base}

	opts := server.Options{
		Analyzer:        analyzer.NewService(ghcfg.Factory(), nil),
		GitHub:          func(token string) server.GitHubAPI { return github.NewClient(token, ghcfg) },
		SecureCookies:   strings.HasPrefix(cfg.Server.BaseURL, "https://"),
		ReadTimeout:     config.DefaultReadTimeout,
		WriteTimeout:    config.DefaultWriteTimeout,
		ShutdownTimeout: config.DefaultShutdownTimeout,
		Logger:          log.New(os.Stderr, "stackscan: ", log.LstdFlags),
	}

	secret := cfg.Server.SessionSecret
	if secret == "" {
		if cfg.GitHub.ClientID != "" {
			return opts, noop, errors.New("server.session_secret is required for GitHub sign-in")
		}
		util.Info("server.session_secret not set; only bearer-token requests are accepted")
		return opts, noop, nil
	}

	sessions, err := session.NewManager(secret, cfg.Server.TTL())
	if err != nil {
		return opts, noop, err
	}
	sealer, err := session.NewSealer(secret)
	if err != nil {
		return opts, noop, err
	}

	backend, err := store.ParseBackend(cfg.Store.Backend)
	if err != nil {
		return opts, noop, err
	}
	if backend == store.SQLite {
		if err := os.MkdirAll(config.GetConfigDir(), config.PermDirectory); err != nil {
			return opts, noop, fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	users, err := store.Open(ctx, backend, cfg.Store.DSN, sealer)
	if err != nil {
		return opts, noop, err
	}
	cleanup := func() { _ = users.Close() }

	opts.Sessions = sessions
	opts.Users = users

	if cfg.GitHub.ClientID != "" {
		provider, err := auth.NewProvider(cfg.GitHub.ClientID, cfg.GitHub.ClientSecret, cfg.Server.CallbackURL(), cfg.GitHub.Scopes)
		if err != nil {
			cleanup()
			return opts, noop, err
		}
		opts.OAuth = provider
	}

	return opts, cleanup, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from server.addr, "+config.DefaultServerAddr+")")
	serveCmd.Flags().StringVar(&serveEnvFile, "env-file", "", "Load environment variables from a file before reading settings")
}
