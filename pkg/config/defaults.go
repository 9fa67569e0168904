package config

import "time"

// File Permissions
const (
	// PermDirectory is the file permission for the config directory
	PermDirectory = 0700

	// PermConfigFile is the file permission for config files
	PermConfigFile = 0644

	// PermTokenFile is the file permission for token files (sensitive)
	PermTokenFile = 0600
)

// Path Constants - Local
const (
	// LocalConfigDir is the base directory for stackscan configuration
	LocalConfigDir = ".stackscan"

	// LocalConfigFile is the filename for the main config
	LocalConfigFile = "config.json"

	// LocalTokensFile is the filename for API tokens
	LocalTokensFile = "tokens.json"

	// LocalDatabaseFile is the default SQLite user store
	LocalDatabaseFile = "stackscan.db"
)

// Environment
const (
	// EnvPrefix prefixes every environment override, e.g. STACKSCAN_SERVER_ADDR
	EnvPrefix = "STACKSCAN"

	// EnvGitHubToken is the conventional GitHub token variable
	EnvGitHubToken = "GITHUB_TOKEN"
)

// Default Values
const (
	// DefaultGitHubAPIURL is the public GitHub REST endpoint
	DefaultGitHubAPIURL = "https://api.github.com/"

	// DefaultServerAddr is the HTTP listen address
	DefaultServerAddr = ":8080"

	// DefaultBaseURL is the externally visible server URL used for OAuth redirects
	DefaultBaseURL = "http://localhost:8080"

	// DefaultSessionTTL is how long a browser session stays valid
	DefaultSessionTTL = 7 * 24 * time.Hour

	// DefaultStoreBackend is the user store database
	DefaultStoreBackend = "sqlite"

	// DefaultRepoLimit caps repository listings in the CLI
	DefaultRepoLimit = 30

	// TokenProviderGitHub is the token store key for GitHub
	TokenProviderGitHub = "github"
)

// Timeouts
const (
	// DefaultReadTimeout bounds reading an HTTP request
	DefaultReadTimeout = 15 * time.Second

	// DefaultWriteTimeout bounds writing an HTTP response, including remote analysis
	DefaultWriteTimeout = 90 * time.Second

	// DefaultShutdownTimeout bounds graceful server shutdown
	DefaultShutdownTimeout = 10 * time.Second
)

// DefaultScopes are the OAuth scopes requested at sign-in
var DefaultScopes = []string{"read:user", "repo"}
