package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// NewViper returns a viper instance with stackscan defaults and
// STACKSCAN_* environment overrides, reading the config file at path
// (GetConfigPath when empty). A missing file is not an error.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()

	if path == "" {
		path = GetConfigPath()
	}
	v.SetConfigFile(path)
	v.SetConfigType("json")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// every key needs a default so AutomaticEnv applies during Unmarshal
	v.SetDefault("github.client_id", "")
	v.SetDefault("github.client_secret", "")
	v.SetDefault("github.api_url", DefaultGitHubAPIURL)
	v.SetDefault("github.scopes", DefaultScopes)
	v.SetDefault("server.addr", DefaultServerAddr)
	v.SetDefault("server.base_url", DefaultBaseURL)
	v.SetDefault("server.session_secret", "")
	v.SetDefault("server.session_ttl", DefaultSessionTTL.String())
	v.SetDefault("store.backend", DefaultStoreBackend)
	v.SetDefault("store.dsn", "")

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	return v, nil
}

// BindFlags binds command-line flags to config keys, e.g. "github.api_url" -> --api-url.
// Flags that are not defined on fs are skipped.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet, bindings map[string]string) error {
	for key, flagName := range bindings {
		f := fs.Lookup(flagName)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", flagName, err)
		}
	}
	return nil
}

// FromViper decodes the effective configuration
func FromViper(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if c.Repos == nil {
		c.Repos = make(map[string]RepoAlias)
	}
	if c.Store.DSN == "" && (c.Store.Backend == "" || strings.EqualFold(c.Store.Backend, "sqlite")) {
		c.Store.DSN = DefaultDatabasePath()
	}
	if len(c.GitHub.Scopes) == 0 {
		c.GitHub.Scopes = DefaultScopes
	}
	return &c, nil
}

// Resolve loads defaults, the config file and environment overrides
func Resolve(path string) (*Config, error) {
	v, err := NewViper(path)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}
