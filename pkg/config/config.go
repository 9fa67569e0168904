package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// GitHubConfig holds OAuth app and API settings
type GitHubConfig struct {
	ClientID     string   `json:"client_id,omitempty" mapstructure:"client_id"`
	ClientSecret string   `json:"client_secret,omitempty" mapstructure:"client_secret"`
	APIURL       string   `json:"api_url,omitempty" mapstructure:"api_url"`
	Scopes       []string `json:"scopes,omitempty" mapstructure:"scopes"`
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Addr          string `json:"addr,omitempty" mapstructure:"addr"`
	BaseURL       string `json:"base_url,omitempty" mapstructure:"base_url"`
	SessionSecret string `json:"session_secret,omitempty" mapstructure:"session_secret"`
	SessionTTL    string `json:"session_ttl,omitempty" mapstructure:"session_ttl"`
}

// TTL parses SessionTTL, falling back to DefaultSessionTTL
func (s ServerConfig) TTL() time.Duration {
	d, err := time.ParseDuration(s.SessionTTL)
	if err != nil || d <= 0 {
		return DefaultSessionTTL
	}
	return d
}

// CallbackURL is the OAuth redirect target derived from BaseURL
func (s ServerConfig) CallbackURL() string {
	base := s.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return strings.TrimSuffix(base, "/") + "/auth/github/callback"
}

// StoreConfig selects the user database
type StoreConfig struct {
	Backend string `json:"backend,omitempty" mapstructure:"backend"`
	DSN     string `json:"dsn,omitempty" mapstructure:"dsn"`
}

// RepoAlias is a saved shortcut for a repository
type RepoAlias struct {
	Owner  string `json:"owner" mapstructure:"owner"`
	Repo   string `json:"repo" mapstructure:"repo"`
	Branch string `json:"branch,omitempty" mapstructure:"branch"`
}

func (r RepoAlias) String() string {
	if r.Branch != "" {
		return r.Owner + "/" + r.Repo + "@" + r.Branch
	}
	return r.Owner + "/" + r.Repo
}

type Config struct {
	GitHub GitHubConfig         `json:"github" mapstructure:"github"`
	Server ServerConfig         `json:"server" mapstructure:"server"`
	Store  StoreConfig          `json:"store" mapstructure:"store"`
	Repos  map[string]RepoAlias `json:"repos,omitempty" mapstructure:"repos"`
}

func GetConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return LocalConfigDir
	}
	return filepath.Join(homeDir, LocalConfigDir)
}

func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), LocalConfigFile)
}

// DefaultDatabasePath is the SQLite file used when no DSN is configured
func DefaultDatabasePath() string {
	return filepath.Join(GetConfigDir(), LocalDatabaseFile)
}

// LoadConfig reads the config file as written, without defaults or environment overrides.
// Commands that edit the file use this; everything else uses Resolve.
func LoadConfig() (*Config, error) {
	configPath := GetConfigPath()

	if err := os.MkdirAll(filepath.Dir(configPath), PermDirectory); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &Config{Repos: make(map[string]RepoAlias)}, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if config.Repos == nil {
		config.Repos = make(map[string]RepoAlias)
	}

	return &config, nil
}

func (c *Config) SaveConfig() error {
	configPath := GetConfigPath()

	if err := os.MkdirAll(filepath.Dir(configPath), PermDirectory); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	perm := os.FileMode(PermConfigFile)
	if c.GitHub.ClientSecret != "" || c.Server.SessionSecret != "" || c.Store.DSN != "" {
		perm = PermTokenFile
	}

	if err := os.WriteFile(configPath, data, perm); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	// WriteFile keeps the mode of an existing file
	if err := os.Chmod(configPath, perm); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	return nil
}

// settableKeys maps dotted keys to their field in Config
var settableKeys = map[string]func(c *Config) *string{
	"github.client_id":      func(c *Config) *string { return &c.GitHub.ClientID },
	"github.client_secret":  func(c *Config) *string { return &c.GitHub.ClientSecret },
	"github.api_url":        func(c *Config) *string { return &c.GitHub.APIURL },
	"server.addr":           func(c *Config) *string { return &c.Server.Addr },
	"server.base_url":       func(c *Config) *string { return &c.Server.BaseURL },
	"server.session_secret": func(c *Config) *string { return &c.Server.SessionSecret },
	"server.session_ttl":    func(c *Config) *string { return &c.Server.SessionTTL },
	"store.backend":         func(c *Config) *string { return &c.Store.Backend },
	"store.dsn":             func(c *Config) *string { return &c.Store.DSN },
}

// secretKeys are masked when displayed
var secretKeys = map[string]bool{
	"github.client_secret":  true,
	"server.session_secret": true,
	"store.dsn":             true,
}

// Keys returns every key accepted by Set, sorted
func Keys() []string {
	keys := make([]string, 0, len(settableKeys)+1)
	for k := range settableKeys {
		keys = append(keys, k)
	}
	keys = append(keys, "github.scopes")
	sort.Strings(keys)
	return keys
}

// IsSecretKey reports whether the key's value should be masked
func IsSecretKey(key string) bool {
	return secretKeys[key]
}

// Set assigns a value by dotted key. An empty value clears it.
func (c *Config) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)

	if key == "github.scopes" {
		c.GitHub.Scopes = strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ' ' })
		if len(c.GitHub.Scopes) == 0 {
			c.GitHub.Scopes = nil
		}
		return nil
	}

	field, ok := settableKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(Keys(), ", "))
	}

	if key == "server.session_ttl" && value != "" {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration for %s: %w", key, err)
		}
	}

	*field(c) = value
	return nil
}

// Get returns a value by dotted key
func (c *Config) Get(key string) (string, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "github.scopes" {
		return strings.Join(c.GitHub.Scopes, ","), nil
	}
	field, ok := settableKeys[key]
	if !ok {
		return "", fmt.Errorf("unknown config key %q", key)
	}
	return *field(c), nil
}

// AddRepo saves an alias. Names are case-insensitive.
func (c *Config) AddRepo(name string, alias RepoAlias) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return fmt.Errorf("alias name is required")
	}
	if strings.Contains(name, "/") {
		return fmt.Errorf("alias name %q must not contain '/'", name)
	}
	if alias.Owner == "" || alias.Repo == "" {
		return fmt.Errorf("alias %q needs an owner and a repository", name)
	}
	if c.Repos == nil {
		c.Repos = make(map[string]RepoAlias)
	}
	c.Repos[name] = alias
	return nil
}

// GetRepo looks up an alias
func (c *Config) GetRepo(name string) (RepoAlias, bool) {
	alias, ok := c.Repos[strings.ToLower(strings.TrimSpace(name))]
	return alias, ok
}

// RemoveRepo deletes an alias. Removing a missing alias is not an error.
func (c *Config) RemoveRepo(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if _, ok := c.Repos[name]; !ok {
		return false
	}
	delete(c.Repos, name)
	return true
}

// RepoNames returns alias names, sorted
func (c *Config) RepoNames() []string {
	names := make([]string, 0, len(c.Repos))
	for n := range c.Repos {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
