package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TokenConfig stores API tokens by provider
type TokenConfig struct {
	Tokens map[string]string `json:"tokens,omitempty"` // provider_name -> token
}

func GetTokensPath() string {
	return filepath.Join(GetConfigDir(), LocalTokensFile)
}

func LoadTokens() (*TokenConfig, error) {
	tokensPath := GetTokensPath()

	if err := os.MkdirAll(filepath.Dir(tokensPath), PermDirectory); err != nil {
		return nil, fmt.Errorf("failed to create tokens directory: %w", err)
	}

	if _, err := os.Stat(tokensPath); os.IsNotExist(err) {
		return &TokenConfig{
			Tokens: make(map[string]string),
		}, nil
	}

	data, err := os.ReadFile(tokensPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read tokens file: %w", err)
	}

	var tokens TokenConfig
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("failed to parse tokens file: %w", err)
	}

	if tokens.Tokens == nil {
		tokens.Tokens = make(map[string]string)
	}

	return &tokens, nil
}

func (t *TokenConfig) SaveTokens() error {
	tokensPath := GetTokensPath()

	if err := os.MkdirAll(filepath.Dir(tokensPath), PermDirectory); err != nil {
		return fmt.Errorf("failed to create tokens directory: %w", err)
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tokens: %w", err)
	}

	if err := os.WriteFile(tokensPath, data, PermTokenFile); err != nil {
		return fmt.Errorf("failed to write tokens file: %w", err)
	}

	return nil
}

// SetToken stores a token after stripping pasted quotes, brackets and whitespace
func (t *TokenConfig) SetToken(provider, token string) {
	if t.Tokens == nil {
		t.Tokens = make(map[string]string)
	}

	t.Tokens[provider] = sanitizeToken(token)
}

func sanitizeToken(token string) string {
	for {
		oldToken := token

		token = strings.TrimSpace(token)
		token = strings.TrimPrefix(token, "[")
		token = strings.TrimSuffix(token, "]")
		token = strings.TrimSpace(token)
		token = strings.Trim(token, "\"'")

		if token == oldToken {
			return token
		}
	}
}

// GetToken retrieves the token for a provider
func (t *TokenConfig) GetToken(provider string) string {
	if t.Tokens == nil {
		return ""
	}
	return t.Tokens[provider]
}

// HasToken checks if a token exists for the given provider
func (t *TokenConfig) HasToken(provider string) bool {
	return t.GetToken(provider) != ""
}

// DeleteToken removes a provider's token. Returns false when none was stored.
func (t *TokenConfig) DeleteToken(provider string) bool {
	if !t.HasToken(provider) {
		return false
	}
	delete(t.Tokens, provider)
	return true
}

// TokenSource names where a resolved GitHub token came from
type TokenSource string

const (
	TokenFromFlag  TokenSource = "flag"
	TokenFromEnv   TokenSource = "environment"
	TokenFromStore TokenSource = "token store"
	TokenNone      TokenSource = ""
)

// ResolveGitHubToken picks the GitHub token: flag, then GITHUB_TOKEN, then the token store
func ResolveGitHubToken(flagToken string) (string, TokenSource, error) {
	if tok := sanitizeToken(flagToken); tok != "" {
		return tok, TokenFromFlag, nil
	}
	if tok := sanitizeToken(os.Getenv(EnvGitHubToken)); tok != "" {
		return tok, TokenFromEnv, nil
	}

	tokens, err := LoadTokens()
	if err != nil {
		return "", TokenNone, err
	}
	if tok := tokens.GetToken(TokenProviderGitHub); tok != "" {
		return tok, TokenFromStore, nil
	}
	return "", TokenNone, nil
}

// MaskToken shows only the last four characters of a token
func MaskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}
