// Package auth implements GitHub OAuth sign-in for the server and the CLI.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"
)

// DefaultScopes grants profile access and read access to private repositories
var DefaultScopes = []string{"read:user", "repo"}

// ErrNotConfigured means no OAuth client ID is set
var ErrNotConfigured = errors.New("GitHub OAuth client is not configured")

// Provider drives GitHub OAuth flows
type Provider struct {
	config *oauth2.Config
}

// NewProvider creates a provider for a GitHub OAuth app. Empty scopes use DefaultScopes.
func NewProvider(clientID, clientSecret, redirectURL string, scopes []string) (*Provider, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, ErrNotConfigured
	}
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       scopes,
			Endpoint:     githuboauth.Endpoint,
		},
	}, nil
}

// WithEndpoint overrides the OAuth endpoint, for GitHub Enterprise
func (p *Provider) WithEndpoint(ep oauth2.Endpoint) *Provider {
	cfg := *p.config
	cfg.Endpoint = ep
	return &Provider{config: &cfg}
}

// Scopes returns the requested scopes
func (p *Provider) Scopes() []string {
	return append([]string(nil), p.config.Scopes...)
}

// AuthURL returns the authorization URL for the web flow with a PKCE challenge
func (p *Provider) AuthURL(state, verifier string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.S256ChallengeOption(verifier))
}

// Exchange trades an authorization code for a token
func (p *Provider) Exchange(ctx context.Context, code, verifier string) (*oauth2.Token, error) {
	if code == "" {
		return nil, errors.New("missing authorization code")
	}
	tok, err := p.config.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return tok, nil
}

// StartDevice begins the device authorization flow
func (p *Provider) StartDevice(ctx context.Context) (*oauth2.DeviceAuthResponse, error) {
	resp, err := p.config.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start device authorization: %w", err)
	}
	return resp, nil
}

// PollDevice waits for the user to approve the device code and returns the token
func (p *Provider) PollDevice(ctx context.Context, da *oauth2.DeviceAuthResponse) (*oauth2.Token, error) {
	tok, err := p.config.DeviceAccessToken(ctx, da)
	if err != nil {
		return nil, fmt.Errorf("device authorization failed: %w", err)
	}
	return tok, nil
}

// NewState returns a random URL-safe value for the OAuth state parameter
func NewState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewVerifier returns a PKCE code verifier
func NewVerifier() string {
	return oauth2.GenerateVerifier()
}
