// Package github reads repositories through the GitHub REST API.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v56/github"
	"golang.org/x/oauth2"

	"stackscan/pkg/analyzer"
	"stackscan/pkg/util"
)

// DefaultAPIURL is the public GitHub REST endpoint
const DefaultAPIURL = "https://api.github.com/"

// ErrBadCredentials is returned when GitHub rejects the access token
var ErrBadCredentials = badCredentials{}

type badCredentials struct{}

func (badCredentials) Error() string      { return "github: bad credentials" }
func (badCredentials) Unauthorized() bool { return true }

// Config controls how clients reach GitHub
type Config struct {
	// BaseURL overrides the API root, e.g. for GitHub Enterprise. Nil means api.github.com.
	BaseURL    *url.URL
	HTTPClient *http.Client
}

// ParseBaseURL validates an API root URL and normalizes its trailing slash
func ParseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = DefaultAPIURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub API URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid GitHub API URL %q: scheme must be http or https", raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u, nil
}

// Factory returns a SourceFactory producing clients with this config
func (cfg Config) Factory() analyzer.SourceFactory {
	return func(token string) analyzer.Source {
		return NewClient(token, cfg)
	}
}

// Client wraps go-github for the operations stackscan needs
type Client struct {
	client *github.Client
}

// NewClient creates a client authenticated with token. An empty token makes anonymous requests.
func NewClient(token string, cfg Config) *Client {
	base := cfg.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: 30 * time.Second}
	}

	hc := base
	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		hc = oauth2.NewClient(ctx, ts)
	}

	client := github.NewClient(hc)
	if cfg.BaseURL != nil {
		u := *cfg.BaseURL
		client.BaseURL = &u
	}

	return &Client{client: client}
}

// User is the authenticated GitHub account
type User struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl"`
}

// CurrentUser returns the account the token belongs to
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	u, _, err := c.client.Users.Get(ctx, "")
	if err != nil {
		return nil, wrapError("get current user", err)
	}
	return &User{
		ID:        u.GetID(),
		Login:     u.GetLogin(),
		Name:      u.GetName(),
		Email:     u.GetEmail(),
		AvatarURL: u.GetAvatarURL(),
	}, nil
}

// DefaultBranch returns the repository's default branch
func (c *Client) DefaultBranch(ctx context.Context, owner, repo string) (string, error) {
	r, _, err := c.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return "", wrapError(fmt.Sprintf("get repository %s/%s", owner, repo), err)
	}
	return r.GetDefaultBranch(), nil
}

// Tree returns every blob path in the repository at ref, recursively
func (c *Client) Tree(ctx context.Context, owner, repo, ref string) ([]string, error) {
	tree, _, err := c.client.Git.GetTree(ctx, owner, repo, ref, true)
	if err != nil {
		return nil, wrapError(fmt.Sprintf("get tree %s/%s@%s", owner, repo, ref), err)
	}

	if tree.GetTruncated() {
		util.Warning("tree for %s/%s@%s was truncated by GitHub; results may be incomplete", owner, repo, ref)
	}

	files := make([]string, 0, len(tree.Entries))
	for _, entry := range tree.Entries {
		if entry.GetType() == "blob" {
			files = append(files, entry.GetPath())
		}
	}
	return files, nil
}

// FileContent returns the decoded content of one file at ref
func (c *Client) FileContent(ctx context.Context, owner, repo, ref, path string) ([]byte, error) {
	fc, _, _, err := c.client.Repositories.GetContents(ctx, owner, repo, path, &github.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		return nil, wrapError(fmt.Sprintf("get %s from %s/%s@%s", path, owner, repo, ref), err)
	}
	if fc == nil {
		return nil, fmt.Errorf("%s in %s/%s is a directory", path, owner, repo)
	}

	content, err := fc.GetContent()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return []byte(content), nil
}

func wrapError(op string, err error) error {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%s: %w", op, ErrBadCredentials)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
