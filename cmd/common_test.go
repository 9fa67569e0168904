package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"stackscan/pkg/config"
	"stackscan/pkg/detector"
	"stackscan/pkg/github"
)

func TestResolveRepoTarget(t *testing.T) {
	cfg := &config.Config{Repos: map[string]config.RepoAlias{
		"web": {Owner: "acme", Repo: "storefront", Branch: "develop"},
	}}

	tests := []struct {
		name   string
		arg    string
		branch string
		owner  string
		repo   string
		want   string
	}{
		{"slug", "vercel/next.js", "", "vercel", "next.js", ""},
		{"slug with branch", "pallets/flask@stable", "", "pallets", "flask", "stable"},
		{"url", "https://github.com/django/django", "", "django", "django", ""},
		{"tree url", "https://github.com/acme/api/tree/release", "", "acme", "api", "release"},
		{"ssh remote", "git@github.com:acme/api.git", "", "acme", "api", ""},
		{"alias", "web", "", "acme", "storefront", "develop"},
		{"alias is case-insensitive", "WEB", "", "acme", "storefront", "develop"},
		{"flag overrides branch", "web", "main", "acme", "storefront", "main"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := resolveRepoTarget(tt.arg, tt.branch, cfg, t.TempDir())
			if err != nil {
				t.Fatalf("resolveRepoTarget(%q) error: %v", tt.arg, err)
			}
			if req.Owner != tt.owner || req.Repo != tt.repo || req.Branch != tt.want {
				t.Errorf("got %s/%s@%s, want %s/%s@%s", req.Owner, req.Repo, req.Branch, tt.owner, tt.repo, tt.want)
			}
		})
	}
}

func TestResolveRepoTarget_Errors(t *testing.T) {
	if _, err := resolveRepoTarget("not a repo", "", nil, t.TempDir()); err == nil {
		t.Error("expected error for invalid reference")
	}

	_, err := resolveRepoTarget("", "", nil, t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "not a git repository") {
		t.Errorf("expected git repository error, got %v", err)
	}
}

func TestIsTerminal(t *testing.T) {
	orig := stdoutIsTerminal
	defer func() { stdoutIsTerminal = orig }()

	tests := []struct {
		name   string
		term   string
		ci     string
		stdout bool
		want   bool
	}{
		{"tty with TERM", "xterm-256color", "", true, true},
		{"redirected stdout", "xterm-256color", "", false, false},
		{"dumb terminal", "dumb", "", true, false},
		{"no TERM", "", "", true, false},
		{"CI", "xterm", "true", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TERM", tt.term)
			t.Setenv("CI", tt.ci)
			stdoutIsTerminal = func() bool { return tt.stdout }

			if got := isTerminal(); got != tt.want {
				t.Errorf("isTerminal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterRules(t *testing.T) {
	rules := detector.DefaultCatalog().Rules()

	all, err := filterRules(rules, "")
	if err != nil || len(all) != len(rules) {
		t.Fatalf("empty kind should keep all rules: %d, %v", len(all), err)
	}

	langs, err := filterRules(rules, "Language")
	if err != nil {
		t.Fatal(err)
	}
	if len(langs) == 0 {
		t.Fatal("expected language rules")
	}
	for _, r := range langs {
		if r.Kind != detector.KindLanguage {
			t.Errorf("rule %s has kind %s", r.Name, r.Kind)
		}
	}

	if _, err := filterRules(rules, "database"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestWriteRulesTable(t *testing.T) {
	var buf bytes.Buffer
	rules := []detector.Rule{{
		Name:         "Flask",
		Kind:         detector.KindFramework,
		ManifestKeys: []string{"flask"},
	}}
	if err := writeRulesTable(&buf, rules); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Flask", "framework", "flask"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestWriteReposTable(t *testing.T) {
	var buf bytes.Buffer
	repos := []github.Repository{
		{FullName: "acme/web", Language: "TypeScript", Stars: 12, UpdatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{FullName: "acme/secret", Private: true, Fork: true},
	}
	if err := writeReposTable(&buf, repos); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"acme/web", "TypeScript", "12", "2026-03-01", "private (fork)", "public"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestDisplayValueMasksSecrets(t *testing.T) {
	cfg := &config.Config{
		GitHub: config.GitHubConfig{ClientID: "Iv1.abc", ClientSecret: "supersecretvalue1234"},
	}

	if got := displayValue(cfg, "github.client_id"); got != "Iv1.abc" {
		t.Errorf("client_id = %q", got)
	}
	got := displayValue(cfg, "github.client_secret")
	if strings.Contains(got, "supersecret") || !strings.HasSuffix(got, "1234") {
		t.Errorf("client_secret not masked: %q", got)
	}
	if got := displayValue(cfg, "no.such.key"); got != "" {
		t.Errorf("unknown key should be empty, got %q", got)
	}
}

func TestRepoDescription(t *testing.T) {
	got := repoDescription(github.Repository{Language: "Go", Private: true, Description: "CLI"})
	if got != "Go · private · CLI" {
		t.Errorf("repoDescription = %q", got)
	}
	if got := repoDescription(github.Repository{}); got != "" {
		t.Errorf("empty repository should have no description, got %q", got)
	}
}

func TestServerOptions(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	ctx := context.Background()

	t.Run("bearer only", func(t *testing.T) {
		opts, cleanup, err := serverOptions(ctx, &config.Config{})
		if err != nil {
			t.Fatal(err)
		}
		defer cleanup()
		if opts.Analyzer == nil || opts.GitHub == nil {
			t.Fatal("analyzer and GitHub factory are required")
		}
		if opts.Sessions != nil || opts.Users != nil || opts.OAuth != nil {
			t.Error("sign-in should be disabled without a session secret")
		}
	})

	t.Run("sign-in needs a secret", func(t *testing.T) {
		_, _, err := serverOptions(ctx, &config.Config{GitHub: config.GitHubConfig{ClientID: "Iv1.abc"}})
		if err == nil {
			t.Fatal("expected error when client id is set without a session secret")
		}
	})

	t.Run("sessions and oauth", func(t *testing.T) {
		cfg := &config.Config{
			GitHub: config.GitHubConfig{ClientID: "Iv1.abc", ClientSecret: "shh"},
			Server: config.ServerConfig{SessionSecret: "0123456789abcdef0123456789abcdef", BaseURL: "https://scan.example.com"},
			Store:  config.StoreConfig{Backend: "sqlite", DSN: filepath.Join(t.TempDir(), "users.db")},
		}
		opts, cleanup, err := serverOptions(ctx, cfg)
		if err != nil {
			t.Fatal(err)
		}
		defer cleanup()

		if opts.Sessions == nil || opts.Users == nil || opts.OAuth == nil {
			t.Fatal("expected sessions, user store and OAuth to be wired")
		}
		if !opts.SecureCookies {
			t.Error("https base URL should enable secure cookies")
		}
	})

	t.Run("weak secret", func(t *testing.T) {
		_, _, err := serverOptions(ctx, &config.Config{Server: config.ServerConfig{SessionSecret: "short"}})
		if err == nil {
			t.Fatal("expected weak secret to be rejected")
		}
	})
}
