package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"stackscan/pkg/analyzer"
	"stackscan/pkg/config"
	"stackscan/pkg/github"
	"stackscan/pkg/util"
)

// exitWithError prints a styled message to stderr and exits 1
func exitWithError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s\n", errorStyle.Render(fmt.Sprintf(format, args...)))
	os.Exit(1)
}

func loadConfigOrExit() *config.Config {
	cfg, err := config.LoadConfig()
	if err != nil {
		exitWithError("Error loading configuration: %v", err)
	}
	return cfg
}

func loadTokensOrExit() *config.TokenConfig {
	tokens, err := config.LoadTokens()
	if err != nil {
		exitWithError("Error loading tokens: %v", err)
	}
	return tokens
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		exitWithError("Error encoding output: %v", err)
	}
}

// githubConfig builds client settings from the effective configuration
func githubConfig() (github.Config, error) {
	raw := config.DefaultGitHubAPIURL
	if settings != nil && settings.GitHub.APIURL != "" {
		raw = settings.GitHub.APIURL
	}
	base, err := github.ParseBaseURL(raw)
	if err != nil {
		return github.Config{}, err
	}
	return github.Config{BaseURL: base}, nil
}

// requireToken resolves the GitHub token or exits with a hint
func requireToken() string {
	token, source, err := config.ResolveGitHubToken(tokenFlag)
	if err != nil {
		exitWithError("Error reading token store: %v", err)
	}
	if token == "" {
		exitWithError("No GitHub token found. Run 'stackscan auth login', set %s, or pass --token.", config.EnvGitHubToken)
	}
	util.Debug("using GitHub token from %s", source)
	return token
}

// resolveRepoTarget turns a command argument into an analysis request. The
// argument may be a saved alias, owner/repo[@branch] or a GitHub URL; an empty
// argument uses the git origin of the current directory. branch overrides any
// branch found in the argument.
func resolveRepoTarget(arg, branch string, cfg *config.Config, originDir string) (analyzer.Request, error) {
	var req analyzer.Request

	switch {
	case arg == "":
		if !util.IsGitRepository(originDir) {
			return req, errors.New("no repository given and the current directory is not a git repository")
		}
		owner, repo, err := util.GetGitHubRepo(originDir)
		if err != nil {
			return req, fmt.Errorf("could not determine GitHub repository from git origin: %w", err)
		}
		req.Owner, req.Repo = owner, repo

	default:
		if cfg != nil {
			if alias, ok := cfg.GetRepo(arg); ok {
				req = analyzer.Request{Owner: alias.Owner, Repo: alias.Repo, Branch: alias.Branch}
				break
			}
		}
		ref, err := util.ParseRepoRef(arg)
		if err != nil {
			return req, fmt.Errorf("%q is not a saved repository, owner/repo or GitHub URL", arg)
		}
		req = analyzer.Request{Owner: ref.Owner, Repo: ref.Repo, Branch: ref.Branch}
	}

	if b := strings.TrimSpace(branch); b != "" {
		req.Branch = b
	}
	return req, nil
}
