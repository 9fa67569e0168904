package util

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	sshRepoRegex   = regexp.MustCompile(`^git@github\.com:([^/]+)/(.+?)(\.git)?$`)
	httpsRepoRegex = regexp.MustCompile(`^https?://(?:www\.)?github\.com/([^/]+)/([^/]+?)(?:\.git)?(?:/tree/(.+?))?/?$`)
	slugRegex      = regexp.MustCompile(`^([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+)$`)
)

// RepoRef identifies a GitHub repository and an optional branch
type RepoRef struct {
	Owner  string
	Repo   string
	Branch string
}

func (r RepoRef) String() string {
	if r.Branch != "" {
		return r.Owner + "/" + r.Repo + "@" + r.Branch
	}
	return r.Owner + "/" + r.Repo
}

// IsGitRepository checks if the given path is a Git repository
func IsGitRepository(projectPath string) bool {
	gitDir := filepath.Join(projectPath, ".git")
	info, err := os.Stat(gitDir)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// GetGitRemoteURL returns the remote origin URL for the Git repository
func GetGitRemoteURL(projectPath string) (string, error) {
	if !IsGitRepository(projectPath) {
		return "", fmt.Errorf("not a git repository: %s", projectPath)
	}

	cmd := exec.Command("git", "-C", projectPath, "config", "--get", "remote.origin.url")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to get git remote URL: %w", err)
	}

	remoteURL := strings.TrimSpace(string(output))
	if remoteURL == "" {
		return "", fmt.Errorf("no remote origin URL configured")
	}

	return remoteURL, nil
}

// ParseGitHubRepo extracts the owner and repository name from a GitHub remote URL.
// Supports SSH (git@github.com:owner/repo.git) and HTTPS (https://github.com/owner/repo) forms.
func ParseGitHubRepo(remoteURL string) (owner, repo string, err error) {
	ref, err := ParseRepoRef(remoteURL)
	if err != nil {
		return "", "", err
	}
	return ref.Owner, ref.Repo, nil
}

// ParseRepoRef parses "owner/repo", "owner/repo@branch", an SSH remote or a
// GitHub web URL (including /tree/<branch> links) into a RepoRef
func ParseRepoRef(s string) (RepoRef, error) {
	s = strings.TrimSpace(s)

	if m := sshRepoRegex.FindStringSubmatch(s); len(m) >= 3 {
		return RepoRef{Owner: m[1], Repo: strings.TrimSuffix(m[2], ".git")}, nil
	}

	if m := httpsRepoRegex.FindStringSubmatch(s); len(m) >= 3 {
		return RepoRef{Owner: m[1], Repo: m[2], Branch: m[3]}, nil
	}

	slug, branch, _ := strings.Cut(s, "@")
	if m := slugRegex.FindStringSubmatch(slug); len(m) == 3 {
		return RepoRef{Owner: m[1], Repo: strings.TrimSuffix(m[2], ".git"), Branch: branch}, nil
	}

	return RepoRef{}, fmt.Errorf("not a valid GitHub repository reference: %s", s)
}

// GetGitHubRepo returns the owner and repository name for the project's origin remote
func GetGitHubRepo(projectPath string) (owner, repo string, err error) {
	remoteURL, err := GetGitRemoteURL(projectPath)
	if err != nil {
		return "", "", err
	}

	return ParseGitHubRepo(remoteURL)
}
