package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseGitHubRepo(t *testing.T) {
	tests := []struct {
		name         string
		remoteURL    string
		expectedOrg  string
		expectedRepo string
		expectError  bool
	}{
		{
			name:         "SSH format with .git",
			remoteURL:    "git@github.com:vercel/next.js.git",
			expectedOrg:  "vercel",
			expectedRepo: "next.js",
		},
		{
			name:         "SSH format without .git",
			remoteURL:    "git@github.com:pallets/flask",
			expectedOrg:  "pallets",
			expectedRepo: "flask",
		},
		{
			name:         "HTTPS format with .git",
			remoteURL:    "https://github.com/pallets/flask.git",
			expectedOrg:  "pallets",
			expectedRepo: "flask",
		},
		{
			name:         "HTTPS format without .git",
			remoteURL:    "https://github.com/pallets/flask",
			expectedOrg:  "pallets",
			expectedRepo: "flask",
		},
		{
			name:        "Invalid URL",
			remoteURL:   "https://gitlab.com/user/repo.git",
			expectError: true,
		},
		{
			name:        "Empty URL",
			remoteURL:   "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			org, repo, err := ParseGitHubRepo(tt.remoteURL)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for %q, got nil", tt.remoteURL)
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if org != tt.expectedOrg {
				t.Errorf("Expected org %q, got %q", tt.expectedOrg, org)
			}
			if repo != tt.expectedRepo {
				t.Errorf("Expected repo %q, got %q", tt.expectedRepo, repo)
			}
		})
	}
}

func TestParseRepoRef(t *testing.T) {
	tests := []struct {
		input   string
		want    RepoRef
		wantErr bool
	}{
		{input: "pallets/flask", want: RepoRef{Owner: "pallets", Repo: "flask"}},
		{input: "pallets/flask@2.3.x", want: RepoRef{Owner: "pallets", Repo: "flask", Branch: "2.3.x"}},
		{input: "https://github.com/vercel/next.js/tree/canary", want: RepoRef{Owner: "vercel", Repo: "next.js", Branch: "canary"}},
		{input: "https://github.com/vercel/next.js/", want: RepoRef{Owner: "vercel", Repo: "next.js"}},
		{input: "flask", wantErr: true},
		{input: "a/b/c", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRepoRef(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %+v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseRepoRef(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRepoRefString(t *testing.T) {
	if got := (RepoRef{Owner: "o", Repo: "r"}).String(); got != "o/r" {
		t.Errorf("String() = %q", got)
	}
	if got := (RepoRef{Owner: "o", Repo: "r", Branch: "dev"}).String(); got != "o/r@dev" {
		t.Errorf("String() = %q", got)
	}
}

func TestIsGitRepository(t *testing.T) {
	dir := t.TempDir()
	if IsGitRepository(dir) {
		t.Fatal("empty dir should not be a git repository")
	}

	if err := os.Mkdir(filepath.Join(dir, ".git"), 0755); err != nil {
		t.Fatal(err)
	}
	if !IsGitRepository(dir) {
		t.Fatal("expected git repository")
	}

	if _, err := GetGitRemoteURL(t.TempDir()); err == nil {
		t.Fatal("expected error for non-repository")
	}
}
