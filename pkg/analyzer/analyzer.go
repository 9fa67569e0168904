// Package analyzer turns a repository, remote or local, into a technology report.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"stackscan/pkg/detector"
	"stackscan/pkg/manifest"
	"stackscan/pkg/util"
)

var (
	// ErrUnauthorized means no usable credential was supplied or GitHub rejected it
	ErrUnauthorized = errors.New("unauthorized")
	// ErrBadRequest means required request fields are missing
	ErrBadRequest = errors.New("owner and repo are required")
	// ErrUpstreamFetch means the repository tree could not be listed on any branch
	ErrUpstreamFetch = errors.New("failed to fetch repository")
)

const (
	defaultBranch  = "main"
	fallbackBranch = "master"
)

// Source lists and reads files of a hosted repository
type Source interface {
	DefaultBranch(ctx context.Context, owner, repo string) (string, error)
	Tree(ctx context.Context, owner, repo, ref string) ([]string, error)
	FileContent(ctx context.Context, owner, repo, ref, path string) ([]byte, error)
}

// SourceFactory builds a Source bound to one access token
type SourceFactory func(token string) Source

// Request names the repository to analyze. Branch is optional.
type Request struct {
	Owner  string `json:"owner"`
	Repo   string `json:"repo"`
	Branch string `json:"branch,omitempty"`
}

// Service runs detection against remote or local repositories
type Service struct {
	sources SourceFactory
	engine  *detector.Engine
}

// NewService creates a Service. A nil engine uses the default catalog.
func NewService(sources SourceFactory, engine *detector.Engine) *Service {
	if engine == nil {
		engine = detector.NewEngine(nil)
	}
	return &Service{sources: sources, engine: engine}
}

// Engine returns the detection engine used by the service
func (s *Service) Engine() *detector.Engine {
	return s.engine
}

// Analyze fetches the repository listing and manifests and returns the report.
// Manifest failures are tolerated; only listing failures abort.
func (s *Service) Analyze(ctx context.Context, token string, req Request) (*Report, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrUnauthorized
	}
	req.Owner = strings.TrimSpace(req.Owner)
	req.Repo = strings.TrimSpace(req.Repo)
	req.Branch = strings.TrimSpace(req.Branch)
	if req.Owner == "" || req.Repo == "" {
		return nil, ErrBadRequest
	}
	if s.sources == nil {
		return nil, fmt.Errorf("%w: no repository source configured", ErrUpstreamFetch)
	}

	src := s.sources(token)

	branch := req.Branch
	if branch == "" {
		b, err := src.DefaultBranch(ctx, req.Owner, req.Repo)
		switch {
		case isUnauthorized(err):
			return nil, ErrUnauthorized
		case err != nil || b == "":
			util.Debug("default branch lookup for %s/%s failed, assuming %s: %v", req.Owner, req.Repo, defaultBranch, err)
			branch = defaultBranch
		default:
			branch = b
		}
	}

	files, branch, err := s.listTree(ctx, src, req.Owner, req.Repo, branch)
	if err != nil {
		return nil, err
	}

	m := s.fetchManifests(ctx, src, req.Owner, req.Repo, branch, files)

	report := s.buildReport(files, m)
	report.Repository = RepositoryInfo{
		Owner:      req.Owner,
		Repo:       req.Repo,
		Branch:     branch,
		TotalFiles: len(files),
	}
	return report, nil
}

// listTree lists the tree on branch, retrying once on the fallback branch
func (s *Service) listTree(ctx context.Context, src Source, owner, repo, branch string) ([]string, string, error) {
	files, err := src.Tree(ctx, owner, repo, branch)
	if err == nil {
		return files, branch, nil
	}
	if isUnauthorized(err) {
		return nil, "", ErrUnauthorized
	}
	if ctx.Err() != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrUpstreamFetch, ctx.Err())
	}

	fallback := fallbackBranch
	if branch == fallbackBranch {
		fallback = defaultBranch
	}
	util.Debug("tree for %s/%s@%s failed, trying %s: %v", owner, repo, branch, fallback, err)

	files, ferr := src.Tree(ctx, owner, repo, fallback)
	if ferr == nil {
		return files, fallback, nil
	}
	if isUnauthorized(ferr) {
		return nil, "", ErrUnauthorized
	}
	return nil, "", fmt.Errorf("%w %s/%s (branches %s, %s): %w", ErrUpstreamFetch, owner, repo, branch, fallback, errors.Join(err, ferr))
}

// manifests holds the optional files read alongside the listing
type manifests struct {
	packageJSON  *manifest.PackageJSON
	requirements []string
	setupCfg     []string
}

func (s *Service) fetchManifests(ctx context.Context, src Source, owner, repo, ref string, files []string) manifests {
	var m manifests
	present := make(map[string]bool, 3)
	for _, f := range files {
		switch f {
		case manifest.PackageJSONFile, manifest.RequirementsFile, manifest.SetupCfgFile:
			present[f] = true
		}
	}

	fetch := func(path string) []byte {
		data, err := src.FileContent(ctx, owner, repo, ref, path)
		if err != nil {
			util.Warning("could not fetch %s for %s/%s: %v", path, owner, repo, err)
			return nil
		}
		return data
	}

	var g errgroup.Group
	if present[manifest.PackageJSONFile] {
		g.Go(func() error {
			if data := fetch(manifest.PackageJSONFile); data != nil {
				pkg, err := manifest.ParsePackageJSON(data)
				if err != nil {
					util.Warning("ignoring package.json for %s/%s: %v", owner, repo, err)
					return nil
				}
				m.packageJSON = pkg
			}
			return nil
		})
	}
	if present[manifest.RequirementsFile] {
		g.Go(func() error {
			if data := fetch(manifest.RequirementsFile); data != nil {
				m.requirements = manifest.SplitRequirements(string(data))
			}
			return nil
		})
	}
	if present[manifest.SetupCfgFile] {
		g.Go(func() error {
			if data := fetch(manifest.SetupCfgFile); data != nil {
				names, err := manifest.ParseSetupCfg(data)
				if err != nil {
					util.Warning("ignoring setup.cfg for %s/%s: %v", owner, repo, err)
					return nil
				}
				m.setupCfg = names
			}
			return nil
		})
	}
	_ = g.Wait()

	return m
}

func isUnauthorized(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnauthorized) {
		return true
	}
	var ua interface{ Unauthorized() bool }
	return errors.As(err, &ua) && ua.Unauthorized()
}
