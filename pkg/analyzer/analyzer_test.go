package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type badCredentials struct{}

func (badCredentials) Error() string      { return "401 Bad credentials" }
func (badCredentials) Unauthorized() bool { return true }

type fakeSource struct {
	mu            sync.Mutex
	defaultBranch string
	defaultErr    error
	trees         map[string][]string
	treeErrs      map[string]error
	contents      map[string]string
	contentErrs   map[string]error

	treeCalls    []string
	fetchedPaths []string
}

func (f *fakeSource) DefaultBranch(ctx context.Context, owner, repo string) (string, error) {
	return f.defaultBranch, f.defaultErr
}

func (f *fakeSource) Tree(ctx context.Context, owner, repo, ref string) ([]string, error) {
	f.mu.Lock()
	f.treeCalls = append(f.treeCalls, ref)
	f.mu.Unlock()
	if err := f.treeErrs[ref]; err != nil {
		return nil, err
	}
	files, ok := f.trees[ref]
	if !ok {
		return nil, errors.New("404 Not Found")
	}
	return files, nil
}

func (f *fakeSource) FileContent(ctx context.Context, owner, repo, ref, path string) ([]byte, error) {
	f.mu.Lock()
	f.fetchedPaths = append(f.fetchedPaths, path)
	f.mu.Unlock()
	if err := f.contentErrs[path]; err != nil {
		return nil, err
	}
	data, ok := f.contents[path]
	if !ok {
		return nil, errors.New("404 Not Found")
	}
	return []byte(data), nil
}

func newTestService(src *fakeSource) *Service {
	return NewService(func(token string) Source { return src }, nil)
}

func TestAnalyze_NextJSRepository(t *testing.T) {
	src := &fakeSource{
		defaultBranch: "main",
		trees: map[string][]string{
			"main": {"package.json", "next.config.js", "src/app/page.tsx", ".github/workflows/ci.yml", "Dockerfile"},
		},
		contents: map[string]string{
			"package.json": `{"name":"web","dependencies":{"next":"14.0.0","react":"18.2.0"}}`,
		},
	}

	report, err := newTestService(src).Analyze(context.Background(), "gho_token", Request{Owner: "acme", Repo: "web"})
	require.NoError(t, err)

	assert.Equal(t, RepositoryInfo{Owner: "acme", Repo: "web", Branch: "main", TotalFiles: 5}, report.Repository)
	require.NotNil(t, report.PrimaryFramework)
	assert.Equal(t, "Next.js", report.PrimaryFramework.Name)
	assert.Equal(t, 90, report.PrimaryFramework.Confidence)
	assert.Equal(t, "14.0.0", report.PrimaryFramework.Version)

	require.NotNil(t, report.PackageJSON)
	assert.Equal(t, []string{"next", "react"}, report.PackageJSON.Dependencies)
	assert.Empty(t, report.PackageJSON.DevDependencies)

	assert.True(t, report.Structure.HasCI)
	assert.True(t, report.Structure.HasDockerfile)
	assert.Equal(t, []string{".github", "src"}, report.Structure.Directories)
	assert.Equal(t, "npm", report.Structure.PackageManager)
	assert.Equal(t, "npm install", report.Structure.InstallCommand)
	assert.Empty(t, report.Structure.PythonInstallCommand)
	assert.Nil(t, report.RequirementsTxt)
	assert.Equal(t, []string{"package.json"}, src.fetchedPaths)
}

func TestAnalyze_RequiresToken(t *testing.T) {
	src := &fakeSource{}
	_, err := newTestService(src).Analyze(context.Background(), "", Request{Owner: "acme", Repo: "web"})
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, src.treeCalls)
}

func TestAnalyze_RequiresOwnerAndRepo(t *testing.T) {
	for _, req := range []Request{{Owner: "acme"}, {Repo: "web"}, {Owner: "  ", Repo: "web"}} {
		src := &fakeSource{}
		_, err := newTestService(src).Analyze(context.Background(), "token", req)
		assert.ErrorIs(t, err, ErrBadRequest)
		assert.Empty(t, src.treeCalls)
	}
}

func TestAnalyze_FallsBackToMaster(t *testing.T) {
	src := &fakeSource{
		defaultErr: errors.New("boom"),
		trees:      map[string][]string{"master": {"requirements.txt", "app.py"}},
		contents:   map[string]string{"requirements.txt": "flask==2.3.0\n\nrequests\n"},
	}

	report, err := newTestService(src).Analyze(context.Background(), "token", Request{Owner: "acme", Repo: "api"})
	require.NoError(t, err)

	assert.Equal(t, []string{"main", "master"}, src.treeCalls)
	assert.Equal(t, "master", report.Repository.Branch)
	assert.Equal(t, []string{"flask==2.3.0", "requests"}, report.RequirementsTxt)
	assert.Equal(t, []string{"flask", "requests"}, report.PythonDependencies)
	assert.Nil(t, report.PackageJSON)
	assert.Equal(t, "pip", report.Structure.PythonPackageManager)

	require.NotNil(t, report.PrimaryFramework)
	assert.Equal(t, "Flask", report.PrimaryFramework.Name)
	require.NotEmpty(t, report.Languages)
	assert.Equal(t, "Python", report.Languages[0].Name)
	assert.Equal(t, 70, report.Languages[0].Confidence)
}

func TestAnalyze_MasterFallsBackToMain(t *testing.T) {
	src := &fakeSource{trees: map[string][]string{"main": {"pom.xml"}}}

	report, err := newTestService(src).Analyze(context.Background(), "token", Request{Owner: "acme", Repo: "svc", Branch: "master"})
	require.NoError(t, err)
	assert.Equal(t, []string{"master", "main"}, src.treeCalls)
	assert.Equal(t, "main", report.Repository.Branch)
}

func TestAnalyze_BothBranchesFail(t *testing.T) {
	src := &fakeSource{defaultBranch: "develop"}

	_, err := newTestService(src).Analyze(context.Background(), "token", Request{Owner: "acme", Repo: "gone"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamFetch)
	assert.Equal(t, []string{"develop", "master"}, src.treeCalls)
}

func TestAnalyze_RejectedCredentials(t *testing.T) {
	src := &fakeSource{
		defaultBranch: "main",
		treeErrs:      map[string]error{"main": badCredentials{}},
	}

	_, err := newTestService(src).Analyze(context.Background(), "expired", Request{Owner: "acme", Repo: "web"})
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, []string{"main"}, src.treeCalls)
}

func TestAnalyze_ToleratesManifestFailures(t *testing.T) {
	src := &fakeSource{
		defaultBranch: "main",
		trees:         map[string][]string{"main": {"package.json", "requirements.txt", "next.config.js"}},
		contents:      map[string]string{"package.json": `{broken`},
		contentErrs:   map[string]error{"requirements.txt": errors.New("500 Internal Server Error")},
	}

	report, err := newTestService(src).Analyze(context.Background(), "token", Request{Owner: "acme", Repo: "web"})
	require.NoError(t, err)

	assert.Nil(t, report.PackageJSON)
	assert.Nil(t, report.RequirementsTxt)
	require.NotNil(t, report.PrimaryFramework)
	assert.Equal(t, "Next.js", report.PrimaryFramework.Name)
	assert.Equal(t, 40, report.PrimaryFramework.Confidence)
}

func TestAnalyze_NestedManifestNotFetched(t *testing.T) {
	src := &fakeSource{
		defaultBranch: "main",
		trees:         map[string][]string{"main": {"web/package.json"}},
	}

	_, err := newTestService(src).Analyze(context.Background(), "token", Request{Owner: "acme", Repo: "mono"})
	require.NoError(t, err)
	assert.Empty(t, src.fetchedPaths)
}

func TestAnalyze_EmptyRepository(t *testing.T) {
	src := &fakeSource{defaultBranch: "main", trees: map[string][]string{"main": {}}}

	report, err := newTestService(src).Analyze(context.Background(), "token", Request{Owner: "acme", Repo: "empty"})
	require.NoError(t, err)

	assert.Empty(t, report.DetectedTechnologies)
	assert.Nil(t, report.PrimaryFramework)

	data, err := json.Marshal(report)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Nil(t, decoded["primaryFramework"])
	assert.Equal(t, []any{}, decoded["detectedTechnologies"])
}

func TestAnalyzeFS(t *testing.T) {
	fsys := fstest.MapFS{
		"setup.cfg":               {Data: []byte("[options]\ninstall_requires =\n    fastapi\n    uvicorn\n")},
		"requirements.txt":        {Data: []byte("gunicorn\n")},
		"main.py":                 {Data: []byte("app = FastAPI()")},
		"tests/test_main.py":      {Data: []byte("")},
		"node_modules/x/index.js": {Data: []byte("")},
		".venv/lib/site.py":       {Data: []byte("")},
		"poetry.lock":             {Data: []byte("")},
		"docs/README":             {Data: []byte("")},
	}

	report, err := NewService(nil, nil).AnalyzeFS(fsys, "svc")
	require.NoError(t, err)

	assert.Equal(t, "svc", report.Repository.Repo)
	assert.Equal(t, 6, report.Repository.TotalFiles)
	assert.Equal(t, []string{"fastapi", "gunicorn", "uvicorn"}, report.PythonDependencies)
	assert.True(t, report.Structure.HasTests)
	assert.Equal(t, []string{"docs", "tests"}, report.Structure.Directories)
	assert.Equal(t, 1, report.Structure.FileTypes["no-extension"])
	assert.Equal(t, 2, report.Structure.FileTypes["py"])
	assert.Equal(t, "poetry", report.Structure.PythonPackageManager)
	assert.Equal(t, "poetry install", report.Structure.PythonInstallCommand)
	assert.Empty(t, report.Structure.PackageManager)
	assert.Empty(t, report.Structure.InstallCommand)

	names := make([]string, 0, len(report.Frameworks))
	for _, f := range report.Frameworks {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"FastAPI"}, names)
}

func TestSummarizeStructure(t *testing.T) {
	st := SummarizeStructure([]string{"Makefile", "src/a.test.ts", "jenkins/Jenkinsfile", "src/b.d.ts", ".env."})

	assert.True(t, st.HasCI)
	assert.True(t, st.HasTests)
	assert.False(t, st.HasDockerfile)
	assert.Equal(t, []string{"jenkins", "src"}, st.Directories)
	assert.Equal(t, map[string]int{"no-extension": 3, "ts": 2}, st.FileTypes)
}
