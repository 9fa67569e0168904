package github

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stackscan/pkg/analyzer"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	base, err := ParseBaseURL(srv.URL)
	require.NoError(t, err)
	return NewClient("test-token", Config{BaseURL: base})
}

func TestParseBaseURL(t *testing.T) {
	u, err := ParseBaseURL("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, u.String())

	u, err = ParseBaseURL("https://ghe.example.com/api/v3")
	require.NoError(t, err)
	assert.Equal(t, "https://ghe.example.com/api/v3/", u.String())

	_, err = ParseBaseURL("ftp://example.com")
	assert.Error(t, err)
}

func TestTree_BlobsOnly(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/web/git/trees/main", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("recursive"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"sha":"abc","truncated":false,"tree":[
			{"path":"package.json","type":"blob"},
			{"path":"src","type":"tree"},
			{"path":"src/app/page.tsx","type":"blob"},
			{"path":"vendor/lib","type":"commit"}
		]}`)
	})

	files, err := newTestClient(t, mux).Tree(context.Background(), "acme", "web", "main")
	require.NoError(t, err)
	assert.Equal(t, []string{"package.json", "src/app/page.tsx"}, files)
}

func TestTree_NotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/web/git/trees/main", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})

	_, err := newTestClient(t, mux).Tree(context.Background(), "acme", "web", "main")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrBadCredentials))
}

func TestUnauthorizedMapsToBadCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"Bad credentials"}`)
	})

	_, err := newTestClient(t, mux).CurrentUser(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadCredentials)

	var ua interface{ Unauthorized() bool }
	require.ErrorAs(t, err, &ua)
	assert.True(t, ua.Unauthorized())
}

func TestFileContent(t *testing.T) {
	body := `{"dependencies":{"next":"14.0.0"}}`
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/web/contents/package.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "dev", r.URL.Query().Get("ref"))
		fmt.Fprintf(w, `{"type":"file","name":"package.json","path":"package.json","encoding":"base64","content":%q}`,
			base64.StdEncoding.EncodeToString([]byte(body)))
	})

	data, err := newTestClient(t, mux).FileContent(context.Background(), "acme", "web", "dev", "package.json")
	require.NoError(t, err)
	assert.Equal(t, body, string(data))
}

func TestDefaultBranchAndCurrentUser(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/web", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":1,"name":"web","default_branch":"trunk"}`)
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":42,"login":"octocat","name":"The Octocat","email":"octo@example.com","avatar_url":"https://avatars.example.com/42"}`)
	})

	c := newTestClient(t, mux)

	branch, err := c.DefaultBranch(context.Background(), "acme", "web")
	require.NoError(t, err)
	assert.Equal(t, "trunk", branch)

	u, err := c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &User{ID: 42, Login: "octocat", Name: "The Octocat", Email: "octo@example.com", AvatarURL: "https://avatars.example.com/42"}, u)
}

func TestListRepositories_Paginates(t *testing.T) {
	var srvURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/user/repos", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "updated", r.URL.Query().Get("sort"))
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page == 0 {
			page = 1
		}
		if page == 1 {
			w.Header().Set("Link", fmt.Sprintf(`<%s/user/repos?page=2>; rel="next"`, srvURL))
			fmt.Fprint(w, `[{"id":1,"name":"a","full_name":"acme/a","owner":{"login":"acme"},"default_branch":"main"}]`)
			return
		}
		fmt.Fprint(w, `[{"id":2,"name":"b","full_name":"acme/b","owner":{"login":"acme"},"private":true}]`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	srvURL = srv.URL
	base, err := ParseBaseURL(srv.URL)
	require.NoError(t, err)
	c := NewClient("test-token", Config{BaseURL: base})

	repos, err := c.ListRepositories(context.Background(), ListOptions{})
	require.NoError(t, err)
	require.Len(t, repos, 2)
	assert.Equal(t, "acme/a", repos[0].FullName)
	assert.Equal(t, "acme", repos[0].Owner)
	assert.True(t, repos[1].Private)

	limited, err := c.ListRepositories(context.Background(), ListOptions{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestFactoryImplementsSource(t *testing.T) {
	var _ analyzer.Source = (*Client)(nil)

	src := Config{}.Factory()("token")
	_, ok := src.(*Client)
	assert.True(t, ok)
}
