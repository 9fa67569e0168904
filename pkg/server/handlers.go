package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"stackscan/pkg/analyzer"
	"stackscan/pkg/github"
)

const maxBodyBytes = 64 << 10

type errorBody struct {
	Error string `json:"error"`
}

type successBody struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	token := s.credential(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req analyzer.Request
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Owner and repo are required")
		return
	}

	report, err := s.opts.Analyzer.Analyze(r.Context(), token, req)
	switch {
	case errors.Is(err, analyzer.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	case errors.Is(err, analyzer.ErrBadRequest):
		writeError(w, http.StatusBadRequest, "Owner and repo are required")
		return
	case err != nil:
		s.logger.Printf("analyze %s/%s: %v", req.Owner, req.Repo, err)
		writeError(w, http.StatusInternalServerError, "Failed to analyze repository")
		return
	}

	writeJSON(w, http.StatusOK, successBody{Success: true, Data: report})
}

func (s *Server) handleRepositories(w http.ResponseWriter, r *http.Request) {
	token := s.credential(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	opts := github.ListOptions{Sort: r.URL.Query().Get("sort")}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		opts.Limit = n
	}

	repos, err := s.opts.GitHub(token).ListRepositories(r.Context(), opts)
	if err != nil {
		if errors.Is(err, github.ErrBadCredentials) {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		s.logger.Printf("list repositories: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch repositories")
		return
	}
	if repos == nil {
		repos = []github.Repository{}
	}

	writeJSON(w, http.StatusOK, repos)
}

// credential returns the GitHub token for the request: a bearer token as-is,
// otherwise the token stored for the session user
func (s *Server) credential(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, tok, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(tok)
		}
		return ""
	}

	user, err := s.sessionUser(r)
	if err != nil || user == nil {
		return ""
	}
	return user.AccessToken
}
