package server

import (
	"errors"
	"net/http"
	"time"

	"stackscan/pkg/auth"
	"stackscan/pkg/store"
)

const (
	sessionCookie  = "stackscan_session"
	stateCookie    = "stackscan_oauth_state"
	verifierCookie = "stackscan_oauth_verifier"

	oauthCookieTTL = 10 * time.Minute
)

type sessionResponse struct {
	User sessionUserBody `json:"user"`
}

type sessionUserBody struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Image string `json:"image,omitempty"`
}

// sessionUser resolves the session cookie to a stored user; nil when absent or invalid
func (s *Server) sessionUser(r *http.Request) (*store.User, error) {
	if s.opts.Sessions == nil || s.opts.Users == nil {
		return nil, nil
	}
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return nil, nil
	}

	claims, err := s.opts.Sessions.Parse(c.Value)
	if err != nil {
		return nil, err
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, err
	}
	return s.opts.Users.UserByID(r.Context(), id)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	user, err := s.sessionUser(r)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.logger.Printf("session lookup: %v", err)
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{User: sessionUserBody{
		ID:    user.ID,
		Login: user.Login,
		Name:  user.Name,
		Email: user.Email,
		Image: user.ImageURL,
	}})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.opts.OAuth == nil {
		writeError(w, http.StatusServiceUnavailable, "GitHub sign-in is not configured")
		return
	}

	state, err := auth.NewState()
	if err != nil {
		s.logger.Printf("oauth state: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	verifier := auth.NewVerifier()

	s.setCookie(w, stateCookie, state, oauthCookieTTL)
	s.setCookie(w, verifierCookie, verifier, oauthCookieTTL)

	http.Redirect(w, r, s.opts.OAuth.AuthURL(state, verifier), http.StatusFound)
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	if s.opts.OAuth == nil {
		writeError(w, http.StatusServiceUnavailable, "GitHub sign-in is not configured")
		return
	}

	q := r.URL.Query()
	if q.Get("error") != "" {
		writeError(w, http.StatusForbidden, "GitHub sign-in was denied")
		return
	}

	stateC, err := r.Cookie(stateCookie)
	if err != nil || stateC.Value == "" || stateC.Value != q.Get("state") {
		writeError(w, http.StatusBadRequest, "Invalid OAuth state")
		return
	}
	verifierC, err := r.Cookie(verifierCookie)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid OAuth state")
		return
	}
	s.clearCookie(w, stateCookie)
	s.clearCookie(w, verifierCookie)

	tok, err := s.opts.OAuth.Exchange(r.Context(), q.Get("code"), verifierC.Value)
	if err != nil {
		s.logger.Printf("oauth exchange: %v", err)
		writeError(w, http.StatusBadGateway, "Failed to sign in with GitHub")
		return
	}

	profile, err := s.opts.GitHub(tok.AccessToken).CurrentUser(r.Context())
	if err != nil {
		s.logger.Printf("oauth profile: %v", err)
		writeError(w, http.StatusBadGateway, "Failed to sign in with GitHub")
		return
	}
	if profile.Login == "" {
		writeError(w, http.StatusForbidden, "GitHub account has no login")
		return
	}

	user, err := s.opts.Users.UpsertUser(r.Context(), store.User{
		GitHubID:    profile.ID,
		Login:       profile.Login,
		Name:        profile.Name,
		Email:       profile.Email,
		ImageURL:    profile.AvatarURL,
		AccessToken: tok.AccessToken,
	})
	if err != nil {
		s.logger.Printf("save user %s: %v", profile.Login, err)
		writeError(w, http.StatusInternalServerError, "Failed to sign in with GitHub")
		return
	}

	sess, err := s.opts.Sessions.Issue(*user)
	if err != nil {
		s.logger.Printf("issue session: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to sign in with GitHub")
		return
	}

	s.setCookie(w, sessionCookie, sess, s.opts.Sessions.TTL())
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearCookie(w, sessionCookie)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) setCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
