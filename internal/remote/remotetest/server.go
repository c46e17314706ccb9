// Package remotetest provides a fake GitHub API for tests.
package remotetest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Status is a commit status received by the fake
type Status struct {
	Owner       string
	Repo        string
	SHA         string
	State       string `json:"state"`
	TargetURL   string `json:"target_url"`
	Description string `json:"description"`
	Context     string `json:"context"`
}

// Comment is a commit comment received by the fake
type Comment struct {
	Owner    string
	Repo     string
	SHA      string
	CommitID string `json:"commit_id"`
	Position int    `json:"position"`
	Body     string `json:"body"`
}

// Server is a fake GitHub API. Set the *Code fields to make an endpoint fail.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []string
	statuses []Status
	comments []Comment

	StatusCode  int
	CommentCode int
	CommitCode  int

	// StatusFailAfter lets that many statuses succeed before StatusCode applies
	StatusFailAfter int

	// Parent makes the repository a fork of "owner/name"
	ParentOwner string
	ParentName  string

	// PullRequest is returned for any head when non-zero
	PullRequest int

	pullHead string
}

// NewServer starts a fake API that is closed when the test ends
func NewServer(t testing.TB) *Server {
	s := &Server{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/{owner}/{repo}/commits/{sha}", s.getCommit)
	mux.HandleFunc("GET /repos/{owner}/{repo}", s.getRepo)
	mux.HandleFunc("GET /repos/{owner}/{repo}/pulls", s.listPulls)
	mux.HandleFunc("POST /repos/{owner}/{repo}/statuses/{sha}", s.createStatus)
	mux.HandleFunc("POST /repos/{owner}/{repo}/commits/{sha}/comments", s.createComment)

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		s.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

// Requests returns "METHOD path" for every request received
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Statuses returns the statuses posted so far
func (s *Server) Statuses() []Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Status(nil), s.statuses...)
}

// Comments returns the comments posted so far
func (s *Server) Comments() []Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Comment(nil), s.comments...)
}

// PullHead returns the head filter of the last pull request listing
func (s *Server) PullHead() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pullHead
}

func (s *Server) getCommit(w http.ResponseWriter, r *http.Request) {
	if s.CommitCode != 0 {
		writeError(w, s.CommitCode)
		return
	}
	sha := r.PathValue("sha")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sha":      sha,
		"html_url": fmt.Sprintf("https://github.com/%s/%s/commit/%s", r.PathValue("owner"), r.PathValue("repo"), sha),
	})
}

func (s *Server) getRepo(w http.ResponseWriter, r *http.Request) {
	owner, name := r.PathValue("owner"), r.PathValue("repo")
	repo := map[string]interface{}{
		"name":      name,
		"full_name": owner + "/" + name,
		"owner":     map[string]interface{}{"login": owner},
	}
	if s.ParentOwner != "" {
		repo["fork"] = true
		repo["parent"] = map[string]interface{}{
			"name":      s.ParentName,
			"full_name": s.ParentOwner + "/" + s.ParentName,
			"owner":     map[string]interface{}{"login": s.ParentOwner},
		}
	}
	writeJSON(w, http.StatusOK, repo)
}

func (s *Server) listPulls(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.pullHead = r.URL.Query().Get("head")
	s.mu.Unlock()

	pulls := []map[string]interface{}{}
	if s.PullRequest != 0 {
		pulls = append(pulls, map[string]interface{}{
			"number":   s.PullRequest,
			"html_url": fmt.Sprintf("https://github.com/%s/%s/pull/%d", r.PathValue("owner"), r.PathValue("repo"), s.PullRequest),
		})
	}
	writeJSON(w, http.StatusOK, pulls)
}

func (s *Server) createStatus(w http.ResponseWriter, r *http.Request) {
	var status Status
	if err := json.NewDecoder(r.Body).Decode(&status); err != nil {
		writeError(w, http.StatusBadRequest)
		return
	}
	status.Owner, status.Repo, status.SHA = r.PathValue("owner"), r.PathValue("repo"), r.PathValue("sha")

	s.mu.Lock()
	s.statuses = append(s.statuses, status)
	n := len(s.statuses)
	s.mu.Unlock()

	if s.StatusCode != 0 && n > s.StatusFailAfter {
		writeError(w, s.StatusCode)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"state":   status.State,
		"context": status.Context,
	})
}

func (s *Server) createComment(w http.ResponseWriter, r *http.Request) {
	var comment Comment
	if err := json.NewDecoder(r.Body).Decode(&comment); err != nil {
		writeError(w, http.StatusBadRequest)
		return
	}
	comment.Owner, comment.Repo, comment.SHA = r.PathValue("owner"), r.PathValue("repo"), r.PathValue("sha")

	s.mu.Lock()
	s.comments = append(s.comments, comment)
	n := len(s.comments)
	s.mu.Unlock()

	if s.CommentCode != 0 {
		writeError(w, s.CommentCode)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":       n,
		"html_url": fmt.Sprintf("https://github.com/%s/%s/commit/%s#commitcomment-%d", comment.Owner, comment.Repo, comment.SHA, n),
		"body":     comment.Body,
	})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int) {
	writeJSON(w, code, map[string]interface{}{
		"message": http.StatusText(code),
	})
}
