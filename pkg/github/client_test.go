package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-github/v68/github"
)

// mockAPIServer is a minimal GitHub API stand-in for the existence probe.
type mockAPIServer struct {
	server *httptest.Server

	// repos visible to the mock, keyed by "owner/repo".
	repos map[string]bool

	// login returned for the authenticated user.
	login string

	repoGetCalls int
	userGetCalls int
}

func newMockAPIServer(t *testing.T) *mockAPIServer {
	t.Helper()

	m := &mockAPIServer{
		repos: make(map[string]bool),
		login: "octocat",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /user", func(w http.ResponseWriter, r *http.Request) {
		m.userGetCalls++
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(&github.User{Login: github.String(m.login)})
	})
	mux.HandleFunc("GET /repos/{owner}/{repo}", func(w http.ResponseWriter, r *http.Request) {
		m.repoGetCalls++
		full := r.PathValue("owner") + "/" + r.PathValue("repo")
		if !m.repos[full] {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(&github.Repository{FullName: github.String(full)})
	})

	m.server = httptest.NewServer(mux)
	t.Cleanup(m.server.Close)
	return m
}

func (m *mockAPIServer) client(t *testing.T) *Client {
	t.Helper()
	c, err := NewClientWithBaseURL(nil, m.server.URL)
	if err != nil {
		t.Fatalf("NewClientWithBaseURL() error = %v", err)
	}
	return c
}

func TestRepoExistsWithOwner(t *testing.T) {
	m := newMockAPIServer(t)
	m.repos["acme/demo"] = true
	c := m.client(t)

	exists, err := c.RepoExists(context.Background(), "acme/demo")
	if err != nil {
		t.Fatalf("RepoExists() error = %v", err)
	}
	if !exists {
		t.Error("RepoExists() = false, want true")
	}
	if m.userGetCalls != 0 {
		t.Errorf("owner given, user lookup should not happen (got %d calls)", m.userGetCalls)
	}
}

func TestRepoExistsNotFound(t *testing.T) {
	m := newMockAPIServer(t)
	c := m.client(t)

	exists, err := c.RepoExists(context.Background(), "acme/missing")
	if err != nil {
		t.Fatalf("RepoExists() error = %v for 404", err)
	}
	if exists {
		t.Error("RepoExists() = true for a missing repo")
	}
}

func TestRepoExistsBareNameResolvesOwner(t *testing.T) {
	m := newMockAPIServer(t)
	m.repos["octocat/demo"] = true
	c := m.client(t)

	exists, err := c.RepoExists(context.Background(), "demo")
	if err != nil {
		t.Fatalf("RepoExists() error = %v", err)
	}
	if !exists {
		t.Error("RepoExists() = false, want true via authenticated-user resolution")
	}
	if m.userGetCalls != 1 {
		t.Errorf("user lookup calls = %d, want 1", m.userGetCalls)
	}
}

func TestRepoExistsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	c, err := NewClientWithBaseURL(nil, server.URL)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.RepoExists(context.Background(), "acme/demo"); err == nil {
		t.Error("RepoExists() should surface non-404 API failures")
	}
}

func TestResolveTokenPrefersEnvironment(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "tok-primary")
	t.Setenv("GH_TOKEN", "tok-secondary")

	if got := ResolveToken(); got != "tok-primary" {
		t.Errorf("ResolveToken() = %q, want tok-primary", got)
	}

	t.Setenv("GITHUB_TOKEN", "")
	if got := ResolveToken(); got != "tok-secondary" {
		t.Errorf("ResolveToken() = %q, want tok-secondary", got)
	}
}
