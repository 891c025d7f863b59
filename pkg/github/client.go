// Package github implements the one piece of GitHub API access mkrepo needs:
// checking whether the target repository already exists, so the create step
// can be skipped on re-runs. Everything else GitHub-related is delegated to
// the `gh` CLI.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
)

// Client wraps a go-github client for the repository existence probe.
type Client struct {
	gh *github.Client
}

// NewClient builds a Client authenticated with token.
func NewClient(ctx context.Context, token string) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	return &Client{gh: github.NewClient(tc)}
}

// NewClientWithBaseURL builds a Client against a non-default API endpoint.
// Used by tests with an httptest server.
func NewClientWithBaseURL(httpClient *http.Client, baseURL string) (*Client, error) {
	// go-github requires a trailing slash on the base URL.
	parsed, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parsing API base URL: %w", err)
	}
	gh := github.NewClient(httpClient)
	gh.BaseURL = parsed
	return &Client{gh: gh}, nil
}

// RepoExists reports whether the repository exists and is visible to the
// authenticated user. The name may be "repo" (resolved against the
// authenticated user) or "owner/repo".
func (c *Client) RepoExists(ctx context.Context, name string) (bool, error) {
	owner, repo, err := c.splitName(ctx, name)
	if err != nil {
		return false, err
	}

	_, resp, err := c.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, fmt.Errorf("checking repository %s/%s: %w", owner, repo, err)
	}
	return true, nil
}

// splitName resolves a bare repository name to owner/repo using the
// authenticated user, matching how `gh` interprets bare names.
func (c *Client) splitName(ctx context.Context, name string) (owner, repo string, err error) {
	if owner, repo, ok := strings.Cut(name, "/"); ok {
		return owner, repo, nil
	}

	user, _, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return "", "", fmt.Errorf("resolving repository owner: %w", err)
	}
	return user.GetLogin(), name, nil
}
