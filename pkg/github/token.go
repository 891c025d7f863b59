package github

import (
	"os"
	"os/exec"
	"strings"
)

// ResolveToken finds a GitHub token the way `gh` itself would: the
// GITHUB_TOKEN and GH_TOKEN environment variables, then `gh auth token`.
// Returns an empty string when no token is available; callers treat that as
// "probe not possible", not as an error, since repo creation may still
// succeed through the gh CLI's own credential store.
func ResolveToken() string {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token
	}
	if token := os.Getenv("GH_TOKEN"); token != "" {
		return token
	}

	if _, err := exec.LookPath("gh"); err != nil {
		return ""
	}
	out, err := exec.Command("gh", "auth", "token").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
