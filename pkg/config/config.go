// Package config holds the validated configuration for a single mkrepo run.
//
// A Config is built once by New from command-line options (optionally
// pre-filled from a YAML defaults file) and is not mutated afterwards;
// every later stage treats it as read-only.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Visibility is the access-control level of the hosted repository.
type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityPrivate  Visibility = "private"
	VisibilityInternal Visibility = "internal"
)

// ParseVisibility validates a user-supplied visibility value.
// An empty value defaults to private.
func ParseVisibility(s string) (Visibility, error) {
	switch Visibility(strings.ToLower(s)) {
	case "":
		return VisibilityPrivate, nil
	case VisibilityPublic:
		return VisibilityPublic, nil
	case VisibilityPrivate:
		return VisibilityPrivate, nil
	case VisibilityInternal:
		return VisibilityInternal, nil
	default:
		return "", fmt.Errorf("invalid visibility %q (expected public, private, or internal)", s)
	}
}

// GhFlag returns the `gh repo create` flag for this visibility.
func (v Visibility) GhFlag() string {
	return "--" + string(v)
}

// DefaultCommitMessage is used when --git-commit-message is not given.
const DefaultCommitMessage = "Add configs"

// ForwardArgs holds the six caller-supplied argument lists, one per wrapped
// external tool. Each list is appended verbatim, in order, after the tool's
// own fixed arguments.
type ForwardArgs struct {
	RepoCreate []string
	RepoClone  []string
	Init       []string
	Build      []string
	Commit     []string
	Push       []string
}

// Options carries the raw, unvalidated values collected from flags and the
// optional defaults file. New turns Options into a Config.
type Options struct {
	Name            string
	Dir             string
	Workspace       string
	Visibility      string
	CopyConfigsFrom string
	Configs         []string
	ExtraConfigs    []string
	CommitMessage   string
	Build           bool
	DryRun          bool
	Forward         ForwardArgs
}

// Config is the validated, effectively immutable run configuration.
type Config struct {
	// Name is the repository name passed to the hosting tool.
	Name string

	// Dir is the absolute target directory the repository is cloned into.
	Dir string

	Visibility Visibility

	// CopyConfigsFrom is the absolute source directory for config files,
	// or empty when no configs are copied.
	CopyConfigsFrom string

	// Configs is the base set of relative config paths. ExtraConfigs are
	// copied in addition to, never instead of, this set.
	Configs      []string
	ExtraConfigs []string

	CommitMessage string

	// Build controls whether the scaffold is built after initialization.
	Build bool

	DryRun bool

	Forward ForwardArgs
}

// New validates opts and resolves derived values. No filesystem side effects
// beyond reading the current directory; collision checks against the target
// directory belong to preflight.
func New(opts Options) (*Config, error) {
	if strings.TrimSpace(opts.Name) == "" {
		return nil, fmt.Errorf("repository name is required")
	}

	visibility, err := ParseVisibility(opts.Visibility)
	if err != nil {
		return nil, err
	}

	dir, err := resolveDir(opts)
	if err != nil {
		return nil, err
	}

	var copyFrom string
	if opts.CopyConfigsFrom != "" {
		copyFrom, err = filepath.Abs(opts.CopyConfigsFrom)
		if err != nil {
			return nil, fmt.Errorf("resolving config source directory: %w", err)
		}
	}
	if copyFrom == "" && len(opts.ExtraConfigs) > 0 {
		return nil, fmt.Errorf("--extra-configs requires --copy-configs-from")
	}

	// No implicit base set: every copied path is named explicitly, and a
	// named path that is missing from the source is an error.
	configs := opts.Configs
	for _, p := range append(append([]string(nil), configs...), opts.ExtraConfigs...) {
		if err := checkRelative(p); err != nil {
			return nil, err
		}
	}

	message := opts.CommitMessage
	if message == "" {
		message = DefaultCommitMessage
	}

	return &Config{
		Name:            opts.Name,
		Dir:             dir,
		Visibility:      visibility,
		CopyConfigsFrom: copyFrom,
		Configs:         configs,
		ExtraConfigs:    opts.ExtraConfigs,
		CommitMessage:   message,
		Build:           opts.Build,
		DryRun:          opts.DryRun,
		Forward:         opts.Forward,
	}, nil
}

// resolveDir picks the target directory: --dir wins, then
// <workspace>/<name>, then <cwd>/<name>.
func resolveDir(opts Options) (string, error) {
	switch {
	case opts.Dir != "":
		dir, err := filepath.Abs(opts.Dir)
		if err != nil {
			return "", fmt.Errorf("resolving target directory: %w", err)
		}
		return dir, nil
	case opts.Workspace != "":
		dir, err := filepath.Abs(filepath.Join(opts.Workspace, opts.Name))
		if err != nil {
			return "", fmt.Errorf("resolving workspace directory: %w", err)
		}
		return dir, nil
	default:
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolving current directory: %w", err)
		}
		return filepath.Join(cwd, opts.Name), nil
	}
}

// checkRelative rejects config paths that would escape the source directory.
func checkRelative(p string) error {
	if p == "" {
		return fmt.Errorf("config path must not be empty")
	}
	if filepath.IsAbs(p) {
		return fmt.Errorf("config path %q must be relative to the source directory", p)
	}
	clean := filepath.Clean(p)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("config path %q escapes the source directory", p)
	}
	return nil
}

// AllConfigs returns the base set followed by the extra set, preserving the
// caller's ordering of each.
func (c *Config) AllConfigs() []string {
	all := make([]string, 0, len(c.Configs)+len(c.ExtraConfigs))
	all = append(all, c.Configs...)
	all = append(all, c.ExtraConfigs...)
	return all
}
