// Package preflight validates the environment before any external tool is
// invoked: the wrapped binaries must be on PATH and the target directory must
// not collide with existing state. A failed preflight means no subprocess has
// run and nothing has been mutated.
package preflight

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mkrepo/mkrepo/pkg/github"
	"github.com/mkrepo/mkrepo/pkg/log"
)

// CheckLevel is the severity of a preflight check result.
type CheckLevel int

const (
	// LevelError blocks execution.
	LevelError CheckLevel = iota
	// LevelWarn is reported but does not block.
	LevelWarn
	// LevelInfo is informational.
	LevelInfo
)

// CheckResult is the outcome of a single check.
type CheckResult struct {
	Name    string
	Level   CheckLevel
	Message string
	Err     error
}

// Check is a single preflight check.
type Check interface {
	Name() string
	Run(ctx context.Context) CheckResult
}

// Checker runs a set of checks and aggregates the outcome.
type Checker struct {
	checks []Check
}

// Config selects which checks run.
type Config struct {
	// Tools are binaries that must be resolvable on PATH.
	Tools []string

	// TargetDir, when set, is checked for collisions per the clone rules:
	// a file is fatal, a non-empty non-git directory is fatal, a git
	// worktree or empty directory is fine.
	TargetDir string

	// ConfigSourceDir, when set, must exist and be a directory.
	ConfigSourceDir string

	// CheckToken warns when no GitHub token is resolvable.
	CheckToken bool
}

// NewChecker builds a Checker for cfg.
func NewChecker(cfg Config) *Checker {
	c := &Checker{}
	for _, tool := range cfg.Tools {
		c.checks = append(c.checks, &ToolCheck{Tool: tool})
	}
	if cfg.TargetDir != "" {
		c.checks = append(c.checks, &TargetDirCheck{Path: cfg.TargetDir})
	}
	if cfg.ConfigSourceDir != "" {
		c.checks = append(c.checks, &ConfigSourceCheck{Path: cfg.ConfigSourceDir})
	}
	if cfg.CheckToken {
		c.checks = append(c.checks, &TokenCheck{})
	}
	return c
}

// Run executes all checks. It returns an error combining every error-level
// result; warnings and info results are only logged.
func (c *Checker) Run(ctx context.Context) error {
	var failures []string

	for _, check := range c.checks {
		result := check.Run(ctx)
		switch result.Level {
		case LevelError:
			log.Error("preflight check failed", "check", result.Name, "message", result.Message)
			failures = append(failures, fmt.Sprintf("%s: %s", result.Name, result.Message))
		case LevelWarn:
			log.Warn("preflight warning", "check", result.Name, "message", result.Message)
		case LevelInfo:
			log.Debug("preflight check", "check", result.Name, "message", result.Message)
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("preflight checks failed:\n  - %s", strings.Join(failures, "\n  - "))
	}
	return nil
}

// ToolCheck verifies an external binary is resolvable on PATH.
type ToolCheck struct {
	Tool string
}

func (c *ToolCheck) Name() string {
	return "tool:" + c.Tool
}

func (c *ToolCheck) Run(ctx context.Context) CheckResult {
	path, err := exec.LookPath(c.Tool)
	if err != nil {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelError,
			Message: fmt.Sprintf("%s not found on PATH", c.Tool),
			Err:     err,
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Level:   LevelInfo,
		Message: fmt.Sprintf("%s available at %s", c.Tool, path),
	}
}

// TargetDirCheck rejects target directories the clone step cannot use.
type TargetDirCheck struct {
	Path string
}

func (c *TargetDirCheck) Name() string {
	return "target-dir"
}

func (c *TargetDirCheck) Run(ctx context.Context) CheckResult {
	info, err := os.Stat(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return CheckResult{
				Name:    c.Name(),
				Level:   LevelInfo,
				Message: fmt.Sprintf("target %s does not exist yet", c.Path),
			}
		}
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelError,
			Message: fmt.Sprintf("cannot access target %s", c.Path),
			Err:     err,
		}
	}

	if !info.IsDir() {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelError,
			Message: fmt.Sprintf("target %s exists and is not a directory", c.Path),
		}
	}

	if IsGitWorktree(c.Path) {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelWarn,
			Message: fmt.Sprintf("target %s is already a git worktree; clone will be skipped", c.Path),
		}
	}

	entries, err := os.ReadDir(c.Path)
	if err != nil {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelError,
			Message: fmt.Sprintf("cannot read target %s", c.Path),
			Err:     err,
		}
	}
	if len(entries) > 0 {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelError,
			Message: fmt.Sprintf("target %s exists, is not a git worktree, and is not empty", c.Path),
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Level:   LevelInfo,
		Message: fmt.Sprintf("target %s is an empty directory", c.Path),
	}
}

// ConfigSourceCheck verifies the config source directory exists.
type ConfigSourceCheck struct {
	Path string
}

func (c *ConfigSourceCheck) Name() string {
	return "config-source"
}

func (c *ConfigSourceCheck) Run(ctx context.Context) CheckResult {
	info, err := os.Stat(c.Path)
	if err != nil {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelError,
			Message: fmt.Sprintf("config source directory does not exist: %s", c.Path),
			Err:     err,
		}
	}
	if !info.IsDir() {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelError,
			Message: fmt.Sprintf("config source is not a directory: %s", c.Path),
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Level:   LevelInfo,
		Message: fmt.Sprintf("config source is accessible: %s", c.Path),
	}
}

// TokenCheck warns when no GitHub token is resolvable. The gh CLI may still
// hold credentials of its own, so this never blocks.
type TokenCheck struct{}

func (c *TokenCheck) Name() string {
	return "github-token"
}

func (c *TokenCheck) Run(ctx context.Context) CheckResult {
	if github.ResolveToken() == "" {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelWarn,
			Message: "no GitHub token found (GITHUB_TOKEN, GH_TOKEN, or gh auth login); existence probe disabled",
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Level:   LevelInfo,
		Message: "GitHub token available",
	}
}

// IsGitWorktree reports whether dir contains a .git entry (directory for a
// normal clone, file for worktrees and submodules).
func IsGitWorktree(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}
