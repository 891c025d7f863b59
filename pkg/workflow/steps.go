package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mkrepo/mkrepo/pkg/config"
	"github.com/mkrepo/mkrepo/pkg/copier"
	"github.com/mkrepo/mkrepo/pkg/execx"
	"github.com/mkrepo/mkrepo/pkg/log"
	"github.com/mkrepo/mkrepo/pkg/preflight"
)

// Step names, in execution order.
const (
	StepRepoCreate  = "gh-repo-create"
	StepRepoClone   = "gh-repo-clone"
	StepInit        = "cargo-init"
	StepBuild       = "cargo-build"
	StepCopyConfigs = "copy-configs"
	StepCommit      = "git-commit"
	StepPush        = "git-push"
)

// steps materializes the ordered step list. All seven steps are always
// present so the dry-run plan and the aggregate result cover the whole
// workflow; steps that are not configured report a skip reason instead.
func (r *Runner) steps() []Step {
	cfg := r.cfg

	steps := []Step{
		&commandStep{
			name: StepRepoCreate,
			exec: r.exec,
			commands: []execx.Command{{
				Program: "gh",
				Args:    []string{"repo", "create", cfg.Name, cfg.Visibility.GhFlag()},
				Forward: cfg.Forward.RepoCreate,
			}},
			skip: r.repoExistsSkip,
		},
		&commandStep{
			name: StepRepoClone,
			exec: r.exec,
			commands: []execx.Command{{
				Program: "gh",
				Args:    []string{"repo", "clone", cfg.Name, cfg.Dir},
				Forward: cfg.Forward.RepoClone,
			}},
			skip: func(ctx context.Context) (string, bool) {
				if preflight.IsGitWorktree(cfg.Dir) {
					return fmt.Sprintf("%s is already a git worktree", cfg.Dir), true
				}
				return "", false
			},
		},
		&commandStep{
			name: StepInit,
			exec: r.exec,
			commands: []execx.Command{{
				Program: "cargo",
				Args:    []string{"init"},
				Forward: cfg.Forward.Init,
				Dir:     cfg.Dir,
			}},
			skip: func(ctx context.Context) (string, bool) {
				manifest := filepath.Join(cfg.Dir, "Cargo.toml")
				if _, err := os.Stat(manifest); err == nil {
					return fmt.Sprintf("%s already exists", manifest), true
				}
				return "", false
			},
		},
	}

	steps = append(steps,
		&commandStep{
			name: StepBuild,
			exec: r.exec,
			commands: []execx.Command{{
				Program: "cargo",
				Args:    []string{"build"},
				Forward: cfg.Forward.Build,
				Dir:     cfg.Dir,
			}},
			skip: func(ctx context.Context) (string, bool) {
				if !cfg.Build {
					return "--build not set", true
				}
				return "", false
			},
		},
		&copyStep{cfg: cfg},
		&commandStep{
			name: StepCommit,
			exec: r.exec,
			commands: []execx.Command{
				{
					Program: "git",
					Args:    []string{"add", "-A"},
					Dir:     cfg.Dir,
				},
				{
					Program: "git",
					Args:    []string{"commit", "-m", cfg.CommitMessage},
					Forward: cfg.Forward.Commit,
					Dir:     cfg.Dir,
				},
			},
		},
		&commandStep{
			name: StepPush,
			exec: r.exec,
			commands: []execx.Command{{
				Program: "git",
				Args:    []string{"push"},
				Forward: cfg.Forward.Push,
				Dir:     cfg.Dir,
			}},
		},
	)

	return steps
}

// repoExistsSkip consults the existence probe so re-runs do not fail on
// `gh repo create` for a repository that is already there. Probe failures
// degrade to "assume missing": creation is attempted and the hosting tool
// has the final say.
func (r *Runner) repoExistsSkip(ctx context.Context) (string, bool) {
	if r.probe == nil {
		return "", false
	}
	exists, err := r.probe.RepoExists(ctx, r.cfg.Name)
	if err != nil {
		log.Warn("repository existence check failed, attempting creation", "error", err)
		return "", false
	}
	if exists {
		return fmt.Sprintf("repository %s already exists", r.cfg.Name), true
	}
	return "", false
}

// commandStep runs one or more external commands in order.
type commandStep struct {
	name     string
	commands []execx.Command
	exec     CommandRunner
	skip     func(ctx context.Context) (string, bool)
}

func (s *commandStep) Name() string {
	return s.name
}

func (s *commandStep) Plan() []string {
	lines := make([]string, 0, len(s.commands))
	for _, cmd := range s.commands {
		line := cmd.String()
		if cmd.Dir != "" {
			line += fmt.Sprintf("  (in %s)", cmd.Dir)
		}
		lines = append(lines, line)
	}
	return lines
}

func (s *commandStep) Skip(ctx context.Context) (string, bool) {
	if s.skip == nil {
		return "", false
	}
	return s.skip(ctx)
}

func (s *commandStep) Run(ctx context.Context) (*execx.Result, error) {
	var combined strings.Builder
	var last *execx.Result

	for _, cmd := range s.commands {
		result, err := s.exec.Run(ctx, cmd)
		if result != nil {
			combined.WriteString(result.Output)
			last = result
		}
		if err != nil {
			out := &execx.Result{Output: combined.String(), ExitCode: -1}
			if result != nil {
				out.ExitCode = result.ExitCode
			}
			return out, err
		}
	}

	out := &execx.Result{Output: combined.String()}
	if last != nil {
		out.ExitCode = last.ExitCode
	}
	return out, nil
}

// copyStep copies the base and extra config sets into the target directory.
type copyStep struct {
	cfg *config.Config
}

func (s *copyStep) Name() string {
	return StepCopyConfigs
}

func (s *copyStep) Plan() []string {
	if s.cfg.CopyConfigsFrom == "" {
		return []string{"copy nothing (no config source directory)"}
	}
	if len(s.cfg.AllConfigs()) == 0 {
		return []string{"copy nothing (no config paths configured)"}
	}
	lines := make([]string, 0, len(s.cfg.AllConfigs()))
	for _, rel := range s.cfg.AllConfigs() {
		lines = append(lines, fmt.Sprintf("copy %s -> %s",
			filepath.Join(s.cfg.CopyConfigsFrom, rel),
			filepath.Join(s.cfg.Dir, rel)))
	}
	return lines
}

func (s *copyStep) Skip(ctx context.Context) (string, bool) {
	if s.cfg.CopyConfigsFrom == "" {
		return "no config source directory (--copy-configs-from) configured", true
	}
	return "", false
}

func (s *copyStep) Run(ctx context.Context) (*execx.Result, error) {
	if err := copier.Copy(s.cfg.CopyConfigsFrom, s.cfg.Dir, s.cfg.AllConfigs()); err != nil {
		return nil, err
	}
	return &execx.Result{}, nil
}
