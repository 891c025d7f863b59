// Package workflow sequences the external tool invocations that take a
// repository from nothing to cloned, scaffolded, configured, and pushed.
//
// Steps run strictly in order and the runner stops at the first failure.
// Completed steps are never rolled back: their side effects (the remote
// repository, the clone, pushed commits) are left as-is for the operator,
// and the aggregate Result reports how far the run got.
package workflow

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mkrepo/mkrepo/pkg/config"
	"github.com/mkrepo/mkrepo/pkg/execx"
	"github.com/mkrepo/mkrepo/pkg/log"
)

// CommandRunner launches one external command. Satisfied by *execx.Runner;
// tests substitute a recorder.
type CommandRunner interface {
	Run(ctx context.Context, cmd execx.Command) (*execx.Result, error)
}

// ExistenceProbe answers whether the remote repository already exists.
// Satisfied by *github.Client.
type ExistenceProbe interface {
	RepoExists(ctx context.Context, name string) (bool, error)
}

// StepStatus describes how a step ended.
type StepStatus string

const (
	// StatusPlanned is used in dry-run mode: the step was enumerated but
	// nothing was executed.
	StatusPlanned StepStatus = "planned"

	StatusCompleted StepStatus = "completed"
	StatusSkipped   StepStatus = "skipped"
	StatusFailed    StepStatus = "failed"

	// StatusNotRun marks steps after the failing one.
	StatusNotRun StepStatus = "not-run"
)

// StepResult is the recorded outcome of one step.
type StepResult struct {
	Name       string
	Status     StepStatus
	SkipReason string

	// Output is the captured combined output of the step's commands.
	Output string

	// ExitCode is the exit status of the failing command, 0 otherwise.
	ExitCode int

	Err error
}

// Result aggregates a whole run.
type Result struct {
	Steps  []StepResult
	DryRun bool
}

// Failed returns the failing step, or nil when the run succeeded.
func (r *Result) Failed() *StepResult {
	for i := range r.Steps {
		if r.Steps[i].Status == StatusFailed {
			return &r.Steps[i]
		}
	}
	return nil
}

// Step is one unit of the workflow.
type Step interface {
	// Name identifies the step in logs and the final report.
	Name() string

	// Plan returns the fully resolved actions for dry-run output, one
	// line per command or filesystem action.
	Plan() []string

	// Skip reports whether the step should be skipped and why. Skip
	// checks only touch local state.
	Skip(ctx context.Context) (reason string, skip bool)

	// Run executes the step.
	Run(ctx context.Context) (*execx.Result, error)
}

// Runner executes the configured steps.
type Runner struct {
	cfg     *config.Config
	exec    CommandRunner
	probe   ExistenceProbe
	planOut io.Writer
}

// Option configures a Runner.
type Option func(*Runner)

// WithCommandRunner substitutes the subprocess launcher.
func WithCommandRunner(exec CommandRunner) Option {
	return func(r *Runner) { r.exec = exec }
}

// WithExistenceProbe enables the remote existence check before the create
// step. Without a probe the create step always runs.
func WithExistenceProbe(probe ExistenceProbe) Option {
	return func(r *Runner) { r.probe = probe }
}

// WithPlanOutput redirects dry-run plan output (default os.Stdout).
func WithPlanOutput(w io.Writer) Option {
	return func(r *Runner) { r.planOut = w }
}

// New builds a Runner for cfg.
func New(cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:     cfg,
		exec:    &execx.Runner{},
		planOut: os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every configured step in order, short-circuiting on the first
// failure. The returned Result always covers all steps; in dry-run mode each
// step is enumerated with its resolved commands and nothing is executed.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	steps := r.steps()
	result := &Result{DryRun: r.cfg.DryRun}

	if r.cfg.DryRun {
		fmt.Fprintf(r.planOut, "dry run: planned actions for %q\n", r.cfg.Name)
		for _, step := range steps {
			fmt.Fprintf(r.planOut, "%s:\n", step.Name())
			for _, line := range step.Plan() {
				fmt.Fprintf(r.planOut, "  %s\n", line)
			}
			result.Steps = append(result.Steps, StepResult{Name: step.Name(), Status: StatusPlanned})
		}
		return result, nil
	}

	var failed error
	for _, step := range steps {
		if failed != nil {
			result.Steps = append(result.Steps, StepResult{Name: step.Name(), Status: StatusNotRun})
			continue
		}

		if reason, skip := step.Skip(ctx); skip {
			log.Info("skipping step", "step", step.Name(), "reason", reason)
			result.Steps = append(result.Steps, StepResult{
				Name:       step.Name(),
				Status:     StatusSkipped,
				SkipReason: reason,
			})
			continue
		}

		log.Debug("running step", "step", step.Name())
		stepResult := StepResult{Name: step.Name(), Status: StatusCompleted}
		out, err := step.Run(ctx)
		if out != nil {
			stepResult.Output = out.Output
			stepResult.ExitCode = out.ExitCode
		}
		if err != nil {
			stepResult.Status = StatusFailed
			stepResult.Err = err
			failed = fmt.Errorf("step %s failed: %w", step.Name(), err)
			log.Error("step failed", "step", step.Name(), "error", err)
		}
		result.Steps = append(result.Steps, stepResult)
	}

	return result, failed
}
