// Package execx launches the external tools mkrepo wraps.
//
// Output of a child process is relayed to the caller's stdout/stderr as it is
// produced and retained for the final report at the same time. Forwarded
// arguments are appended verbatim after a command's fixed arguments and are
// never reordered or rewritten.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// Command describes one external tool invocation.
type Command struct {
	// Program is the executable name, resolved via PATH.
	Program string

	// Args are the tool's own fixed arguments.
	Args []string

	// Forward are caller-supplied arguments appended verbatim after Args.
	Forward []string

	// Dir is the working directory for the process. Empty means the
	// current directory.
	Dir string
}

// Argv returns the full argument vector: fixed arguments followed by
// forwarded ones.
func (c Command) Argv() []string {
	argv := make([]string, 0, len(c.Args)+len(c.Forward))
	argv = append(argv, c.Args...)
	argv = append(argv, c.Forward...)
	return argv
}

// String renders the command the way it would be typed in a shell. Used for
// dry-run output and diagnostics.
func (c Command) String() string {
	parts := []string{c.Program}
	for _, arg := range c.Argv() {
		parts = append(parts, quote(arg))
	}
	return strings.Join(parts, " ")
}

func quote(arg string) string {
	if arg == "" || strings.ContainsAny(arg, " \t\"'") {
		return fmt.Sprintf("%q", arg)
	}
	return arg
}

// Result captures the outcome of one invocation.
type Result struct {
	// Output is the combined stdout and stderr of the process, in the
	// order it was relayed.
	Output string

	// ExitCode is the process exit status. Zero on success; -1 when the
	// process could not be launched at all.
	ExitCode int
}

// ErrNonZeroExit marks a process that ran but exited with a failure status,
// as opposed to one that could not be launched.
var ErrNonZeroExit = errors.New("command exited with non-zero status")

// Runner launches commands. The zero value relays to os.Stdout/os.Stderr.
type Runner struct {
	// Stdout and Stderr receive the child's output in real time.
	Stdout io.Writer
	Stderr io.Writer
}

func (r *Runner) stdout() io.Writer {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}

// Run executes cmd, streaming its output while capturing it. It returns a
// non-nil Result whenever the process was launched, even on failure, so the
// caller can report the captured output.
//
// A launch failure (binary not found, bad working directory) returns a nil
// Result. A non-zero exit returns the Result alongside an error wrapping
// ErrNonZeroExit.
func (r *Runner) Run(ctx context.Context, cmd Command) (*Result, error) {
	fmt.Fprintf(r.stderr(), "$ %s\n", cmd.String())

	capture := &syncBuffer{}
	proc := exec.CommandContext(ctx, cmd.Program, cmd.Argv()...)
	proc.Dir = cmd.Dir
	proc.Stdout = io.MultiWriter(r.stdout(), capture)
	proc.Stderr = io.MultiWriter(r.stderr(), capture)

	if err := proc.Start(); err != nil {
		return nil, fmt.Errorf("launching %s: %w", cmd.String(), err)
	}

	err := proc.Wait()
	result := &Result{
		Output:   capture.String(),
		ExitCode: proc.ProcessState.ExitCode(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return result, fmt.Errorf("%s: %w (exit code %d)", cmd.String(), ErrNonZeroExit, result.ExitCode)
		}
		return result, fmt.Errorf("waiting for %s: %w", cmd.String(), err)
	}
	return result, nil
}

// syncBuffer serializes writes from the child's stdout and stderr pipes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
