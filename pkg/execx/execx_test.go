package execx

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"runtime"
	"strings"
	"testing"
)

func TestArgvAppendsForwardedArgs(t *testing.T) {
	cmd := Command{
		Program: "gh",
		Args:    []string{"repo", "create", "demo", "--private"},
		Forward: []string{"--disable-wiki", "--team", "core devs"},
	}

	want := []string{"repo", "create", "demo", "--private", "--disable-wiki", "--team", "core devs"}
	if got := cmd.Argv(); !reflect.DeepEqual(got, want) {
		t.Errorf("Argv() = %v, want %v", got, want)
	}
}

func TestStringQuotesArgsWithSpaces(t *testing.T) {
	cmd := Command{
		Program: "git",
		Args:    []string{"commit", "-m", "Add configs"},
	}

	got := cmd.String()
	if !strings.Contains(got, `"Add configs"`) {
		t.Errorf("String() = %q, want the message quoted", got)
	}
	if !strings.HasPrefix(got, "git commit -m") {
		t.Errorf("String() = %q, want git commit -m prefix", got)
	}
}

func TestRunCapturesAndRelaysOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}

	var stdout, stderr bytes.Buffer
	r := &Runner{Stdout: &stdout, Stderr: &stderr}

	result, err := r.Run(context.Background(), Command{
		Program: "sh",
		Args:    []string{"-c", "echo out; echo err >&2"},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", result.ExitCode)
	}
	if !strings.Contains(stdout.String(), "out") {
		t.Errorf("stdout not relayed: %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "err") {
		t.Errorf("stderr not relayed: %q", stderr.String())
	}
	if !strings.Contains(result.Output, "out") || !strings.Contains(result.Output, "err") {
		t.Errorf("captured output incomplete: %q", result.Output)
	}
}

func TestRunEchoesCommandLine(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}

	var stderr bytes.Buffer
	r := &Runner{Stdout: &bytes.Buffer{}, Stderr: &stderr}

	if _, err := r.Run(context.Background(), Command{Program: "true"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.HasPrefix(stderr.String(), "$ true") {
		t.Errorf("command line not echoed: %q", stderr.String())
	}
}

func TestRunNonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}

	var out bytes.Buffer
	r := &Runner{Stdout: &out, Stderr: &out}

	result, err := r.Run(context.Background(), Command{
		Program: "sh",
		Args:    []string{"-c", "echo boom; exit 3"},
	})
	if err == nil {
		t.Fatal("Run() should fail for non-zero exit")
	}
	if !errors.Is(err, ErrNonZeroExit) {
		t.Errorf("error = %v, want ErrNonZeroExit", err)
	}
	if result == nil {
		t.Fatal("Result should be returned for a process that ran")
	}
	if result.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", result.ExitCode)
	}
	if !strings.Contains(result.Output, "boom") {
		t.Errorf("captured output = %q, want boom", result.Output)
	}
}

func TestRunLaunchFailure(t *testing.T) {
	var out bytes.Buffer
	r := &Runner{Stdout: &out, Stderr: &out}

	result, err := r.Run(context.Background(), Command{Program: "mkrepo-no-such-binary"})
	if err == nil {
		t.Fatal("Run() should fail when the binary does not exist")
	}
	if errors.Is(err, ErrNonZeroExit) {
		t.Error("launch failure should not be ErrNonZeroExit")
	}
	if result != nil {
		t.Errorf("Result = %+v, want nil for launch failure", result)
	}
	if !strings.Contains(err.Error(), "mkrepo-no-such-binary") {
		t.Errorf("error %q should name the offending command", err)
	}
}
