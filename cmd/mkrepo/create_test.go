package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// executeCapturingStdout runs the root command with args and returns what was
// written to stdout.
func executeCapturingStdout(t *testing.T, args ...string) (string, error) {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w

	rootCmd.SetArgs(args)
	execErr := rootCmd.Execute()

	w.Close()
	os.Stdout = old
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	return string(out), execErr
}

func TestCreateDryRunPlan(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "demo")

	out, err := executeCapturingStdout(t,
		"create",
		"--name", "demo",
		"--dir", dir,
		"--dry-run",
		"--gh-repo-create-cmd", "--disable-wiki",
	)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !strings.Contains(out, "gh repo create demo --private --disable-wiki") {
		t.Errorf("plan missing resolved create command:\n%s", out)
	}
	if !strings.Contains(out, "git push") {
		t.Errorf("plan missing push command:\n%s", out)
	}
	if _, statErr := os.Stat(dir); !os.IsNotExist(statErr) {
		t.Errorf("dry run touched the target directory")
	}
}

func TestCreateRejectsInvalidVisibility(t *testing.T) {
	_, err := executeCapturingStdout(t,
		"create",
		"--name", "demo",
		"--visibility", "hidden",
		"--dry-run",
	)
	if err == nil {
		t.Fatal("Execute() should fail for invalid visibility")
	}
	if !strings.Contains(err.Error(), "invalid visibility") {
		t.Errorf("error = %v, want invalid visibility", err)
	}
}
