package copier

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func TestCopySingleFile(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeFile(t, filepath.Join(src, "rustfmt.toml"), "edition = \"2021\"\n")

	if err := Copy(src, dst, []string{"rustfmt.toml"}); err != nil {
		t.Fatalf("Copy() error = %v", err)
	}

	if got := readFile(t, filepath.Join(dst, "rustfmt.toml")); got != "edition = \"2021\"\n" {
		t.Errorf("copied content = %q", got)
	}
}

func TestCopyDirectoryTree(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeFile(t, filepath.Join(src, ".github", "workflows", "ci.yml"), "on: push\n")
	writeFile(t, filepath.Join(src, ".github", "CODEOWNERS"), "* @core\n")

	if err := Copy(src, dst, []string{".github"}); err != nil {
		t.Fatalf("Copy() error = %v", err)
	}

	if got := readFile(t, filepath.Join(dst, ".github", "workflows", "ci.yml")); got != "on: push\n" {
		t.Errorf("nested file content = %q", got)
	}
	if got := readFile(t, filepath.Join(dst, ".github", "CODEOWNERS")); got != "* @core\n" {
		t.Errorf("nested file content = %q", got)
	}
}

func TestCopyNestedRelativePath(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeFile(t, filepath.Join(src, "lint", ".rc"), "strict\n")

	if err := Copy(src, dst, []string{"lint/.rc"}); err != nil {
		t.Fatalf("Copy() error = %v", err)
	}

	if got := readFile(t, filepath.Join(dst, "lint", ".rc")); got != "strict\n" {
		t.Errorf("content = %q", got)
	}
}

func TestCopyOverwritesExistingFiles(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeFile(t, filepath.Join(src, "clippy.toml"), "new\n")
	writeFile(t, filepath.Join(dst, "clippy.toml"), "old\n")

	if err := Copy(src, dst, []string{"clippy.toml"}); err != nil {
		t.Fatalf("Copy() error = %v", err)
	}

	if got := readFile(t, filepath.Join(dst, "clippy.toml")); got != "new\n" {
		t.Errorf("content = %q, want overwrite", got)
	}
}

func TestCopyMissingSourceFails(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	err := Copy(src, dst, []string{"does-not-exist.toml"})
	if err == nil {
		t.Fatal("Copy() should fail for a missing source path")
	}
	if !strings.Contains(err.Error(), "does-not-exist.toml") {
		t.Errorf("error %q should name the missing path", err)
	}
}

func TestCopyPreservesSymlinks(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeFile(t, filepath.Join(src, "base.toml"), "x\n")
	if err := os.Symlink("base.toml", filepath.Join(src, "link.toml")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	if err := Copy(src, dst, []string{"base.toml", "link.toml"}); err != nil {
		t.Fatalf("Copy() error = %v", err)
	}

	target, err := os.Readlink(filepath.Join(dst, "link.toml"))
	if err != nil {
		t.Fatalf("destination is not a symlink: %v", err)
	}
	if target != "base.toml" {
		t.Errorf("symlink target = %q, want base.toml", target)
	}
}
