// Package copier copies configuration files from an existing project into a
// freshly cloned repository.
package copier

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mkrepo/mkrepo/pkg/log"
)

// Copy copies each relative path in paths from srcDir into dstDir, keeping
// the relative location. A path may name a file or a directory; directories
// are copied recursively. Intermediate directories are created as needed and
// existing destination files are overwritten without confirmation.
//
// A missing source path is an error naming the path, so a typo in --configs
// does not silently copy nothing.
func Copy(srcDir, dstDir string, paths []string) error {
	for _, rel := range paths {
		src := filepath.Join(srcDir, rel)
		dst := filepath.Join(dstDir, rel)

		info, err := os.Lstat(src)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("config path does not exist: %s", src)
			}
			return fmt.Errorf("reading config path %s: %w", src, err)
		}

		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", dst, err)
		}

		if err := copyAny(src, dst, info); err != nil {
			return err
		}
		log.Debug("copied config", "from", src, "to", dst)
	}
	return nil
}

func copyAny(src, dst string, info os.FileInfo) error {
	switch {
	case info.IsDir():
		return copyDir(src, dst)
	case info.Mode()&os.ModeSymlink != 0:
		return copySymlink(src, dst)
	default:
		return copyFile(src, dst, info.Mode())
	}
}

func copyDir(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", src, err)
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", src, err)
	}
	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()); err != nil {
		return fmt.Errorf("creating directory %s: %w", dst, err)
	}

	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("reading %s: %w", filepath.Join(src, entry.Name()), err)
		}
		if err := copyAny(filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name()), info); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	return nil
}

func copySymlink(src, dst string) error {
	target, err := os.Readlink(src)
	if err != nil {
		return fmt.Errorf("reading symlink %s: %w", src, err)
	}
	// Overwrite semantics match regular files.
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("replacing %s: %w", dst, err)
	}
	if err := os.Symlink(target, dst); err != nil {
		return fmt.Errorf("creating symlink %s: %w", dst, err)
	}
	return nil
}
