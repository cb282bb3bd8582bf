// Package fileutil provides tmp+mv file replacement for log reflow.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// tmpPattern returns the os.CreateTemp pattern for temporaries of outPath.
func tmpPattern(outPath string) string {
	return filepath.Base(outPath) + ".*.tmp"
}

// Exists returns true if the file exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// WriteTmpThenMove writes to a temporary file then atomically moves it over
// outPath. The temporary is created in outPath's directory so the rename
// never crosses filesystems. writeFunc receives the open temporary file and
// must not close it. On any failure the temporary is removed and outPath is
// left untouched.
func WriteTmpThenMove(outPath string, writeFunc func(tmp *os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(outPath), tmpPattern(outPath))
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := writeFunc(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath) // Clean up on error
		return err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	// Keep the original file's permissions.
	if info, err := os.Stat(outPath); err == nil {
		if err := os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("chmod temp file: %w", err)
		}
	}

	if err := rename(tmpPath, outPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp to final: %w", err)
	}

	return nil
}

var rename = os.Rename

// CleanupTmpFiles removes temporaries of outPath left behind by an
// interrupted WriteTmpThenMove. It returns the number of files removed.
func CleanupTmpFiles(outPath string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(filepath.Dir(outPath), tmpPattern(outPath)))
	if err != nil {
		return 0, fmt.Errorf("glob temp files: %w", err)
	}

	var removed int
	for _, path := range matches {
		info, err := os.Lstat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if os.Remove(path) == nil {
			removed++
		}
	}
	return removed, nil
}
