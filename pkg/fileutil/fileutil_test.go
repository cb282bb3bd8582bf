package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestExists(t *testing.T) {
	tmpDir := t.TempDir()

	// Test non-existent file
	if Exists(filepath.Join(tmpDir, "nonexistent")) {
		t.Error("Exists returned true for non-existent file")
	}

	// Test existing file
	path := filepath.Join(tmpDir, "exists.txt")
	if err := os.WriteFile(path, []byte("content"), 0644); err != nil {
		t.Fatal(err)
	}
	if !Exists(path) {
		t.Error("Exists returned false for existing file")
	}
}

func assertNoTmpFiles(t *testing.T, outPath string) {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(filepath.Dir(outPath), tmpPattern(outPath)))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Errorf("tmp files left behind: %v", matches)
	}
}

func TestWriteTmpThenMove(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "output.log")
	if err := os.WriteFile(outPath, []byte("old content"), 0600); err != nil {
		t.Fatal(err)
	}

	content := []byte("new content")
	err := WriteTmpThenMove(outPath, func(tmp *os.File) error {
		if filepath.Dir(tmp.Name()) != filepath.Dir(outPath) {
			t.Errorf("tmp file %s not next to %s", tmp.Name(), outPath)
		}
		_, err := tmp.Write(content)
		return err
	})
	if err != nil {
		t.Fatalf("WriteTmpThenMove failed: %v", err)
	}

	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("Failed to read output file: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("Content mismatch: got %q, want %q", got, content)
	}

	info, err := os.Stat(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	assertNoTmpFiles(t, outPath)
}

func TestWriteTmpThenMoveError(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "output.log")
	if err := os.WriteFile(outPath, []byte("original"), 0644); err != nil {
		t.Fatal(err)
	}

	err := WriteTmpThenMove(outPath, func(tmp *os.File) error {
		if _, err := tmp.Write([]byte("partial")); err != nil {
			return err
		}
		return os.ErrPermission
	})
	if !errors.Is(err, os.ErrPermission) {
		t.Errorf("WriteTmpThenMove error = %v, want ErrPermission", err)
	}

	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "original" {
		t.Errorf("original modified: %q", got)
	}
	assertNoTmpFiles(t, outPath)
}

func TestWriteTmpThenMoveRenameError(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "output.log")
	if err := os.WriteFile(outPath, []byte("original"), 0644); err != nil {
		t.Fatal(err)
	}

	errRename := errors.New("simulated rename failure")
	rename = func(string, string) error { return errRename }
	defer func() { rename = os.Rename }()

	err := WriteTmpThenMove(outPath, func(tmp *os.File) error {
		_, err := tmp.Write([]byte("replacement"))
		return err
	})
	if !errors.Is(err, errRename) {
		t.Errorf("WriteTmpThenMove error = %v, want %v", err, errRename)
	}

	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "original" {
		t.Errorf("original modified: %q", got)
	}
	assertNoTmpFiles(t, outPath)
}

func TestWriteTmpThenMoveMissingDir(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "missing", "output.log")
	err := WriteTmpThenMove(outPath, func(*os.File) error {
		t.Error("writeFunc called without a temp file")
		return nil
	})
	if err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestCleanupTmpFiles(t *testing.T) {
	tmpDir := t.TempDir()
	outPath := filepath.Join(tmpDir, "app.log")

	files := []string{
		"app.log.123.tmp",
		"app.log.456.tmp",
		"app.log",
		"other.log.1.tmp",
		"app.log.bak",
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(tmpDir, f), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := CleanupTmpFiles(outPath)
	if err != nil {
		t.Fatalf("CleanupTmpFiles failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	for _, f := range []string{"app.log", "other.log.1.tmp", "app.log.bak"} {
		if !Exists(filepath.Join(tmpDir, f)) {
			t.Errorf("%s should not have been removed", f)
		}
	}
	assertNoTmpFiles(t, outPath)
}
