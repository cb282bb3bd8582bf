package diskfree

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestAvailable(t *testing.T) {
	dir := t.TempDir()
	result := Available(dir)

	switch runtime.GOOS {
	case "linux", "darwin", "freebsd", "dragonfly", "windows":
		if !result.Reliable {
			t.Logf("Warning: free space detection not reliable on %s", runtime.GOOS)
		}
	default:
		if result.Reliable {
			t.Errorf("Expected Reliable=false on %s, got true", runtime.GOOS)
		}
		if result.Bytes != 0 {
			t.Errorf("Expected 0 bytes on %s, got %d", runtime.GOOS, result.Bytes)
		}
	}

	t.Logf("Free space in %s: %d bytes, reliable=%v", dir, result.Bytes, result.Reliable)
}

func TestAvailableMissingFile(t *testing.T) {
	dir := t.TempDir()

	// A not-yet-created log file probes its directory.
	want := Available(dir)
	got := Available(filepath.Join(dir, "new.log"))
	if got.Reliable != want.Reliable {
		t.Errorf("Reliable = %v, want %v", got.Reliable, want.Reliable)
	}
}

func TestAvailableMissingDir(t *testing.T) {
	result := Available(filepath.Join(t.TempDir(), "no", "such", "dir", "x.log"))
	if result.Reliable {
		t.Errorf("expected unreliable result for missing directory, got %+v", result)
	}
}
