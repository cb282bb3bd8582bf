// Package diskfree reports free space on the filesystem holding a path.
//
// Detection uses platform-specific statfs calls and reports, through
// Result.Reliable, whether the value can be trusted. Callers treat an
// unreliable result as "no limit known" rather than as zero.
package diskfree

import "path/filepath"

// Result holds the result of a free-space probe.
type Result struct {
	// Bytes is the space available to unprivileged users, in bytes.
	Bytes uint64

	// Reliable indicates whether the value was obtained from a
	// platform-specific call (true) or detection failed (false).
	Reliable bool
}

// Available returns the free space on the filesystem containing path.
// path need not exist; its parent directory is probed in that case.
func Available(path string) Result {
	bytes, ok := availableBytes(path)
	if !ok {
		bytes, ok = availableBytes(filepath.Dir(path))
	}
	if !ok {
		return Result{}
	}
	return Result{Bytes: bytes, Reliable: true}
}
