//go:build !linux && !darwin && !freebsd && !dragonfly && !windows

package diskfree

// availableBytes reports detection as unsupported on other platforms.
func availableBytes(string) (uint64, bool) {
	return 0, false
}
