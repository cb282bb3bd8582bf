//go:build darwin || freebsd || dragonfly

package diskfree

import "golang.org/x/sys/unix"

// availableBytes returns free space on darwin and the BSDs whose Statfs_t
// carries Bavail and Bsize.
func availableBytes(path string) (uint64, bool) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, false
	}
	avail := int64(st.Bavail)
	if avail < 0 {
		// FreeBSD reports negative availability when root's reserve is in use.
		return 0, true
	}
	return uint64(avail) * uint64(st.Bsize), true
}
