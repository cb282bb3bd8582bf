// Package humanfmt parses and formats byte sizes for the command line and logs.
package humanfmt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"code.cloudfoundry.org/bytefmt"
)

// Binary (IEC) units for bytes.
const (
	KiB = 1024
	MiB = 1024 * KiB
	GiB = 1024 * MiB
)

// ErrInvalidSize is returned by ParseBytes for empty, zero or malformed sizes.
var ErrInvalidSize = errors.New("invalid size")

// ParseBytes parses a positive byte count. Plain integers are bytes; a unit
// suffix (K, KB, M, MB, G, ...) is interpreted in powers of 1024.
func ParseBytes(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidSize
	}

	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		if n == 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
		}
		return n, nil
	} else if errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidSize, s)
	}

	n, err := bytefmt.ToBytes(s)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}
	return n, nil
}

// Bytes formats a byte count using IEC binary units.
// Returns a compact human-readable string like "1.23 GiB".
func Bytes(b int64) string {
	if b < 0 {
		return fmt.Sprintf("%d B", b)
	}

	switch {
	case b >= GiB:
		return fmt.Sprintf("%.2f GiB", float64(b)/GiB)
	case b >= MiB:
		return fmt.Sprintf("%.2f MiB", float64(b)/MiB)
	case b >= KiB:
		return fmt.Sprintf("%.2f KiB", float64(b)/KiB)
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// Throughput formats bytes per duration as a human-readable rate.
func Throughput(bytes int64, d time.Duration) string {
	if d <= 0 {
		return "∞"
	}
	return Bytes(int64(float64(bytes)/d.Seconds())) + "/s"
}
