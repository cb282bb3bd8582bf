package humanfmt

import (
	"errors"
	"testing"
	"time"
)

func TestParseBytes(t *testing.T) {
	tests := []struct {
		input string
		want  uint64
	}{
		{"1", 1},
		{"4096", 4096},
		{" 8192 ", 8192},
		{"4K", 4096},
		{"4KB", 4096},
		{"64k", 65536},
		{"1M", 1048576},
		{"1.5K", 1536},
		{"2G", 2147483648},
	}

	for _, tt := range tests {
		got, err := ParseBytes(tt.input)
		if err != nil {
			t.Errorf("ParseBytes(%q) error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseBytes(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestParseBytesInvalid(t *testing.T) {
	inputs := []string{"", "   ", "0", "0K", "-1", "-4K", "abc", "12X", "99999999999999999999999"}

	for _, in := range inputs {
		if n, err := ParseBytes(in); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("ParseBytes(%q) = %d, %v; want ErrInvalidSize", in, n, err)
		}
	}
}

func TestBytes(t *testing.T) {
	tests := []struct {
		input int64
		want  string
	}{
		{0, "0 B"},
		{1, "1 B"},
		{1023, "1023 B"},
		{1024, "1.00 KiB"},
		{1536, "1.50 KiB"},
		{4096, "4.00 KiB"},
		{1048576, "1.00 MiB"},
		{1073741824, "1.00 GiB"},
		{-100, "-100 B"},
	}

	for _, tt := range tests {
		got := Bytes(tt.input)
		if got != tt.want {
			t.Errorf("Bytes(%d) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestThroughput(t *testing.T) {
	tests := []struct {
		bytes int64
		d     time.Duration
		want  string
	}{
		{1024, time.Second, "1.00 KiB/s"},
		{2 * MiB, 2 * time.Second, "1.00 MiB/s"},
		{100, time.Second, "100 B/s"},
		{100, 0, "∞"},
	}

	for _, tt := range tests {
		got := Throughput(tt.bytes, tt.d)
		if got != tt.want {
			t.Errorf("Throughput(%d, %v) = %q, want %q", tt.bytes, tt.d, got, tt.want)
		}
	}
}
