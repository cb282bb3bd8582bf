package session

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig indicates a rejected flag combination.
var ErrInvalidConfig = errors.New("invalid configuration")

// Mode selects what a session does with the log.
type Mode int

const (
	// ModeAppend copies input into the log and mirrors it to the console.
	ModeAppend Mode = iota
	// ModeDump writes the log content to the console, oldest first.
	ModeDump
	// ModeInfo prints the log header.
	ModeInfo
)

func (m Mode) String() string {
	switch m {
	case ModeAppend:
		return "append"
	case ModeDump:
		return "dump"
	case ModeInfo:
		return "info"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Config is a parsed command line.
type Config struct {
	// Path is the log file. Empty in append mode means input is discarded.
	Path string
	// Size is the requested log size in bytes; 0 keeps the current size
	// and creates new logs at the minimum size.
	Size uint64
	// Quiet suppresses the console mirror in append mode.
	Quiet bool
	Mode  Mode
}

// Validate checks flag combinations before any file is touched.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeAppend:
		return nil
	case ModeDump, ModeInfo:
		if c.Path == "" {
			return fmt.Errorf("%w: %s requires a log file", ErrInvalidConfig, c.Mode)
		}
		if c.Size != 0 {
			return fmt.Errorf("%w: a size cannot be combined with %s", ErrInvalidConfig, c.Mode)
		}
		if c.Quiet {
			return fmt.Errorf("%w: quiet cannot be combined with %s", ErrInvalidConfig, c.Mode)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown mode %s", ErrInvalidConfig, c.Mode)
	}
}
