package ring

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/eunmann/alog/internal/logctx"
	"github.com/eunmann/alog/pkg/fileutil"
	"github.com/eunmann/alog/pkg/format"
	"github.com/eunmann/alog/pkg/humanfmt"
)

var replaceFile = fileutil.WriteTmpThenMove

// Resize changes the capacity of s to newSize rounded up to the unit.
//
// Growing extends the file with zeros and leaves the cursors alone.
// Shrinking reflows the log: its content is copied oldest first into a new
// ring of the smaller size, which atomically replaces the file. Content that
// does not fit is dropped oldest first, as with ordinary wraparound.
//
// The returned Store replaces s; after a successful shrink s is closed and
// must not be used. When the request cannot be honored (not enough free
// space, a failed reflow) the log is left as it was and degraded is true.
// An error is returned only if the reflowed file cannot be reopened.
func Resize(ctx context.Context, s *Store, newSize uint64) (*Store, bool, error) {
	if s.discard {
		return s, false, nil
	}

	size := format.RoundUp(newSize, s.opts.unit)
	switch {
	case size > s.hdr.Size:
		return s, s.grow(ctx, size), nil
	case size < s.hdr.Size:
		return s.shrink(ctx, size)
	default:
		return s, false, nil
	}
}

// grow appends zeros after the current end of file and records the new size.
func (s *Store) grow(ctx context.Context, size uint32) bool {
	log := logctx.FromContext(ctx).With().
		Str("path", s.path).
		Uint32("old_size", s.hdr.Size).
		Uint32("new_size", size).
		Logger()

	extra := uint64(size - s.hdr.Size)
	if free := s.opts.freeSpace(s.path); free.Reliable && extra > free.Bytes {
		log.Warn().
			Uint64("free", free.Bytes).
			Msg("not enough free space to grow log, keeping current size")
		return true
	}

	oldSize := s.hdr.Size
	if err := s.zeroFill(int64(oldSize), int64(size)); err != nil {
		if truncErr := s.file.Truncate(int64(oldSize)); truncErr != nil {
			log.Warn().Err(truncErr).Msg("cannot undo partial grow")
		}
		log.Warn().Err(err).Msg("cannot grow log, keeping current size")
		return true
	}

	s.hdr.Size = size
	if err := s.Flush(); err != nil {
		log.Warn().Err(err).Msg("cannot record new log size")
		return true
	}
	log.Debug().Str("size", humanfmt.Bytes(int64(size))).Msg("grew log")
	return false
}

// shrink reflows s into a smaller ring and reopens the result.
func (s *Store) shrink(ctx context.Context, size uint32) (*Store, bool, error) {
	log := logctx.FromContext(ctx).With().
		Str("path", s.path).
		Uint32("old_size", s.hdr.Size).
		Uint32("new_size", size).
		Logger()

	if err := s.Flush(); err != nil {
		log.Warn().Err(err).Msg("cannot flush header before shrink, keeping current size")
		return s, true, nil
	}
	if n, err := fileutil.CleanupTmpFiles(s.path); err == nil && n > 0 {
		log.Debug().Int("files_removed", n).Msg("removed stale reflow files")
	}

	var capped bool
	var kept uint32
	err := replaceFile(s.path, func(tmp *os.File) error {
		t := &Store{file: tmp, path: tmp.Name(), opts: s.opts}
		var reflowSize uint32
		reflowSize, capped = s.opts.capSize(log, s.path, uint64(size))
		if err := t.initialize(reflowSize); err != nil {
			return err
		}
		if _, err := io.Copy(t, s.Reader()); err != nil {
			return fmt.Errorf("reflow: %w", err)
		}
		kept = t.hdr.Used()
		return t.Flush()
	})
	if err != nil {
		log.Warn().Err(err).Msg("cannot shrink log, keeping current size")
		return s, true, nil
	}

	if err := s.file.Close(); err != nil {
		log.Debug().Err(err).Msg("close replaced log")
	}
	log.Debug().
		Uint32("dropped", s.hdr.Used()-kept).
		Msg("shrank log")

	ns, degraded, err := openOrCreate(ctx, s.path, uint64(size), s.opts)
	return ns, degraded || capped, err
}
