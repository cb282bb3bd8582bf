// Package ring implements a fixed-capacity circular log file.
//
// A Store owns one open log file and a live copy of its header. Appends
// overwrite the oldest bytes once the data region is full; Reader returns the
// surviving bytes oldest first. The header is written when the ring is
// created, before a resize hands the file off, and on Close.
//
// A Store is not safe for concurrent use, and only one process may append to
// a given file at a time.
package ring

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/eunmann/alog/internal/logctx"
	"github.com/eunmann/alog/pkg/format"
	"github.com/eunmann/alog/pkg/humanfmt"
)

// ErrNotRingStore indicates an existing file that is not a circular log.
var ErrNotRingStore = errors.New("not a circular log file")

// errEmptyFile marks an existing zero-length file, which is initialized in
// place rather than treated as foreign.
var errEmptyFile = errors.New("empty file")

const zeroChunk = 64 * 1024

// discardHeader is the synthetic header used when input goes to os.DevNull.
var discardHeader = format.Header{Magic: format.MagicNumber, Size: format.DefaultUnit}

// Store is an open circular log file.
type Store struct {
	file     *os.File
	path     string
	hdr      format.Header
	discard  bool
	readOnly bool
	opts     options
	one      [1]byte
}

// OpenOrCreate opens the circular log at path, creating it with
// requestedSize bytes (rounded up to the unit) when it does not exist.
// An existing valid log keeps its own size.
//
// When path holds a foreign file or cannot be opened or created, the
// returned Store discards everything written to it and degraded is true.
// The foreign file is never modified. An error is returned only when even
// the discard sink cannot be opened.
func OpenOrCreate(ctx context.Context, path string, requestedSize uint64, opts ...Option) (*Store, bool, error) {
	return openOrCreate(ctx, path, requestedSize, newOptions(opts))
}

func openOrCreate(ctx context.Context, path string, requestedSize uint64, o options) (*Store, bool, error) {
	log := logctx.FromContext(ctx).With().Str("path", path).Logger()

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err == nil {
		s := &Store{file: f, path: path, opts: o}
		err = s.load()
		if err == nil {
			log.Debug().
				Uint32("size", s.hdr.Size).
				Uint32("used", s.hdr.Used()).
				Bool("wrapped", s.hdr.Wrapped()).
				Msg("opened log")
			return s, false, nil
		}
		if errors.Is(err, errEmptyFile) {
			return s.initializeNew(log, requestedSize, false)
		}
		f.Close()
		log.Warn().Err(err).Msg("existing file is not a circular log, discarding input")
		return openDiscard(path, o)
	}

	f, createErr := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if createErr != nil {
		log.Warn().Err(err).AnErr("create_error", createErr).Msg("cannot open log, discarding input")
		return openDiscard(path, o)
	}
	s := &Store{file: f, path: path, opts: o}
	return s.initializeNew(log, requestedSize, true)
}

// initializeNew sizes and initializes a newly created or empty file. On
// failure a file created by this call is removed and a discard store is
// returned.
func (s *Store) initializeNew(log zerolog.Logger, requestedSize uint64, created bool) (*Store, bool, error) {
	size, degraded := s.opts.capSize(log, s.path, requestedSize)
	if err := s.initialize(size); err != nil {
		s.file.Close()
		if created {
			os.Remove(s.path)
		}
		log.Warn().Err(err).Msg("cannot initialize log, discarding input")
		return openDiscard(s.path, s.opts)
	}
	log.Debug().Str("size", humanfmt.Bytes(int64(size))).Msg("created log")
	return s, degraded, nil
}

// capSize rounds requestedSize up to the unit and falls back to a single
// unit when the filesystem holding path cannot fit the rounded size.
func (o options) capSize(log zerolog.Logger, path string, requestedSize uint64) (uint32, bool) {
	size := format.RoundUp(requestedSize, o.unit)
	free := o.freeSpace(path)
	if free.Reliable && uint64(size) > free.Bytes && size > o.unit {
		log.Warn().
			Uint32("requested", size).
			Uint64("free", free.Bytes).
			Uint32("size", o.unit).
			Msg("not enough free space for requested log size")
		return o.unit, true
	}
	return size, false
}

// OpenDiscard returns a Store that accepts appends and drops them, for
// sessions that have no usable log file.
func OpenDiscard() (*Store, error) {
	s, _, err := openDiscard("", newOptions(nil))
	return s, err
}

// openDiscard returns a Store that writes to os.DevNull.
func openDiscard(path string, o options) (*Store, bool, error) {
	f, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		return nil, true, fmt.Errorf("open %s: %w", os.DevNull, err)
	}
	return &Store{file: f, path: path, hdr: discardHeader, discard: true, opts: o}, true, nil
}

// Open opens an existing circular log read-only, for dumping.
func Open(ctx context.Context, path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	s := &Store{file: f, path: path, readOnly: true, opts: newOptions(nil)}
	if err := s.load(); err != nil {
		f.Close()
		if errors.Is(err, errEmptyFile) {
			err = fmt.Errorf("%w: %w", ErrNotRingStore, err)
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log := logctx.FromContext(ctx)
	log.Debug().Str("path", path).Uint32("used", s.hdr.Used()).Msg("opened log for reading")
	return s, nil
}

// load reads and validates the header.
func (s *Store) load() error {
	buf := make([]byte, format.HeaderSize)
	n, err := s.file.ReadAt(buf, 0)
	if n == 0 && errors.Is(err, io.EOF) {
		return errEmptyFile
	}
	if n < format.HeaderSize {
		if err == nil || errors.Is(err, io.EOF) {
			err = format.ErrInvalidHeader
		}
		return fmt.Errorf("%w: read header: %w", ErrNotRingStore, err)
	}

	h, err := format.DecodeHeader(buf)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotRingStore, err)
	}
	if err := h.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrNotRingStore, err)
	}
	s.hdr = h
	return nil
}

// initialize writes a fresh header for an empty ring of size bytes and
// zero-fills the data region so the file has its full footprint.
func (s *Store) initialize(size uint32) error {
	s.hdr = format.NewHeader(size)
	if err := s.Flush(); err != nil {
		return err
	}
	return s.zeroFill(int64(s.hdr.Top), int64(size))
}

// zeroFill writes zero bytes over [from, to).
func (s *Store) zeroFill(from, to int64) error {
	zeros := make([]byte, min(zeroChunk, to-from))
	for off := from; off < to; {
		n := min(int64(len(zeros)), to-off)
		if _, err := s.file.WriteAt(zeros[:n], off); err != nil {
			return fmt.Errorf("zero fill at %d: %w", off, err)
		}
		off += n
	}
	return nil
}

func (s *Store) writeAt(p []byte, off int64) (int, error) {
	if s.discard {
		return s.file.Write(p)
	}
	return s.file.WriteAt(p, off)
}

// Header returns a copy of the in-memory header.
func (s *Store) Header() format.Header {
	return s.hdr
}

// Path returns the path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// Discarding reports whether the store is the os.DevNull fallback.
func (s *Store) Discarding() bool {
	return s.discard
}

// AppendByte writes b at the write cursor, wrapping to the start of the data
// region when the ring is full.
func (s *Store) AppendByte(b byte) error {
	s.one[0] = b
	_, err := s.Write(s.one[:])
	return err
}

// Write appends p to the ring. It has the same effect as calling AppendByte
// for every byte of p, issuing one write per contiguous segment.
//
// Cursors advance even when the underlying write fails, so a failed segment
// leaves stale bytes in the ring rather than shifting later input. The first
// error is returned together with len(p).
func (s *Store) Write(p []byte) (int, error) {
	var firstErr error
	total := len(p)

	for len(p) > 0 {
		if s.hdr.Current >= s.hdr.Size {
			s.hdr.Current = s.hdr.Top
			s.hdr.Bottom = s.hdr.Size
		}

		n := min(len(p), int(s.hdr.Size-s.hdr.Current))
		if _, err := s.writeAt(p[:n], int64(s.hdr.Current)); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("write at offset %d: %w", s.hdr.Current, err)
		}
		s.hdr.Current += uint32(n)
		p = p[n:]
	}

	if s.hdr.Current > s.hdr.Bottom {
		s.hdr.Bottom = s.hdr.Current
	}
	return total, firstErr
}

// Reader returns a new reader over the logical content, oldest byte first:
// [Current, Bottom) when the ring has wrapped, then [Top, Current).
// Each call starts from the beginning. Content is read lazily from the file;
// a file shorter than the header claims ends the stream early without error.
func (s *Store) Reader() io.Reader {
	if s.discard {
		return bytes.NewReader(nil)
	}

	h := s.hdr
	var segments []io.Reader
	if h.Current != h.Bottom {
		segments = append(segments, io.NewSectionReader(s.file, int64(h.Current), int64(h.Bottom-h.Current)))
	}
	segments = append(segments, io.NewSectionReader(s.file, int64(h.Top), int64(h.Current-h.Top)))
	return io.MultiReader(segments...)
}

// DumpTo copies the logical content to w in chronological order.
func (s *Store) DumpTo(w io.Writer) (int64, error) {
	n, err := io.Copy(w, s.Reader())
	if err != nil {
		return n, fmt.Errorf("read %s: %w", s.path, err)
	}
	return n, nil
}

// Flush writes the current header to offset 0.
func (s *Store) Flush() error {
	if _, err := s.writeAt(format.EncodeHeader(s.hdr), 0); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

// Close flushes the header, syncs and releases the file. A store returned
// by Open is only released.
func (s *Store) Close() error {
	if s.readOnly {
		return s.file.Close()
	}
	err := s.Flush()
	if !s.discard {
		if syncErr := s.file.Sync(); syncErr != nil && err == nil {
			err = fmt.Errorf("sync: %w", syncErr)
		}
	}
	if closeErr := s.file.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("close: %w", closeErr)
	}
	return err
}
