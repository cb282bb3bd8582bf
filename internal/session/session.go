// Package session drives one run of alog: it opens or creates the log,
// applies a requested resize, then streams input into the log or writes the
// log back out.
//
// Sessions fail open. Problems with the log file send input to a discard
// sink and are reported through a StatusDegraded result, so a pipeline that
// feeds alog is never blocked by logging trouble.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eunmann/alog/internal/logctx"
	"github.com/eunmann/alog/pkg/fileutil"
	"github.com/eunmann/alog/pkg/humanfmt"
	"github.com/eunmann/alog/pkg/ring"
)

const copyBufferSize = 32 * 1024

// Run executes cfg, reading input from in and writing console output to out.
// The returned error is non-nil only when the session could not write
// anywhere at all; the Status is meaningful in every case.
func Run(ctx context.Context, cfg Config, in io.Reader, out io.Writer, opts ...ring.Option) (Status, error) {
	if err := cfg.Validate(); err != nil {
		return StatusSyntax, err
	}
	if cfg.Path != "" {
		ctx = logctx.WithStr(ctx, "path", cfg.Path)
	}

	switch cfg.Mode {
	case ModeDump:
		return runDump(ctx, cfg, out), nil
	case ModeInfo:
		return runInfo(ctx, cfg, out), nil
	default:
		return runAppend(ctx, cfg, in, out, opts)
	}
}

func runAppend(ctx context.Context, cfg Config, in io.Reader, out io.Writer, opts []ring.Option) (Status, error) {
	log := logctx.FromContext(ctx)
	status := StatusOK

	mirror := out
	if cfg.Quiet {
		devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
		if err != nil {
			return StatusDegraded, fmt.Errorf("open %s: %w", os.DevNull, err)
		}
		defer devNull.Close()
		mirror = devNull
	}

	existed := cfg.Path != "" && fileutil.Exists(cfg.Path)
	store, degraded, err := open(ctx, cfg, opts)
	if err != nil {
		return StatusDegraded, err
	}
	status = status.Merge(degradedIf(degraded))

	// A log created by this session already has the requested size.
	if cfg.Size != 0 && existed {
		store, degraded, err = ring.Resize(ctx, store, cfg.Size)
		if err != nil {
			// The resized log could not be reopened; keep the pipeline moving.
			log.Error().Err(err).Msg("cannot reopen log after resize, discarding input")
			if store, err = ring.OpenDiscard(); err != nil {
				return StatusDegraded, err
			}
			degraded = true
		}
		status = status.Merge(degradedIf(degraded))
	}

	// Interrupts and broken pipes must not stop the session between the
	// data writes and the final header write.
	signal.Ignore(os.Interrupt, syscall.SIGPIPE)
	defer signal.Reset(os.Interrupt, syscall.SIGPIPE)

	start := time.Now()
	stats, streamErr := AppendStream(ctx, store, in, mirror)
	if streamErr != nil {
		log.Error().Err(streamErr).Msg("input stream ended early")
	}
	status = status.Merge(stats.status())

	if err := store.Close(); err != nil {
		log.Error().Err(err).Msg("cannot close log")
		status = status.Merge(StatusDegraded)
	}

	log.Debug().
		Int64("bytes", stats.Bytes).
		Int("log_errors", stats.LogErrors).
		Str("throughput", humanfmt.Throughput(stats.Bytes, time.Since(start))).
		Bool("discarded", store.Discarding()).
		Stringer("status", status).
		Msg("append session done")
	return status, nil
}

// open returns the store for an append session. A missing path is not an
// error: input goes to the discard sink and the result is degraded.
func open(ctx context.Context, cfg Config, opts []ring.Option) (*ring.Store, bool, error) {
	if cfg.Path == "" {
		log := logctx.FromContext(ctx)
		log.Warn().Msg("no log file given, discarding input")
		s, err := ring.OpenDiscard()
		return s, true, err
	}
	return ring.OpenOrCreate(ctx, cfg.Path, cfg.Size, opts...)
}

// StreamStats summarizes one AppendStream call.
type StreamStats struct {
	Bytes         int64 // bytes read from the source
	LogErrors     int   // chunks the log failed to store
	MirrorDropped bool
}

// status reports a degraded session when any chunk missed the log.
func (st StreamStats) status() Status {
	return degradedIf(st.LogErrors > 0)
}

// AppendStream copies src into dst until src is exhausted, mirroring every
// chunk to mirror. Write failures on the log or the mirror are logged and
// skipped; the mirror is dropped after its first failure. Only a failure to
// read src ends the stream early.
func AppendStream(ctx context.Context, dst io.Writer, src io.Reader, mirror io.Writer) (StreamStats, error) {
	log := logctx.FromContext(ctx)
	buf := make([]byte, copyBufferSize)
	var stats StreamStats

	for {
		n, err := src.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if _, werr := dst.Write(chunk); werr != nil {
				if stats.LogErrors == 0 {
					log.Error().Err(werr).Msg("log write failed, continuing")
				}
				stats.LogErrors++
			}
			if mirror != nil {
				if _, werr := mirror.Write(chunk); werr != nil {
					log.Warn().Err(werr).Msg("console write failed, no longer mirroring")
					mirror = nil
					stats.MirrorDropped = true
				}
			}
			stats.Bytes += int64(n)
		}
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			return stats, fmt.Errorf("read input: %w", err)
		}
	}
}

func runDump(ctx context.Context, cfg Config, out io.Writer) Status {
	log := logctx.FromContext(ctx)

	s, err := ring.Open(ctx, cfg.Path)
	if err != nil {
		log.Error().Err(err).Msg("cannot dump log")
		return StatusDegraded
	}
	defer s.Close()

	n, err := s.DumpTo(out)
	if err != nil {
		log.Error().Err(err).Int64("bytes", n).Msg("dump stopped early")
		return StatusDegraded
	}
	log.Debug().Int64("bytes", n).Msg("dumped log")
	return StatusOK
}

func runInfo(ctx context.Context, cfg Config, out io.Writer) Status {
	log := logctx.FromContext(ctx)

	s, err := ring.Open(ctx, cfg.Path)
	if err != nil {
		log.Error().Err(err).Msg("cannot read log header")
		return StatusDegraded
	}
	defer s.Close()

	h := s.Header()
	_, err = fmt.Fprintf(out,
		"file:     %s\nsize:     %d (%s)\ncapacity: %d\nused:     %d\nwrapped:  %t\ntop:      %d\ncurrent:  %d\nbottom:   %d\n",
		cfg.Path,
		h.Size, humanfmt.Bytes(int64(h.Size)),
		h.Capacity(),
		h.Used(),
		h.Wrapped(),
		h.Top, h.Current, h.Bottom,
	)
	if err != nil {
		log.Error().Err(err).Msg("cannot write log info")
		return StatusDegraded
	}
	return StatusOK
}
