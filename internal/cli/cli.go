// Package cli implements the command-line interface for alog.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/eunmann/alog/internal/logctx"
	"github.com/eunmann/alog/internal/session"
	"github.com/eunmann/alog/pkg/humanfmt"
)

// debugEnv enables debug logging when no --debug flag is given.
const debugEnv = "ALOG_DEBUG"

const usage = `alog -f File [-s Size] [-q]
  alog -f File -o
  alog -f File --info
  alog -H`

// Run executes alog with the given arguments and standard streams and
// returns the process exit code.
func Run(args []string) int {
	return run(context.Background(), args, os.Stdin, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	status := session.StatusOK
	cmd := newRootCommand(&status)
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "alog: %v\n", err)
		if status == session.StatusOK || errors.Is(err, session.ErrInvalidConfig) {
			status = session.StatusSyntax
		}
		if status == session.StatusSyntax {
			fmt.Fprintf(stderr, "Usage:\n  %s\n", usage)
		}
	}
	return int(status)
}

type flags struct {
	file   string
	size   string
	output bool
	info   bool
	quiet  bool
	debug  bool
	human  bool
}

func newRootCommand(status *session.Status) *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "alog",
		Short: "Append standard input to a fixed-size circular log file",
		Long: `alog copies standard input to standard output and into a circular log file.
The log never grows past its size: once full, the oldest bytes are overwritten.
Use -o to print the log oldest first, and -s to create, grow or shrink it.`,
		Example:       usage,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.config()
			if err != nil {
				*status = session.StatusSyntax
				return err
			}

			logger := logctx.NewConfiguredLogger(cmd.ErrOrStderr(), f.debug || envBool(debugEnv), f.human)
			ctx := logctx.WithLogger(cmd.Context(), logger)

			st, err := session.Run(ctx, cfg, cmd.InOrStdin(), cmd.OutOrStdout())
			*status = st
			return err
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.file, "file", "f", "", "log file to append to or read from")
	fl.StringVarP(&f.size, "size", "s", "", "log size in bytes, rounded up to 4096 (e.g. 8192, 64K, 1M)")
	fl.BoolVarP(&f.output, "output", "o", false, "write the log to standard output, oldest first")
	fl.BoolVar(&f.info, "info", false, "print the log header")
	fl.BoolVarP(&f.quiet, "quiet", "q", false, "do not copy input to standard output")
	fl.BoolVar(&f.debug, "debug", false, "enable debug logging (also "+debugEnv+"=1)")
	fl.BoolVar(&f.human, "human", false, "human-friendly log output instead of JSON")
	fl.BoolP("help", "H", false, "show usage")
	cmd.MarkFlagsMutuallyExclusive("output", "info")

	return cmd
}

// config converts parsed flags into a validated session configuration.
func (f flags) config() (session.Config, error) {
	cfg := session.Config{
		Path:  f.file,
		Quiet: f.quiet,
	}

	switch {
	case f.output:
		cfg.Mode = session.ModeDump
	case f.info:
		cfg.Mode = session.ModeInfo
	default:
		cfg.Mode = session.ModeAppend
	}

	if f.size != "" {
		size, err := humanfmt.ParseBytes(f.size)
		if err != nil {
			return session.Config{}, fmt.Errorf("--size: %w", err)
		}
		cfg.Size = size
	}

	if err := cfg.Validate(); err != nil {
		return session.Config{}, err
	}
	return cfg, nil
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}
