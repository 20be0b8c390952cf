package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"vela/internal/prof"
	"vela/internal/version"
)

// exitError carries a non-zero exit status without an error message; the
// diagnostics were already printed.
type exitError struct{ code int }

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// newRootCmd builds the command tree with its persistent flags.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "vela",
		Short:         "Vela compiler front end",
		Long:          `Vela checks and lowers Kotlin-like units and manages compiled libraries`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cleanup, err := setupTracing(cmd)
			if err != nil {
				return err
			}
			traceCleanup = cleanup
			return startProfiling(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			finish()
		},
	}

	root.AddCommand(newCheckCmd())
	root.AddCommand(newLowerCmd())
	root.AddCommand(newLibCmd())
	root.AddCommand(newVersionCmd())

	flags := root.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 0, "maximum number of diagnostics per unit (0 uses vela.toml or the default)")
	flags.Int("jobs", 0, "units checked in parallel (0 uses vela.toml or GOMAXPROCS)")
	flags.StringSlice("features", nil, "language features to toggle, as name or name=false")
	flags.Bool("es6", false, "compile for the ES6 class model")
	flags.StringSlice("lib", nil, "library directory or .vlib archive (repeatable)")
	flags.String("trace", "", "write trace events to this file (- for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	flags.Int("trace-ring-size", 4096, "events kept by the ring tracer")
	flags.String("cpuprofile", "", "write a CPU profile to this file")
	flags.String("memprofile", "", "write a heap profile to this file on exit")
	flags.String("runtime-trace", "", "write a Go runtime trace to this file")
	return root
}

var (
	traceCleanup func()
	profiler     *prof.Profiler
)

func startProfiling(cmd *cobra.Command) error {
	flags := cmd.Flags()
	var opts prof.Options
	opts.CPU, _ = flags.GetString("cpuprofile")
	opts.Mem, _ = flags.GetString("memprofile")
	opts.Trace, _ = flags.GetString("runtime-trace")
	if !opts.Enabled() {
		return nil
	}
	p, err := prof.Start(opts)
	if err != nil {
		return err
	}
	profiler = p
	return nil
}

// finish stops profiling and flushes the tracer. PersistentPostRun is
// skipped when a command fails, so main calls it again.
func finish() {
	if profiler != nil {
		if err := profiler.Stop(); err != nil {
			fmt.Fprintln(os.Stderr, "vela: profile:", err)
		}
		profiler = nil
	}
	if traceCleanup != nil {
		traceCleanup()
		traceCleanup = nil
	}
}

func main() {
	err := newRootCmd().ExecuteContext(context.Background())
	finish()
	if err == nil {
		return
	}
	var exit exitError
	if errors.As(err, &exit) {
		os.Exit(exit.code)
	}
	fmt.Fprintln(os.Stderr, "vela:", err)
	os.Exit(1)
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}
