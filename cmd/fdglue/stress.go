//go:build linux

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/desertwitch/fdglue/internal/cstring"
	"github.com/dustin/go-humanize"
	"github.com/google/subcommands"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
)

// stressNames are the path components the stress test cycles through, to
// cover ASCII, multi-byte and over-long conversions.
//
//nolint:gochecknoglobals
var stressNames = []string{
	"plain",
	"ünïcödé",
	"日本語のパス",
	strings.Repeat("x", 300),
	strings.Repeat("🗂", 200),
}

// stressReport is the outcome of a stress run.
type stressReport struct {
	sync.Mutex
	opened int
	failed map[string]int
}

func (r *stressReport) record(err error) {
	r.Lock()
	defer r.Unlock()

	if err == nil {
		r.opened++

		return
	}

	var errno unix.Errno
	if errors.As(err, &errno) {
		r.failed[unix.ErrnoName(errno)]++
	} else {
		r.failed[err.Error()]++
	}
}

// stressCmd implements subcommands.Command for the "stress" command.
type stressCmd struct {
	app        *App
	iterations int
	workers    int
}

// Name implements subcommands.Command.Name.
func (*stressCmd) Name() string {
	return "stress"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*stressCmd) Synopsis() string {
	return "open many long and non-ASCII paths concurrently and check for leaks"
}

// Usage implements subcommands.Command.Usage.
func (*stressCmd) Usage() string {
	return `stress [-iterations N] [-workers N] <dir>  -- opens paths below dir
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (c *stressCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.iterations, "iterations", 0, "number of opens (default from configuration)")
	f.IntVar(&c.workers, "workers", 0, "number of concurrent workers (default from configuration)")
}

// Execute implements subcommands.Command.Execute.
func (c *stressCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 || c.iterations < 0 || c.workers < 0 {
		f.Usage()

		return subcommands.ExitUsageError
	}

	iterations := c.iterations
	if iterations == 0 {
		iterations = c.app.config.StressIterations
	}

	workers := c.workers
	if workers == 0 {
		workers = c.app.config.StressWorkers
	}

	memObserver := newMemoryObserver(ctx)

	report, err := c.run(ctx, f.Arg(0), iterations, workers)
	peak := memObserver.Stop()

	if err != nil {
		slog.Error("Stress run aborted.", "err", err)

		return subcommands.ExitFailure
	}

	outstanding := cstring.Outstanding()

	fmt.Fprintf(c.app.out(), "opens=%d succeeded=%d peak_heap=%s outstanding_buffers=%d\n",
		iterations, report.opened, humanize.IBytes(peak), outstanding)

	names := make([]string, 0, len(report.failed))
	for name := range report.failed {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(c.app.out(), "  %s=%d\n", name, report.failed[name])
	}

	if outstanding != 0 {
		slog.Error("Path buffers were not released.", "outstanding", outstanding)

		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}

// run spreads iterations opens over the workers. Every successfully opened
// descriptor is closed again right away.
func (c *stressCmd) run(ctx context.Context, dir string, iterations int, workers int) (*stressReport, error) {
	report := &stressReport{
		failed: make(map[string]int),
	}

	g, ctx := errgroup.WithContext(ctx)

	for w := range workers {
		g.Go(func() error {
			for i := w; i < iterations; i += workers {
				if err := ctx.Err(); err != nil {
					return err
				}

				path := dir
				if i%len(stressNames) != 0 {
					path = filepath.Join(dir, stressNames[i%len(stressNames)])
				}

				fd, err := c.app.unixHandler.Open(path, unix.O_RDONLY|unix.O_CLOEXEC)
				report.record(err)

				if err == nil {
					if err := c.app.unixHandler.Close(fd); err != nil {
						return fmt.Errorf("failed to close %s: %w", path, err)
					}
				}
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}

	return report, nil
}
