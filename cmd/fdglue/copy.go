//go:build linux

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/desertwitch/fdglue/internal/transfer"
	"github.com/desertwitch/fdglue/internal/ui"
	"github.com/dustin/go-humanize"
	"github.com/google/subcommands"
	"github.com/lmittmann/tint"
)

const uiHandlerName = "ui"

// copyCmd implements subcommands.Command for the "copy" command.
type copyCmd struct {
	app *App
	ui  bool
}

// Name implements subcommands.Command.Name.
func (*copyCmd) Name() string {
	return "copy"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*copyCmd) Synopsis() string {
	return "copy a file through the descriptor calls and verify the result"
}

// Usage implements subcommands.Command.Usage.
func (*copyCmd) Usage() string {
	return `copy [-ui] <src> <dst>  -- never overwrites dst
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (c *copyCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.ui, "ui", false, "show a progress user interface")
}

// Execute implements subcommands.Command.Execute.
func (c *copyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 { //nolint:mnd
		f.Usage()

		return subcommands.ExitUsageError
	}

	src, dst := f.Arg(0), f.Arg(1)

	handler, err := transfer.NewHandler(c.app.unixHandler, c.app.config.BufferSize)
	if err != nil {
		slog.Error("Failed to establish transfer handler.", "err", err)

		return subcommands.ExitFailure
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var res *transfer.Result
	if c.ui {
		res, err = c.copyWithUI(ctx, cancel, handler, src, dst)
	} else {
		res, err = handler.Copy(ctx, src, dst)
	}

	if err != nil {
		slog.Error("Transfer failed.",
			"src", src,
			"dst", dst,
			"err", err,
		)

		return subcommands.ExitFailure
	}

	fmt.Fprintf(c.app.out(), "copied %s in %v (%s/s) blake3=%s\n",
		humanize.IBytes(uint64(res.Bytes)), //nolint:gosec
		res.Duration.Round(time.Millisecond),
		humanize.IBytes(uint64(float64(res.Bytes)/max(res.Duration.Seconds(), 1e-9))),
		res.Checksum,
	)

	return subcommands.ExitSuccess
}

// copyWithUI runs the transfer while the progress user interface is shown.
// Logs are routed into the user interface for its lifetime.
func (c *copyCmd) copyWithUI(ctx context.Context, cancel context.CancelFunc, handler *transfer.Handler, src, dst string) (*transfer.Result, error) {
	uiHandler := ui.NewHandler(ctx, cancel, handler, src+" -> "+dst)

	terminal, hasTerminal := c.app.logManager.GetHandler(terminalHandler)
	c.app.logManager.RemoveHandler(terminalHandler)
	c.app.logManager.AddHandler(uiHandlerName, tint.NewHandler(uiHandler.LogWriter, &tint.Options{
		Level:      c.app.logLevel,
		TimeFormat: time.Kitchen,
		NoColor:    true,
	}))

	restoreLogging := sync.OnceFunc(func() {
		c.app.logManager.RemoveHandler(uiHandlerName)
		if hasTerminal {
			c.app.logManager.AddHandler(terminalHandler, terminal)
		}
	})
	defer restoreLogging()

	var res *transfer.Result
	var err error

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer uiHandler.Quit()

		slog.Info("Transfer started.", "src", src, "dst", dst)

		res, err = handler.Copy(ctx, src, dst)
		if err == nil {
			slog.Info("Transfer complete.", "bytes", res.Bytes, "blake3", res.Checksum)
		}
	}()

	if uiErr := uiHandler.Launch(); uiErr != nil && ctx.Err() == nil {
		restoreLogging()
		slog.Error("UI failure: falling back to terminal.", "err", uiErr)
	}
	restoreLogging()

	wg.Wait()

	return res, err
}
