//go:build linux

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/desertwitch/fdglue/internal/probe"
	"github.com/google/subcommands"
	"golang.org/x/sys/unix"
)

const defaultTerminal = "/dev/tty"

// winsizeCmd implements subcommands.Command for the "winsize" command.
type winsizeCmd struct {
	app *App
}

// Name implements subcommands.Command.Name.
func (*winsizeCmd) Name() string {
	return "winsize"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*winsizeCmd) Synopsis() string {
	return "print the window size of a terminal"
}

// Usage implements subcommands.Command.Usage.
func (*winsizeCmd) Usage() string {
	return `winsize [path]  -- defaults to /dev/tty
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (*winsizeCmd) SetFlags(*flag.FlagSet) {
}

// Execute implements subcommands.Command.Execute.
func (c *winsizeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		f.Usage()

		return subcommands.ExitUsageError
	}

	path := defaultTerminal
	if f.NArg() == 1 {
		path = f.Arg(0)
	}

	fd, err := c.app.unixHandler.Open(path, unix.O_RDONLY|unix.O_NOCTTY|unix.O_CLOEXEC)
	if err != nil {
		return c.app.printResult("open", int64(fd), err)
	}
	defer c.app.closeFd(fd)

	ws, err := probe.NewHandler(c.app.unixHandler).WindowSize(fd)
	if err != nil {
		fmt.Fprintf(c.app.out(), "winsize: %v\n", err)

		return subcommands.ExitFailure
	}

	fmt.Fprintf(c.app.out(), "rows=%d cols=%d xpixel=%d ypixel=%d\n", ws.Row, ws.Col, ws.Xpixel, ws.Ypixel)

	return subcommands.ExitSuccess
}

// pendingCmd implements subcommands.Command for the "pending" command.
type pendingCmd struct {
	app *App
}

// Name implements subcommands.Command.Name.
func (*pendingCmd) Name() string {
	return "pending"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*pendingCmd) Synopsis() string {
	return "print the number of bytes readable without blocking"
}

// Usage implements subcommands.Command.Usage.
func (*pendingCmd) Usage() string {
	return `pending <path>
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (*pendingCmd) SetFlags(*flag.FlagSet) {
}

// Execute implements subcommands.Command.Execute.
func (c *pendingCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()

		return subcommands.ExitUsageError
	}

	fd, err := c.app.unixHandler.Open(f.Arg(0), unix.O_RDONLY|unix.O_NONBLOCK|unix.O_NOCTTY|unix.O_CLOEXEC)
	if err != nil {
		return c.app.printResult("open", int64(fd), err)
	}
	defer c.app.closeFd(fd)

	n, err := probe.NewHandler(c.app.unixHandler).BytesReadable(fd)
	if err != nil {
		fmt.Fprintf(c.app.out(), "pending: %v\n", err)

		return subcommands.ExitFailure
	}

	fmt.Fprintf(c.app.out(), "pending=%d\n", n)

	return subcommands.ExitSuccess
}
