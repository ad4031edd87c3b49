//go:build linux

package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/desertwitch/fdglue/internal/probe"
	"github.com/google/subcommands"
)

// openArgs are the flags shared by every subcommand that opens a path.
type openArgs struct {
	flags string
	mode  string
}

func (o *openArgs) setFlags(f *flag.FlagSet, defaultFlags string) {
	f.StringVar(&o.flags, "flags", defaultFlags, "open flags, e.g. rdwr|creat|trunc or a number")
	f.StringVar(&o.mode, "mode", "0o644", "permission mode for created files")
}

// open opens path with the parsed flags and mode. On failure it reports the
// result and returns the exit status to use.
func (o *openArgs) open(app *App, path string) (int, subcommands.ExitStatus, bool) {
	flags, err := parseOpenFlags(o.flags)
	if err != nil {
		slog.Error("Invalid open flags.", "err", err)

		return -1, subcommands.ExitUsageError, false
	}

	mode, err := parseNumber(o.mode, 32) //nolint:mnd
	if err != nil {
		slog.Error("Invalid permission mode.", "err", err)

		return -1, subcommands.ExitUsageError, false
	}

	fd, err := app.unixHandler.OpenMode(path, flags, uint32(mode))
	if err != nil {
		return -1, app.printResult("open", int64(fd), err), false
	}

	return fd, subcommands.ExitSuccess, true
}

func (app *App) closeFd(fd int) {
	if err := app.unixHandler.Close(fd); err != nil {
		slog.Warn("Failed to close descriptor.", "fd", fd, "err", err)
	}
}

// openCmd implements subcommands.Command for the "open" command.
type openCmd struct {
	app *App
	openArgs
}

// Name implements subcommands.Command.Name.
func (*openCmd) Name() string {
	return "open"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*openCmd) Synopsis() string {
	return "open a path and print the descriptor"
}

// Usage implements subcommands.Command.Usage.
func (*openCmd) Usage() string {
	return `open [-flags rdonly] [-mode 0o644] <path>
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (c *openCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f, "rdonly")
}

// Execute implements subcommands.Command.Execute.
func (c *openCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()

		return subcommands.ExitUsageError
	}

	fd, status, ok := c.open(c.app, f.Arg(0))
	if !ok {
		return status
	}
	defer c.app.closeFd(fd)

	return c.app.printResult("open", int64(fd), nil)
}

// readCmd implements subcommands.Command for the "read" command.
type readCmd struct {
	app *App
	openArgs
	count int
	raw   bool
}

// Name implements subcommands.Command.Name.
func (*readCmd) Name() string {
	return "read"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*readCmd) Synopsis() string {
	return "issue a single read on a path and print the result"
}

// Usage implements subcommands.Command.Usage.
func (*readCmd) Usage() string {
	return `read [-count 4096] [-raw] [-flags rdonly] <path>  -- short reads are reported as is
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (c *readCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f, "rdonly")
	f.IntVar(&c.count, "count", 4096, "number of bytes to request") //nolint:mnd
	f.BoolVar(&c.raw, "raw", false, "print the data as is instead of a hex dump")
}

// Execute implements subcommands.Command.Execute.
func (c *readCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 || c.count < 0 {
		f.Usage()

		return subcommands.ExitUsageError
	}

	fd, status, ok := c.open(c.app, f.Arg(0))
	if !ok {
		return status
	}
	defer c.app.closeFd(fd)

	buf := make([]byte, c.count)
	n, err := c.app.unixHandler.Read(fd, unsafe.Pointer(unsafe.SliceData(buf)), uintptr(len(buf)))

	status = c.app.printResult("read", n, err)
	if n > 0 {
		if c.raw {
			c.app.out().Write(buf[:n]) //nolint:errcheck
		} else {
			fmt.Fprint(c.app.out(), hex.Dump(buf[:n]))
		}
	}

	return status
}

// writeCmd implements subcommands.Command for the "write" command.
type writeCmd struct {
	app *App
	openArgs
	hexData bool
}

// Name implements subcommands.Command.Name.
func (*writeCmd) Name() string {
	return "write"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*writeCmd) Synopsis() string {
	return "issue a single write on a path and print the result"
}

// Usage implements subcommands.Command.Usage.
func (*writeCmd) Usage() string {
	return `write [-hex] [-flags wronly|creat|append] [-mode 0o644] <path> <data>  -- short writes are reported as is
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (c *writeCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f, "wronly|creat|append")
	f.BoolVar(&c.hexData, "hex", false, "data is hex encoded")
}

// Execute implements subcommands.Command.Execute.
func (c *writeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 { //nolint:mnd
		f.Usage()

		return subcommands.ExitUsageError
	}

	data := []byte(f.Arg(1))
	if c.hexData {
		decoded, err := hex.DecodeString(f.Arg(1))
		if err != nil {
			slog.Error("Invalid hex data.", "err", err)

			return subcommands.ExitUsageError
		}
		data = decoded
	}

	fd, status, ok := c.open(c.app, f.Arg(0))
	if !ok {
		return status
	}
	defer c.app.closeFd(fd)

	n, err := c.app.unixHandler.Write(fd, unsafe.Pointer(unsafe.SliceData(data)), uintptr(len(data)))
	if err == nil && n < int64(len(data)) {
		slog.Warn("Short write.", "written", n, "requested", len(data))
	}

	return c.app.printResult("write", n, err)
}

// ioctlCmd implements subcommands.Command for the "ioctl" command.
type ioctlCmd struct {
	app *App
	openArgs
	req   string
	value int
	size  int
	input string
}

// Name implements subcommands.Command.Name.
func (*ioctlCmd) Name() string {
	return "ioctl"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*ioctlCmd) Synopsis() string {
	return "issue a raw device control request"
}

// Usage implements subcommands.Command.Usage.
func (*ioctlCmd) Usage() string {
	return `ioctl -req <code> [-int N | -ptr SIZE [-in HEX]] [-flags rdonly] <path>
  -int passes an integer argument, -ptr passes a buffer of SIZE bytes that is
  hex dumped after the call.
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (c *ioctlCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f, "rdonly|nonblock")
	f.StringVar(&c.req, "req", "", "request code, e.g. 0x541B")
	f.IntVar(&c.value, "int", 0, "integer argument")
	f.IntVar(&c.size, "ptr", 0, "pass a pointer to a buffer of this size instead of an integer")
	f.StringVar(&c.input, "in", "", "hex encoded initial buffer contents")
}

// Execute implements subcommands.Command.Execute.
func (c *ioctlCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 || c.req == "" || c.size < 0 {
		f.Usage()

		return subcommands.ExitUsageError
	}

	req, err := parseNumber(c.req, 32) //nolint:mnd
	if err != nil {
		slog.Error("Invalid request code.", "err", err)

		return subcommands.ExitUsageError
	}

	var buf []byte
	if c.size > 0 {
		buf = make([]byte, c.size)
		if c.input != "" {
			in, err := hex.DecodeString(c.input)
			if err != nil {
				slog.Error("Invalid hex input.", "err", err)

				return subcommands.ExitUsageError
			}
			if len(in) > len(buf) {
				slog.Error("Hex input does not fit the buffer.", "input", len(in), "size", len(buf))

				return subcommands.ExitUsageError
			}
			copy(buf, in)
		}
	}

	fd, status, ok := c.open(c.app, f.Arg(0))
	if !ok {
		return status
	}
	defer c.app.closeFd(fd)

	h := probe.NewHandler(c.app.unixHandler)

	if buf == nil {
		ret, err := h.Raw(fd, uint(req), c.value)

		return c.app.printResult("ioctl", int64(ret), err)
	}

	ret, err := h.RawBuffer(fd, uint(req), buf)
	status = c.app.printResult("ioctl", int64(ret), err)
	if err == nil {
		fmt.Fprint(c.app.out(), hex.Dump(buf))
	}

	return status
}
