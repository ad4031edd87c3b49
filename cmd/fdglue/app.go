//go:build linux

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/desertwitch/fdglue/internal/configuration"
	"github.com/desertwitch/fdglue/internal/probe"
	"github.com/google/subcommands"
	"golang.org/x/sys/unix"
)

// App holds what the subcommands share. It is filled in after flag parsing,
// before any subcommand executes.
type App struct {
	config      *configuration.Config
	logManager  *SlogManager
	logLevel    slog.Leveler
	unixHandler probe.Provider

	stdout io.Writer
}

func (app *App) out() io.Writer {
	if app.stdout == nil {
		return os.Stdout
	}

	return app.stdout
}

// printResult prints a pass-through result in the kernel's convention and
// returns the matching exit status.
func (app *App) printResult(op string, ret int64, err error) subcommands.ExitStatus {
	if err != nil {
		errno, _ := err.(unix.Errno) //nolint:errorlint
		fmt.Fprintf(app.out(), "%s: ret=%d errno=%d (%v)\n", op, ret, uintptr(errno), err)

		return subcommands.ExitFailure
	}

	fmt.Fprintf(app.out(), "%s: ret=%d\n", op, ret)

	return subcommands.ExitSuccess
}
