//go:build linux

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/desertwitch/fdglue"
	"github.com/desertwitch/fdglue/internal/configuration"
	"github.com/desertwitch/fdglue/internal/probe"
	"github.com/google/subcommands"
	"github.com/lmittmann/tint"
)

const (
	stackTraceBufMax = 1 << 24

	terminalHandler = "terminal"
)

//nolint:gochecknoglobals
var (
	ExitCode = 0
	Version  string

	configFile = flag.String("config", "", "read settings from this .env file")
	debug      = flag.Bool("debug", false, "log every descriptor call")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile = flag.String("memprofile", "", "write memory profile to this file")
)

func setupLogging(logManager *SlogManager, level slog.Leveler) {
	logManager.AddHandler(terminalHandler, tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(slog.New(logManager))
}

func setupSignalHandlers(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		<-sigChan
		cancel()
	}()

	sigChan2 := make(chan os.Signal, 1)
	signal.Notify(sigChan2, syscall.SIGUSR1)
	go func() {
		for range sigChan2 {
			buf := make([]byte, stackTraceBufMax)
			stacklen := runtime.Stack(buf, true)
			os.Stderr.Write(buf[:stacklen])
		}
	}()
}

func registerCommands(app *App) {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	subcommands.Register(&openCmd{app: app}, "descriptors")
	subcommands.Register(&readCmd{app: app}, "descriptors")
	subcommands.Register(&writeCmd{app: app}, "descriptors")
	subcommands.Register(&ioctlCmd{app: app}, "descriptors")

	subcommands.Register(&winsizeCmd{app: app}, "devices")
	subcommands.Register(&pendingCmd{app: app}, "devices")

	subcommands.Register(&copyCmd{app: app}, "tools")
	subcommands.Register(&stressCmd{app: app}, "tools")
}

func main() {
	defer func() {
		os.Exit(ExitCode)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := &App{}
	registerCommands(app)

	// All subcommands must be registered before flag parsing.
	flag.Parse()

	logManager := NewSlogManager()
	setupLogging(logManager, slog.LevelInfo)

	var configFiles []string
	if *configFile != "" {
		configFiles = append(configFiles, *configFile)
	}

	config, err := configuration.NewHandler(&configuration.GodotenvProvider{}).Load(configFiles...)
	if err != nil {
		slog.Error("Failed to load configuration.",
			"err", err,
		)
		ExitCode = int(subcommands.ExitUsageError)

		return
	}

	level := config.LogLevel
	if *debug {
		level = slog.LevelDebug
	}
	setupLogging(logManager, level)
	setupSignalHandlers(cancel)

	profilers := []*profiler{
		startProfiler(ctx, &fdglue.Unix{}, profileCPU, *cpuprofile),
		startProfiler(ctx, &fdglue.Unix{}, profileAllocs, *memprofile),
	}
	defer func() {
		for _, prof := range profilers {
			if err := prof.Stop(); err != nil {
				slog.Error("Failed to write profile.", "err", err)
			}
		}
	}()

	var unixHandler probe.Provider = &fdglue.Unix{}
	if *debug {
		unixHandler = probe.NewTrace(unixHandler, nil)
	}

	app.config = config
	app.logManager = logManager
	app.logLevel = level
	app.unixHandler = unixHandler

	ExitCode = int(subcommands.Execute(ctx))
}
