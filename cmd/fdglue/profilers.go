//go:build linux

package main

import (
	"context"
	"errors"
	"fmt"
	"runtime/pprof"
	"unsafe"

	"github.com/desertwitch/fdglue/internal/fdio"
	"golang.org/x/sys/unix"
)

const profileFileMode = 0o644

// profileKind selects what a [profiler] records.
type profileKind int

const (
	// profileCPU samples the CPU for as long as the profiler runs.
	profileCPU profileKind = iota

	// profileAllocs snapshots the allocation profile when the profiler stops.
	profileAllocs
)

func (k profileKind) String() string {
	if k == profileCPU {
		return "cpu"
	}

	return "allocs"
}

type profileProvider interface {
	OpenMode(path string, flags int, mode uint32) (int, error)
	Read(fd int, buf unsafe.Pointer, count uintptr) (int64, error)
	Write(fd int, buf unsafe.Pointer, count uintptr) (int64, error)
	Close(fd int) error
}

// profiler writes a runtime profile to a file created through the
// descriptor calls.
//
//nolint:containedctx
type profiler struct {
	kind        profileKind
	unixHandler profileProvider
	ctx         context.Context
	cancel      context.CancelFunc
	doneChan    chan struct{}
	err         error
}

// startProfiler starts a profiler of the given kind writing to path. An
// empty path returns a profiler that records nothing.
func startProfiler(ctx context.Context, unixHandler profileProvider, kind profileKind, path string) *profiler {
	prof := &profiler{
		kind:        kind,
		unixHandler: unixHandler,
		doneChan:    make(chan struct{}),
	}
	prof.ctx, prof.cancel = context.WithCancel(ctx)

	go func() {
		defer close(prof.doneChan)

		if path == "" {
			return
		}

		prof.err = prof.run(path)
	}()

	return prof
}

func (prof *profiler) create(path string) (*fdio.ReadWriter, error) {
	fd, err := prof.unixHandler.OpenMode(path, unix.O_WRONLY|unix.O_CREAT|unix.O_TRUNC|unix.O_CLOEXEC, profileFileMode)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s profile: %w", prof.kind, err)
	}

	return fdio.NewReadWriter(prof.unixHandler, fd), nil
}

func (prof *profiler) run(path string) (retErr error) {
	if prof.kind == profileAllocs {
		<-prof.ctx.Done()
	}

	file, err := prof.create(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := file.Close(); err != nil {
			retErr = errors.Join(retErr, fmt.Errorf("failed to close %s profile: %w", prof.kind, err))
		}
	}()

	if prof.kind == profileAllocs {
		if err := pprof.Lookup("allocs").WriteTo(file, 0); err != nil {
			return fmt.Errorf("failed to write allocs profile: %w", err)
		}

		return nil
	}

	if err := pprof.StartCPUProfile(file); err != nil {
		return fmt.Errorf("failed to start cpu profile: %w", err)
	}
	<-prof.ctx.Done()
	pprof.StopCPUProfile()

	return nil
}

// Stop ends profiling, waits for the profile to be written and returns what
// went wrong while doing so.
func (prof *profiler) Stop() error {
	prof.cancel()
	<-prof.doneChan

	return prof.err
}
