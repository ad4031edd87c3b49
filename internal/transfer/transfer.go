//go:build linux

// Package transfer implements a verified file copy that goes exclusively
// through the descriptor pass-through calls.
package transfer

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
	"unsafe"

	"github.com/desertwitch/fdglue/internal/fdio"
	"github.com/zeebo/blake3"
	"golang.org/x/sys/unix"
)

// TempSuffix is appended to the destination path for the in-flight copy.
const TempSuffix = ".fdglue"

type unixProvider interface {
	OpenMode(path string, flags int, mode uint32) (int, error)
	Read(fd int, buf unsafe.Pointer, count uintptr) (int64, error)
	Write(fd int, buf unsafe.Pointer, count uintptr) (int64, error)
	Close(fd int) error
	Fsync(fd int) error
	Fstat(fd int, stat *unix.Stat_t) error
	Access(path string, mode uint32) error
	Renameat2(olddirfd int, oldpath string, newdirfd int, newpath string, flags uint) error
	Unlink(path string) error
}

// Result describes a completed transfer.
type Result struct {
	Bytes    int64
	Checksum string
	Duration time.Duration
}

// Handler is the principal implementation of the transfer services. A
// [Handler] runs one transfer at a time, its [Handler.Progress] reflects the
// most recent one.
type Handler struct {
	unixHandler unixProvider
	bufferSize  int
	progress    *progressTracker
}

// NewHandler returns a pointer to a new [Handler] copying in chunks of
// bufferSize bytes.
func NewHandler(unixHandler unixProvider, bufferSize int) (*Handler, error) {
	if bufferSize < 1 {
		return nil, ErrInvalidBufferSize
	}

	return &Handler{
		unixHandler: unixHandler,
		bufferSize:  bufferSize,
		progress:    &progressTracker{},
	}, nil
}

// Progress returns a snapshot of the current or last transfer.
func (h *Handler) Progress() Progress {
	return h.progress.snapshot()
}

// Copy copies the regular file src to dst. The data is first written to
// dst + [TempSuffix], synced, read back and compared by checksum, and only
// then renamed to dst. An existing dst is never overwritten. The temporary
// file is removed on any failure.
func (h *Handler) Copy(ctx context.Context, src string, dst string) (*Result, error) {
	var transferComplete bool

	srcFd, err := h.unixHandler.OpenMode(src, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	srcFile := fdio.NewReadWriter(h.unixHandler, srcFd)
	defer srcFile.Close()

	var st unix.Stat_t
	if err := h.unixHandler.Fstat(srcFd, &st); err != nil {
		return nil, fmt.Errorf("failed to stat source file: %w", err)
	}
	if st.Mode&unix.S_IFMT != unix.S_IFREG {
		return nil, fmt.Errorf("%w: %s", ErrNotRegular, src)
	}

	tmpPath := dst + TempSuffix

	dstFd, err := h.unixHandler.OpenMode(tmpPath, unix.O_CREAT|unix.O_WRONLY|unix.O_EXCL|unix.O_CLOEXEC, st.Mode&0o7777) //nolint:mnd
	if err != nil {
		return nil, fmt.Errorf("failed to open destination file %s: %w", tmpPath, err)
	}
	dstFile := fdio.NewReadWriter(h.unixHandler, dstFd)
	defer dstFile.Close()

	defer func() {
		if !transferComplete {
			if err := h.unixHandler.Unlink(tmpPath); err != nil && !errors.Is(err, unix.ENOENT) {
				slog.Warn("Failed to remove temporary file.",
					"path", tmpPath,
					"err", err,
				)
			}
		}
	}()

	h.progress.start(st.Size)
	defer h.progress.finish()

	srcHasher := blake3.New()
	ctxReader := fdio.NewContextReader(ctx, io.TeeReader(srcFile, srcHasher))
	multiWriter := io.MultiWriter(dstFile, h.progress)

	copied, err := io.CopyBuffer(multiWriter, ctxReader, make([]byte, h.bufferSize))
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("transfer canceled: %w", err)
		}

		return nil, fmt.Errorf("failed to copy file: %w", err)
	}

	if err := h.unixHandler.Fsync(dstFd); err != nil {
		return nil, fmt.Errorf("failed to sync destination file: %w", err)
	}

	if err := dstFile.Close(); err != nil {
		return nil, fmt.Errorf("failed to close destination file: %w", err)
	}

	srcChecksum := hex.EncodeToString(srcHasher.Sum(nil))

	dstChecksum, err := h.checksum(ctx, tmpPath)
	if err != nil {
		return nil, fmt.Errorf("failed to verify destination file: %w", err)
	}

	if srcChecksum != dstChecksum {
		return nil, fmt.Errorf("%w: %s (src) != %s (dst)", ErrHashMismatch, srcChecksum, dstChecksum)
	}

	if err := h.unixHandler.Access(dst, unix.F_OK); err == nil {
		return nil, ErrRenameExists
	} else if !errors.Is(err, unix.ENOENT) {
		return nil, fmt.Errorf("failed to check rename destination existence: %w", err)
	}

	// The existence check above fails fast; the rename itself refuses to
	// replace a destination that appeared since.
	err = h.unixHandler.Renameat2(unix.AT_FDCWD, tmpPath, unix.AT_FDCWD, dst, unix.RENAME_NOREPLACE)
	if errors.Is(err, unix.EEXIST) {
		return nil, ErrRenameExists
	} else if err != nil {
		return nil, fmt.Errorf("failed to rename temporary file to destination file: %w", err)
	}

	transferComplete = true

	prog := h.progress.snapshot()

	return &Result{
		Bytes:    copied,
		Checksum: srcChecksum,
		Duration: time.Since(prog.StartTime),
	}, nil
}

// checksum returns the hex encoded blake3 sum of the file at path.
func (h *Handler) checksum(ctx context.Context, path string) (string, error) {
	fd, err := h.unixHandler.OpenMode(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return "", fmt.Errorf("failed to open: %w", err)
	}
	file := fdio.NewReadWriter(h.unixHandler, fd)
	defer file.Close()

	hasher := blake3.New()
	if _, err := io.CopyBuffer(hasher, fdio.NewContextReader(ctx, file), make([]byte, h.bufferSize)); err != nil {
		return "", fmt.Errorf("failed to hash: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
