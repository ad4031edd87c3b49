// Package fdio implements the caller-side loops over the pass-through
// read and write calls: retrying interrupted calls, continuing short writes
// and mapping a zero read to [io.EOF].
package fdio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

type syscallProvider interface {
	Read(fd int, buf unsafe.Pointer, count uintptr) (int64, error)
	Write(fd int, buf unsafe.Pointer, count uintptr) (int64, error)
	Close(fd int) error
}

// ReadWriter implements [io.ReadWriteCloser] for a descriptor. It takes
// ownership of the descriptor, which is closed by [ReadWriter.Close].
type ReadWriter struct {
	unixHandler syscallProvider
	fd          atomic.Int64
}

// NewReadWriter returns a pointer to a new [ReadWriter] for fd.
func NewReadWriter(unixHandler syscallProvider, fd int) *ReadWriter {
	rw := &ReadWriter{
		unixHandler: unixHandler,
	}
	rw.fd.Store(int64(fd))

	return rw
}

// FD returns the underlying descriptor or -1 after [ReadWriter.Close].
func (rw *ReadWriter) FD() int {
	return int(rw.fd.Load())
}

// Read implements [io.Reader]. Interrupted reads are retried, a zero read of a
// non-empty buffer is reported as [io.EOF].
func (rw *ReadWriter) Read(b []byte) (int, error) {
	fd := rw.FD()
	if fd < 0 {
		return 0, ErrClosed
	}

	if len(b) == 0 {
		return 0, nil
	}

	for {
		n, err := rw.unixHandler.Read(fd, unsafe.Pointer(&b[0]), uintptr(len(b)))
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read: %w", err)
		}
		if n == 0 {
			return 0, io.EOF
		}

		return int(n), nil
	}
}

// Write implements [io.Writer]. It keeps writing until all of b is written,
// retrying interrupted calls.
func (rw *ReadWriter) Write(b []byte) (int, error) {
	fd := rw.FD()
	if fd < 0 {
		return 0, ErrClosed
	}

	var written int
	for written < len(b) {
		n, err := rw.unixHandler.Write(fd, unsafe.Pointer(&b[written]), uintptr(len(b)-written))
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return written, fmt.Errorf("failed to write: %w", err)
		}
		if n == 0 {
			return written, ErrNoProgress
		}

		written += int(n)
	}

	return written, nil
}

// Close closes the descriptor. Calling it more than once returns [ErrClosed].
func (rw *ReadWriter) Close() error {
	fd := rw.fd.Swap(-1)
	if fd < 0 {
		return ErrClosed
	}

	if err := rw.unixHandler.Close(int(fd)); err != nil {
		return fmt.Errorf("failed to close: %w", err)
	}

	return nil
}

// ContextReader is an [io.Reader] that stops reading once its context is
// done.
//
//nolint:containedctx
type ContextReader struct {
	ctx    context.Context
	reader io.Reader
}

// NewContextReader returns a pointer to a new [ContextReader].
func NewContextReader(ctx context.Context, reader io.Reader) *ContextReader {
	return &ContextReader{
		ctx:    ctx,
		reader: reader,
	}
}

// Read implements [io.Reader].
func (cr *ContextReader) Read(p []byte) (int, error) {
	select {
	case <-cr.ctx.Done():
		return 0, cr.ctx.Err()
	default:
		return cr.reader.Read(p)
	}
}
