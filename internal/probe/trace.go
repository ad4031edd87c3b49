//go:build linux

package probe

import (
	"context"
	"log/slog"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Provider is the full set of descriptor calls a [Trace] forwards.
type Provider interface {
	Open(path string, flags int) (int, error)
	OpenMode(path string, flags int, mode uint32) (int, error)
	Ioctl(fd int, req uint, data unsafe.Pointer) (int, error)
	IoctlInt(fd int, req uint, value int) (int, error)
	Write(fd int, buf unsafe.Pointer, count uintptr) (int64, error)
	Read(fd int, buf unsafe.Pointer, count uintptr) (int64, error)
	Close(fd int) error
	Fsync(fd int) error
	Fstat(fd int, stat *unix.Stat_t) error
	Access(path string, mode uint32) error
	Rename(oldpath, newpath string) error
	Renameat2(olddirfd int, oldpath string, newdirfd int, newpath string, flags uint) error
	Unlink(path string) error
}

// Trace is a [Provider] that logs every call and its outcome with
// [slog.LevelDebug] before returning the wrapped provider's results
// unchanged.
type Trace struct {
	next   Provider
	logger *slog.Logger
}

// NewTrace returns a pointer to a new [Trace] around next. A nil logger uses
// [slog.Default].
func NewTrace(next Provider, logger *slog.Logger) *Trace {
	if logger == nil {
		logger = slog.Default()
	}

	return &Trace{
		next:   next,
		logger: logger,
	}
}

func (t *Trace) log(op string, err error, attrs ...slog.Attr) {
	if !t.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	attrs = append(attrs, slog.String("op", op))
	if err != nil {
		attrs = append(attrs, slog.Any("err", err))
	}

	t.logger.LogAttrs(context.Background(), slog.LevelDebug, "Descriptor call.", attrs...)
}

// Open traces [Provider.Open].
func (t *Trace) Open(path string, flags int) (int, error) {
	fd, err := t.next.Open(path, flags)
	t.log("open", err, slog.String("path", path), slog.Int("flags", flags), slog.Int("ret", fd))

	return fd, err
}

// OpenMode traces [Provider.OpenMode].
func (t *Trace) OpenMode(path string, flags int, mode uint32) (int, error) {
	fd, err := t.next.OpenMode(path, flags, mode)
	t.log("open", err, slog.String("path", path), slog.Int("flags", flags), slog.Any("mode", mode), slog.Int("ret", fd))

	return fd, err
}

// Ioctl traces [Provider.Ioctl].
func (t *Trace) Ioctl(fd int, req uint, data unsafe.Pointer) (int, error) {
	ret, err := t.next.Ioctl(fd, req, data)
	t.log("ioctl", err, slog.Int("fd", fd), slog.Any("req", req), slog.Any("data", data), slog.Int("ret", ret))

	return ret, err
}

// IoctlInt traces [Provider.IoctlInt].
func (t *Trace) IoctlInt(fd int, req uint, value int) (int, error) {
	ret, err := t.next.IoctlInt(fd, req, value)
	t.log("ioctl", err, slog.Int("fd", fd), slog.Any("req", req), slog.Int("value", value), slog.Int("ret", ret))

	return ret, err
}

// Write traces [Provider.Write].
func (t *Trace) Write(fd int, buf unsafe.Pointer, count uintptr) (int64, error) {
	n, err := t.next.Write(fd, buf, count)
	t.log("write", err, slog.Int("fd", fd), slog.Any("count", count), slog.Int64("ret", n))

	return n, err
}

// Read traces [Provider.Read].
func (t *Trace) Read(fd int, buf unsafe.Pointer, count uintptr) (int64, error) {
	n, err := t.next.Read(fd, buf, count)
	t.log("read", err, slog.Int("fd", fd), slog.Any("count", count), slog.Int64("ret", n))

	return n, err
}

// Close traces [Provider.Close].
func (t *Trace) Close(fd int) error {
	err := t.next.Close(fd)
	t.log("close", err, slog.Int("fd", fd))

	return err
}

// Fsync traces [Provider.Fsync].
func (t *Trace) Fsync(fd int) error {
	err := t.next.Fsync(fd)
	t.log("fsync", err, slog.Int("fd", fd))

	return err
}

// Fstat traces [Provider.Fstat].
func (t *Trace) Fstat(fd int, stat *unix.Stat_t) error {
	err := t.next.Fstat(fd, stat)
	t.log("fstat", err, slog.Int("fd", fd))

	return err
}

// Access traces [Provider.Access].
func (t *Trace) Access(path string, mode uint32) error {
	err := t.next.Access(path, mode)
	t.log("access", err, slog.String("path", path), slog.Any("mode", mode))

	return err
}

// Rename traces [Provider.Rename].
func (t *Trace) Rename(oldpath, newpath string) error {
	err := t.next.Rename(oldpath, newpath)
	t.log("rename", err, slog.String("old", oldpath), slog.String("new", newpath))

	return err
}

// Renameat2 traces [Provider.Renameat2].
func (t *Trace) Renameat2(olddirfd int, oldpath string, newdirfd int, newpath string, flags uint) error {
	err := t.next.Renameat2(olddirfd, oldpath, newdirfd, newpath, flags)
	t.log("renameat2", err,
		slog.String("old", oldpath),
		slog.String("new", newpath),
		slog.Uint64("flags", uint64(flags)),
	)

	return err
}

// Unlink traces [Provider.Unlink].
func (t *Trace) Unlink(path string) error {
	err := t.next.Unlink(path)
	t.log("unlink", err, slog.String("path", path))

	return err
}
