//go:build linux

// Package fdglue exposes the open, ioctl, write and read system calls as thin
// pass-through functions for callers that work with raw descriptors and raw
// buffers.
//
// The only marshalling performed is the conversion of a Go string path into a
// NUL-terminated native buffer, which is always released before [Open]
// returns. Everything else is handed to the kernel as is: results are
// returned verbatim, including short counts, and a failing call returns -1
// together with the raw [unix.Errno]. There is no retry, buffering, error
// translation or path validation. The internal/fdio package implements the
// caller-side loops on top of this package.
package fdglue

import (
	"unsafe"

	"github.com/desertwitch/fdglue/internal/cstring"
	"golang.org/x/sys/unix"
)

// Open opens path with the given flags through openat(AT_FDCWD, ...) and
// returns the new descriptor. The permission mode passed to the kernel is 0,
// use [OpenMode] when flags contain [unix.O_CREAT] or [unix.O_TMPFILE].
func Open(path string, flags int) (int, error) {
	return OpenMode(path, flags, 0)
}

// OpenMode is [Open] with an explicit permission mode for newly created files.
func OpenMode(path string, flags int, mode uint32) (int, error) {
	var errno unix.Errno

	dirfd := unix.AT_FDCWD

	fd, err := cstring.With(path, func(p unsafe.Pointer) int {
		r0, _, e1 := unix.Syscall6(unix.SYS_OPENAT, uintptr(dirfd), uintptr(p), uintptr(flags), uintptr(mode), 0, 0)
		errno = e1

		return int(r0)
	})
	if err != nil {
		return -1, unix.EINVAL
	}

	return result(fd, errno)
}

// Ioctl forwards a device control request with a pointer argument.
func Ioctl(fd int, req uint, data unsafe.Pointer) (int, error) {
	r0, _, e1 := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(req), uintptr(data))

	return result(int(r0), e1)
}

// IoctlInt forwards a device control request with an integer argument.
func IoctlInt(fd int, req uint, value int) (int, error) {
	r0, _, e1 := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(req), uintptr(value))

	return result(int(r0), e1)
}

// Write forwards count bytes at buf to the descriptor. Short writes are
// returned as is.
func Write(fd int, buf unsafe.Pointer, count uintptr) (int64, error) {
	r0, _, e1 := unix.Syscall(unix.SYS_WRITE, uintptr(fd), uintptr(buf), count)

	return result(int64(r0), e1)
}

// Read forwards a read of up to count bytes into buf. Short reads are returned
// as is, 0 means end of file.
func Read(fd int, buf unsafe.Pointer, count uintptr) (int64, error) {
	r0, _, e1 := unix.Syscall(unix.SYS_READ, uintptr(fd), uintptr(buf), count)

	return result(int64(r0), e1)
}

// WriteBytes is [Write] with the buffer and count taken from p.
func WriteBytes(fd int, p []byte) (int64, error) {
	return Write(fd, unsafe.Pointer(unsafe.SliceData(p)), uintptr(len(p)))
}

// ReadBytes is [Read] with the buffer and count taken from p.
func ReadBytes(fd int, p []byte) (int64, error) {
	return Read(fd, unsafe.Pointer(unsafe.SliceData(p)), uintptr(len(p)))
}

// result converts a raw return value and errno into the package's return
// convention: the kernel's -1 sentinel and a non-nil [unix.Errno] on failure.
func result[T int | int64](r T, errno unix.Errno) (T, error) {
	if errno != 0 {
		return -1, errno
	}

	return r, nil
}
