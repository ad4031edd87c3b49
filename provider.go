//go:build linux

package fdglue

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// Unix is an implementation wrapping the package's pass-through functions,
// for consumers that accept the calls through an interface.
type Unix struct{}

// Open wraps around [Open].
func (*Unix) Open(path string, flags int) (int, error) {
	return Open(path, flags)
}

// OpenMode wraps around [OpenMode].
func (*Unix) OpenMode(path string, flags int, mode uint32) (int, error) {
	return OpenMode(path, flags, mode)
}

// Ioctl wraps around [Ioctl].
func (*Unix) Ioctl(fd int, req uint, data unsafe.Pointer) (int, error) {
	return Ioctl(fd, req, data)
}

// IoctlInt wraps around [IoctlInt].
func (*Unix) IoctlInt(fd int, req uint, value int) (int, error) {
	return IoctlInt(fd, req, value)
}

// Write wraps around [Write].
func (*Unix) Write(fd int, buf unsafe.Pointer, count uintptr) (int64, error) {
	return Write(fd, buf, count)
}

// Read wraps around [Read].
func (*Unix) Read(fd int, buf unsafe.Pointer, count uintptr) (int64, error) {
	return Read(fd, buf, count)
}

// Close wraps around [unix.Close].
func (*Unix) Close(fd int) error {
	return unix.Close(fd)
}

// Fsync wraps around [unix.Fsync].
func (*Unix) Fsync(fd int) error {
	return unix.Fsync(fd)
}

// Rename wraps around [unix.Rename].
func (*Unix) Rename(oldpath, newpath string) error {
	return unix.Rename(oldpath, newpath)
}

// Renameat2 wraps around [unix.Renameat2].
func (*Unix) Renameat2(olddirfd int, oldpath string, newdirfd int, newpath string, flags uint) error {
	return unix.Renameat2(olddirfd, oldpath, newdirfd, newpath, flags)
}

// Unlink wraps around [unix.Unlink].
func (*Unix) Unlink(path string) error {
	return unix.Unlink(path)
}

// Fstat wraps around [unix.Fstat].
func (*Unix) Fstat(fd int, stat *unix.Stat_t) error {
	return unix.Fstat(fd, stat)
}

// Access wraps around [unix.Access].
func (*Unix) Access(path string, mode uint32) error {
	return unix.Access(path, mode)
}
