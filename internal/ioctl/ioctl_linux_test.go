//go:build linux

package ioctl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestFIONREAD_Success(t *testing.T) {
	t.Parallel()

	var p [2]int
	require.NoError(t, unix.Pipe2(p[:], unix.O_CLOEXEC))
	defer unix.Close(p[0])
	defer unix.Close(p[1])

	_, err := unix.Write(p[1], []byte("abc"))
	require.NoError(t, err)

	n, err := unix.IoctlGetInt(p[0], FIONREAD)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestFIONBIO_Success(t *testing.T) {
	t.Parallel()

	var p [2]int
	require.NoError(t, unix.Pipe2(p[:], unix.O_CLOEXEC))
	defer unix.Close(p[0])
	defer unix.Close(p[1])

	require.NoError(t, unix.IoctlSetPointerInt(p[0], FIONBIO, 1))

	flags, err := unix.FcntlInt(uintptr(p[0]), unix.F_GETFL, 0)
	require.NoError(t, err)
	assert.NotZero(t, flags&unix.O_NONBLOCK)
}

func TestFIOCLEX_Success(t *testing.T) {
	t.Parallel()

	var p [2]int
	require.NoError(t, unix.Pipe2(p[:], 0))
	defer unix.Close(p[0])
	defer unix.Close(p[1])

	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(p[0]), FIOCLEX, 0)
	require.Zero(t, errno)

	flags, err := unix.FcntlInt(uintptr(p[0]), unix.F_GETFD, 0)
	require.NoError(t, err)
	assert.Equal(t, unix.FD_CLOEXEC, flags&unix.FD_CLOEXEC)

	_, _, errno = unix.Syscall(unix.SYS_IOCTL, uintptr(p[0]), FIONCLEX, 0)
	require.Zero(t, errno)

	flags, err = unix.FcntlInt(uintptr(p[0]), unix.F_GETFD, 0)
	require.NoError(t, err)
	assert.Zero(t, flags&unix.FD_CLOEXEC)
}
