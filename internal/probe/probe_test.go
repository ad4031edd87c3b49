//go:build linux

package probe

import (
	"bytes"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/desertwitch/fdglue"
	"github.com/desertwitch/fdglue/internal/ioctl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// openPTY opens a pseudo-terminal pair or skips the test where the
// environment has no /dev/ptmx.
func openPTY(t *testing.T) (int, int) {
	t.Helper()

	p := &fdglue.Unix{}

	primary, replicaPath, err := OpenPTY(p)
	if errors.Is(err, unix.ENOENT) || errors.Is(err, unix.EACCES) || errors.Is(err, unix.EPERM) {
		t.Skipf("no pseudo-terminals available: %v", err)
	}
	require.NoError(t, err)
	t.Cleanup(func() { p.Close(primary) })

	replica, err := p.Open(replicaPath, unix.O_RDWR|unix.O_NOCTTY|unix.O_CLOEXEC)
	require.NoError(t, err)
	t.Cleanup(func() { p.Close(replica) })

	return primary, replica
}

func TestWindowSize_PTY(t *testing.T) {
	t.Parallel()

	primary, replica := openPTY(t)
	h := NewHandler(&fdglue.Unix{})

	want := &unix.Winsize{Row: 42, Col: 132}
	require.NoError(t, h.SetWindowSize(primary, want))

	got, err := h.WindowSize(replica)
	require.NoError(t, err)
	assert.Equal(t, want.Row, got.Row)
	assert.Equal(t, want.Col, got.Col)

	native, err := unix.IoctlGetWinsize(replica, unix.TIOCGWINSZ)
	require.NoError(t, err)
	assert.Equal(t, native, got)
}

func TestBytesReadable_PTY(t *testing.T) {
	t.Parallel()

	primary, replica := openPTY(t)
	h := NewHandler(&fdglue.Unix{})

	_, err := fdglue.WriteBytes(replica, []byte("ping"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		n, err := h.BytesReadable(primary)

		return err == nil && n == 4
	}, defaultWait, defaultTick)

	require.NoError(t, h.Flush(primary, unix.TCIOFLUSH))

	n, err := h.BytesReadable(primary)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNonTerminal_Fail(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "file")
	fd, err := fdglue.OpenMode(path, unix.O_CREAT|unix.O_RDWR|unix.O_CLOEXEC, 0o600)
	require.NoError(t, err)
	defer unix.Close(fd)

	h := NewHandler(&fdglue.Unix{})

	_, err = h.WindowSize(fd)
	require.ErrorIs(t, err, ErrNotATerminal)
	require.ErrorIs(t, err, unix.ENOTTY)

	err = h.Flush(fd, unix.TCIFLUSH)
	require.ErrorIs(t, err, ErrNotATerminal)

	_, err = h.Raw(fd, uint(unix.TIOCSBRK), 0)
	require.ErrorIs(t, err, unix.ENOTTY)

	n, err := h.BytesReadable(fd)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSetNonblock_Pipe(t *testing.T) {
	t.Parallel()

	var p [2]int
	require.NoError(t, unix.Pipe2(p[:], unix.O_CLOEXEC))
	defer unix.Close(p[0])
	defer unix.Close(p[1])

	h := NewHandler(&fdglue.Unix{})

	require.NoError(t, h.SetNonblock(p[0], true))
	_, err := fdglue.ReadBytes(p[0], make([]byte, 1))
	require.ErrorIs(t, err, unix.EAGAIN)

	require.NoError(t, h.SetNonblock(p[0], false))
	flags, err := unix.FcntlInt(uintptr(p[0]), unix.F_GETFL, 0)
	require.NoError(t, err)
	assert.Zero(t, flags&unix.O_NONBLOCK)
}

func TestRawBuffer_Success(t *testing.T) {
	t.Parallel()

	var p [2]int
	require.NoError(t, unix.Pipe2(p[:], unix.O_CLOEXEC))
	defer unix.Close(p[0])
	defer unix.Close(p[1])

	_, err := fdglue.WriteBytes(p[1], []byte("abc"))
	require.NoError(t, err)

	buf := make([]byte, 4)
	h := NewHandler(&fdglue.Unix{})

	ret, err := h.RawBuffer(p[0], uint(ioctl.FIONREAD), buf)
	require.NoError(t, err)
	assert.Zero(t, ret)
	assert.Equal(t, int32(3), *(*int32)(unsafe.Pointer(&buf[0])))
}

func TestTrace_Table(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	tr := NewTrace(&fdglue.Unix{}, logger)

	path := filepath.Join(t.TempDir(), "traced")

	fd, err := tr.OpenMode(path, unix.O_CREAT|unix.O_RDWR|unix.O_CLOEXEC, 0o600)
	require.NoError(t, err)

	n, err := tr.Write(fd, unsafe.Pointer(unsafe.StringData("x")), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, tr.Close(fd))

	_, err = tr.Open(path+".missing", unix.O_RDONLY)
	require.ErrorIs(t, err, unix.ENOENT)

	out := logs.String()
	assert.Contains(t, out, "op=open")
	assert.Contains(t, out, "op=write")
	assert.Contains(t, out, "op=close")
	assert.Contains(t, out, "ret=-1")
	assert.Contains(t, out, "err=")
}

func TestTrace_Disabled(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelInfo}))
	tr := NewTrace(&fdglue.Unix{}, logger)

	_, err := tr.Open("/nonexistent/path", unix.O_RDONLY)
	require.ErrorIs(t, err, unix.ENOENT)

	assert.Empty(t, logs.String())
}
