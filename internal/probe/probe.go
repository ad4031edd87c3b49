//go:build linux

// Package probe implements typed device control requests on top of the two
// ioctl pass-through arities.
package probe

import (
	"errors"
	"fmt"
	"strconv"
	"unsafe"

	"github.com/desertwitch/fdglue/internal/ioctl"
	"golang.org/x/sys/unix"
)

// ptsDir is where the kernel exposes pseudo-terminal replicas.
const ptsDir = "/dev/pts/"

type ioctlProvider interface {
	Ioctl(fd int, req uint, data unsafe.Pointer) (int, error)
	IoctlInt(fd int, req uint, value int) (int, error)
}

type openProvider interface {
	ioctlProvider
	Open(path string, flags int) (int, error)
	Close(fd int) error
}

// Handler is the principal implementation of the probing services.
type Handler struct {
	unixHandler ioctlProvider
}

// NewHandler returns a pointer to a new [Handler].
func NewHandler(unixHandler ioctlProvider) *Handler {
	return &Handler{
		unixHandler: unixHandler,
	}
}

func terminalErr(err error) error {
	if errors.Is(err, unix.ENOTTY) {
		return fmt.Errorf("%w: %w", ErrNotATerminal, err)
	}

	return err
}

// WindowSize returns the size of the terminal behind fd (TIOCGWINSZ).
func (h *Handler) WindowSize(fd int) (*unix.Winsize, error) {
	var ws unix.Winsize

	if _, err := h.unixHandler.Ioctl(fd, uint(unix.TIOCGWINSZ), unsafe.Pointer(&ws)); err != nil {
		return nil, fmt.Errorf("failed to get window size: %w", terminalErr(err))
	}

	return &ws, nil
}

// SetWindowSize sets the size of the terminal behind fd (TIOCSWINSZ).
func (h *Handler) SetWindowSize(fd int, ws *unix.Winsize) error {
	if _, err := h.unixHandler.Ioctl(fd, uint(unix.TIOCSWINSZ), unsafe.Pointer(ws)); err != nil {
		return fmt.Errorf("failed to set window size: %w", terminalErr(err))
	}

	return nil
}

// BytesReadable returns the number of bytes that can be read from fd
// without blocking (FIONREAD).
func (h *Handler) BytesReadable(fd int) (int, error) {
	var n int32

	if _, err := h.unixHandler.Ioctl(fd, uint(ioctl.FIONREAD), unsafe.Pointer(&n)); err != nil {
		return 0, fmt.Errorf("failed to get readable bytes: %w", err)
	}

	return int(n), nil
}

// SetNonblock switches fd in or out of non-blocking mode (FIONBIO).
func (h *Handler) SetNonblock(fd int, nonblocking bool) error {
	var v int32
	if nonblocking {
		v = 1
	}

	if _, err := h.unixHandler.Ioctl(fd, uint(ioctl.FIONBIO), unsafe.Pointer(&v)); err != nil {
		return fmt.Errorf("failed to set non-blocking mode: %w", err)
	}

	return nil
}

// Flush discards pending terminal input, output or both (TCFLSH), queue is
// one of [unix.TCIFLUSH], [unix.TCOFLUSH] or [unix.TCIOFLUSH].
func (h *Handler) Flush(fd int, queue int) error {
	if _, err := h.unixHandler.IoctlInt(fd, uint(unix.TCFLSH), queue); err != nil {
		return fmt.Errorf("failed to flush: %w", terminalErr(err))
	}

	return nil
}

// Raw issues an arbitrary request with an integer argument and returns the
// kernel's result.
func (h *Handler) Raw(fd int, req uint, value int) (int, error) {
	return h.unixHandler.IoctlInt(fd, req, value)
}

// RawBuffer issues an arbitrary request with buf as the pointer argument.
// An empty buf passes a nil pointer.
func (h *Handler) RawBuffer(fd int, req uint, buf []byte) (int, error) {
	return h.unixHandler.Ioctl(fd, req, unsafe.Pointer(unsafe.SliceData(buf)))
}

// OpenPTY opens a new pseudo-terminal pair. It returns the primary side's
// descriptor, which the caller must close, and the path of the replica.
func OpenPTY(unixHandler openProvider) (int, string, error) {
	fd, err := unixHandler.Open("/dev/ptmx", unix.O_RDWR|unix.O_NOCTTY|unix.O_CLOEXEC)
	if err != nil {
		return -1, "", fmt.Errorf("failed to open /dev/ptmx: %w", err)
	}

	var unlock int32
	if _, err := unixHandler.Ioctl(fd, uint(unix.TIOCSPTLCK), unsafe.Pointer(&unlock)); err != nil {
		unixHandler.Close(fd) //nolint:errcheck

		return -1, "", fmt.Errorf("failed to unlock pty: %w", err)
	}

	var ptn uint32
	if _, err := unixHandler.Ioctl(fd, uint(unix.TIOCGPTN), unsafe.Pointer(&ptn)); err != nil {
		unixHandler.Close(fd) //nolint:errcheck

		return -1, "", fmt.Errorf("failed to get pty number: %w", err)
	}

	return fd, ptsDir + strconv.FormatUint(uint64(ptn), 10), nil
}
