package fdio

import "errors"

var (
	// ErrNoProgress occurs when a write returned zero bytes without an error,
	// after which no further write can be expected to make progress.
	ErrNoProgress = errors.New("write made no progress")

	// ErrClosed occurs when a [ReadWriter] is used after [ReadWriter.Close].
	ErrClosed = errors.New("descriptor already closed")
)
