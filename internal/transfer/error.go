package transfer

import "errors"

var (
	// ErrHashMismatch occurs when the source and destination checksums differ
	// after a transfer, which usually points to underlying hardware issues.
	ErrHashMismatch = errors.New("hash mismatch")

	// ErrRenameExists occurs when the temporary file is to be renamed to the
	// destination, but the destination already exists.
	ErrRenameExists = errors.New("rename destination already exists")

	// ErrNotRegular occurs when the source is not a regular file.
	ErrNotRegular = errors.New("source is not a regular file")

	// ErrInvalidBufferSize occurs when a [Handler] is configured with a
	// buffer size < 1.
	ErrInvalidBufferSize = errors.New("invalid buffer size < 1")
)
