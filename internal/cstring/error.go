package cstring

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// ErrContainsNUL occurs when a string holds an interior NUL byte and can
// therefore not be represented as a native NUL-terminated string. It wraps
// [unix.EINVAL], the errno the kernel-facing callers report for it.
var ErrContainsNUL = fmt.Errorf("string contains NUL byte: %w", unix.EINVAL)
