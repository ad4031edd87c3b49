//go:build linux

package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// ErrUnknownFlag occurs when an open flag name is not known.
var ErrUnknownFlag = errors.New("unknown open flag")

//nolint:gochecknoglobals
var openFlags = map[string]int{
	"rdonly":    unix.O_RDONLY,
	"wronly":    unix.O_WRONLY,
	"rdwr":      unix.O_RDWR,
	"creat":     unix.O_CREAT,
	"excl":      unix.O_EXCL,
	"trunc":     unix.O_TRUNC,
	"append":    unix.O_APPEND,
	"nonblock":  unix.O_NONBLOCK,
	"noctty":    unix.O_NOCTTY,
	"cloexec":   unix.O_CLOEXEC,
	"sync":      unix.O_SYNC,
	"dsync":     unix.O_DSYNC,
	"directory": unix.O_DIRECTORY,
	"nofollow":  unix.O_NOFOLLOW,
	"path":      unix.O_PATH,
	"tmpfile":   unix.O_TMPFILE,
	"noatime":   unix.O_NOATIME,
}

// parseOpenFlags converts a "|" or "," separated list of flag names (e.g.
// "wronly|creat|trunc") or a plain number into open flags. Names are case
// insensitive and may carry the "O_" prefix.
func parseOpenFlags(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return unix.O_RDONLY, nil
	}

	if n, err := strconv.ParseInt(s, 0, 0); err == nil {
		return int(n), nil
	}

	var flags int
	for _, name := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		name = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), "o_")

		v, ok := openFlags[name]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownFlag, name)
		}
		flags |= v
	}

	return flags, nil
}

// parseNumber parses decimal, octal (0o) or hexadecimal (0x) numbers, such
// as ioctl request codes and permission modes.
func parseNumber(s string, bitSize int) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 0, bitSize)
	if err != nil {
		return 0, fmt.Errorf("failed to parse number %q: %w", s, err)
	}

	return n, nil
}
