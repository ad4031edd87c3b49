//go:build linux

// Package ioctl holds the generic descriptor request codes that
// golang.org/x/sys/unix does not export for linux.
package ioctl

import "golang.org/x/sys/unix"

// FIONREAD returns the number of bytes readable without blocking. Linux
// defines it as an alias of TIOCINQ on every architecture.
const FIONREAD = unix.TIOCINQ
