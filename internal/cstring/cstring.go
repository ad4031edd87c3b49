// Package cstring provides scoped native (NUL-terminated) representations of
// Go strings for handing paths to the kernel.
//
// A [Buffer] is acquired with [Acquire] and must be given back with
// [Buffer.Release]; [With] does both and guarantees the release on every exit
// path, including panics. Buffers are pooled, so repeated conversions of
// similar lengths do not allocate.
package cstring

import (
	"strings"
	"sync"
	"sync/atomic"
	"unsafe"
)

const (
	// MaxPooledSize is the largest buffer capacity that is returned to the pool
	// on release. Larger buffers are dropped so that an occasional very long
	// string does not pin its memory for the rest of the process lifetime.
	MaxPooledSize = 4096 * 2

	// defaultSize is the capacity of freshly allocated pooled buffers, large
	// enough for PATH_MAX including the terminator.
	defaultSize = 4096
)

//nolint:gochecknoglobals
var (
	bufferPool = newPool(func() *[]byte {
		b := make([]byte, 0, defaultSize)

		return &b
	})

	outstanding atomic.Int64
)

// pool is a typed wrapper around [sync.Pool].
type pool[T any] struct {
	pool sync.Pool
}

func newPool[T any](fn func() T) *pool[T] {
	return &pool[T]{
		pool: sync.Pool{New: func() any { return fn() }},
	}
}

func (p *pool[T]) Get() T {
	return p.pool.Get().(T) //nolint:forcetypeassert
}

func (p *pool[T]) Put(x T) {
	p.pool.Put(x)
}

// Buffer is a NUL-terminated copy of a Go string. The zero value is not usable,
// a [Buffer] is only obtained through [Acquire].
type Buffer struct {
	buf      *[]byte
	released atomic.Bool
}

// Acquire copies s into a pooled buffer and appends the NUL terminator. The
// returned [Buffer] is owned by the caller until [Buffer.Release] is called.
// It returns [ErrContainsNUL] if s has an interior NUL byte, in which case
// nothing is acquired.
func Acquire(s string) (*Buffer, error) {
	if strings.IndexByte(s, 0) >= 0 {
		return nil, ErrContainsNUL
	}

	var bp *[]byte
	if len(s)+1 > MaxPooledSize {
		b := make([]byte, 0, len(s)+1)
		bp = &b
	} else {
		bp = bufferPool.Get()
	}

	b := append((*bp)[:0], s...)
	b = append(b, 0)
	*bp = b

	outstanding.Add(1)

	return &Buffer{buf: bp}, nil
}

// Pointer returns the address of the first byte of the native string. It is
// only valid until [Buffer.Release] is called.
func (b *Buffer) Pointer() unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(*b.buf))
}

// Bytes returns the string bytes without the terminator.
func (b *Buffer) Bytes() []byte {
	s := *b.buf

	return s[:len(s)-1]
}

// Release zeroes the buffer and hands it back to the pool. Calling it more
// than once is a no-op.
func (b *Buffer) Release() {
	if !b.released.CompareAndSwap(false, true) {
		return
	}

	s := *b.buf
	clear(s)
	*b.buf = s[:0]

	if cap(s) <= MaxPooledSize {
		bufferPool.Put(b.buf)
	}
	b.buf = nil

	outstanding.Add(-1)
}

// With acquires a native copy of s, calls fn with its address and releases
// the buffer before returning, also when fn panics. The pointer must not be
// retained by fn.
func With[T any](s string, fn func(p unsafe.Pointer) T) (T, error) {
	buf, err := Acquire(s)
	if err != nil {
		var zero T

		return zero, err
	}
	defer buf.Release()

	return fn(buf.Pointer()), nil
}

// Outstanding returns the number of buffers that were acquired but not yet
// released.
func Outstanding() int64 {
	return outstanding.Load()
}
