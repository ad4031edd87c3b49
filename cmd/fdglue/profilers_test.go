//go:build linux

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/desertwitch/fdglue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// gzipMagic opens every profile written by runtime/pprof.
var gzipMagic = []byte{0x1f, 0x8b} //nolint:gochecknoglobals

// Not parallel: only one CPU profile can run per process.
func TestProfiler_CPU_Success(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cpu.pprof")

	prof := startProfiler(t.Context(), &fdglue.Unix{}, profileCPU, path)

	sum := 0
	for i := range 1_000_000 {
		sum += i
	}
	assert.Positive(t, sum)

	require.NoError(t, prof.Stop())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(data), len(gzipMagic))
	assert.Equal(t, gzipMagic, data[:2])
}

func TestProfiler_Allocs_Success(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "allocs.pprof")

	prof := startProfiler(t.Context(), &fdglue.Unix{}, profileAllocs, path)
	assert.NoFileExists(t, path)

	require.NoError(t, prof.Stop())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(data), len(gzipMagic))
	assert.Equal(t, gzipMagic, data[:2])

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Mode().Perm()&^profileFileMode)
}

func TestProfiler_Disabled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	prof := startProfiler(t.Context(), &fdglue.Unix{}, profileAllocs, "")

	require.NoError(t, prof.Stop())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProfiler_Fail_Create(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing", "allocs.pprof")

	prof := startProfiler(t.Context(), &fdglue.Unix{}, profileAllocs, path)

	err := prof.Stop()

	require.ErrorIs(t, err, unix.ENOENT)
	assert.ErrorContains(t, err, "failed to create allocs profile")
}

func TestMemoryObserver_Peak(t *testing.T) {
	t.Parallel()

	obs := newMemoryObserver(t.Context())

	buf := make([]byte, 8<<20)
	buf[len(buf)-1] = 1

	peak := obs.Stop()

	assert.Equal(t, byte(1), buf[len(buf)-1])
	assert.GreaterOrEqual(t, peak, uint64(len(buf)))
	assert.Equal(t, peak, obs.MaxAlloc())
}
