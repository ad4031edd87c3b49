//go:build linux && (ppc || ppc64 || ppc64le || sparc64)

package ioctl

// Request codes from the powerpc and sparc asm/ioctls.h, which encode the
// direction in the top three bits.
const (
	FIONBIO  = 0x8004667e
	FIONCLEX = 0x20006602
	FIOCLEX  = 0x20006601
)
