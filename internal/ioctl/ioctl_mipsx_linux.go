//go:build linux && (mips || mipsle || mips64 || mips64le)

package ioctl

// Request codes from arch/mips/include/uapi/asm/ioctls.h.
const (
	FIONBIO  = 0x667e
	FIONCLEX = 0x6602
	FIOCLEX  = 0x6601
)
