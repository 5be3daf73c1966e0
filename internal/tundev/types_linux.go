//go:build linux

package tundev

import "golang.org/x/sys/unix"

// ifReq mirrors the kernel's struct ifreq as used by the TUNSETIFF ioctl:
// a 16-byte interface name followed by the flags field and padding up to
// the structure's full 40-byte size on Linux (16-byte name + 24-byte union).
type ifReq struct {
	Name  [unix.IFNAMSIZ]byte
	Flags uint16
	pad   [40 - unix.IFNAMSIZ - 2]byte
}
