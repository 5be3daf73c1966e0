//go:build linux

package tundev

import (
	"os"
	"strings"
	"syscall"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// createInterface opens /dev/net/tun and attaches it to ifPattern as a
// layer-3 (IFF_TUN) device whose reads and writes carry bare IP packets, with
// no per-packet protocol information header (IFF_NO_PI).
func createInterface(ifPattern string) (*Interface, error) {
	// Note there is a complication because in go, if a device node is opened,
	// go sets it to use nonblocking I/O. However a /dev/net/tun doesn't work
	// with epoll until after the TUNSETIFF ioctl has been done. So we open
	// the unix fd directly, do the ioctl, then put the fd in nonblocking mode,
	// and then finally wrap it in an os.File, which will see the nonblocking
	// mode and add the fd to the pollable set, so later on when we Read()
	// from it, the calling goroutine parks instead of the thread blocking.
	// See https://github.com/golang/go/issues/30426

	const tunPath = "/dev/net/tun"

	fd, err := unix.Open(tunPath, os.O_RDWR|syscall.O_CLOEXEC, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "tundev: opening %s", tunPath)
	}

	var req ifReq
	copy(req.Name[:len(req.Name)-1], ifPattern)
	req.Flags = unix.IFF_TUN | unix.IFF_NO_PI

	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, uintptr(fd), uintptr(unix.TUNSETIFF), uintptr(unsafe.Pointer(&req)))
	if errno != 0 {
		unix.Close(fd)
		return nil, errors.Wrapf(errno, "tundev: ioctl(TUNSETIFF) on %s", tunPath)
	}
	ifName := string(req.Name[:])
	if idx := strings.IndexByte(ifName, 0); idx >= 0 {
		ifName = ifName[:idx]
	}

	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, errors.Wrapf(err, "tundev: setting nonblocking mode on %s", tunPath)
	}

	// Now that the ioctl is done and the fd is nonblocking, wrapping it in
	// an *os.File lets it participate properly in the Go runtime's netpoller.
	file := os.NewFile(uintptr(fd), tunPath)

	return &Interface{name: ifName, file: file}, nil
}
