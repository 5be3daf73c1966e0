// Package tundev provides a thin wrapper around the kernel's TUN device,
// exposing raw IPv4 datagrams to the caller. It creates and configures a
// point-to-point layer-3 interface; interpreting the bytes that cross it
// is the job of the codec package.
package tundev

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// ErrShortRead is returned when the kernel hands back a zero-length read.
var ErrShortRead = errors.New("tundev: truncated read from TUN device")

// ErrJumboPacket is returned by WritePacket when asked to send a packet
// larger than the kernel's TUN MTU can plausibly carry.
var ErrJumboPacket = errors.New("tundev: packet too large for TUN device")

// maxPacketSize bounds what WritePacket will attempt to send. 1500 is the
// practical Ethernet MTU; TUN interfaces occasionally carry slightly more
// (e.g. with jumbo frames), so this is deliberately generous.
const maxPacketSize = 1600

// Interface is an open point-to-point TUN device.
type Interface struct {
	name string
	file *os.File
}

// Name returns the interface name actually assigned by the kernel. It may
// differ from the pattern passed to Open if that pattern contained "%d".
func (t *Interface) Name() string {
	return t.name
}

// Close releases the underlying file descriptor. If the device was not
// configured as persistent, the kernel destroys it immediately.
func (t *Interface) Close() error {
	return t.file.Close()
}

// ReadPacket reads a single IPv4 datagram from the device into buf and
// returns the slice actually populated. It performs exactly one read
// syscall; an empty read is reported as ErrShortRead rather than retried,
// since a TUN device delivers one complete packet per read.
func (t *Interface) ReadPacket(buf []byte) ([]byte, error) {
	n, err := t.file.Read(buf)
	if err != nil {
		return nil, errors.Wrap(err, "tundev: reading packet")
	}
	if n == 0 {
		return nil, ErrShortRead
	}
	return buf[:n], nil
}

// WritePacket writes a single IPv4 datagram to the device in one syscall.
func (t *Interface) WritePacket(pkt []byte) error {
	if len(pkt) > maxPacketSize {
		return ErrJumboPacket
	}
	n, err := t.file.Write(pkt)
	if err != nil {
		return errors.Wrap(err, "tundev: writing packet")
	}
	if n != len(pkt) {
		return io.ErrShortWrite
	}
	return nil
}

// Open connects to the named TUN interface, creating it if it does not
// already exist. ifPattern can be an exact name ("tun0") or a pattern
// containing one "%d" verb, in which case the kernel picks the name.
func Open(ifPattern string) (*Interface, error) {
	return createInterface(ifPattern)
}
