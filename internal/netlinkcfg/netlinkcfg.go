// Package netlinkcfg configures a network interface's link state and IPv4
// addressing through the kernel's netlink routing socket. It covers the
// same ground as the original tool's Netlink class (bringing a device up
// and assigning it an address), using github.com/vishvananda/netlink
// instead of hand-rolled RTM_* message construction.
package netlinkcfg

import (
	"net"

	"github.com/pkg/errors"
	"github.com/vishvananda/netlink"
)

// Up brings the named interface into the UP state.
func Up(ifaceName string) error {
	link, err := netlink.LinkByName(ifaceName)
	if err != nil {
		return errors.Wrapf(err, "netlinkcfg: looking up interface %q", ifaceName)
	}
	if err := netlink.LinkSetUp(link); err != nil {
		return errors.Wrapf(err, "netlinkcfg: setting %q up", ifaceName)
	}
	return nil
}

// SetMTU sets the interface's MTU.
func SetMTU(ifaceName string, mtu int) error {
	link, err := netlink.LinkByName(ifaceName)
	if err != nil {
		return errors.Wrapf(err, "netlinkcfg: looking up interface %q", ifaceName)
	}
	if err := netlink.LinkSetMTU(link, mtu); err != nil {
		return errors.Wrapf(err, "netlinkcfg: setting MTU on %q", ifaceName)
	}
	return nil
}

// AddAddress assigns ip, under the given IPv4 network's mask, to the named
// interface. It matches RTM_NEWADDR with IFA_LOCAL/IFA_ADDRESS in the
// original tool's Netlink::SetDeviceIp4AddressInfo.
func AddAddress(ifaceName string, ip net.IP, network *net.IPNet) error {
	link, err := netlink.LinkByName(ifaceName)
	if err != nil {
		return errors.Wrapf(err, "netlinkcfg: looking up interface %q", ifaceName)
	}
	addr := &netlink.Addr{IPNet: &net.IPNet{IP: ip, Mask: network.Mask}}
	if err := netlink.AddrAdd(link, addr); err != nil {
		return errors.Wrapf(err, "netlinkcfg: adding address %s to %q", ip, ifaceName)
	}
	return nil
}
