//go:build !linux

package tundev

// createInterface has no implementation outside Linux: this tool's
// netlink-based configuration path (package netlinkcfg) is Linux-specific,
// so there is no platform to fall back to.
func createInterface(ifPattern string) (*Interface, error) {
	panic("tundev: TUN devices are only supported on linux")
}
