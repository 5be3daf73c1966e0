// Command cheaplay replays a structured-text packet log onto a TUN
// interface, once per second, for as long as the process runs.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/korran/cheaproute-go/internal/codec"
	"github.com/korran/cheaproute-go/internal/netlinkcfg"
	"github.com/korran/cheaproute-go/internal/tundev"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	log := logrus.New()

	var addr string
	var mtu int

	cmd := &cobra.Command{
		Use:   "cheaplay <iface_name> <json_packet_log>",
		Short: "Replay a packet log onto a TUN interface once a second",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(log, args[0], args[1], addr, mtu)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&addr, "addr", "192.168.6.1/24", "IPv4 address (CIDR) to assign to the interface")
	cmd.Flags().IntVar(&mtu, "mtu", 1500, "MTU to set on the interface")

	if err := cmd.Execute(); err != nil {
		log.WithError(err).Fatal("cheaplay exited with an error")
	}
}

func run(log *logrus.Logger, ifaceName, logPath, addr string, mtu int) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tun, err := tundev.Open(ifaceName)
	if err != nil {
		return err
	}
	defer tun.Close()

	ip, network, err := net.ParseCIDR(addr)
	if err != nil {
		return errors.Wrapf(err, "parsing --addr %q", addr)
	}

	if err := netlinkcfg.Up(tun.Name()); err != nil {
		return err
	}
	if err := netlinkcfg.AddAddress(tun.Name(), ip, network); err != nil {
		return err
	}
	if err := netlinkcfg.SetMTU(tun.Name(), mtu); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{"iface": tun.Name(), "addr": addr, "mtu": mtu}).Info("interface configured")

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		if err := playback(tun, logPath); err != nil {
			return err
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil
		}
	}
}

func playback(tun *tundev.Interface, logPath string) error {
	f, err := os.Open(logPath)
	if err != nil {
		return errors.Wrapf(err, "opening packet log %q", logPath)
	}
	defer f.Close()

	r := codec.NewReader(f)
	if !r.Next() || r.Token() != codec.TokenStartArray {
		return fmt.Errorf("expected start of array at top of json packet log")
	}

	for r.Next() && r.Token() != codec.TokenEndArray {
		pkt, err := codec.DeserializePacket(r)
		if err != nil {
			return fmt.Errorf("error reading packet: %w", err)
		}
		if err := tun.WritePacket(pkt); err != nil {
			return err
		}
	}

	return nil
}
