// Command cheaproute bridges two TUN devices, crIN and crOUT: every packet
// read from crIN is forwarded to crOUT and logged to stdout as a
// structured-text record.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/korran/cheaproute-go/internal/codec"
	"github.com/korran/cheaproute-go/internal/tundev"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	log := logrus.New()

	cmd := &cobra.Command{
		Use:   "cheaproute",
		Short: "Bridge crIN to crOUT, logging every packet observed on crIN",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(log)
		},
		SilenceUsage: true,
	}

	if err := cmd.Execute(); err != nil {
		log.WithError(err).Fatal("cheaproute exited with an error")
	}
}

func run(log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tunIn, err := tundev.Open("crIN")
	if err != nil {
		return err
	}
	defer tunIn.Close()

	tunOut, err := tundev.Open("crOUT")
	if err != nil {
		return err
	}
	defer tunOut.Close()

	log.WithFields(logrus.Fields{"in": tunIn.Name(), "out": tunOut.Name()}).Info("interfaces ready")

	writer := codec.NewWriter(os.Stdout, true)
	writer.BeginArray()
	defer func() {
		writer.EndArray()
		if err := writer.Flush(); err != nil {
			log.WithError(err).Warn("failed to flush packet log")
		}
	}()

	go func() {
		<-ctx.Done()
		log.Info("shutdown requested, closing interfaces")
		tunIn.Close()
		tunOut.Close()
	}()

	buf := make([]byte, 65536)
	for {
		pkt, err := tunIn.ReadPacket(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err := tunOut.WritePacket(pkt); err != nil {
			log.WithError(err).Warn("failed to forward packet to crOUT")
		}

		codec.SerializePacket(writer, pkt)
		if err := writer.Flush(); err != nil {
			log.WithError(err).Warn("failed to flush packet log")
		}
	}
}
