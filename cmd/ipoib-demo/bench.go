package main

import (
	"log"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/fabriclab/ipoib/ipoib"
	"github.com/fabriclab/ipoib/netdev"
)

func init() {
	var count int
	var size int
	defineCommand(&cli.Command{
		Name:  "bench",
		Usage: "Push frames through the fabric and report throughput.",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "count",
				Usage:       "Number of frames.",
				Value:       100000,
				Destination: &count,
			},
			&cli.IntFlag{
				Name:        "size",
				Usage:       "Payload size in bytes.",
				Value:       1024,
				Destination: &size,
			},
		},
		Action: func(c *cli.Context) error {
			received := 0
			devB.NetDevice().RxHandler = func(*netdev.Device, *netdev.Packet, uint16, []byte) {
				received++
			}

			payload := make([]byte, size)
			begin := time.Now()
			for i := 0; i < count; i++ {
				pkt := netdev.NewPacketHeadroom(ipoib.HeaderLen, size)
				if e := pkt.Append(payload); e != nil {
					return e
				}
				if e := ipoib.EncodeTxHeader(pkt, ipoib.Broadcast, 0x0800); e != nil {
					return e
				}
				if e := devA.NetDevice().Transmit(pkt); e != nil {
					return e
				}
				devA.NetDevice().Poll()
				devB.NetDevice().Poll()
			}
			elapsed := time.Since(begin)

			log.Printf("sent %d received %d in %v (%.0f frames/s)",
				count, received, elapsed, float64(count)/elapsed.Seconds())
			return nil
		},
	})
}
