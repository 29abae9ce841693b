package main

import (
	"fmt"
	"log"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
	"github.com/urfave/cli/v2"

	"github.com/fabriclab/ipoib/ipoib"
	"github.com/fabriclab/ipoib/ipoib/ipoiblayer"
	"github.com/fabriclab/ipoib/netdev"
)

func init() {
	var count int
	var proto int
	var text string
	defineCommand(&cli.Command{
		Name:  "send",
		Usage: "Broadcast frames from one device and dump what the other receives.",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "count",
				Usage:       "Number of frames.",
				Value:       1,
				Destination: &count,
			},
			&cli.IntFlag{
				Name:        "proto",
				Usage:       "Network-layer protocol `number`.",
				Value:       0x0800,
				Destination: &proto,
			},
			&cli.StringFlag{
				Name:        "text",
				Usage:       "Frame payload.",
				Value:       "hello over the fabric",
				Destination: &text,
			},
		},
		Action: func(c *cli.Context) error {
			devB.NetDevice().RxHandler = func(dev *netdev.Device, pkt *netdev.Packet, pr uint16, peer []byte) {
				fmt.Printf("%s received proto=%#04x peer=%s\n",
					dev.Name(), pr, dev.LinkProto.FormatAddr(peer))
				fmt.Println(dumpFrame(pr, pkt.Bytes()))
			}

			for i := 0; i < count; i++ {
				pkt := netdev.NewPacketHeadroom(ipoib.HeaderLen, len(text))
				if e := pkt.Append([]byte(text)); e != nil {
					return e
				}
				if e := ipoib.EncodeTxHeader(pkt, ipoib.Broadcast, uint16(proto)); e != nil {
					return e
				}
				if e := devA.NetDevice().Transmit(pkt); e != nil {
					return e
				}
				devA.NetDevice().Poll()
				devB.NetDevice().Poll()
			}

			log.Printf("%s counters: %v", devA.NetDevice().Name(), devA.NetDevice().ReadCounters())
			log.Printf("%s counters: %v", devB.NetDevice().Name(), devB.NetDevice().ReadCounters())
			return nil
		},
	})
}

// dumpFrame reconstructs the wire frame and renders it with gopacket.
func dumpFrame(proto uint16, payload []byte) string {
	buf := gopacket.NewSerializeBuffer()
	e := gopacket.SerializeLayers(buf, gopacket.SerializeOptions{},
		&ipoiblayer.IPoIB{Protocol: layers.EthernetType(proto)},
		gopacket.Payload(payload),
	)
	if e != nil {
		return e.Error()
	}
	return gopacket.NewPacket(buf.Bytes(), ipoiblayer.LayerTypeIPoIB, gopacket.Default).Dump()
}
