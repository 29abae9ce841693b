// Package ipoiblayer provides a GoPacket layer for the IPoIB wire header.
package ipoiblayer

import (
	"encoding/binary"
	"errors"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
)

// HeaderLen is the size of the on-wire IPoIB header.
const HeaderLen = 4

// LayerTypeIPoIB identifies the IPoIB wire header layer.
var LayerTypeIPoIB = gopacket.RegisterLayerType(1901, gopacket.LayerTypeMetadata{
	Name:    "IPoIB",
	Decoder: gopacket.DecodeFunc(decodeIPoIB),
})

// IPoIB is the on-wire IPoIB header: a network-layer protocol number
// (EtherType space) followed by two reserved bytes.
type IPoIB struct {
	layers.BaseLayer
	Protocol layers.EthernetType
}

var (
	_ gopacket.Layer             = (*IPoIB)(nil)
	_ gopacket.DecodingLayer     = (*IPoIB)(nil)
	_ gopacket.SerializableLayer = (*IPoIB)(nil)
)

// LayerType returns LayerTypeIPoIB.
func (IPoIB) LayerType() gopacket.LayerType {
	return LayerTypeIPoIB
}

// DecodeFromBytes recognizes the IPoIB wire header.
func (l *IPoIB) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < HeaderLen {
		df.SetTruncated()
		return errors.New("IPoIB header truncated")
	}
	l.Protocol = layers.EthernetType(binary.BigEndian.Uint16(data))
	l.BaseLayer = layers.BaseLayer{
		Contents: data[:HeaderLen],
		Payload:  data[HeaderLen:],
	}
	return nil
}

// CanDecode implements gopacket.DecodingLayer interface.
func (IPoIB) CanDecode() gopacket.LayerClass {
	return LayerTypeIPoIB
}

// NextLayerType implements gopacket.DecodingLayer interface.
func (l *IPoIB) NextLayerType() gopacket.LayerType {
	return l.Protocol.LayerType()
}

// SerializeTo implements gopacket.SerializableLayer interface.
func (l *IPoIB) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	hdr, e := b.PrependBytes(HeaderLen)
	if e != nil {
		return e
	}
	binary.BigEndian.PutUint16(hdr, uint16(l.Protocol))
	hdr[2], hdr[3] = 0, 0
	return nil
}

func decodeIPoIB(data []byte, p gopacket.PacketBuilder) error {
	l := &IPoIB{}
	if e := l.DecodeFromBytes(data, p); e != nil {
		return e
	}
	p.AddLayer(l)
	return p.NextDecoder(l.NextLayerType())
}
