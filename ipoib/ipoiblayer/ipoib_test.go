package ipoiblayer_test

import (
	"net"
	"testing"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"

	"github.com/fabriclab/ipoib/core/testenv"
	"github.com/fabriclab/ipoib/ipoib/ipoiblayer"
)

var makeAR = testenv.MakeAR

func TestSerializeDecode(t *testing.T) {
	assert, require := makeAR(t)

	ip := &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		Protocol: layers.IPProtocolICMPv4,
		SrcIP:    net.IP{192, 0, 2, 1},
		DstIP:    net.IP{192, 0, 2, 2},
	}
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	require.NoError(gopacket.SerializeLayers(buf, opts,
		&ipoiblayer.IPoIB{Protocol: layers.EthernetTypeIPv4},
		ip,
	))

	wire := buf.Bytes()
	assert.EqualValues(0x08, wire[0])
	assert.EqualValues(0x00, wire[1])
	assert.EqualValues(0, wire[2])
	assert.EqualValues(0, wire[3])

	pkt := gopacket.NewPacket(wire, ipoiblayer.LayerTypeIPoIB, gopacket.Default)
	require.Nil(pkt.ErrorLayer())

	l := pkt.Layer(ipoiblayer.LayerTypeIPoIB)
	require.NotNil(l)
	ipoibLayer := l.(*ipoiblayer.IPoIB)
	assert.Equal(layers.EthernetTypeIPv4, ipoibLayer.Protocol)
	assert.Equal(layers.LayerTypeIPv4, ipoibLayer.NextLayerType())

	ip4 := pkt.Layer(layers.LayerTypeIPv4)
	require.NotNil(ip4)
	assert.Equal(ip.SrcIP.String(), ip4.(*layers.IPv4).SrcIP.String())
}

func TestDecodeTruncated(t *testing.T) {
	assert, _ := makeAR(t)

	var l ipoiblayer.IPoIB
	e := l.DecodeFromBytes([]byte{0x08}, gopacket.NilDecodeFeedback)
	assert.Error(e)
}
