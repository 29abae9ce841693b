package ipoib_test

import (
	"encoding/binary"
	"testing"

	"github.com/fabriclab/ipoib/core/testenv"
	"github.com/fabriclab/ipoib/ib"
	"github.com/fabriclab/ipoib/ipoib"
	"github.com/fabriclab/ipoib/netdev"
)

func TestHeaderRoundTrip(t *testing.T) {
	assert, require := makeAR(t)

	payload := make([]byte, 117)
	testenv.RandBytes(payload)
	dest := ipoib.Addr{QPN: 0x48, GID: ib.GID{0xFE, 0x80, 15: 0x09}}

	pkt := netdev.NewPacketHeadroom(ipoib.HeaderLen, len(payload))
	require.NoError(pkt.Append(payload))
	require.NoError(ipoib.EncodeTxHeader(pkt, dest, 0x86DD))
	assert.Equal(ipoib.HeaderLen+len(payload), pkt.Len())

	wire := pkt.Bytes()
	testenv.BytesEqual(assert, dest.Bytes(), wire[:ipoib.PseudoHeaderLen])
	assert.EqualValues(0x86DD, binary.BigEndian.Uint16(wire[ipoib.PseudoHeaderLen:]))
	assert.EqualValues(0, binary.BigEndian.Uint16(wire[ipoib.PseudoHeaderLen+2:ipoib.HeaderLen]))

	proto, peer, e := ipoib.DecodeRxHeader(pkt)
	require.NoError(e)
	assert.EqualValues(0x86DD, proto)
	assert.Equal(dest, peer)
	testenv.BytesEqual(assert, payload, pkt.Bytes())
}

func TestDecodeTruncated(t *testing.T) {
	assert, _ := makeAR(t)

	pkt := netdev.NewPacket(ipoib.HeaderLen)
	pkt.Put(ipoib.HeaderLen - 1)
	_, _, e := ipoib.DecodeRxHeader(pkt)
	assert.ErrorIs(e, ipoib.ErrTruncated)
	assert.Equal(ipoib.HeaderLen-1, pkt.Len())
}

func TestEncodeNoHeadroom(t *testing.T) {
	assert, _ := makeAR(t)

	pkt := netdev.NewPacketHeadroom(ipoib.HeaderLen-1, 8)
	e := ipoib.EncodeTxHeader(pkt, ipoib.Broadcast, 0x0800)
	assert.ErrorIs(e, netdev.ErrHeadroom)
	assert.Equal(0, pkt.Len())
}

func TestProtocolDescriptor(t *testing.T) {
	assert, _ := makeAR(t)

	var proto ipoib.Protocol
	assert.Equal("IPoIB", proto.Name())
	assert.EqualValues(ipoib.HardwareTypeInfiniband, proto.HardwareType())
	assert.Equal(ipoib.AddrLen, proto.AddrLen())
	assert.Equal(ipoib.HeaderLen, proto.HeaderLen())
	assert.Equal(ipoib.Broadcast.String(), proto.FormatAddr(ipoib.Broadcast.Bytes()))
	assert.Equal("0102", proto.FormatAddr([]byte{1, 2}))
}
