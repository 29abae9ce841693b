package netdev_test

import (
	"testing"

	"github.com/fabriclab/ipoib/core/testenv"
	"github.com/fabriclab/ipoib/netdev"
)

func TestPacketHeadroom(t *testing.T) {
	assert, require := makeAR(t)

	pkt := netdev.NewPacketHeadroom(8, 16)
	assert.Equal(0, pkt.Len())
	assert.Equal(8, pkt.Headroom())
	assert.Equal(16, pkt.Tailroom())

	payload := make([]byte, 10)
	testenv.RandBytes(payload)
	require.NoError(pkt.Append(payload))
	assert.Equal(10, pkt.Len())
	assert.Equal(6, pkt.Tailroom())

	hdr, e := pkt.Prepend(8)
	require.NoError(e)
	require.Len(hdr, 8)
	copy(hdr, "abcdefgh")
	assert.Equal(18, pkt.Len())
	assert.Equal(0, pkt.Headroom())

	_, e = pkt.Prepend(1)
	assert.ErrorIs(e, netdev.ErrHeadroom)

	removed, e := pkt.Pull(8)
	require.NoError(e)
	assert.Equal([]byte("abcdefgh"), removed)
	testenv.BytesEqual(assert, payload, pkt.Bytes())

	_, e = pkt.Pull(11)
	assert.ErrorIs(e, netdev.ErrLength)
}

func TestPacketPut(t *testing.T) {
	assert, require := makeAR(t)

	pkt := netdev.NewPacket(32)
	assert.Equal(0, pkt.Len())
	assert.Equal(32, len(pkt.Room()))

	copy(pkt.Room(), "0123456789")
	region, e := pkt.Put(10)
	require.NoError(e)
	assert.Equal([]byte("0123456789"), region)
	assert.Equal(10, pkt.Len())

	_, e = pkt.Put(23)
	assert.ErrorIs(e, netdev.ErrTailroom)
	assert.Equal(10, pkt.Len())
}
