package ipoib_test

import (
	"testing"

	"github.com/fabriclab/ipoib/ib"
	"github.com/fabriclab/ipoib/ipoib"
)

func TestAddrFormat(t *testing.T) {
	assert, require := makeAR(t)

	a := ipoib.Addr{
		QPN: 0x000A0B0C,
		GID: ib.GID{0xFE, 0x80, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x01},
	}
	assert.Equal("00:0a:0b:0c:fe:80:00:00:00:00:00:00:00:00:00:00:00:00:00:01", a.String())

	parsed, e := ipoib.ParseAddr(a.String())
	require.NoError(e)
	assert.Equal(a, parsed)

	fromBytes, e := ipoib.AddrFromBytes(a.Bytes())
	require.NoError(e)
	assert.Equal(a, fromBytes)

	_, e = ipoib.AddrFromBytes(a.Bytes()[:10])
	assert.ErrorIs(e, ipoib.ErrAddrLen)
}

func TestAddrBroadcast(t *testing.T) {
	assert, _ := makeAR(t)

	assert.True(ipoib.Broadcast.IsBroadcast())
	assert.True(ipoib.Broadcast.GID.IsMulticast())
	assert.EqualValues(0, ipoib.Broadcast.QPN)
	assert.False(ipoib.Addr{QPN: 1}.IsBroadcast())
}

func TestAddrFlag(t *testing.T) {
	assert, require := makeAR(t)

	var f ipoib.Flag
	require.NoError(f.Set("00:00:00:2a:fe:80:00:00:00:00:00:00:00:00:00:00:00:00:00:07"))
	assert.EqualValues(0x2A, f.QPN)
	assert.EqualValues(0x07, f.GID[15])

	text, e := f.MarshalText()
	require.NoError(e)
	assert.Equal(f.Addr.String(), string(text))

	var g ipoib.Flag
	require.NoError(g.UnmarshalText(text))
	assert.Equal(f.Addr, g.Addr)

	assert.Error(f.Set("not-an-address"))
}
