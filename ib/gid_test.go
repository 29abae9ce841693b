package ib_test

import (
	"testing"

	"github.com/fabriclab/ipoib/core/testenv"
	"github.com/fabriclab/ipoib/ib"
)

var makeAR = testenv.MakeAR

func TestGIDFormat(t *testing.T) {
	assert, require := makeAR(t)

	assert.Equal("ff12:401b:0000:0000:0000:0000:ffff:ffff", ib.BroadcastGID.String())
	assert.True(ib.BroadcastGID.IsMulticast())
	assert.False(ib.BroadcastGID.IsZero())

	var gid ib.GID
	assert.True(gid.IsZero())
	assert.False(gid.IsMulticast())

	require.NoError(gid.UnmarshalText([]byte(ib.BroadcastGID.String())))
	assert.Equal(ib.BroadcastGID, gid)

	text, e := gid.MarshalText()
	require.NoError(e)
	assert.Equal(ib.BroadcastGID.String(), string(text))

	assert.Error(gid.UnmarshalText([]byte("ff12")))
	assert.Error(gid.UnmarshalText([]byte("zz12:401b:0000:0000:0000:0000:ffff:ffff")))
}

func TestCompletion(t *testing.T) {
	assert, _ := makeAR(t)

	assert.False(ib.Completion{Len: 100}.IsError())
	assert.True(ib.Completion{Syndrome: 2}.IsError())
}
