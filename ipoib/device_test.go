package ipoib_test

import (
	"testing"

	"go4.org/must"

	"github.com/fabriclab/ipoib/core/testenv"
	"github.com/fabriclab/ipoib/ib"
	"github.com/fabriclab/ipoib/ib/ibtest"
	"github.com/fabriclab/ipoib/ipoib"
	"github.com/fabriclab/ipoib/netdev"
)

func TestProbeRemove(t *testing.T) {
	assert, require := makeAR(t)

	fabric := ibtest.NewFabric()
	ibdev := fabric.AddDevice("probe0")

	d, e := ipoib.Probe(ibdev, ipoib.Config{})
	require.NoError(e)
	assert.Same(d, ipoib.Get(ibdev))

	// hardware address is derived from the data QP number and the port GID
	addr := d.HardwareAddr()
	assert.Equal(d.DataQueueSet().QP().QPN(), addr.QPN)
	assert.Equal(ibdev.PortGID(), addr.GID)

	nd := d.NetDevice()
	assert.Same(nd, netdev.Find("probe0"))
	assert.Equal(netdev.StateRegistered, nd.State())
	testenv.BytesEqual(assert, addr.Bytes(), nd.HardwareAddr)
	assert.Equal(ipoib.DefaultMTU, nd.MTU)

	require.NoError(ipoib.Remove(ibdev))
	assert.Nil(ipoib.Get(ibdev))
	assert.Nil(netdev.Find("probe0"))
	assert.Equal(0, ibdev.LiveCQs())
	assert.Equal(0, ibdev.LiveQPs())

	assert.ErrorIs(ipoib.Remove(ibdev), ipoib.ErrNoDevice)
}

func TestProbeQueueSetFailure(t *testing.T) {
	assert, _ := makeAR(t)

	fabric := ibtest.NewFabric()
	ibdev := fabric.AddDevice("probe1")
	ibdev.FailCreateQP = true

	_, e := ipoib.Probe(ibdev, ipoib.Config{})
	assert.ErrorIs(e, ib.ErrResourceExhausted)
	assert.Nil(ipoib.Get(ibdev))
	assert.Nil(netdev.Find("probe1"))
	assert.Equal(0, ibdev.LiveCQs())
	assert.Equal(0, ibdev.LiveQPs())
}

func TestProbeRegisterFailure(t *testing.T) {
	assert, require := makeAR(t)

	fabric := ibtest.NewFabric()
	first := fabric.AddDevice("dup0")
	second := fabric.AddDevice("dup0")

	_, e := ipoib.Probe(first, ipoib.Config{})
	require.NoError(e)
	defer ipoib.Remove(first)

	_, e = ipoib.Probe(second, ipoib.Config{})
	assert.ErrorIs(e, netdev.ErrDuplicate)
	assert.Nil(ipoib.Get(second))
	assert.Equal(0, second.LiveCQs())
	assert.Equal(0, second.LiveQPs())
}

func TestOpenAttachFailure(t *testing.T) {
	assert, require := makeAR(t)

	fabric := ibtest.NewFabric()
	ibdev := fabric.AddDevice("attach0")
	ibdev.FailMcastAttach = true

	d, e := ipoib.Probe(ibdev, ipoib.Config{})
	require.NoError(e)
	defer ipoib.Remove(ibdev)

	assert.ErrorIs(d.NetDevice().Open(), ib.ErrResourceExhausted)
	assert.Equal(netdev.StateRegistered, d.NetDevice().State())
	assert.Equal(0, d.DataQueueSet().RecvFill())
}

func TestOpenPrimesReceiveRing(t *testing.T) {
	assert, require := makeAR(t)

	fabric := ibtest.NewFabric()
	ibdev := fabric.AddDevice("open0")

	d, e := ipoib.Probe(ibdev, ipoib.Config{RecvCapacity: 16})
	require.NoError(e)
	defer ipoib.Remove(ibdev)

	require.NoError(d.NetDevice().Open())
	qs := d.DataQueueSet()
	assert.Equal(16, qs.RecvMaxFill())
	assert.Equal(16, qs.RecvFill())
	assert.Equal(16, ibdev.PostedRecvs(qs.QP()))
}

func TestCloseStopsTraffic(t *testing.T) {
	assert, require := makeAR(t)

	fabric := ibtest.NewFabric()
	sender := fabric.AddDevice("close0")
	receiver := fabric.AddDevice("close1")

	ds, e := ipoib.Probe(sender, ipoib.Config{})
	require.NoError(e)
	defer ipoib.Remove(sender)
	dr, e := ipoib.Probe(receiver, ipoib.Config{})
	require.NoError(e)
	defer ipoib.Remove(receiver)

	require.NoError(ds.NetDevice().Open())
	require.NoError(dr.NetDevice().Open())

	dr.NetDevice().Close()
	assert.Equal(netdev.StateRegistered, dr.NetDevice().State())

	// buffers posted before Close stay with the transport
	fill := dr.DataQueueSet().RecvFill()
	assert.Equal(dr.DataQueueSet().RecvMaxFill(), fill)

	// a detached device no longer receives broadcast traffic
	require.NoError(transmitBroadcast(ds.NetDevice(), []byte("after close"), 0x0800))
	ds.NetDevice().Poll()
	dr.NetDevice().Poll()
	assert.Equal(fill, dr.DataQueueSet().RecvFill())
	assert.EqualValues(0, dr.NetDevice().ReadCounters().RxFrames)
}

func TestLifecycleEvents(t *testing.T) {
	assert, require := makeAR(t)

	var probed, up, down, removed int
	defer must.Close(ipoib.OnDeviceNew(func(*ipoib.Device) { probed++ }))
	defer must.Close(ipoib.OnDeviceUp(func(*ipoib.Device) { up++ }))
	defer must.Close(ipoib.OnDeviceDown(func(*ipoib.Device) { down++ }))
	defer must.Close(ipoib.OnDeviceRemoved(func(*ipoib.Device) { removed++ }))

	fabric := ibtest.NewFabric()
	ibdev := fabric.AddDevice("evt0")

	d, e := ipoib.Probe(ibdev, ipoib.Config{})
	require.NoError(e)
	require.NoError(d.NetDevice().Open())
	d.NetDevice().Close()
	require.NoError(ipoib.Remove(ibdev))

	assert.Equal(1, probed)
	assert.Equal(1, up)
	assert.Equal(1, down)
	assert.Equal(1, removed)
}

// transmitBroadcast builds a broadcast frame carrying payload and hands it
// to the device.
func transmitBroadcast(nd *netdev.Device, payload []byte, proto uint16) error {
	pkt := netdev.NewPacketHeadroom(ipoib.HeaderLen, len(payload))
	if e := pkt.Append(payload); e != nil {
		return e
	}
	if e := ipoib.EncodeTxHeader(pkt, ipoib.Broadcast, proto); e != nil {
		return e
	}
	return nd.Transmit(pkt)
}
