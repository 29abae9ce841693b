// Package ibtest provides an in-memory Infiniband transport for tests and
// demos. A Fabric connects any number of Devices; frames posted as sends are
// looped back into the receive rings of multicast group members, with a
// synthetic global route header prepended the way real hardware delivers
// unreliable datagrams.
package ibtest

import (
	"go.uber.org/multierr"

	"github.com/fabriclab/ipoib/core/logging"
	"github.com/fabriclab/ipoib/ib"
	"github.com/fabriclab/ipoib/netdev"
)

var logger = logging.New("IbTest")

// Fabric is a broadcast domain connecting fake transport devices.
type Fabric struct {
	devices []*Device
	groups  map[ib.GID][]*queuePair
	nextQPN uint32
}

// NewFabric creates an empty fabric.
func NewFabric() *Fabric {
	return &Fabric{
		groups:  map[ib.GID][]*queuePair{},
		nextQPN: 0x40,
	}
}

// AddDevice creates a fake transport device attached to the fabric.
// The port GID is derived from the device's position on the fabric.
func (f *Fabric) AddDevice(name string) *Device {
	d := &Device{
		fabric: f,
		name:   name,
		cqs:    map[*completionQueue]bool{},
		qps:    map[*queuePair]bool{},
	}
	d.portGID = ib.GID{0xFE, 0x80}
	d.portGID[15] = byte(len(f.devices) + 1)
	f.devices = append(f.devices, d)
	return d
}

// Close destroys every handle still live on the fabric.
func (f *Fabric) Close() (e error) {
	for _, d := range f.devices {
		for qp := range d.qps {
			e = multierr.Append(e, d.DestroyQP(qp))
		}
		for cq := range d.cqs {
			e = multierr.Append(e, d.DestroyCQ(cq))
		}
	}
	f.groups = map[ib.GID][]*queuePair{}
	return e
}

// deliver loops a wire frame back into the receive ring of every matching
// group member except the sender.
func (f *Fabric) deliver(sender *queuePair, av ib.AddressVector, frame []byte) {
	var targets []*queuePair
	if av.GID.IsMulticast() && av.QPN == ib.QPNBroadcast {
		targets = f.groups[av.GID]
	} else {
		for _, d := range f.devices {
			for qp := range d.qps {
				if qp.qpn == av.QPN {
					targets = append(targets, qp)
				}
			}
		}
	}

	for _, qp := range targets {
		if qp == sender {
			continue
		}
		if qp.qkey != av.QKey {
			continue
		}
		qp.receive(sender.dev.portGID, av.GID, frame)
	}
}

type completionQueue struct {
	capacity int
	pending  []pending
}

func (cq *completionQueue) Capacity() int {
	return cq.capacity
}

type pending struct {
	send bool
	qp   *queuePair
	c    ib.Completion
	pkt  *netdev.Packet
}

type queuePair struct {
	dev    *Device
	qpn    uint32
	qkey   uint32
	sendCQ *completionQueue
	recvCQ *completionQueue

	sendCap int
	recvCap int
	ring    []*netdev.Packet
}

func (qp *queuePair) QPN() uint32 {
	return qp.qpn
}

// receive consumes one posted buffer, filling it with a synthetic GRH
// followed by the wire frame, and queues the receive completion.
func (qp *queuePair) receive(src, dst ib.GID, frame []byte) {
	if len(qp.ring) == 0 {
		qp.dev.RxOverruns++
		return
	}
	pkt := qp.ring[0]
	qp.ring = qp.ring[1:]

	room := pkt.Room()
	if len(room) < ib.GRHLen {
		// buffer cannot hold the route header
		qp.recvCQ.pending = append(qp.recvCQ.pending, pending{
			qp:  qp,
			c:   ib.Completion{Syndrome: SyndromeLengthError},
			pkt: pkt,
		})
		return
	}
	n := ib.GRHLen + len(frame)
	if n > len(room) {
		n = len(room)
	}
	grh := room[:ib.GRHLen]
	for i := range grh {
		grh[i] = 0
	}
	grh[0] = 0x60
	copy(grh[8:24], src[:])
	copy(grh[24:40], dst[:])
	copy(room[ib.GRHLen:n], frame)

	qp.recvCQ.pending = append(qp.recvCQ.pending, pending{
		qp:  qp,
		c:   ib.Completion{Syndrome: qp.dev.RecvSyndrome, Len: n},
		pkt: pkt,
	})
}
