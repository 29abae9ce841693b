package ibtest

import (
	"go.uber.org/zap"

	"github.com/fabriclab/ipoib/ib"
	"github.com/fabriclab/ipoib/netdev"
)

// SyndromeLengthError marks a completion whose posted buffer was too small
// for the delivered datagram.
const SyndromeLengthError uint32 = 0x01

// Device is a fake transport device. The exported fields inject failures
// and syndromes into subsequent operations; the zero value of each means
// normal behavior.
type Device struct {
	fabric  *Fabric
	name    string
	portGID ib.GID

	cqs map[*completionQueue]bool
	qps map[*queuePair]bool

	// FailCreateCQ makes CreateCQ fail.
	FailCreateCQ bool

	// FailCreateQP makes CreateQP fail.
	FailCreateQP bool

	// FailPostSend makes PostSend fail.
	FailPostSend bool

	// FailPostRecv makes PostRecv fail.
	FailPostRecv bool

	// FailMcastAttach makes McastAttach fail.
	FailMcastAttach bool

	// SendSyndrome is attached to send completions generated from now on.
	SendSyndrome uint32

	// RecvSyndrome is attached to receive completions generated from now on.
	RecvSyndrome uint32

	// RxOverruns counts frames dropped because the receive ring was empty.
	RxOverruns int
}

var _ ib.Device = (*Device)(nil)

// Name implements ib.Device.
func (d *Device) Name() string {
	return d.name
}

// PortGID implements ib.Device.
func (d *Device) PortGID() ib.GID {
	return d.portGID
}

// CreateCQ implements ib.Device.
func (d *Device) CreateCQ(capacity int) (ib.CompletionQueue, error) {
	if d.FailCreateCQ {
		return nil, ib.ErrResourceExhausted
	}
	cq := &completionQueue{capacity: capacity}
	d.cqs[cq] = true
	return cq, nil
}

// DestroyCQ implements ib.Device.
func (d *Device) DestroyCQ(cq ib.CompletionQueue) error {
	c, ok := cq.(*completionQueue)
	if !ok || !d.cqs[c] {
		return ib.ErrBadHandle
	}
	delete(d.cqs, c)
	return nil
}

// CreateQP implements ib.Device.
func (d *Device) CreateQP(sendCap int, sendCQ ib.CompletionQueue, recvCap int, recvCQ ib.CompletionQueue, qkey uint32) (ib.QueuePair, error) {
	if d.FailCreateQP {
		return nil, ib.ErrResourceExhausted
	}
	scq, ok := sendCQ.(*completionQueue)
	if !ok || !d.cqs[scq] {
		return nil, ib.ErrBadHandle
	}
	rcq, ok := recvCQ.(*completionQueue)
	if !ok || !d.cqs[rcq] {
		return nil, ib.ErrBadHandle
	}

	qp := &queuePair{
		dev:     d,
		qpn:     d.fabric.nextQPN,
		qkey:    qkey,
		sendCQ:  scq,
		recvCQ:  rcq,
		sendCap: sendCap,
		recvCap: recvCap,
	}
	d.fabric.nextQPN++
	d.qps[qp] = true
	logger.Debug("QP created",
		zap.String("dev", d.name), zap.Uint32("qpn", qp.qpn))
	return qp, nil
}

// DestroyQP implements ib.Device.
func (d *Device) DestroyQP(qp ib.QueuePair) error {
	q, ok := qp.(*queuePair)
	if !ok || !d.qps[q] {
		return ib.ErrBadHandle
	}
	delete(d.qps, q)
	q.ring = nil
	for gid, members := range d.fabric.groups {
		d.fabric.groups[gid] = removeQP(members, q)
	}
	return nil
}

// PostSend implements ib.Device.
func (d *Device) PostSend(qp ib.QueuePair, av ib.AddressVector, pkt *netdev.Packet) error {
	q, ok := qp.(*queuePair)
	if !ok || !d.qps[q] {
		return ib.ErrBadHandle
	}
	if d.FailPostSend {
		return ib.ErrQueueFull
	}

	c := ib.Completion{Syndrome: d.SendSyndrome}
	if !c.IsError() {
		frame := append([]byte(nil), pkt.Bytes()...)
		d.fabric.deliver(q, av, frame)
	}
	q.sendCQ.pending = append(q.sendCQ.pending, pending{
		send: true,
		qp:   q,
		c:    c,
		pkt:  pkt,
	})
	return nil
}

// PostRecv implements ib.Device.
func (d *Device) PostRecv(qp ib.QueuePair, pkt *netdev.Packet) error {
	q, ok := qp.(*queuePair)
	if !ok || !d.qps[q] {
		return ib.ErrBadHandle
	}
	if d.FailPostRecv {
		return ib.ErrQueueFull
	}
	if len(q.ring) >= q.recvCap {
		return ib.ErrQueueFull
	}
	q.ring = append(q.ring, pkt)
	return nil
}

// PollCQ implements ib.Device.
func (d *Device) PollCQ(cq ib.CompletionQueue, onSend, onRecv ib.CompletionHandler) {
	c, ok := cq.(*completionQueue)
	if !ok || !d.cqs[c] {
		return
	}
	for len(c.pending) > 0 {
		p := c.pending[0]
		c.pending = c.pending[1:]
		if p.send {
			onSend(p.qp, p.c, p.pkt)
		} else {
			onRecv(p.qp, p.c, p.pkt)
		}
	}
}

// McastAttach implements ib.Device.
func (d *Device) McastAttach(qp ib.QueuePair, gid ib.GID) error {
	q, ok := qp.(*queuePair)
	if !ok || !d.qps[q] {
		return ib.ErrBadHandle
	}
	if d.FailMcastAttach {
		return ib.ErrResourceExhausted
	}
	d.fabric.groups[gid] = append(d.fabric.groups[gid], q)
	return nil
}

// McastDetach implements ib.Device.
func (d *Device) McastDetach(qp ib.QueuePair, gid ib.GID) error {
	q, ok := qp.(*queuePair)
	if !ok || !d.qps[q] {
		return ib.ErrBadHandle
	}
	d.fabric.groups[gid] = removeQP(d.fabric.groups[gid], q)
	return nil
}

// LiveCQs returns the number of completion queues not yet destroyed.
func (d *Device) LiveCQs() int {
	return len(d.cqs)
}

// LiveQPs returns the number of queue pairs not yet destroyed.
func (d *Device) LiveQPs() int {
	return len(d.qps)
}

// PostedRecvs returns the number of buffers posted to a queue pair's
// receive ring.
func (d *Device) PostedRecvs(qp ib.QueuePair) int {
	q, ok := qp.(*queuePair)
	if !ok {
		return 0
	}
	return len(q.ring)
}

// InjectRecvCompletion consumes one posted receive buffer and queues a
// completion for it without any frame content. Returns false if the ring
// is empty.
func (d *Device) InjectRecvCompletion(qp ib.QueuePair, c ib.Completion) bool {
	q, ok := qp.(*queuePair)
	if !ok || !d.qps[q] || len(q.ring) == 0 {
		return false
	}
	pkt := q.ring[0]
	q.ring = q.ring[1:]
	q.recvCQ.pending = append(q.recvCQ.pending, pending{qp: q, c: c, pkt: pkt})
	return true
}

func removeQP(members []*queuePair, qp *queuePair) []*queuePair {
	out := members[:0]
	for _, m := range members {
		if m != qp {
			out = append(out, m)
		}
	}
	return out
}
