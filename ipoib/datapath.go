package ipoib

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/fabriclab/ipoib/ib"
	"github.com/fabriclab/ipoib/netdev"
)

// Transmit implements netdev.Ops. The buffer must begin with the combined
// header built by EncodeTxHeader; the pseudo-header portion is stripped so
// that the real header and payload form the wire frame, then the buffer is
// posted as a send work request routed by the configured policy.
//
// The post result is returned unchanged; on failure the caller retains
// buffer ownership. A buffer shorter than the pseudo header is rejected
// without touching it.
func (d *Device) Transmit(nd *netdev.Device, pkt *netdev.Packet) error {
	if pkt.Len() < PseudoHeaderLen {
		return ErrNoPseudoHeader
	}
	pseudo, _ := pkt.Pull(PseudoHeaderLen)
	dest, _ := AddrFromBytes(pseudo)
	return d.ibdev.PostSend(d.data.QP(), d.cfg.Routing.Route(dest), pkt)
}

// Poll implements netdev.Ops. It drains all currently available completions
// on the data completion queue, then refills the receive ring. This is the
// sole point where completions are observed.
func (d *Device) Poll(nd *netdev.Device) {
	d.ibdev.PollCQ(d.data.CQ(), d.handleSendComplete, d.handleRecvComplete)
	d.refill(d.data)
}

func (d *Device) handleSendComplete(qp ib.QueuePair, c ib.Completion, pkt *netdev.Packet) {
	var e error
	if c.IsError() {
		e = fmt.Errorf("%w: send syndrome %#x", ErrTransportIO, c.Syndrome)
	}
	d.net.TxComplete(pkt, e)
}

func (d *Device) handleRecvComplete(qp ib.QueuePair, c ib.Completion, pkt *netdev.Packet) {
	switch {
	case c.IsError():
		d.net.RxError(pkt, fmt.Errorf("%w: recv syndrome %#x", ErrTransportIO, c.Syndrome))
	default:
		if e := trimRouteHeader(pkt, c.Len); e != nil {
			d.net.RxError(pkt, e)
		} else {
			d.net.DeliverRx(pkt)
		}
	}

	// exactly once per completion, or the ring starves
	d.data.recvFill--
}

// trimRouteHeader grows the buffer to the completion's reported length and
// discards the global route header bytes in excess of the pseudo header, so
// that the buffer starts with what the framework treats as the combined
// link-layer header.
func trimRouteHeader(pkt *netdev.Packet, length int) error {
	if _, e := pkt.Put(length); e != nil {
		return fmt.Errorf("completion length %d: %w", length, e)
	}
	if _, e := pkt.Pull(ib.GRHLen - PseudoHeaderLen); e != nil {
		return fmt.Errorf("%w: %d bytes", ErrTruncated, length)
	}
	return nil
}

// refill posts MTU-sized receive buffers until the ring reaches its fill
// target. It stops at the first allocation or post failure; resource
// pressure is transient and retried on the next poll.
func (d *Device) refill(qs *QueueSet) {
	if !d.running {
		return
	}
	for qs.recvFill < qs.recvMaxFill {
		pkt := d.cfg.AllocRx(d.cfg.MTU)
		if pkt == nil {
			break
		}
		if e := d.ibdev.PostRecv(qs.qp, pkt); e != nil {
			logger.Debug("post recv failed",
				zap.String("dev", d.net.Name()), zap.Error(e))
			break
		}
		qs.recvFill++
	}
}
