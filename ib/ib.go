// Package ib declares the Infiniband transport contract consumed by the IPoIB driver.
//
// The Device interface defines the lower layer verbs surface: queue pair and
// completion queue lifecycle, work request posting, completion polling, and
// multicast group membership. It should be implemented for an actual fabric
// provider; package ib/ibtest offers an in-memory implementation for tests
// and demos.
//
// No method on these interfaces may block past issuing the request.
// Completions for posted work are observed later through PollCQ.
package ib

import (
	"github.com/fabriclab/ipoib/netdev"
)

// GRHLen is the size of the global route header that precedes every datagram
// received on an unreliable-datagram queue pair.
const GRHLen = 40

// QPNBroadcast addresses every queue pair attached to a multicast group.
const QPNBroadcast uint32 = 0xFFFFFF

// LIDPermissive matches any local identifier.
const LIDPermissive uint16 = 0xFFFF

// CompletionQueue is an opaque handle to a transport completion queue.
type CompletionQueue interface {
	// Capacity returns the number of completion entries the queue can hold.
	Capacity() int
}

// QueuePair is an opaque handle to a transport queue pair.
type QueuePair interface {
	// QPN returns the queue pair number assigned by the transport.
	QPN() uint32
}

// Completion describes one completed work request.
type Completion struct {
	// Syndrome is the transport error code. Zero means success.
	Syndrome uint32

	// Len is the number of bytes written into the buffer.
	// It is meaningful for receive completions only.
	Len int
}

// IsError reports whether the completion carries an error syndrome.
func (c Completion) IsError() bool {
	return c.Syndrome != 0
}

// CompletionHandler consumes one completion together with the buffer whose
// work request completed. Buffer ownership returns to the handler.
type CompletionHandler func(qp QueuePair, c Completion, pkt *netdev.Packet)

// Device represents one port of an Infiniband transport device.
type Device interface {
	// Name returns a human-readable device identifier.
	Name() string

	// PortGID returns the port's global identifier.
	PortGID() GID

	// CreateCQ allocates a completion queue.
	CreateCQ(capacity int) (CompletionQueue, error)

	// DestroyCQ releases a completion queue.
	DestroyCQ(cq CompletionQueue) error

	// CreateQP allocates a queue pair bound to the given completion queues.
	CreateQP(sendCap int, sendCQ CompletionQueue, recvCap int, recvCQ CompletionQueue, qkey uint32) (QueuePair, error)

	// DestroyQP releases a queue pair.
	DestroyQP(qp QueuePair) error

	// PostSend posts a send work request addressed by av.
	// On success the transport owns pkt until the completion is observed.
	PostSend(qp QueuePair, av AddressVector, pkt *netdev.Packet) error

	// PostRecv posts a receive work request.
	// On success the transport owns pkt until the completion is observed.
	PostRecv(qp QueuePair, pkt *netdev.Packet) error

	// PollCQ drains currently available completions, dispatching each to
	// onSend or onRecv. It never waits for further completions.
	PollCQ(cq CompletionQueue, onSend, onRecv CompletionHandler)

	// McastAttach joins the queue pair to a multicast group.
	McastAttach(qp QueuePair, gid GID) error

	// McastDetach removes the queue pair from a multicast group.
	McastDetach(qp QueuePair, gid GID) error
}

// AddressVector carries routing information for a send work request.
type AddressVector struct {
	LID  uint16 `json:"lid"`
	GID  GID    `json:"gid"`
	QPN  uint32 `json:"qpn"`
	QKey uint32 `json:"qkey"`
}
