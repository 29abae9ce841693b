package ipoib

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/fabriclab/ipoib/ib"
)

// Role identifies what traffic a queue set carries.
type Role uint8

// Queue set roles.
const (
	// RoleData carries ordinary data traffic.
	RoleData Role = iota

	// RoleMeta is reserved for control traffic.
	RoleMeta
)

func (role Role) String() string {
	switch role {
	case RoleData:
		return "data"
	case RoleMeta:
		return "meta"
	}
	return fmt.Sprintf("%d", uint8(role))
}

// QueueSet bundles one completion queue and one queue pair together with
// receive-ring fill bookkeeping. It is created and destroyed as a unit and
// owned exclusively by one Device.
type QueueSet struct {
	role  Role
	ibdev ib.Device
	cq    ib.CompletionQueue
	qp    ib.QueuePair

	recvFill    int
	recvMaxFill int
}

// NewQueueSet allocates a completion queue of cqCapacity entries, then a
// queue pair bound to it for both send and receive. No handle is leaked on
// any failure path.
func NewQueueSet(ibdev ib.Device, role Role, cqCapacity, sendCapacity, recvCapacity int, qkey uint32) (qs *QueueSet, e error) {
	qs = &QueueSet{
		role:        role,
		ibdev:       ibdev,
		recvMaxFill: recvCapacity,
	}

	if qs.cq, e = ibdev.CreateCQ(cqCapacity); e != nil {
		return nil, fmt.Errorf("%s queue set: create CQ: %w", role, e)
	}

	if qs.qp, e = ibdev.CreateQP(sendCapacity, qs.cq, recvCapacity, qs.cq, qkey); e != nil {
		e = fmt.Errorf("%s queue set: create QP: %w", role, e)
		return nil, multierr.Append(e, qs.Destroy())
	}

	return qs, nil
}

// Destroy releases the queue pair and the completion queue, then zeroes the
// bundle. It is idempotent and safe on a partially populated set.
func (qs *QueueSet) Destroy() (e error) {
	if qs.qp != nil {
		e = multierr.Append(e, qs.ibdev.DestroyQP(qs.qp))
	}
	if qs.cq != nil {
		e = multierr.Append(e, qs.ibdev.DestroyCQ(qs.cq))
	}
	qs.qp, qs.cq = nil, nil
	qs.recvFill, qs.recvMaxFill = 0, 0
	return e
}

// Role returns the queue set role.
func (qs *QueueSet) Role() Role {
	return qs.role
}

// QP returns the queue pair handle. It is non-nil exactly when creation
// succeeded and Destroy has not run.
func (qs *QueueSet) QP() ib.QueuePair {
	return qs.qp
}

// CQ returns the completion queue handle.
func (qs *QueueSet) CQ() ib.CompletionQueue {
	return qs.cq
}

// RecvFill returns the number of receive buffers currently posted.
func (qs *QueueSet) RecvFill() int {
	return qs.recvFill
}

// RecvMaxFill returns the receive ring fill target.
func (qs *QueueSet) RecvMaxFill() int {
	return qs.recvMaxFill
}
