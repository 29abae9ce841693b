package ipoib

import (
	"github.com/fabriclab/ipoib/ib"
)

// TxRoutingPolicy chooses the routing vector for outbound frames.
//
// This driver variant always routes through the broadcast multicast path;
// a unicast policy can be supplied without touching the data path.
type TxRoutingPolicy interface {
	// Route returns the address vector for a frame addressed to dest.
	Route(dest Addr) ib.AddressVector
}

// NewBroadcastRouting creates the default policy: every frame is sent to the
// well-known broadcast group regardless of destination.
func NewBroadcastRouting(qkey uint32) TxRoutingPolicy {
	return broadcastRouting{qkey: qkey}
}

type broadcastRouting struct {
	qkey uint32
}

func (r broadcastRouting) Route(Addr) ib.AddressVector {
	return ib.AddressVector{
		LID:  ib.LIDPermissive,
		GID:  ib.BroadcastGID,
		QPN:  ib.QPNBroadcast,
		QKey: r.qkey,
	}
}
