package netdev

import (
	"fmt"
)

// Counters contains basic device counters.
type Counters struct {
	TxQueued  uint64 // packets accepted into the transmit path
	TxFrames  uint64 // packets confirmed sent
	TxOctets  uint64 // bytes confirmed sent
	TxErrors  uint64 // transmit failures
	TxDropped uint64 // packets dropped before reaching the driver

	RxFrames     uint64 // packets delivered upward
	RxOctets     uint64 // bytes delivered upward
	RxErrors     uint64 // receive failures reported by the driver
	RxDecodeErrs uint64 // link-layer decode failures
	RxNoHandler  uint64 // packets dropped for lack of a receive handler
}

func (cnt Counters) String() string {
	return fmt.Sprintf("TX %dfrm %db %dqueued %derr %ddropped RX %dfrm %db %derr l2=%derr %dnohandler",
		cnt.TxFrames, cnt.TxOctets, cnt.TxQueued, cnt.TxErrors, cnt.TxDropped,
		cnt.RxFrames, cnt.RxOctets, cnt.RxErrors, cnt.RxDecodeErrs, cnt.RxNoHandler)
}
