// Package netdev implements a minimal generic network-device framework.
//
// A Device record is the surface the outside world interacts with; a driver
// supplies Ops and a LinkProtocol. The framework owns device registration,
// the transmit entry point, periodic polling, and upward delivery of
// received frames and transmit completions.
//
// The framework is single-threaded cooperative: every entry point runs to
// completion on one control goroutine, so no locking is performed.
package netdev

import (
	"errors"
	"fmt"

	"github.com/fabriclab/ipoib/core/logging"
	"go.uber.org/zap"
)

var logger = logging.New("NetDev")

// Framework errors.
var (
	ErrNotOpen    = errors.New("device not open")
	ErrState      = errors.New("operation invalid in current device state")
	ErrDuplicate  = errors.New("device name already registered")
	ErrIncomplete = errors.New("device record incomplete")
)

// State is the lifecycle state of a Device.
type State uint8

// Device lifecycle states.
const (
	StateNew State = iota
	StateRegistered
	StateOpen
	StateRemoved
)

func (st State) String() string {
	switch st {
	case StateNew:
		return "new"
	case StateRegistered:
		return "registered"
	case StateOpen:
		return "open"
	case StateRemoved:
		return "removed"
	}
	return fmt.Sprintf("%d", uint8(st))
}

// Ops is the driver half of a Device.
type Ops interface {
	// Open prepares the device to carry traffic.
	Open(dev *Device) error

	// Close stops the device from carrying traffic.
	Close(dev *Device)

	// Transmit posts one outbound packet.
	// On error the framework reclaims the packet.
	Transmit(dev *Device, pkt *Packet) error

	// Poll drains pending completions and replenishes receive resources.
	Poll(dev *Device)
}

// LinkProtocol describes the device's link layer to the framework.
type LinkProtocol interface {
	// Name returns the protocol name.
	Name() string

	// HardwareType returns the ARP hardware type.
	HardwareType() uint16

	// AddrLen returns the link-layer address size.
	AddrLen() int

	// HeaderLen returns the combined link-layer header size as seen by
	// code above the driver.
	HeaderLen() int

	// EncodeHeader prepends a link-layer header for transmission.
	EncodeHeader(pkt *Packet, dest []byte, proto uint16) error

	// DecodeHeader strips the link-layer header from a received frame,
	// returning the network-layer protocol and the peer address.
	DecodeHeader(pkt *Packet) (proto uint16, peer []byte, e error)

	// FormatAddr renders a link-layer address in human-readable form.
	FormatAddr(addr []byte) string
}

// RxHandler consumes a received network-layer packet.
type RxHandler func(dev *Device, pkt *Packet, proto uint16, peer []byte)

// TxDoneHandler observes the outcome of a transmitted packet.
type TxDoneHandler func(dev *Device, pkt *Packet, e error)

// Device is a generic network device record.
type Device struct {
	// LinkProto describes the link layer. Set by the driver before Register.
	LinkProto LinkProtocol

	// HardwareAddr is the device's link-layer address.
	HardwareAddr []byte

	// MTU is the maximum payload size.
	MTU int

	// Priv points to driver private data.
	Priv any

	// RxHandler receives inbound packets after link-layer decoding.
	// Packets are dropped (and counted) while it is nil.
	RxHandler RxHandler

	// TxDone, if set, observes transmit completions.
	TxDone TxDoneHandler

	name  string
	ops   Ops
	state State
	cnt   Counters
}

// New creates a Device driven by ops.
func New(name string, ops Ops) *Device {
	return &Device{name: name, ops: ops}
}

// Name returns the device name.
func (dev *Device) Name() string {
	return dev.name
}

// State returns the device lifecycle state.
func (dev *Device) State() State {
	return dev.state
}

var table = map[string]*Device{}

// Register makes the device visible to the rest of the system.
func (dev *Device) Register() error {
	if dev.ops == nil || dev.LinkProto == nil || len(dev.HardwareAddr) == 0 {
		return ErrIncomplete
	}
	if dev.state != StateNew {
		return fmt.Errorf("%w: %s", ErrState, dev.state)
	}
	if _, ok := table[dev.name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, dev.name)
	}
	table[dev.name] = dev
	dev.state = StateRegistered
	logger.Info("device registered",
		zap.String("dev", dev.name),
		zap.String("addr", dev.LinkProto.FormatAddr(dev.HardwareAddr)),
	)
	return nil
}

// Unregister withdraws the device, closing it first if it is open.
func (dev *Device) Unregister() {
	if dev.state == StateOpen {
		dev.Close()
	}
	delete(table, dev.name)
	dev.state = StateRemoved
	logger.Info("device unregistered", zap.String("dev", dev.name))
}

// Nullify detaches driver operations so that no further driver entry point
// can be reached through this record. Used on probe unwinding.
func (dev *Device) Nullify() {
	dev.ops = noOps{}
}

// Find locates a registered device by name.
func Find(name string) *Device {
	return table[name]
}

// Open transitions the device to carrying traffic.
func (dev *Device) Open() error {
	if dev.state != StateRegistered {
		return fmt.Errorf("%w: %s", ErrState, dev.state)
	}
	if e := dev.ops.Open(dev); e != nil {
		return e
	}
	dev.state = StateOpen
	logger.Info("device up", zap.String("dev", dev.name))
	return nil
}

// Close stops the device from carrying traffic. It may be reopened later.
func (dev *Device) Close() {
	if dev.state != StateOpen {
		return
	}
	dev.ops.Close(dev)
	dev.state = StateRegistered
	logger.Info("device down", zap.String("dev", dev.name))
}

// Transmit hands one outbound packet to the driver.
// The packet must begin with a link-layer header built by EncodeHeader.
// On error the packet is reclaimed by the framework and reported to TxDone.
func (dev *Device) Transmit(pkt *Packet) error {
	if dev.state != StateOpen {
		dev.cnt.TxDropped++
		return ErrNotOpen
	}
	dev.cnt.TxQueued++
	if e := dev.ops.Transmit(dev, pkt); e != nil {
		dev.TxComplete(pkt, e)
		return e
	}
	return nil
}

// Poll lets the driver drain completions and refill receive resources.
func (dev *Device) Poll() {
	if dev.state != StateOpen {
		return
	}
	dev.ops.Poll(dev)
}

// TxComplete reports the outcome of a previously transmitted packet and
// returns buffer ownership to the framework.
func (dev *Device) TxComplete(pkt *Packet, e error) {
	if e != nil {
		dev.cnt.TxErrors++
		logger.Debug("tx error", zap.String("dev", dev.name), zap.Error(e))
	} else {
		dev.cnt.TxFrames++
		dev.cnt.TxOctets += uint64(pkt.Len())
	}
	if dev.TxDone != nil {
		dev.TxDone(dev, pkt, e)
	}
}

// DeliverRx strips the link-layer header from a received frame and delivers
// the payload to the RxHandler.
func (dev *Device) DeliverRx(pkt *Packet) {
	proto, peer, e := dev.LinkProto.DecodeHeader(pkt)
	if e != nil {
		dev.cnt.RxDecodeErrs++
		logger.Debug("rx decode error", zap.String("dev", dev.name), zap.Error(e))
		return
	}
	dev.cnt.RxFrames++
	dev.cnt.RxOctets += uint64(pkt.Len())
	if dev.RxHandler == nil {
		dev.cnt.RxNoHandler++
		return
	}
	dev.RxHandler(dev, pkt, proto, peer)
}

// RxError reports a receive failure and reclaims the buffer.
func (dev *Device) RxError(pkt *Packet, e error) {
	dev.cnt.RxErrors++
	logger.Debug("rx error", zap.String("dev", dev.name), zap.Error(e))
}

// ReadCounters returns a snapshot of device counters.
func (dev *Device) ReadCounters() Counters {
	return dev.cnt
}

type noOps struct{}

func (noOps) Open(*Device) error              { return ErrState }
func (noOps) Close(*Device)                   {}
func (noOps) Transmit(*Device, *Packet) error { return ErrState }
func (noOps) Poll(*Device)                    {}
