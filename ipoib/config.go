package ipoib

import (
	"github.com/pkg/math"

	"github.com/fabriclab/ipoib/netdev"
)

// Limits and defaults.
const (
	// DefaultMTU is the IPoIB maximum payload size.
	DefaultMTU = 2048

	// DefaultQKey is the partition queue key for IPoIB datagrams.
	DefaultQKey = 0x0B1B

	MinSendCapacity = 4
	MinRecvCapacity = 8
	MinCQCapacity   = 8
)

// Config contains device options for Probe.
type Config struct {
	// MTU is the maximum payload size. Default is DefaultMTU.
	MTU int `json:"mtu,omitempty"`

	// CQCapacity is the completion queue depth.
	// It is clamped to at least MinCQCapacity.
	CQCapacity int `json:"cqCapacity,omitempty"`

	// SendCapacity is the send work queue depth.
	// It is clamped to at least MinSendCapacity.
	SendCapacity int `json:"sendCapacity,omitempty"`

	// RecvCapacity is the receive work queue depth and the receive ring
	// fill target. It is clamped to at least MinRecvCapacity.
	RecvCapacity int `json:"recvCapacity,omitempty"`

	// QKey is the queue key shared by the IPoIB partition.
	// Default is DefaultQKey.
	QKey uint32 `json:"qkey,omitempty"`

	// Routing selects the transmit routing policy.
	// Default is NewBroadcastRouting(QKey).
	Routing TxRoutingPolicy `json:"-"`

	// AllocRx allocates one receive buffer of the given capacity, or
	// returns nil under resource pressure. Default allocates from the Go
	// heap and never fails.
	AllocRx func(capacity int) *netdev.Packet `json:"-"`
}

func (cfg *Config) applyDefaults() {
	if cfg.MTU <= 0 {
		cfg.MTU = DefaultMTU
	}
	cfg.CQCapacity = math.MaxInt(cfg.CQCapacity, MinCQCapacity)
	cfg.SendCapacity = math.MaxInt(cfg.SendCapacity, MinSendCapacity)
	cfg.RecvCapacity = math.MaxInt(cfg.RecvCapacity, MinRecvCapacity)
	if cfg.QKey == 0 {
		cfg.QKey = DefaultQKey
	}
	if cfg.Routing == nil {
		cfg.Routing = NewBroadcastRouting(cfg.QKey)
	}
	if cfg.AllocRx == nil {
		cfg.AllocRx = func(capacity int) *netdev.Packet {
			return netdev.NewPacket(capacity)
		}
	}
}
