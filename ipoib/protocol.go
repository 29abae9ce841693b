package ipoib

import (
	"encoding/hex"

	"github.com/fabriclab/ipoib/netdev"
)

// HardwareTypeInfiniband is the ARP hardware type for IPoIB.
const HardwareTypeInfiniband = 32

// Protocol describes the IPoIB link layer to the network-device framework.
type Protocol struct{}

var _ netdev.LinkProtocol = Protocol{}

// Name implements netdev.LinkProtocol.
func (Protocol) Name() string {
	return "IPoIB"
}

// HardwareType implements netdev.LinkProtocol.
func (Protocol) HardwareType() uint16 {
	return HardwareTypeInfiniband
}

// AddrLen implements netdev.LinkProtocol.
func (Protocol) AddrLen() int {
	return AddrLen
}

// HeaderLen implements netdev.LinkProtocol.
func (Protocol) HeaderLen() int {
	return HeaderLen
}

// EncodeHeader implements netdev.LinkProtocol.
func (Protocol) EncodeHeader(pkt *netdev.Packet, dest []byte, proto uint16) error {
	a, e := AddrFromBytes(dest)
	if e != nil {
		return e
	}
	return EncodeTxHeader(pkt, a, proto)
}

// DecodeHeader implements netdev.LinkProtocol.
func (Protocol) DecodeHeader(pkt *netdev.Packet) (proto uint16, peer []byte, e error) {
	proto, peerAddr, e := DecodeRxHeader(pkt)
	if e != nil {
		return 0, nil, e
	}
	return proto, peerAddr.Bytes(), nil
}

// FormatAddr implements netdev.LinkProtocol.
func (Protocol) FormatAddr(addr []byte) string {
	a, e := AddrFromBytes(addr)
	if e != nil {
		return hex.EncodeToString(addr)
	}
	return a.String()
}
