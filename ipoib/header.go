package ipoib

import (
	"encoding/binary"

	"github.com/fabriclab/ipoib/netdev"
)

// Header sizes.
const (
	// PseudoHeaderLen is the size of the pseudo header. It exists only in
	// the buffer representation exchanged with the framework, never on the
	// wire: it carries the peer's link-layer address so upper layers can
	// address replies.
	PseudoHeaderLen = AddrLen

	// RealHeaderLen is the size of the on-wire header: a 16-bit
	// network-layer protocol number followed by two reserved bytes.
	RealHeaderLen = 4

	// HeaderLen is the combined header size pushed onto outbound buffers
	// and expected at the front of inbound buffers.
	HeaderLen = PseudoHeaderLen + RealHeaderLen
)

// EncodeTxHeader prepends the combined pseudo+real header to an outbound
// buffer. dest becomes the pseudo-header peer; proto is written in network
// byte order; the reserved field is zeroed.
func EncodeTxHeader(pkt *netdev.Packet, dest Addr, proto uint16) error {
	hdr, e := pkt.Prepend(HeaderLen)
	if e != nil {
		return e
	}
	copy(hdr, dest.Bytes())
	binary.BigEndian.PutUint16(hdr[PseudoHeaderLen:], proto)
	hdr[PseudoHeaderLen+2] = 0
	hdr[PseudoHeaderLen+3] = 0
	return nil
}

// DecodeRxHeader removes the combined header from the front of a received
// buffer, returning the network-layer protocol and the peer address.
// The buffer then holds the network-layer payload.
func DecodeRxHeader(pkt *netdev.Packet) (proto uint16, peer Addr, e error) {
	if pkt.Len() < HeaderLen {
		return 0, Addr{}, ErrTruncated
	}
	hdr, _ := pkt.Pull(HeaderLen)
	peer, _ = AddrFromBytes(hdr[:PseudoHeaderLen])
	proto = binary.BigEndian.Uint16(hdr[PseudoHeaderLen:])
	return proto, peer, nil
}
