package netdev

import "errors"

// Packet buffer errors.
var (
	ErrHeadroom = errors.New("insufficient headroom")
	ErrTailroom = errors.New("insufficient tailroom")
	ErrLength   = errors.New("operation exceeds packet length")
)

// Packet is a variable-length byte region with headroom for prepending
// headers and tailroom for appending payload.
//
// Ownership transfers to the transport on a successful send or receive post,
// and returns to the driver when the corresponding completion is observed.
type Packet struct {
	buf  []byte
	head int
	tail int
}

// NewPacket allocates a Packet with the given capacity and no headroom.
func NewPacket(capacity int) *Packet {
	return &Packet{buf: make([]byte, capacity)}
}

// NewPacketHeadroom allocates a Packet with the given headroom reserved in front
// of capacity bytes of tailroom.
func NewPacketHeadroom(headroom, capacity int) *Packet {
	return &Packet{
		buf:  make([]byte, headroom+capacity),
		head: headroom,
		tail: headroom,
	}
}

// Len returns the packet's logical length.
func (p *Packet) Len() int {
	return p.tail - p.head
}

// Bytes returns the packet content.
func (p *Packet) Bytes() []byte {
	return p.buf[p.head:p.tail]
}

// Headroom returns the space available for Prepend.
func (p *Packet) Headroom() int {
	return p.head
}

// Tailroom returns the space available for Put.
func (p *Packet) Tailroom() int {
	return len(p.buf) - p.tail
}

// Prepend moves the logical start backward by n bytes and returns the newly
// exposed region for the caller to fill.
func (p *Packet) Prepend(n int) ([]byte, error) {
	if n > p.head {
		return nil, ErrHeadroom
	}
	p.head -= n
	return p.buf[p.head : p.head+n], nil
}

// Pull removes n bytes from the front and returns the removed region.
// The returned slice stays valid until the next Prepend.
func (p *Packet) Pull(n int) ([]byte, error) {
	if n > p.Len() {
		return nil, ErrLength
	}
	removed := p.buf[p.head : p.head+n]
	p.head += n
	return removed, nil
}

// Put grows the logical length by n bytes at the tail and returns the newly
// exposed region for the caller to fill.
func (p *Packet) Put(n int) ([]byte, error) {
	if n > p.Tailroom() {
		return nil, ErrTailroom
	}
	region := p.buf[p.tail : p.tail+n]
	p.tail += n
	return region, nil
}

// Append copies b into the tailroom, growing the logical length.
func (p *Packet) Append(b []byte) error {
	region, e := p.Put(len(b))
	if e != nil {
		return e
	}
	copy(region, b)
	return nil
}

// Room exposes the unfilled tail region.
// A transport writes received data here before the driver grows the logical
// length to the completion's reported byte count.
func (p *Packet) Room() []byte {
	return p.buf[p.tail:]
}
