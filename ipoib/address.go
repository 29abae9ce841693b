package ipoib

import (
	"encoding"
	"encoding/binary"
	"encoding/hex"
	"flag"
	"fmt"
	"strings"

	"github.com/fabriclab/ipoib/ib"
)

// AddrLen is the size of an IPoIB link-layer address in bytes.
const AddrLen = 4 + ib.GIDLen

// Addr is an IPoIB link-layer address: the queue pair number followed by the
// port's global identifier. It is globally unique per queue pair and
// immutable once assigned to a device.
type Addr struct {
	QPN uint32
	GID ib.GID
}

// Broadcast is the distinguished broadcast link-layer address.
var Broadcast = Addr{GID: ib.BroadcastGID}

// Bytes returns the 20-byte wire representation.
func (a Addr) Bytes() []byte {
	b := make([]byte, AddrLen)
	binary.BigEndian.PutUint32(b, a.QPN)
	copy(b[4:], a.GID[:])
	return b
}

// AddrFromBytes parses the 20-byte wire representation.
func AddrFromBytes(b []byte) (a Addr, e error) {
	if len(b) != AddrLen {
		return Addr{}, ErrAddrLen
	}
	a.QPN = binary.BigEndian.Uint32(b)
	copy(a.GID[:], b[4:])
	return a, nil
}

// String formats the address as colon-separated hexadecimal octets.
// Each call returns a newly allocated string.
func (a Addr) String() string {
	parts := make([]string, AddrLen)
	for i, octet := range a.Bytes() {
		parts[i] = fmt.Sprintf("%02x", octet)
	}
	return strings.Join(parts, ":")
}

// ParseAddr parses the colon-separated hexadecimal form produced by String.
func ParseAddr(s string) (Addr, error) {
	b, e := hex.DecodeString(strings.ReplaceAll(s, ":", ""))
	if e != nil {
		return Addr{}, e
	}
	return AddrFromBytes(b)
}

// IsBroadcast reports whether the address is the broadcast address.
func (a Addr) IsBroadcast() bool {
	return a == Broadcast
}

// Flag is a wrapper of Addr compatible with flag and json packages.
type Flag struct {
	Addr
}

var (
	_ interface {
		flag.Getter
		encoding.TextMarshaler
	} = &Flag{}
	_ encoding.TextMarshaler = Flag{}
)

// Get implements flag.Getter.
func (f *Flag) Get() any {
	return f.Addr
}

// Set implements flag.Value.
func (f *Flag) Set(s string) (e error) {
	f.Addr, e = ParseAddr(s)
	return
}

// MarshalText implements encoding.TextMarshaler.
func (f Flag) MarshalText() (text []byte, e error) {
	return []byte(f.Addr.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Flag) UnmarshalText(text []byte) error {
	return f.Set(string(text))
}
