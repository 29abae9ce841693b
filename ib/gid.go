package ib

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// GIDLen is the size of a global identifier in bytes.
const GIDLen = 16

// GID is a 128-bit Infiniband global identifier.
type GID [GIDLen]byte

// IsZero reports whether the GID is all-zero.
func (gid GID) IsZero() bool {
	return gid == GID{}
}

// IsMulticast reports whether the GID is in the multicast range.
func (gid GID) IsMulticast() bool {
	return gid[0] == 0xFF
}

// String formats the GID as eight colon-separated 16-bit groups.
func (gid GID) String() string {
	var b strings.Builder
	for i := 0; i < GIDLen; i += 2 {
		if i > 0 {
			b.WriteByte(':')
		}
		fmt.Fprintf(&b, "%02x%02x", gid[i], gid[i+1])
	}
	return b.String()
}

// MarshalText implements encoding.TextMarshaler.
func (gid GID) MarshalText() ([]byte, error) {
	return []byte(gid.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (gid *GID) UnmarshalText(text []byte) error {
	s := strings.ReplaceAll(string(text), ":", "")
	b, e := hex.DecodeString(s)
	if e != nil {
		return e
	}
	if len(b) != GIDLen {
		return errors.New("GID wrong length")
	}
	copy(gid[:], b)
	return nil
}

// BroadcastGID is the well-known IPoIB broadcast multicast group.
var BroadcastGID = GID{
	0xFF, 0x12, 0x40, 0x1B, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0xFF,
}
