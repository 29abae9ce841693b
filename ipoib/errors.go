package ipoib

import "errors"

// Simple error conditions.
var (
	ErrTruncated      = errors.New("frame shorter than IPoIB header")
	ErrNoPseudoHeader = errors.New("buffer shorter than pseudo header")
	ErrAddrLen        = errors.New("link-layer address wrong length")
	ErrTransportIO    = errors.New("transport reported completion error")
	ErrNoDevice       = errors.New("no IPoIB device on this transport device")
)
