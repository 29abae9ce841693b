// Package ipoib implements an IP-over-Infiniband network device driver.
//
// The driver emulates a broadcast-capable link layer on top of an
// unreliable-datagram Infiniband transport. It translates between the
// generic network-device framework in package netdev and the transport
// contract in package ib: it builds and strips link-layer headers, owns a
// completion queue and queue pair per device, and runs the poll-driven
// transmit/receive data path.
//
// All driver entry points execute to completion on the framework's single
// control goroutine; nothing here is safe for concurrent use.
package ipoib

import (
	"github.com/fabriclab/ipoib/core/logging"
)

var logger = logging.New("Ipoib")
