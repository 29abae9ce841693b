package ipoib

import (
	"io"

	"github.com/fabriclab/ipoib/core/events"
)

var emitter = events.NewEmitter()

const (
	evtDeviceNew     = "DeviceNew"
	evtDeviceUp      = "DeviceUp"
	evtDeviceDown    = "DeviceDown"
	evtDeviceRemoved = "DeviceRemoved"
)

// OnDeviceNew registers a callback when a device is probed.
// Returns an io.Closer that cancels the callback registration.
func OnDeviceNew(cb func(*Device)) io.Closer {
	return emitter.On(evtDeviceNew, cb)
}

// OnDeviceUp registers a callback when a device is opened.
// Returns an io.Closer that cancels the callback registration.
func OnDeviceUp(cb func(*Device)) io.Closer {
	return emitter.On(evtDeviceUp, cb)
}

// OnDeviceDown registers a callback when a device is closed.
// Returns an io.Closer that cancels the callback registration.
func OnDeviceDown(cb func(*Device)) io.Closer {
	return emitter.On(evtDeviceDown, cb)
}

// OnDeviceRemoved registers a callback when a device is removed.
// Returns an io.Closer that cancels the callback registration.
func OnDeviceRemoved(cb func(*Device)) io.Closer {
	return emitter.On(evtDeviceRemoved, cb)
}
