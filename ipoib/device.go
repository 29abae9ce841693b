package ipoib

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/fabriclab/ipoib/ib"
	"github.com/fabriclab/ipoib/netdev"
)

// Device is an IPoIB device bound to one Infiniband transport device.
type Device struct {
	ibdev ib.Device
	net   *netdev.Device
	data  *QueueSet
	addr  Addr
	cfg   Config

	// running gates receive ring refill: buffers are posted only between
	// Open and Close. Buffers still posted at Close stay with the
	// transport until Remove destroys the queue set.
	running bool
}

var _ netdev.Ops = (*Device)(nil)

var devices = map[ib.Device]*Device{}

// Probe creates an IPoIB device on a transport device, derives its hardware
// address from the data queue pair number and the port GID, and registers it
// with the network-device framework. On failure everything is unwound.
func Probe(ibdev ib.Device, cfg Config) (d *Device, e error) {
	cfg.applyDefaults()

	d = &Device{ibdev: ibdev, cfg: cfg}
	nd := netdev.New(ibdev.Name(), d)
	nd.LinkProto = Protocol{}
	nd.MTU = cfg.MTU
	nd.Priv = d
	d.net = nd

	if d.data, e = NewQueueSet(ibdev, RoleData, cfg.CQCapacity, cfg.SendCapacity, cfg.RecvCapacity, cfg.QKey); e != nil {
		nd.Nullify()
		logger.Warn("probe failed", zap.String("dev", ibdev.Name()), zap.Error(e))
		return nil, e
	}

	d.addr = Addr{QPN: d.data.QP().QPN(), GID: ibdev.PortGID()}
	nd.HardwareAddr = d.addr.Bytes()

	if e = nd.Register(); e != nil {
		e = multierr.Append(fmt.Errorf("register: %w", e), d.data.Destroy())
		nd.Nullify()
		logger.Warn("probe failed", zap.String("dev", ibdev.Name()), zap.Error(e))
		return nil, e
	}

	devices[ibdev] = d
	emitter.Emit(evtDeviceNew, d)
	logger.Info("probed",
		zap.String("dev", nd.Name()),
		zap.Stringer("addr", d.addr),
	)
	return d, nil
}

// Remove unregisters the device from the framework and destroys its queue
// set, reclaiming any buffers still held by the transport.
func Remove(ibdev ib.Device) error {
	d := devices[ibdev]
	if d == nil {
		return ErrNoDevice
	}
	delete(devices, ibdev)

	d.net.Unregister()
	d.net.Nullify()
	e := d.data.Destroy()
	emitter.Emit(evtDeviceRemoved, d)
	logger.Info("removed", zap.String("dev", d.net.Name()))
	return e
}

// Get returns the IPoIB device probed on a transport device, if any.
func Get(ibdev ib.Device) *Device {
	return devices[ibdev]
}

// Transport returns the underlying transport device.
func (d *Device) Transport() ib.Device {
	return d.ibdev
}

// NetDevice returns the framework device record.
func (d *Device) NetDevice() *netdev.Device {
	return d.net
}

// HardwareAddr returns the device's link-layer address.
func (d *Device) HardwareAddr() Addr {
	return d.addr
}

// DataQueueSet returns the queue set carrying data traffic.
func (d *Device) DataQueueSet() *QueueSet {
	return d.data
}

// Open implements netdev.Ops. It joins the broadcast multicast group and
// primes the receive ring.
func (d *Device) Open(nd *netdev.Device) error {
	if e := d.ibdev.McastAttach(d.data.QP(), ib.BroadcastGID); e != nil {
		return fmt.Errorf("attach broadcast group: %w", e)
	}
	d.running = true
	d.refill(d.data)
	emitter.Emit(evtDeviceUp, d)
	return nil
}

// Close implements netdev.Ops. It leaves the broadcast multicast group and
// stops refilling the receive ring; buffers already posted remain with the
// transport until Remove.
func (d *Device) Close(nd *netdev.Device) {
	if e := d.ibdev.McastDetach(d.data.QP(), ib.BroadcastGID); e != nil {
		logger.Warn("detach broadcast group",
			zap.String("dev", nd.Name()), zap.Error(e))
	}
	d.running = false
	emitter.Emit(evtDeviceDown, d)
}
