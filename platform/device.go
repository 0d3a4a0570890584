package platform

import (
	"errors"
	"fmt"
)

// AddrAttrs are the addressing capabilities a device presents to the
// allocation and mapping layer.
type AddrAttrs struct {
	// DMAMask is the highest physical address the device can reach.
	DMAMask uint64

	// Coherent reports whether the device observes CPU writes without
	// explicit cache synchronization.
	Coherent bool
}

// DeviceState tracks where a device is in its lifecycle.
type DeviceState int

// Lifecycle states of a Device.
const (
	DeviceCreated DeviceState = iota
	DeviceInitialized
	DeviceRegistered
	DeviceDestroyed
)

// Lifecycle errors.
var (
	ErrDeviceState = errors.New("operation not valid in device state")
)

// A Device is a resource-owning entity. Memory allocations and mappings
// are always issued under some device. A device can be a real unit,
// like the engine's owner, or a synthesized child that stands for a
// reserved region as an independently addressable resource namespace.
type Device struct {
	name   string
	parent *Device
	attrs  AddrAttrs
	state  DeviceState
}

// NewDevice creates a device in the Created state.
func NewDevice(name string) *Device {
	if name == "" {
		panic("device must have a name")
	}
	return &Device{name: name}
}

// NewRootDevice creates an already-initialized device with its own
// addressing attributes. Root devices have no parent.
func NewRootDevice(name string, attrs AddrAttrs) *Device {
	d := NewDevice(name)
	d.attrs = attrs
	d.state = DeviceInitialized
	return d
}

// Name returns the device name.
func (d *Device) Name() string {
	return d.name
}

// Parent returns the parent device, or nil for a root device.
func (d *Device) Parent() *Device {
	return d.parent
}

// Attrs returns the device's addressing attributes.
func (d *Device) Attrs() AddrAttrs {
	return d.attrs
}

// State returns the lifecycle state.
func (d *Device) State() DeviceState {
	return d.state
}

// Init attaches the device to a parent and inherits the parent's
// addressing attributes. Only a freshly created device can be
// initialized.
func (d *Device) Init(parent *Device) error {
	if d.state != DeviceCreated {
		return fmt.Errorf("%w: init of %s in state %d",
			ErrDeviceState, d.name, d.state)
	}
	if parent == nil {
		return fmt.Errorf("%w: init of %s without parent",
			ErrDeviceState, d.name)
	}

	d.parent = parent
	d.attrs = parent.attrs
	d.state = DeviceInitialized

	return nil
}

// Destroy retires the device. A registered device must be deregistered
// first.
func (d *Device) Destroy() error {
	switch d.state {
	case DeviceRegistered:
		return fmt.Errorf("%w: destroy of registered device %s",
			ErrDeviceState, d.name)
	case DeviceDestroyed:
		return fmt.Errorf("%w: double destroy of %s",
			ErrDeviceState, d.name)
	}

	d.state = DeviceDestroyed
	return nil
}
