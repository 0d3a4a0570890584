package platform

import "fmt"

// A Registry indexes the registered devices of a platform by name.
type Registry struct {
	devices   []*Device
	nameIndex map[string]int
}

// NewRegistry creates an empty device registry.
func NewRegistry() *Registry {
	return &Registry{
		nameIndex: make(map[string]int),
	}
}

// Register adds an initialized device to the registry.
func (r *Registry) Register(d *Device) error {
	if d == nil {
		panic("cannot register a nil device")
	}
	if d.state != DeviceInitialized {
		return fmt.Errorf("%w: register of %s in state %d",
			ErrDeviceState, d.name, d.state)
	}
	if _, ok := r.nameIndex[d.name]; ok {
		return fmt.Errorf("device %s already registered", d.name)
	}

	r.devices = append(r.devices, d)
	r.nameIndex[d.name] = len(r.devices) - 1
	d.state = DeviceRegistered

	return nil
}

// Deregister removes a registered device from the registry. The device
// goes back to the Initialized state and can then be destroyed.
func (r *Registry) Deregister(d *Device) error {
	idx, ok := r.nameIndex[d.name]
	if !ok || r.devices[idx] != d {
		return fmt.Errorf("device %s is not registered", d.name)
	}

	r.devices = append(r.devices[:idx], r.devices[idx+1:]...)
	delete(r.nameIndex, d.name)
	for i, dev := range r.devices[idx:] {
		r.nameIndex[dev.name] = idx + i
	}
	d.state = DeviceInitialized

	return nil
}

// DeviceByName returns the registered device with the given name, or
// nil when there is none.
func (r *Registry) DeviceByName(name string) *Device {
	idx, ok := r.nameIndex[name]
	if !ok {
		return nil
	}
	return r.devices[idx]
}

// NumDevices returns the number of registered devices.
func (r *Registry) NumDevices() int {
	return len(r.devices)
}
