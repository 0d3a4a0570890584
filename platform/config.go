// Package platform describes the simulated platform the harness runs
// on: its reserved memory regions and the devices that own them.
package platform

import (
	"errors"

	"github.com/sarchlab/xfertest/memory"
)

// ErrNoRegion is returned when the platform configuration does not
// declare a reserved region at the requested index.
var ErrNoRegion = errors.New("no reserved region configured at index")

// A ReservedRegion is one pre-reserved physical memory window declared
// by the platform, identified by its position in the configuration.
type ReservedRegion struct {
	Name string
	Base uint64
	Size uint64
}

// Window returns the region as a memory window.
func (r ReservedRegion) Window() memory.Window {
	return memory.Window{Name: r.Name, Base: r.Base, Size: r.Size}
}

// A Config is the ordered list of reserved regions a platform declares.
// Index 0 conventionally names the working DRAM arena and index 1 the
// fixed hardware window.
type Config struct {
	regions []ReservedRegion
}

// MakeConfig returns an empty platform configuration.
func MakeConfig() Config {
	return Config{}
}

// WithReservedRegion appends a reserved region declaration.
func (c Config) WithReservedRegion(r ReservedRegion) Config {
	c.regions = append(c.regions, r)
	return c
}

// Region resolves the reserved region declared at index.
func (c Config) Region(index int) (ReservedRegion, error) {
	if index < 0 || index >= len(c.regions) {
		return ReservedRegion{}, ErrNoRegion
	}
	return c.regions[index], nil
}

// NumRegions returns how many regions the configuration declares.
func (c Config) NumRegions() int {
	return len(c.regions)
}
