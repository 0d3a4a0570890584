// Package harness drives one transfer-verification run: it acquires a
// memcpy channel, provisions the reserved memory regions, allocates the
// scratch buffers, copies a pseudo-random payload through the fixed
// window with the engine and with the CPU, and checks after every hop
// that sender and receiver hold identical bytes. Every acquired
// resource is released in reverse order no matter where the run stops.
package harness

import "time"

// A Mode selects which test sections of a run are executed.
type Mode uint32

// Test sections.
const (
	ModeEngine Mode = 1 << 0
	ModeCPU    Mode = 1 << 1
	ModeBoth        = ModeEngine | ModeCPU
)

// An AllocMode selects the allocation discipline for the scratch
// buffers.
type AllocMode int

// Allocation disciplines.
const (
	// AllocCoherent allocates buffers the engine and CPU observe
	// identically without synchronization.
	AllocCoherent AllocMode = iota

	// AllocMapped allocates plain buffers that must be mapped and
	// cache-synchronized around every engine transfer.
	AllocMapped
)

// A ProvisionMode selects how reserved regions are bound to an owner.
type ProvisionMode int

// Region ownership strategies.
const (
	// ProvisionBindOwner binds each window directly to the harness
	// device that also owns the channel.
	ProvisionBindOwner ProvisionMode = iota

	// ProvisionChildOwner synthesizes a child device per window, so
	// the region shows up as an independently addressable resource
	// with its own lifecycle.
	ProvisionChildOwner
)

// A Config carries the externally supplied parameters of a run.
type Config struct {
	// BufferSize is the length of all three regions in bytes.
	BufferSize uint64

	// TestMode selects the engine-mediated and/or CPU-mediated
	// sections.
	TestMode Mode

	// AllocMode selects the buffer allocation discipline.
	AllocMode AllocMode

	// ProvisionMode selects the region ownership strategy.
	ProvisionMode ProvisionMode

	// Timeout bounds the synchronous wait for one engine transfer.
	Timeout time.Duration
}

// MakeConfig returns the default configuration: 16 KiB buffers, both
// test sections, coherent allocation, direct owner binding.
func MakeConfig() Config {
	return Config{
		BufferSize:    16384,
		TestMode:      ModeBoth,
		AllocMode:     AllocCoherent,
		ProvisionMode: ProvisionBindOwner,
		Timeout:       3 * time.Second,
	}
}
