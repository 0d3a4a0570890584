// Package alloc provides the two allocation disciplines the transfer
// engine contract supports: coherent allocation, where CPU and engine
// always observe the same bytes, and mapped allocation, where a buffer
// must be mapped into the engine's address space and explicitly
// synchronized around every engine transfer.
package alloc

import (
	"errors"

	"github.com/sarchlab/xfertest/platform"
)

// Allocation and mapping errors.
var (
	ErrOutOfMemory   = errors.New("allocation arena exhausted")
	ErrMappingFailed = errors.New("cannot map range for device")
	ErrNotMapped     = errors.New("buffer is not mapped for device")
	ErrBufferFreed   = errors.New("buffer already released")
)

// An Allocator hands out buffers under an owning device and maps the
// fixed window for CPU access.
//
// MapForDevice, UnmapForDevice, SyncForDevice and SyncForCPU are no-ops
// for buffers that are already engine-visible (coherent buffers and
// fixed-window mappings); for mapped-discipline buffers they implement
// the flush-before-transfer / invalidate-after-transfer protocol.
type Allocator interface {
	Owner() *platform.Device
	Coherent() bool

	Alloc(n uint64) (*Buffer, error)
	Free(b *Buffer) error

	MapFixed(phys, n uint64) (*Buffer, error)
	Unmap(b *Buffer) error

	MapForDevice(b *Buffer) (uint64, error)
	UnmapForDevice(b *Buffer) error
	SyncForDevice(b *Buffer) error
	SyncForCPU(b *Buffer) error

	// Outstanding counts live buffers and mappings. It is zero once
	// every Alloc has been matched by a Free and every MapFixed by an
	// Unmap.
	Outstanding() int
}
