package alloc

import (
	"github.com/sarchlab/xfertest/memory"
	"github.com/sarchlab/xfertest/platform"
)

// A Coherent allocator hands out buffers that the CPU and the engine
// observe identically at all times. Mapping and sync calls are no-ops.
type Coherent struct {
	arena
}

// NewCoherent creates a coherent allocator over the owner's arena
// window.
func NewCoherent(
	owner *platform.Device,
	win memory.Window,
	store *memory.Storage,
) *Coherent {
	return &Coherent{arena: makeArena(owner, win, store)}
}

// Owner returns the device allocations are issued under.
func (c *Coherent) Owner() *platform.Device {
	return c.owner
}

// Coherent reports that no sync discipline is needed.
func (c *Coherent) Coherent() bool {
	return true
}

// Alloc reserves n bytes of engine-reachable coherent memory.
func (c *Coherent) Alloc(n uint64) (*Buffer, error) {
	phys, virt, err := c.reserve(n)
	if err != nil {
		return nil, err
	}
	if phys+n-1 > c.owner.Attrs().DMAMask {
		return nil, ErrOutOfMemory
	}

	c.outstanding++

	return &Buffer{
		virt:  virt,
		phys:  phys,
		size:  n,
		kind:  kindCoherent,
		store: c.store,
	}, nil
}

// Free releases a buffer obtained from Alloc.
func (c *Coherent) Free(b *Buffer) error {
	return c.release(b, kindCoherent, "free")
}

// MapFixed maps the fixed window for CPU access.
func (c *Coherent) MapFixed(phys, n uint64) (*Buffer, error) {
	return c.arena.mapFixed(phys, n)
}

// Unmap releases a fixed-window mapping.
func (c *Coherent) Unmap(b *Buffer) error {
	return c.release(b, kindFixed, "unmap")
}

// MapForDevice returns the engine-visible address of the buffer.
func (c *Coherent) MapForDevice(b *Buffer) (uint64, error) {
	if b.released {
		return 0, ErrBufferFreed
	}
	return b.phys, nil
}

// UnmapForDevice is a no-op for coherent buffers.
func (c *Coherent) UnmapForDevice(b *Buffer) error {
	if b.released {
		return ErrBufferFreed
	}
	return nil
}

// SyncForDevice is a no-op for coherent buffers.
func (c *Coherent) SyncForDevice(b *Buffer) error {
	if b.released {
		return ErrBufferFreed
	}
	return nil
}

// SyncForCPU is a no-op for coherent buffers.
func (c *Coherent) SyncForCPU(b *Buffer) error {
	if b.released {
		return ErrBufferFreed
	}
	return nil
}

// Outstanding counts live buffers and mappings.
func (c *Coherent) Outstanding() int {
	return c.outstanding
}
