package alloc

import (
	"github.com/sarchlab/xfertest/memory"
	"github.com/sarchlab/xfertest/platform"
)

// A Mapped allocator hands out plain buffers that are not engine
// visible until mapped. The CPU works on a shadow copy; SyncForDevice
// flushes the shadow into backing memory before an engine transfer and
// SyncForCPU invalidates the shadow afterwards. This models a
// non-coherent engine backend.
type Mapped struct {
	arena
}

// NewMapped creates a mapped-discipline allocator over the owner's
// arena window.
func NewMapped(
	owner *platform.Device,
	win memory.Window,
	store *memory.Storage,
) *Mapped {
	return &Mapped{arena: makeArena(owner, win, store)}
}

// Owner returns the device allocations are issued under.
func (m *Mapped) Owner() *platform.Device {
	return m.owner
}

// Coherent reports that the explicit sync discipline is required.
func (m *Mapped) Coherent() bool {
	return false
}

// Alloc reserves n bytes of plain memory with a CPU-side shadow.
func (m *Mapped) Alloc(n uint64) (*Buffer, error) {
	phys, virt, err := m.reserve(n)
	if err != nil {
		return nil, err
	}

	m.outstanding++

	return &Buffer{
		virt:   virt,
		phys:   phys,
		size:   n,
		kind:   kindShadowed,
		store:  m.store,
		shadow: make([]byte, n),
	}, nil
}

// Free releases a buffer obtained from Alloc.
func (m *Mapped) Free(b *Buffer) error {
	return m.release(b, kindShadowed, "free")
}

// MapFixed maps the fixed window for CPU access. The fixed window is
// engine memory already, so the mapping is direct and needs no sync.
func (m *Mapped) MapFixed(phys, n uint64) (*Buffer, error) {
	return m.arena.mapFixed(phys, n)
}

// Unmap releases a fixed-window mapping.
func (m *Mapped) Unmap(b *Buffer) error {
	return m.release(b, kindFixed, "unmap")
}

// MapForDevice makes the buffer reachable by the engine and returns its
// engine-visible address.
func (m *Mapped) MapForDevice(b *Buffer) (uint64, error) {
	if b.released {
		return 0, ErrBufferFreed
	}
	if b.kind != kindShadowed {
		return b.phys, nil
	}
	if b.phys+b.size-1 > m.owner.Attrs().DMAMask {
		return 0, ErrMappingFailed
	}

	b.devMapped = true
	return b.phys, nil
}

// UnmapForDevice revokes the engine's access to the buffer.
func (m *Mapped) UnmapForDevice(b *Buffer) error {
	if b.released {
		return ErrBufferFreed
	}
	if b.kind != kindShadowed {
		return nil
	}
	if !b.devMapped {
		return ErrNotMapped
	}

	b.devMapped = false
	return nil
}

// SyncForDevice flushes the CPU shadow into backing memory so the
// engine reads what the CPU wrote.
func (m *Mapped) SyncForDevice(b *Buffer) error {
	if b.released {
		return ErrBufferFreed
	}
	if b.kind != kindShadowed {
		return nil
	}
	if !b.devMapped {
		return ErrNotMapped
	}

	return m.store.Write(b.phys, b.shadow)
}

// SyncForCPU invalidates the CPU shadow so the CPU reads what the
// engine wrote.
func (m *Mapped) SyncForCPU(b *Buffer) error {
	if b.released {
		return ErrBufferFreed
	}
	if b.kind != kindShadowed {
		return nil
	}
	if !b.devMapped {
		return ErrNotMapped
	}

	data, err := m.store.Read(b.phys, b.size)
	if err != nil {
		return err
	}
	copy(b.shadow, data)

	return nil
}

// Outstanding counts live buffers and mappings.
func (m *Mapped) Outstanding() int {
	return m.outstanding
}
