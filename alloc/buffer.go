package alloc

import (
	"fmt"

	"github.com/sarchlab/xfertest/memory"
)

type bufferKind int

const (
	// kindCoherent buffers access backing memory directly; the engine
	// view and the CPU view are always the same bytes.
	kindCoherent bufferKind = iota

	// kindShadowed buffers keep a CPU-side shadow that is only
	// reconciled with backing memory by explicit sync calls.
	kindShadowed

	// kindFixed is a CPU mapping of the pre-reserved fixed window.
	kindFixed
)

// A Buffer is one allocated or mapped memory region: a virtual address
// for the CPU, a physical address for the engine, and a length.
type Buffer struct {
	virt uint64
	phys uint64
	size uint64

	kind      bufferKind
	store     *memory.Storage
	shadow    []byte
	devMapped bool
	released  bool
}

// VirtAddr returns the CPU-visible address of the buffer.
func (b *Buffer) VirtAddr() uint64 {
	return b.virt
}

// PhysAddr returns the physical address of the buffer.
func (b *Buffer) PhysAddr() uint64 {
	return b.phys
}

// Size returns the buffer length in bytes.
func (b *Buffer) Size() uint64 {
	return b.size
}

func (b *Buffer) checkRange(offset, n uint64) error {
	if b.released {
		return ErrBufferFreed
	}
	if offset+n > b.size {
		return fmt.Errorf("access [%#x, %#x) beyond buffer size %#x",
			offset, offset+n, b.size)
	}
	return nil
}

// Read returns n bytes of the CPU view starting at offset.
func (b *Buffer) Read(offset, n uint64) ([]byte, error) {
	if err := b.checkRange(offset, n); err != nil {
		return nil, err
	}

	if b.kind == kindShadowed {
		out := make([]byte, n)
		copy(out, b.shadow[offset:offset+n])
		return out, nil
	}

	return b.store.Read(b.phys+offset, n)
}

// Write stores p into the CPU view starting at offset.
func (b *Buffer) Write(offset uint64, p []byte) error {
	if err := b.checkRange(offset, uint64(len(p))); err != nil {
		return err
	}

	if b.kind == kindShadowed {
		copy(b.shadow[offset:], p)
		return nil
	}

	return b.store.Write(b.phys+offset, p)
}
