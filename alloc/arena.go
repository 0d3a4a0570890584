package alloc

import (
	"fmt"

	"github.com/sarchlab/xfertest/memory"
	"github.com/sarchlab/xfertest/platform"
)

const allocAlign = 64

// virtBase is where synthetic CPU mappings start. The value is
// arbitrary; it only has to be disjoint from physical addresses so that
// mixing the two up fails loudly in tests.
const virtBase = 0x7f00_0000_0000

// arena hands out physical ranges from an owner's reserved window with
// a bump pointer. Freed ranges are not recycled; a harness run only
// ever allocates its two scratch buffers.
type arena struct {
	owner *platform.Device
	win   memory.Window
	store *memory.Storage

	next        uint64
	nextVirt    uint64
	outstanding int
}

func makeArena(
	owner *platform.Device,
	win memory.Window,
	store *memory.Storage,
) arena {
	return arena{
		owner:    owner,
		win:      win,
		store:    store,
		next:     win.Base,
		nextVirt: virtBase,
	}
}

func (a *arena) reserve(n uint64) (phys, virt uint64, err error) {
	if n == 0 {
		return 0, 0, fmt.Errorf("%w: zero-length allocation", ErrOutOfMemory)
	}

	aligned := (n + allocAlign - 1) / allocAlign * allocAlign
	if !a.win.Contains(a.next, aligned) {
		return 0, 0, ErrOutOfMemory
	}

	phys = a.next
	virt = a.nextVirt
	a.next += aligned
	a.nextVirt += aligned

	return phys, virt, nil
}

func (a *arena) mapFixed(phys, n uint64) (*Buffer, error) {
	if phys+n > a.store.Capacity() {
		return nil, fmt.Errorf("%w: [%#x, %#x) beyond physical memory",
			ErrMappingFailed, phys, phys+n)
	}

	virt := a.nextVirt
	a.nextVirt += (n + allocAlign - 1) / allocAlign * allocAlign
	a.outstanding++

	return &Buffer{
		virt:  virt,
		phys:  phys,
		size:  n,
		kind:  kindFixed,
		store: a.store,
	}, nil
}

func (a *arena) release(b *Buffer, want bufferKind, op string) error {
	if b.kind != want {
		return fmt.Errorf("%s of a buffer with the wrong discipline", op)
	}
	if b.released {
		return ErrBufferFreed
	}

	b.released = true
	a.outstanding--

	return nil
}
