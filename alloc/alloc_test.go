package alloc_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/xfertest/alloc"
	"github.com/sarchlab/xfertest/memory"
	"github.com/sarchlab/xfertest/platform"
)

var _ = Describe("Coherent allocator", func() {
	var (
		owner     *platform.Device
		store     *memory.Storage
		allocator *alloc.Coherent
	)

	arena := memory.Window{Name: "dram", Base: 0x1000, Size: 0x1000}

	BeforeEach(func() {
		owner = platform.NewRootDevice("xfertest", platform.AddrAttrs{
			DMAMask:  0xffff_ffff,
			Coherent: true,
		})
		store = memory.NewStorage(1 << 20)
		allocator = alloc.NewCoherent(owner, arena, store)
	})

	It("should allocate from the arena window", func() {
		buf, err := allocator.Alloc(256)
		Expect(err).ToNot(HaveOccurred())
		Expect(buf.PhysAddr()).To(Equal(uint64(0x1000)))
		Expect(buf.Size()).To(Equal(uint64(256)))
		Expect(arena.Contains(buf.PhysAddr(), buf.Size())).To(BeTrue())
	})

	It("should keep CPU writes visible to the engine view", func() {
		buf, _ := allocator.Alloc(16)
		buf.Write(0, []byte{1, 2, 3, 4})

		data, _ := store.Read(buf.PhysAddr(), 4)
		Expect(data).To(Equal([]byte{1, 2, 3, 4}))
	})

	It("should run out of arena space", func() {
		_, err := allocator.Alloc(0x1000)
		Expect(err).ToNot(HaveOccurred())

		_, err = allocator.Alloc(1)
		Expect(err).To(MatchError(alloc.ErrOutOfMemory))
	})

	It("should track outstanding allocations", func() {
		a, _ := allocator.Alloc(64)
		b, _ := allocator.Alloc(64)
		Expect(allocator.Outstanding()).To(Equal(2))

		Expect(allocator.Free(a)).To(Succeed())
		Expect(allocator.Free(b)).To(Succeed())
		Expect(allocator.Outstanding()).To(Equal(0))
	})

	It("should refuse a double free", func() {
		buf, _ := allocator.Alloc(64)
		Expect(allocator.Free(buf)).To(Succeed())
		Expect(allocator.Free(buf)).To(MatchError(alloc.ErrBufferFreed))
	})

	It("should map and unmap the fixed window", func() {
		store.Write(0x8000, []byte{9, 9})

		fix, err := allocator.MapFixed(0x8000, 64)
		Expect(err).ToNot(HaveOccurred())

		data, _ := fix.Read(0, 2)
		Expect(data).To(Equal([]byte{9, 9}))

		Expect(allocator.Unmap(fix)).To(Succeed())
		Expect(allocator.Outstanding()).To(Equal(0))
	})

	It("should refuse to map a fixed range beyond physical memory", func() {
		_, err := allocator.MapFixed(1<<20, 64)
		Expect(err).To(MatchError(alloc.ErrMappingFailed))
	})
})

var _ = Describe("Mapped allocator", func() {
	var (
		owner     *platform.Device
		store     *memory.Storage
		allocator *alloc.Mapped
	)

	arena := memory.Window{Name: "dram", Base: 0x1000, Size: 0x1000}

	BeforeEach(func() {
		owner = platform.NewRootDevice("xfertest", platform.AddrAttrs{
			DMAMask: 0xffff_ffff,
		})
		store = memory.NewStorage(1 << 20)
		allocator = alloc.NewMapped(owner, arena, store)
	})

	It("should keep CPU writes invisible until flushed", func() {
		buf, _ := allocator.Alloc(16)
		buf.Write(0, []byte{1, 2, 3, 4})

		data, _ := store.Read(buf.PhysAddr(), 4)
		Expect(data).To(Equal([]byte{0, 0, 0, 0}))

		_, err := allocator.MapForDevice(buf)
		Expect(err).ToNot(HaveOccurred())
		Expect(allocator.SyncForDevice(buf)).To(Succeed())

		data, _ = store.Read(buf.PhysAddr(), 4)
		Expect(data).To(Equal([]byte{1, 2, 3, 4}))
	})

	It("should keep engine writes invisible until invalidated", func() {
		buf, _ := allocator.Alloc(16)
		allocator.MapForDevice(buf)

		store.Write(buf.PhysAddr(), []byte{7, 7, 7, 7})

		data, _ := buf.Read(0, 4)
		Expect(data).To(Equal([]byte{0, 0, 0, 0}))

		Expect(allocator.SyncForCPU(buf)).To(Succeed())
		data, _ = buf.Read(0, 4)
		Expect(data).To(Equal([]byte{7, 7, 7, 7}))
	})

	It("should refuse to sync an unmapped buffer", func() {
		buf, _ := allocator.Alloc(16)

		Expect(allocator.SyncForDevice(buf)).
			To(MatchError(alloc.ErrNotMapped))
		Expect(allocator.SyncForCPU(buf)).
			To(MatchError(alloc.ErrNotMapped))
	})

	It("should fail mapping beyond the owner's DMA mask", func() {
		owner = platform.NewRootDevice("narrow", platform.AddrAttrs{
			DMAMask: 0x10ff,
		})
		allocator = alloc.NewMapped(owner, arena, store)

		buf, err := allocator.Alloc(0x200)
		Expect(err).ToNot(HaveOccurred())

		_, err = allocator.MapForDevice(buf)
		Expect(err).To(MatchError(alloc.ErrMappingFailed))
	})

	It("should unmap for device", func() {
		buf, _ := allocator.Alloc(16)
		allocator.MapForDevice(buf)

		Expect(allocator.UnmapForDevice(buf)).To(Succeed())
		Expect(allocator.SyncForDevice(buf)).
			To(MatchError(alloc.ErrNotMapped))
	})
})
