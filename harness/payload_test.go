package harness

import (
	"math/rand/v2"

	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/xfertest/alloc"
	"github.com/sarchlab/xfertest/memory"
)

var _ = ginkgo.Describe("Payload generation", func() {
	var (
		allocator *alloc.Coherent
		rng       *rand.Rand
	)

	ginkgo.BeforeEach(func() {
		owner := testDevice()
		store := memory.NewStorage(1 << 20)
		allocator = alloc.NewCoherent(owner,
			memory.Window{Name: "dram", Base: 0, Size: 1 << 16}, store)
		rng = rand.New(rand.NewPCG(1, 2))
	})

	ginkgo.It("should fill regions with decorrelated payloads", func() {
		a, _ := allocator.Alloc(256)
		b, _ := allocator.Alloc(256)

		Expect(fillRegions(rng, 256, a, b)).To(Succeed())

		pass, err := verify(a, b, 256)
		Expect(err).ToNot(HaveOccurred())
		Expect(pass).To(BeFalse())
	})

	ginkgo.It("should fill a length that is not a whole word count", func() {
		a, _ := allocator.Alloc(66)

		Expect(fillRegions(rng, 66, a)).To(Succeed())

		data, _ := a.Read(60, 6)
		Expect(data).ToNot(Equal(make([]byte, 6)))
	})

	ginkgo.It("should verify identical ranges as equal", func() {
		a, _ := allocator.Alloc(128)
		b, _ := allocator.Alloc(128)

		Expect(fillRegions(rng, 128, a)).To(Succeed())
		data, _ := a.Read(0, 128)
		b.Write(0, data)

		pass, err := verify(a, b, 128)
		Expect(err).ToNot(HaveOccurred())
		Expect(pass).To(BeTrue())
	})

	ginkgo.It("should catch a single flipped byte", func() {
		a, _ := allocator.Alloc(128)
		b, _ := allocator.Alloc(128)

		Expect(fillRegions(rng, 128, a)).To(Succeed())
		data, _ := a.Read(0, 128)
		b.Write(0, data)
		b.Write(77, []byte{data[77] ^ 0x01})

		pass, _ := verify(a, b, 128)
		Expect(pass).To(BeFalse())
	})
})
