package dmaengine_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/xfertest/dmaengine"
	"github.com/sarchlab/xfertest/memory"
)

var _ = Describe("MemcpyEngine", func() {
	var (
		store  *memory.Storage
		engine *dmaengine.MemcpyEngine
	)

	BeforeEach(func() {
		store = memory.NewStorage(1 << 20)
		engine = dmaengine.MakeBuilder().
			WithName("memcpy0").
			WithStorage(store).
			Build()
	})

	It("should copy bytes between two locations", func() {
		store.Write(0x100, []byte{0xde, 0xad, 0xbe, 0xef})

		desc := dmaengine.DescBuilder{}.
			WithSrcAddr(0x100).
			WithDstAddr(0x2000).
			WithByteSize(4).
			Build()

		cookie, err := engine.Submit(desc)
		Expect(err).ToNot(HaveOccurred())

		status := engine.Wait(cookie, time.Second)
		engine.Terminate()

		Expect(status).To(Equal(dmaengine.StatusCompleted))
		data, _ := store.Read(0x2000, 4)
		Expect(data).To(Equal([]byte{0xde, 0xad, 0xbe, 0xef}))
	})

	It("should reject a zero-length descriptor", func() {
		desc := dmaengine.DescBuilder{}.
			WithSrcAddr(0x100).
			WithDstAddr(0x200).
			Build()

		_, err := engine.Submit(desc)
		Expect(err).To(MatchError(dmaengine.ErrBadDescriptor))
	})

	It("should reject a second in-flight transfer", func() {
		desc := dmaengine.DescBuilder{}.
			WithSrcAddr(0x100).
			WithDstAddr(0x200).
			WithByteSize(4).
			Build()

		_, err := engine.Submit(desc)
		Expect(err).ToNot(HaveOccurred())

		_, err = engine.Submit(desc)
		Expect(err).To(MatchError(dmaengine.ErrChannelBusy))
	})

	It("should accept a new transfer after Terminate", func() {
		desc := dmaengine.DescBuilder{}.
			WithSrcAddr(0x100).
			WithDstAddr(0x200).
			WithByteSize(4).
			Build()

		cookie, _ := engine.Submit(desc)
		engine.Wait(cookie, time.Second)
		engine.Terminate()

		_, err := engine.Submit(desc)
		Expect(err).ToNot(HaveOccurred())
	})

	It("should report an engine fault as StatusError", func() {
		engine = dmaengine.MakeBuilder().
			WithName("memcpy0").
			WithStorage(store).
			WithFault(func(dmaengine.Desc) error {
				return errors.New("transfer fault")
			}).
			Build()

		desc := dmaengine.DescBuilder{}.
			WithSrcAddr(0x100).
			WithDstAddr(0x200).
			WithByteSize(4).
			Build()

		cookie, _ := engine.Submit(desc)
		Expect(engine.Wait(cookie, time.Second)).
			To(Equal(dmaengine.StatusError))
	})

	It("should report StatusError for a copy beyond capacity", func() {
		desc := dmaengine.DescBuilder{}.
			WithSrcAddr(1 << 20).
			WithDstAddr(0x200).
			WithByteSize(4).
			Build()

		cookie, _ := engine.Submit(desc)
		Expect(engine.Wait(cookie, time.Second)).
			To(Equal(dmaengine.StatusError))
	})

	It("should abort a transfer that outlives the timeout", func() {
		engine = dmaengine.MakeBuilder().
			WithName("memcpy0").
			WithStorage(store).
			WithLatency(time.Hour).
			Build()

		desc := dmaengine.DescBuilder{}.
			WithSrcAddr(0x100).
			WithDstAddr(0x200).
			WithByteSize(4).
			Build()

		cookie, _ := engine.Submit(desc)
		status := engine.Wait(cookie, time.Millisecond)
		Expect(status).To(Equal(dmaengine.StatusAborted))

		engine.Terminate()
		_, err := engine.Submit(desc)
		Expect(err).ToNot(HaveOccurred())
	})
})
