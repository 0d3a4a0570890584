package platform_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/xfertest/platform"
)

var _ = Describe("Device", func() {
	var (
		root     *platform.Device
		registry *platform.Registry
	)

	BeforeEach(func() {
		root = platform.NewRootDevice("xfertest", platform.AddrAttrs{
			DMAMask:  0xffff_ffff,
			Coherent: true,
		})
		registry = platform.NewRegistry()
	})

	It("should inherit addressing attributes from its parent", func() {
		child := platform.NewDevice("xfertest.fixmem")

		Expect(child.Init(root)).To(Succeed())
		Expect(child.Parent()).To(BeIdenticalTo(root))
		Expect(child.Attrs()).To(Equal(root.Attrs()))
		Expect(child.State()).To(Equal(platform.DeviceInitialized))
	})

	It("should refuse to initialize twice", func() {
		child := platform.NewDevice("xfertest.fixmem")

		Expect(child.Init(root)).To(Succeed())
		Expect(child.Init(root)).To(MatchError(platform.ErrDeviceState))
	})

	It("should walk the full lifecycle", func() {
		child := platform.NewDevice("xfertest.fixmem")
		child.Init(root)

		Expect(registry.Register(child)).To(Succeed())
		Expect(child.State()).To(Equal(platform.DeviceRegistered))
		Expect(registry.DeviceByName("xfertest.fixmem")).
			To(BeIdenticalTo(child))

		Expect(registry.Deregister(child)).To(Succeed())
		Expect(registry.DeviceByName("xfertest.fixmem")).To(BeNil())

		Expect(child.Destroy()).To(Succeed())
		Expect(child.State()).To(Equal(platform.DeviceDestroyed))
	})

	It("should refuse to register an uninitialized device", func() {
		child := platform.NewDevice("xfertest.fixmem")
		Expect(registry.Register(child)).To(MatchError(platform.ErrDeviceState))
	})

	It("should refuse to register the same name twice", func() {
		a := platform.NewDevice("dup")
		b := platform.NewDevice("dup")
		a.Init(root)
		b.Init(root)

		Expect(registry.Register(a)).To(Succeed())
		Expect(registry.Register(b)).To(HaveOccurred())
	})

	It("should refuse to destroy a registered device", func() {
		child := platform.NewDevice("xfertest.fixmem")
		child.Init(root)
		registry.Register(child)

		Expect(child.Destroy()).To(MatchError(platform.ErrDeviceState))
	})
})

var _ = Describe("Config", func() {
	It("should resolve regions by index", func() {
		cfg := platform.MakeConfig().
			WithReservedRegion(platform.ReservedRegion{
				Name: "dram", Base: 0x1000_0000, Size: 0x100_0000,
			}).
			WithReservedRegion(platform.ReservedRegion{
				Name: "fixmem", Base: 0x3000_0000, Size: 0x1_0000,
			})

		r, err := cfg.Region(1)
		Expect(err).ToNot(HaveOccurred())
		Expect(r.Name).To(Equal("fixmem"))
		Expect(r.Window().End()).To(Equal(uint64(0x3001_0000)))
	})

	It("should report a missing index", func() {
		cfg := platform.MakeConfig()

		_, err := cfg.Region(0)
		Expect(err).To(MatchError(platform.ErrNoRegion))
	})
})
