package harness

import (
	"math/rand/v2"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/xfertest/alloc"
	"github.com/sarchlab/xfertest/dmaengine"
	"github.com/sarchlab/xfertest/memory"
	"github.com/sarchlab/xfertest/platform"
)

// Reserved-region indices the platform configuration must declare.
const (
	arenaRegionIndex = 0
	fixedRegionIndex = 1
)

// A State marks how far a run has progressed. Acquisition only moves
// forward; teardown always runs from wherever the run stopped.
type State int

// Run states.
const (
	StateIdle State = iota
	StateChannelAcquired
	StateRegionsProvisioned
	StateBuffersAllocated
	StateTestsRun
	StateTornDown
)

// A Harness performs one transfer-verification run. A harness is built
// once per activation and must not be reused; the host caller is
// responsible for serializing activations.
type Harness struct {
	cfg         Config
	platformCfg platform.Config
	devices     *platform.Registry
	channels    *dmaengine.Registry
	store       *memory.Storage
	dev         *platform.Device
	log         logrus.FieldLogger
	recorder    HopRecorder
	rng         *rand.Rand

	state     State
	allocator alloc.Allocator
	fixAlloc  alloc.Allocator
}

// State returns how far the run has progressed.
func (h *Harness) State() State {
	return h.state
}

// Run executes the activation: channel acquisition, region
// provisioning, buffer allocation, the configured test sections, and a
// full reverse-order teardown.
//
// The returned error is non-nil only for acquisition failures. Hop
// failures are reported in the Report and logged, but do not fail the
// activation.
func (h *Harness) Run() (Report, error) {
	report := Report{}

	td := newTeardownList(h.log)
	defer func() {
		td.unwind()
		h.state = StateTornDown
	}()

	h.log.WithFields(logrus.Fields{
		"buffer_size": h.cfg.BufferSize,
		"test_mode":   h.cfg.TestMode,
	}).Info("transfer test for reserved memory")

	ch, err := h.channels.Request(dmaengine.CapMemcpy)
	if err != nil {
		h.log.WithError(err).Error("failed to request engine channel")
		return report, &AcquisitionError{Step: "channel", Err: err}
	}
	td.push("channel "+ch.Name(), func() error {
		return h.channels.Release(ch)
	})
	h.state = StateChannelAcquired

	prov := h.newProvisioner()

	arenaReg, err := prov.Provision(arenaRegionIndex, "dram")
	if err != nil {
		h.log.WithError(err).Error("failed to provision dram region")
		return report, &AcquisitionError{Step: "dram region", Err: err}
	}
	td.push("dram region", func() error { return prov.Release(arenaReg) })

	fixReg, err := prov.Provision(fixedRegionIndex, "fixmem")
	if err != nil {
		h.log.WithError(err).Error("failed to provision fixed region")
		return report, &AcquisitionError{Step: "fixed region", Err: err}
	}
	td.push("fixed region", func() error { return prov.Release(fixReg) })
	h.state = StateRegionsProvisioned

	n := h.cfg.BufferSize
	h.allocator = h.newAllocator(arenaReg)
	h.fixAlloc = h.newAllocator(fixReg)

	src, err := h.allocator.Alloc(n)
	if err != nil {
		h.log.WithError(err).Error("failed to alloc 'src' memory")
		return report, &AcquisitionError{Step: "src buffer", Err: err}
	}
	td.push("src buffer", func() error { return h.allocator.Free(src) })

	dst, err := h.allocator.Alloc(n)
	if err != nil {
		h.log.WithError(err).Error("failed to alloc 'dst' memory")
		return report, &AcquisitionError{Step: "dst buffer", Err: err}
	}
	td.push("dst buffer", func() error { return h.allocator.Free(dst) })

	fix, err := h.fixAlloc.MapFixed(fixReg.Region.Base, n)
	if err != nil {
		h.log.WithError(err).Error("failed to map 'fix' memory")
		return report, &AcquisitionError{Step: "fix mapping", Err: err}
	}
	td.push("fix mapping", func() error { return h.fixAlloc.Unmap(fix) })
	h.state = StateBuffersAllocated

	if h.cfg.TestMode&ModeEngine != 0 {
		h.runEngineSection(&report, ch, src, fix, dst)
	}
	if h.cfg.TestMode&ModeCPU != 0 {
		h.runCPUSection(&report, src, fix, dst)
	}
	h.state = StateTestsRun

	return report, nil
}

func (h *Harness) newProvisioner() RegionProvisioner {
	if h.cfg.ProvisionMode == ProvisionChildOwner {
		return &childProvisioner{
			cfg:        h.platformCfg,
			parent:     h.dev,
			registry:   h.devices,
			bufferSize: h.cfg.BufferSize,
		}
	}

	return &bindProvisioner{
		cfg:        h.platformCfg,
		owner:      h.dev,
		bufferSize: h.cfg.BufferSize,
	}
}

func (h *Harness) newAllocator(r *ProvisionedRegion) alloc.Allocator {
	if h.cfg.AllocMode == AllocMapped {
		return alloc.NewMapped(r.Owner, r.Region.Window(), h.store)
	}
	return alloc.NewCoherent(r.Owner, r.Region.Window(), h.store)
}
