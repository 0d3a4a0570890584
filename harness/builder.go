package harness

import (
	"math/rand/v2"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/xfertest/dmaengine"
	"github.com/sarchlab/xfertest/memory"
	"github.com/sarchlab/xfertest/platform"
)

// A Builder builds harnesses.
type Builder struct {
	cfg         Config
	platformCfg platform.Config
	devices     *platform.Registry
	channels    *dmaengine.Registry
	store       *memory.Storage
	dev         *platform.Device
	log         logrus.FieldLogger
	recorder    HopRecorder
	seed        uint64
	seeded      bool
}

// MakeBuilder returns a Builder with the default configuration.
func MakeBuilder() Builder {
	return Builder{
		cfg: MakeConfig(),
	}
}

// WithConfig sets the run configuration.
func (b Builder) WithConfig(cfg Config) Builder {
	b.cfg = cfg
	return b
}

// WithPlatformConfig sets the reserved-region declarations.
func (b Builder) WithPlatformConfig(cfg platform.Config) Builder {
	b.platformCfg = cfg
	return b
}

// WithDeviceRegistry sets the registry synthesized region owners are
// registered with. Required in ProvisionChildOwner mode.
func (b Builder) WithDeviceRegistry(r *platform.Registry) Builder {
	b.devices = r
	return b
}

// WithChannelRegistry sets the registry engine channels are requested
// from.
func (b Builder) WithChannelRegistry(r *dmaengine.Registry) Builder {
	b.channels = r
	return b
}

// WithStorage sets the physical memory of the platform.
func (b Builder) WithStorage(s *memory.Storage) Builder {
	b.store = s
	return b
}

// WithDevice sets the harness's own device, the owning entity of the
// channel and, in bind mode, of both regions.
func (b Builder) WithDevice(d *platform.Device) Builder {
	b.dev = d
	return b
}

// WithLogger sets the logger. Defaults to the logrus standard logger.
func (b Builder) WithLogger(log logrus.FieldLogger) Builder {
	b.log = log
	return b
}

// WithRecorder installs a hop recorder.
func (b Builder) WithRecorder(r HopRecorder) Builder {
	b.recorder = r
	return b
}

// WithSeed makes the payload generator deterministic.
func (b Builder) WithSeed(seed uint64) Builder {
	b.seed = seed
	b.seeded = true
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.cfg.BufferSize == 0 {
		panic("buffer size must be positive")
	}
	if b.cfg.Timeout <= 0 {
		panic("transfer timeout must be positive")
	}
	if b.store == nil {
		panic("harness requires a backing storage")
	}
	if b.channels == nil {
		panic("harness requires a channel registry")
	}
	if b.dev == nil {
		panic("harness requires an owning device")
	}
	if b.cfg.ProvisionMode == ProvisionChildOwner && b.devices == nil {
		panic("child-owner provisioning requires a device registry")
	}
}

// Build creates the harness.
func (b Builder) Build() *Harness {
	b.parametersMustBeValid()

	log := b.log
	if log == nil {
		log = logrus.StandardLogger()
	}

	seed := b.seed
	if !b.seeded {
		seed = rand.Uint64()
	}

	return &Harness{
		cfg:         b.cfg,
		platformCfg: b.platformCfg,
		devices:     b.devices,
		channels:    b.channels,
		store:       b.store,
		dev:         b.dev,
		log:         log,
		recorder:    b.recorder,
		rng:         rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}
