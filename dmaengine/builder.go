package dmaengine

import (
	"time"

	"github.com/sarchlab/xfertest/memory"
)

// A Builder builds MemcpyEngine channels.
type Builder struct {
	name    string
	store   *memory.Storage
	latency time.Duration
	fault   func(Desc) error
}

// MakeBuilder returns a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		name: "memcpy0",
	}
}

// WithName sets the channel name.
func (b Builder) WithName(name string) Builder {
	b.name = name
	return b
}

// WithStorage sets the backing storage the engine copies through.
func (b Builder) WithStorage(store *memory.Storage) Builder {
	b.store = store
	return b
}

// WithLatency sets how long a transfer takes to complete.
func (b Builder) WithLatency(latency time.Duration) Builder {
	b.latency = latency
	return b
}

// WithFault installs a hook that can fail individual transfers. A
// non-nil error from the hook makes the engine report StatusError for
// that descriptor.
func (b Builder) WithFault(fault func(Desc) error) Builder {
	b.fault = fault
	return b
}

// Build creates the engine.
func (b Builder) Build() *MemcpyEngine {
	if b.store == nil {
		panic("memcpy engine requires a backing storage")
	}

	return &MemcpyEngine{
		name:    b.name,
		store:   b.store,
		latency: b.latency,
		fault:   b.fault,
	}
}
