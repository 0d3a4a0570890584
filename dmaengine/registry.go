package dmaengine

import (
	"errors"
	"sync"
)

// ErrNotHeld is returned when releasing a channel that was never
// requested or was already released.
var ErrNotHeld = errors.New("channel is not held")

// A Registry keeps the channels the platform offers and hands them out
// by capability.
//
// A requested channel is exclusively held until it is released. There
// is no selection policy: the first capable free channel wins.
type Registry struct {
	mu       sync.Mutex
	channels []Channel
	held     map[string]bool
}

// NewRegistry creates an empty channel registry.
func NewRegistry() *Registry {
	return &Registry{
		held: make(map[string]bool),
	}
}

// Register adds a channel to the registry.
func (r *Registry) Register(ch Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.channels {
		if c.Name() == ch.Name() {
			panic("channel " + ch.Name() + " already registered")
		}
	}

	r.channels = append(r.channels, ch)
}

// Request returns the first free channel that offers all the requested
// capabilities, or ErrNoChannel if there is none.
func (r *Registry) Request(capability Capability) (Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ch := range r.channels {
		if r.held[ch.Name()] {
			continue
		}
		if ch.Capabilities()&capability != capability {
			continue
		}

		r.held[ch.Name()] = true
		return ch, nil
	}

	return nil, ErrNoChannel
}

// Release returns a previously requested channel to the registry.
// Releasing a channel that is not held reports an error instead of
// panicking so that best-effort teardown paths can keep going.
func (r *Registry) Release(ch Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.held[ch.Name()] {
		return ErrNotHeld
	}

	delete(r.held, ch.Name())
	return nil
}

// Held reports whether the named channel is currently handed out.
func (r *Registry) Held(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.held[name]
}
