package dmaengine

import (
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/sarchlab/xfertest/memory"
)

// A MemcpyEngine is a simulated channel that copies bytes between two
// locations of a backing Storage.
//
// The engine completes one transfer at a time. An optional fault hook
// lets tests force engine-reported failures, and an optional latency
// delays completion so that timeout handling can be exercised.
type MemcpyEngine struct {
	name    string
	store   *memory.Storage
	latency time.Duration
	fault   func(Desc) error

	mu       sync.Mutex
	inFlight *transfer
}

type transfer struct {
	desc      Desc
	cookie    Cookie
	done      chan Status
	cancelled bool
	cancel    chan struct{}
}

// Name returns the channel name.
func (e *MemcpyEngine) Name() string {
	return e.name
}

// Capabilities reports that the engine can perform memcpy transfers.
func (e *MemcpyEngine) Capabilities() Capability {
	return CapMemcpy
}

// Submit prepares and queues one transfer and returns its cookie.
func (e *MemcpyEngine) Submit(desc Desc) (Cookie, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.inFlight != nil {
		return "", ErrChannelBusy
	}
	if desc.ByteSize == 0 {
		return "", ErrBadDescriptor
	}

	t := &transfer{
		desc:   desc,
		cookie: Cookie(xid.New().String()),
		done:   make(chan Status, 1),
		cancel: make(chan struct{}),
	}
	e.inFlight = t

	go e.complete(t)

	return t.cookie, nil
}

func (e *MemcpyEngine) complete(t *transfer) {
	if e.latency > 0 {
		select {
		case <-time.After(e.latency):
		case <-t.cancel:
			return
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if t.cancelled {
		return
	}

	t.done <- e.execute(t.desc)
}

func (e *MemcpyEngine) execute(desc Desc) Status {
	if e.fault != nil {
		if err := e.fault(desc); err != nil {
			return StatusError
		}
	}

	data, err := e.store.Read(desc.SrcAddr, desc.ByteSize)
	if err != nil {
		return StatusError
	}
	if err := e.store.Write(desc.DstAddr, data); err != nil {
		return StatusError
	}

	return StatusCompleted
}

// Wait blocks until the transfer identified by cookie completes or the
// timeout elapses. A timed-out transfer reports StatusAborted and stays
// in flight until Terminate is called.
func (e *MemcpyEngine) Wait(cookie Cookie, timeout time.Duration) Status {
	e.mu.Lock()
	t := e.inFlight
	e.mu.Unlock()

	if t == nil || t.cookie != cookie {
		return StatusError
	}

	select {
	case status := <-t.done:
		return status
	case <-time.After(timeout):
		return StatusAborted
	}
}

// Terminate drops any in-flight transfer so the channel can accept the
// next descriptor.
func (e *MemcpyEngine) Terminate() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.inFlight == nil {
		return
	}

	e.inFlight.cancelled = true
	close(e.inFlight.cancel)
	e.inFlight = nil
}
