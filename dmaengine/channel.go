// Package dmaengine defines the contract of a memory-to-memory offload
// engine and provides a simulated backend that implements it.
package dmaengine

import (
	"errors"
	"time"
)

// A Capability describes what kind of transfers a channel can perform.
type Capability uint32

// CapMemcpy marks a channel that can copy between two memory locations.
const CapMemcpy Capability = 1 << 0

// A Cookie identifies a submitted transfer on its channel.
type Cookie string

// A Status is the completion state of a submitted transfer.
type Status int

// Completion states a channel can report for a transfer.
const (
	StatusCompleted Status = iota
	StatusError
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusError:
		return "error"
	case StatusAborted:
		return "aborted"
	}
	return "unknown"
}

// ErrNoChannel is returned when no registered channel offers the
// requested capability. Callers can treat this as a transient condition
// and retry the activation later.
var ErrNoChannel = errors.New("no capable channel available")

// ErrChannelBusy is returned when a transfer is submitted while another
// one is still in flight.
var ErrChannelBusy = errors.New("channel has a transfer in flight")

// ErrBadDescriptor is returned when a descriptor cannot be prepared.
var ErrBadDescriptor = errors.New("cannot prepare transfer descriptor")

// A Channel is an exclusively held handle to one engine channel.
//
// Wait blocks until the engine reports completion, an engine error, or
// the timeout elapses. Terminate resets any in-flight state so the
// channel can accept the next descriptor; it must be called after every
// Wait regardless of the reported status.
type Channel interface {
	Name() string
	Capabilities() Capability
	Submit(desc Desc) (Cookie, error)
	Wait(cookie Cookie, timeout time.Duration) Status
	Terminate()
}
