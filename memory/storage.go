// Package memory models the physical memory of the platform under test.
package memory

import "fmt"

// A Storage keeps the contents of a physical address space.
//
// Storage manages memory in fixed-size units. Units are materialized
// lazily, so a large address space costs nothing until it is touched by
// a Read or Write.
type Storage struct {
	unitSize uint64
	capacity uint64
	units    map[uint64][]byte
}

// NewStorage creates a Storage that can hold capacity bytes.
func NewStorage(capacity uint64) *Storage {
	return &Storage{
		unitSize: 4096,
		capacity: capacity,
		units:    make(map[uint64][]byte),
	}
}

// Capacity returns the number of bytes the storage can hold.
func (s *Storage) Capacity() uint64 {
	return s.capacity
}

func (s *Storage) unitFor(addr uint64) ([]byte, error) {
	if addr >= s.capacity {
		return nil, fmt.Errorf(
			"address %#x beyond storage capacity %#x", addr, s.capacity)
	}

	base := addr - addr%s.unitSize
	unit, ok := s.units[base]
	if !ok {
		unit = make([]byte, s.unitSize)
		s.units[base] = unit
	}

	return unit, nil
}

// Read copies n bytes starting at address into a fresh slice.
func (s *Storage) Read(address, n uint64) ([]byte, error) {
	out := make([]byte, n)
	addr := address
	done := uint64(0)

	for done < n {
		unit, err := s.unitFor(addr)
		if err != nil {
			return nil, err
		}

		inUnit := addr % s.unitSize
		chunk := s.unitSize - inUnit
		if left := n - done; chunk > left {
			chunk = left
		}

		copy(out[done:done+chunk], unit[inUnit:inUnit+chunk])
		done += chunk
		addr += chunk
	}

	return out, nil
}

// Write stores data starting at address.
func (s *Storage) Write(address uint64, data []byte) error {
	addr := address
	done := uint64(0)

	for done < uint64(len(data)) {
		unit, err := s.unitFor(addr)
		if err != nil {
			return err
		}

		inUnit := addr % s.unitSize
		chunk := s.unitSize - inUnit
		if left := uint64(len(data)) - done; chunk > left {
			chunk = left
		}

		copy(unit[inUnit:inUnit+chunk], data[done:done+chunk])
		done += chunk
		addr += chunk
	}

	return nil
}
