package memory

import "fmt"

// A Window is a named contiguous range of physical addresses.
type Window struct {
	Name string
	Base uint64
	Size uint64
}

// End returns the first address after the window.
func (w Window) End() uint64 {
	return w.Base + w.Size
}

// Contains reports whether [addr, addr+n) lies fully inside the window.
func (w Window) Contains(addr, n uint64) bool {
	return addr >= w.Base && addr+n <= w.End()
}

func (w Window) String() string {
	return fmt.Sprintf("%s[%#x-%#x]", w.Name, w.Base, w.End())
}
