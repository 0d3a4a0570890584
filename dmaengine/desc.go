package dmaengine

import "github.com/rs/xid"

// A Desc describes one memory-to-memory transfer.
type Desc struct {
	ID       string
	SrcAddr  uint64
	DstAddr  uint64
	ByteSize uint64
}

// DescBuilder builds transfer descriptors.
type DescBuilder struct {
	srcAddr  uint64
	dstAddr  uint64
	byteSize uint64
}

// WithSrcAddr sets the physical address the transfer reads from.
func (b DescBuilder) WithSrcAddr(addr uint64) DescBuilder {
	b.srcAddr = addr
	return b
}

// WithDstAddr sets the physical address the transfer writes to.
func (b DescBuilder) WithDstAddr(addr uint64) DescBuilder {
	b.dstAddr = addr
	return b
}

// WithByteSize sets the number of bytes to move.
func (b DescBuilder) WithByteSize(n uint64) DescBuilder {
	b.byteSize = n
	return b
}

// Build creates the descriptor.
func (b DescBuilder) Build() Desc {
	return Desc{
		ID:       xid.New().String(),
		SrcAddr:  b.srcAddr,
		DstAddr:  b.dstAddr,
		ByteSize: b.byteSize,
	}
}
