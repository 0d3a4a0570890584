package harness

import (
	"hash/crc32"

	"github.com/sarchlab/xfertest/alloc"
)

// verify computes a CRC-32 over the first n bytes of sender and
// receiver and reports whether they match. A checksum is a detection
// mechanism, not a cryptographic one; collisions are an accepted risk
// for a self test.
func verify(a, b *alloc.Buffer, n uint64) (bool, error) {
	pa, err := a.Read(0, n)
	if err != nil {
		return false, err
	}
	pb, err := b.Read(0, n)
	if err != nil {
		return false, err
	}

	return crc32.ChecksumIEEE(pa) == crc32.ChecksumIEEE(pb), nil
}
