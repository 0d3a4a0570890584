package harness

import (
	"encoding/binary"
	"math/rand/v2"

	"github.com/sarchlab/xfertest/alloc"
)

// fillRegions writes independently drawn pseudo-random words into every
// given region. The generator is deliberately non-cryptographic: the
// payloads only need to be decorrelated so that a missed copy cannot
// masquerade as a successful one.
func fillRegions(rng *rand.Rand, n uint64, bufs ...*alloc.Buffer) error {
	for _, buf := range bufs {
		data := make([]byte, (n+3)/4*4)
		for i := uint64(0); i < n; i += 4 {
			binary.LittleEndian.PutUint32(data[i:], rng.Uint32())
		}

		if err := buf.Write(0, data[:n]); err != nil {
			return err
		}
	}

	return nil
}
