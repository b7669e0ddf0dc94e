package dice

import (
	"crypto/rand"
	"encoding/binary"
	mathrand "math/rand"
)

// Source supplies uniform random integers. Intn must return a value in
// [0, n) for n > 0. *math/rand.Rand satisfies Source directly.
type Source interface {
	Intn(n int) int
}

// NewSeeded returns a deterministic source for reproducible rolls.
func NewSeeded(seed int64) Source {
	return mathrand.New(mathrand.NewSource(seed))
}

// NewCrypto returns a source backed by the operating system's
// cryptographically strong generator, for live play.
func NewCrypto() Source {
	return cryptoSource{}
}

type cryptoSource struct{}

// Intn draws via rejection sampling so every value in [0, n) is equally
// likely. A read failure from the system generator is unrecoverable and
// panics, matching math/rand's behavior on a broken source.
func (cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with non-positive n")
	}
	max := uint64(n)
	limit := (^uint64(0) / max) * max
	var buf [8]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			panic("dice: crypto source failed: " + err.Error())
		}
		value := binary.LittleEndian.Uint64(buf[:])
		if value < limit {
			return int(value % max)
		}
	}
}
