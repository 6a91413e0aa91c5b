// Package generator produces random passwords, throwaway identities and masked
// addresses, and simulates a breach lookup.
package generator

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand/v2"
)

// Rand is the randomness used by a Generator. *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// Generator draws all of its output from one Rand.
type Generator struct {
	rnd Rand
}

// New returns a Generator over r. A nil r selects the crypto-backed source.
func New(r Rand) *Generator {
	if r == nil {
		r = mrand.New(cryptoSource{})
	}
	return &Generator{rnd: r}
}

// cryptoSource feeds math/rand/v2 from crypto/rand.
type cryptoSource struct{}

func (cryptoSource) Uint64() uint64 {
	var b [8]byte
	_, _ = rand.Read(b[:]) // crypto/rand.Read never returns an error
	return binary.LittleEndian.Uint64(b[:])
}

func (g *Generator) pick(list []string) string {
	return list[g.rnd.IntN(len(list))]
}

// between returns an int in [lo, hi].
func (g *Generator) between(lo, hi int) int {
	return lo + g.rnd.IntN(hi-lo+1)
}
