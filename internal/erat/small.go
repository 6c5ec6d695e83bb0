package erat

import "github.com/hupe1980/primego/internal/wheel"

// smallPrime carries a sieving prime in stride form. The position of the
// next multiple is a byte offset relative to the current segment; the 8
// byte strides and bit masks of one full wheel turn are precomputed, so
// crossing off needs no multiplication or division.
type smallPrime struct {
	off    int64 // byte offset of next multiple, relative to segment start
	deltas [8]uint32
	masks  [8]uint8 // AND masks (bit already inverted)
	phase  uint8
}

// Small crosses off multiples of sieving primes whose full wheel turn
// (30*p integers) fits inside one segment.
type Small struct {
	baseByte int64 // byte index of the first segment's low bound
	primes   []smallPrime
}

// NewSmall creates a Small tier for a sieve whose first segment starts at
// low. low must be a multiple of 30.
func NewSmall(low uint64) *Small {
	return &Small{baseByte: int64(low / 30)}
}

// Register adds the sieving prime p whose first candidate multiple is n at
// the given wheel phase (as produced by wheel.FirstMultiple).
func (s *Small) Register(p, n uint64, phase uint8) {
	sp := smallPrime{
		off:   int64(n/30) - s.baseByte,
		phase: phase,
	}
	q := p % 30
	for k := 0; k < 8; k++ {
		// For a fixed phase the residue of the multiple is fixed, so
		// the byte distance to the next multiple is a constant.
		rk := q * wheel.Residues[k] % 30
		rk1 := q * wheel.Residues[(k+1)&7] % 30
		step := int64(p*wheel.Gaps[k]) + int64(rk) - int64(rk1)
		sp.deltas[k] = uint32(step / 30)
		sp.masks[k] = ^wheel.BitMask[rk]
	}
	s.primes = append(s.primes, sp)
}

// Len returns the number of registered primes.
func (s *Small) Len() int { return len(s.primes) }

// CrossOff clears every multiple falling into buf. The segment is assumed
// to directly follow the previously processed one; each prime's offset is
// carried over relative to the next segment.
func (s *Small) CrossOff(buf []byte) {
	size := int64(len(buf))
	for i := range s.primes {
		sp := &s.primes[i]
		off, k := sp.off, sp.phase
		for off < size {
			buf[off] &= sp.masks[k]
			off += int64(sp.deltas[k])
			k = (k + 1) & 7
		}
		sp.off = off - size
		sp.phase = k
	}
}
