package erat

import "github.com/hupe1980/primego/internal/wheel"

type mediumPrime struct {
	p     uint64
	next  uint64 // absolute value of the next not-yet-crossed multiple
	phase uint8
	done  bool // no further multiple <= stop
}

// Medium crosses off multiples of sieving primes that hit every segment at
// least once but whose wheel turn exceeds the segment span. Positions are
// tracked as absolute values and advanced through the wheel's jump table.
type Medium struct {
	stop   uint64
	primes []mediumPrime
}

// NewMedium creates a Medium tier for the inclusive sieving bound stop.
func NewMedium(stop uint64) *Medium {
	return &Medium{stop: stop}
}

// Register adds the sieving prime p whose first candidate multiple is n at
// the given wheel phase. n must not exceed stop.
func (m *Medium) Register(p, n uint64, phase uint8) {
	m.primes = append(m.primes, mediumPrime{p: p, next: n, phase: phase})
}

// Len returns the number of registered primes.
func (m *Medium) Len() int { return len(m.primes) }

// CrossOff clears every multiple falling into the segment [low, low+30*len(buf)).
// Segments must be processed in ascending order.
func (m *Medium) CrossOff(buf []byte, low uint64) {
	covered := 30 * uint64(len(buf))
	for i := range m.primes {
		sp := &m.primes[i]
		if sp.done {
			continue
		}
		n, k := sp.next, sp.phase
		for n-low < covered {
			buf[(n-low)/30] &^= wheel.BitMask[n%30]
			delta, next := wheel.Advance(sp.p, k)
			if delta > m.stop-n {
				sp.done = true
				break
			}
			n += delta
			k = next
		}
		sp.next, sp.phase = n, k
	}
}
