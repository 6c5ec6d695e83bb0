// Package presieve holds a periodic composite template for the smallest
// sieving primes.
//
// Crossing off multiples of 7, 11, 13 and 17 individually in every segment
// is wasted work: their composite pattern repeats every 7*11*13*17 = 17017
// bytes of wheel-compressed sieve, so it is computed once at package init
// and copied into fresh segment buffers instead.
//
// The template is periodic, so it also clears the bits of the template
// primes themselves. The orchestrator restores those bits for the first
// segment; see Primes.
package presieve

import "github.com/hupe1980/primego/internal/wheel"

// Primes are the primes baked into the template. They are excluded from the
// sieving-prime set and their own bits must be restored when a segment
// starts at 0.
var Primes = [4]uint64{7, 11, 13, 17}

// MaxPrime is the largest pre-sieved prime.
const MaxPrime = 17

// periodBytes is 7*11*13*17, the template period in sieve bytes. Each byte
// spans 30 integers, and the period is divisible by every template prime,
// so one period of markings tiles exactly.
const periodBytes = 7 * 11 * 13 * 17

var template [periodBytes]byte

func init() {
	for i := range template {
		template[i] = 0xFF
	}
	span := uint64(periodBytes) * 30
	for _, p := range Primes {
		// Mark every candidate multiple p*m with m coprime to 30,
		// starting at m = 1. The prime itself is marked too; the
		// template is periodic and position p doubles as the genuine
		// composite p + k*period for every later repetition.
		n := p
		phase := uint8(0) // phase of multiplier m = 1
		for n < span {
			template[n/30] &^= wheel.BitMask[n%30]
			delta, next := wheel.Advance(p, phase)
			n += delta
			phase = next
		}
	}
}

// Apply copies the template into buf for a segment starting at low.
// low must be a multiple of 30. Segments shorter or longer than the period
// are handled by rotating the copy: the first chunk starts at the offset
// low/30 mod period, every following chunk restarts at 0.
func Apply(buf []byte, low uint64) {
	off := int((low / 30) % periodBytes)
	i := copy(buf, template[off:])
	for i < len(buf) {
		i += copy(buf[i:], template[:])
	}
}
