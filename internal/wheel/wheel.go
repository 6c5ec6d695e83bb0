// Package wheel implements the modulo-30 factorization wheel used by the
// sieve engines.
//
// The wheel factors out the primes 2, 3 and 5: only the 8 residues coprime
// to 30 remain as prime candidates, so one byte of sieve buffer represents
// 30 consecutive integers. Bit k of the byte at index b stands for the
// candidate 30*b + Residues[k].
//
// All tables are read-only after package init.
package wheel

// Residues holds the 8 residues modulo 30 that are coprime to 30,
// in ascending order. Bit k of a sieve byte corresponds to Residues[k].
var Residues = [8]uint64{1, 7, 11, 13, 17, 19, 23, 29}

// Gaps[k] is the distance from Residues[k] to the next coprime residue
// (wrapping from 29 to 31).
var Gaps = [8]uint64{6, 4, 2, 4, 2, 4, 6, 2}

// BitMask maps n % 30 to the sieve bit of n, or 0 if n is not a candidate.
var BitMask [30]uint8

// phaseGE maps a residue r in [0,30) to the index of the smallest wheel
// residue >= r. Residues[7] = 29 covers every r, so the table is total.
var phaseGE [30]uint8

func init() {
	for k, r := range Residues {
		BitMask[r] = 1 << uint(k)
	}
	k := uint8(len(Residues)) - 1
	for r := 29; r >= 0; r-- {
		if BitMask[r] != 0 {
			for Residues[k] != uint64(r) {
				k--
			}
		}
		phaseGE[r] = k
	}
}

// IsCandidate reports whether n survives the wheel, i.e. is coprime to 30.
// Note that the wheel primes 2, 3 and 5 themselves are not candidates.
func IsCandidate(n uint64) bool {
	return BitMask[n%30] != 0
}

// FirstMultiple returns the first candidate multiple of the sieving prime p
// that is >= max(p*p, low), together with the wheel phase of its multiplier.
// Multiples below p*p are skipped: they carry a smaller prime factor and are
// removed by a smaller sieving prime (or the pre-sieve).
//
// ok is false when no such multiple exists in [low, stop]; the prime then
// needs no registration at all for this range.
func FirstMultiple(p, low, stop uint64) (n uint64, phase uint8, ok bool) {
	if low > stop {
		return 0, 0, false
	}
	m := low / p
	if low%p != 0 {
		m++
	}
	if m < p {
		m = p
	}
	r := m % 30
	k := phaseGE[r]
	m += Residues[k] - r
	if m > stop/p {
		return 0, 0, false
	}
	return p * m, k, true
}

// Advance moves a multiple of p one wheel step forward. It returns the
// distance to the next candidate multiple and the next phase; the caller is
// responsible for the range/overflow guard before adding the delta.
func Advance(p uint64, phase uint8) (delta uint64, next uint8) {
	return p * Gaps[phase], (phase + 1) & 7
}
