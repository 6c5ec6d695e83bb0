package sieve

import (
	"context"
	"math"

	"github.com/hupe1980/primego/internal/presieve"
)

// bootstrapSegmentBytes keeps the nested sieve small; sqrt(stop) fits into
// a handful of segments at this size.
const bootstrapSegmentBytes = 32 << 10

// SievingPrimes returns every prime in (17, sqrt(stop)] in ascending
// order: the crossing-off agents for a run up to stop. Primes up to 17 are
// covered by the wheel and the pre-sieve and are deliberately absent.
//
// For stop beyond 2^32 the set is produced by a nested run of this same
// engine over [0, sqrt(stop)], seeded by a plain sieve up to sqrt(sqrt(stop)).
// The recursion is bounded to exactly this one extra level: sqrt(sqrt(stop))
// never exceeds 2^16.
func SievingPrimes(ctx context.Context, stop uint64) ([]uint64, error) {
	root := ISqrt(stop)
	if root <= presieve.MaxPrime {
		return nil, nil
	}
	if root <= 1<<16 {
		return simplePrimes(root), nil
	}

	inner := simplePrimes(ISqrt(root)) // <= 2^16, no further nesting
	eng, err := NewEngine(Config{
		Start:        presieve.MaxPrime + 1,
		Stop:         root,
		SegmentBytes: bootstrapSegmentBytes,
	}, inner)
	if err != nil {
		return nil, err
	}

	primes := make([]uint64, 0, primeCountGuess(root))
	err = eng.Generate(ctx, func(p uint64) bool {
		primes = append(primes, p)
		return true
	})
	if err != nil {
		return nil, err
	}
	return primes, nil
}

// simplePrimes returns the primes in (17, n] via a classical sieve.
// n must not exceed 2^16 by much; the callers guarantee this.
func simplePrimes(n uint64) []uint64 {
	composite := make([]bool, n+1)
	var primes []uint64
	for i := uint64(2); i <= n; i++ {
		if composite[i] {
			continue
		}
		if i > presieve.MaxPrime {
			primes = append(primes, i)
		}
		for j := i * i; j <= n; j += i {
			composite[j] = true
		}
	}
	return primes
}

// primeCountGuess approximates pi(n) for slice preallocation.
func primeCountGuess(n uint64) int {
	if n < 10 {
		return 4
	}
	return int(float64(n) / (math.Log(float64(n)) - 1.1))
}
