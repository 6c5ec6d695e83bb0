package testutil

import (
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Uint64n returns a pseudo-random uint64 in [0,n).
func (r *RNG) Uint64n(n uint64) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64() % n
}

// Range returns a random half-open range [start, stop) with
// start < maxStart and a width of at most maxWidth.
func (r *RNG) Range(maxStart, maxWidth uint64) (start, stop uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	start = r.rand.Uint64() % maxStart
	stop = start + r.rand.Uint64()%maxWidth
	return start, stop
}

// IsPrime reports primality by trial division. Slow but obviously correct.
func IsPrime(n uint64) bool {
	if n < 2 {
		return false
	}
	for d := uint64(2); d*d <= n; d++ {
		if n%d == 0 {
			return false
		}
	}
	return true
}

// PrimesInRange returns every prime in the half-open range [start, stop)
// in ascending order, by trial division.
func PrimesInRange(start, stop uint64) []uint64 {
	var primes []uint64
	for n := start; n < stop; n++ {
		if IsPrime(n) {
			primes = append(primes, n)
		}
	}
	return primes
}

// CountRange returns the number of primes in [start, stop).
func CountRange(start, stop uint64) uint64 {
	var count uint64
	for n := start; n < stop; n++ {
		if IsPrime(n) {
			count++
		}
	}
	return count
}

// PrimesUpTo returns every prime <= n via a classical boolean sieve.
// Faster than trial division for dense ground truth.
func PrimesUpTo(n uint64) []uint64 {
	if n < 2 {
		return nil
	}
	composite := make([]bool, n+1)
	var primes []uint64
	for i := uint64(2); i <= n; i++ {
		if composite[i] {
			continue
		}
		primes = append(primes, i)
		for j := i * i; j <= n; j += i {
			composite[j] = true
		}
	}
	return primes
}
