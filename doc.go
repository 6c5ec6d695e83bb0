// Package primego provides a fast segmented prime sieve for Go.
//
// Primego generates and counts primes up to 2^64 - 1 using a segmented
// Sieve of Eratosthenes with wheel factorization: the factors 2, 3 and 5
// are compiled out of the candidate representation, small composites are
// removed with a precomputed template, and sieving primes are split into
// three size classes with per-class crossing-off strategies. Segment
// buffers are sized to the CPU's cache topology.
//
// # Quick Start
//
// Package-level functions use a shared default sieve:
//
//	ctx := context.Background()
//	n, _ := primego.Count(ctx, 2, 100)           // 25
//	p, _ := primego.NthPrime(ctx, 10000, 2)      // 104729
//	for p := range primego.Primes(ctx, 0, 50) {
//	    fmt.Println(p)
//	}
//
// # Ranges
//
// All operations take half-open ranges [start, stop): Count(2, 100)
// counts the primes 2 through 97. The largest usable stop is 2^64 - 1.
//
// # Configuration
//
// A Sieve carries its configuration; construct one for anything beyond
// the defaults:
//
//	s, _ := primego.New(
//	    primego.WithThreads(8),
//	    primego.WithMemoryLimit(256<<20),
//	    primego.WithProgressFunc(func(pct float64) { fmt.Printf("%.1f%%\n", pct) }),
//	)
//	n, _ := s.Count(ctx, 0, 1_000_000_000)
//
// Counting and bitmap collection run in parallel when the range is large
// enough; Generate and Primes deliver every prime in ascending order even
// in parallel mode.
//
// # Key Features
//
//   - Modulo-30 wheel: one byte of sieve covers 30 integers
//   - Pre-sieved composite template for the primes 7 through 17
//   - Cache-sized segments via sysfs topology detection
//   - Hard memory ceiling via WithMemoryLimit
//   - Roaring bitmap export for set-algebra consumers
package primego
