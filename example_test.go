package primego_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/primego"
)

// Example_count demonstrates counting primes with the default sieve.
func Example_count() {
	ctx := context.Background()

	n, err := primego.Count(ctx, 2, 100)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(n)
	// Output: 25
}

// Example_iterate demonstrates lazy iteration over a prime range.
func Example_iterate() {
	ctx := context.Background()

	for p := range primego.Primes(ctx, 0, 30) {
		fmt.Println(p)
	}
	// Output:
	// 2
	// 3
	// 5
	// 7
	// 11
	// 13
	// 17
	// 19
	// 23
	// 29
}

// Example_nthPrime demonstrates finding the nth prime at or above a start.
func Example_nthPrime() {
	ctx := context.Background()

	p, err := primego.NthPrime(ctx, 10000, 2)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(p)
	// Output: 104729
}

// Example_configured demonstrates a tuned sieve with a memory ceiling and
// parallel counting.
func Example_configured() {
	ctx := context.Background()

	s, err := primego.New(
		primego.WithThreads(4),
		primego.WithMemoryLimit(64<<20),
	)
	if err != nil {
		log.Fatal(err)
	}

	n, err := s.Count(ctx, 0, 1_000_000)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(n)
	// Output: 78498
}
