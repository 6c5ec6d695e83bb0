// Package testutil provides testing utilities for primego.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, thread-safe random number generator and a naive
// reference sieve for cross-checking engine output.
//
// # Random Ranges
//
//	rng := testutil.NewRNG(seed)
//	start, stop := rng.Range(1_000_000, 10_000)
//
// # Ground Truth
//
//	want := testutil.PrimesInRange(start, stop)
//	n := testutil.CountRange(start, stop)
package testutil
