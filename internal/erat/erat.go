// Package erat implements the tiered crossing-off engines of the segmented
// sieve.
//
// Sieving primes are split into three tiers by the length of their crossing
// interval relative to the segment span:
//
//   - Small: many multiples per segment; marked with precomputed byte
//     strides, no arithmetic on the prime itself in the hot loop.
//   - Medium: at least one multiple per segment; marked by advancing an
//     absolute next-multiple position through the wheel.
//   - Big: next multiple may fall many segments ahead; deferred in buckets
//     indexed by target segment so each segment only touches the primes
//     that actually hit it.
//
// The tier boundaries are pure tuning: any assignment produces identical
// output, only different speed.
package erat

import "errors"

// ErrPoolExhausted is returned when the bucket free pool cannot grow
// because the configured memory limit is exhausted. The run is aborted;
// partial output is never produced.
var ErrPoolExhausted = errors.New("erat: bucket pool exhausted")

// MemoryGate grants or denies memory to the bucket pool. A nil gate is
// unlimited. *resource.Controller satisfies it.
type MemoryGate interface {
	TryAcquireMemory(bytes int64) bool
	ReleaseMemory(bytes int64)
}
