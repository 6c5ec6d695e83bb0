package sieve

import (
	"context"
	"errors"
	"math/bits"

	"github.com/hupe1980/primego/internal/wheel"
)

// wheelPrimes are below the smallest candidate and handled outside the
// bit buffer.
var wheelPrimes = [3]uint64{2, 3, 5}

// Count runs the engine and returns the number of primes in its range.
func (e *Engine) Count(ctx context.Context) (uint64, error) {
	total := uint64(0)
	for _, p := range wheelPrimes {
		if p >= e.start && p <= e.stop {
			total++
		}
	}
	err := e.Run(ctx, func(buf []byte, low uint64) error {
		total += countSegment(buf, low, e.start, e.stop)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// Generate runs the engine and delivers every prime in ascending order.
// A false return from visit ends the run early without error.
func (e *Engine) Generate(ctx context.Context, visit func(p uint64) bool) error {
	for _, p := range wheelPrimes {
		if p >= e.start && p <= e.stop && !visit(p) {
			return nil
		}
	}
	err := e.Run(ctx, func(buf []byte, low uint64) error {
		if !decodeSegment(buf, low, e.start, e.stop, visit) {
			return errStopRun
		}
		return nil
	})
	if errors.Is(err, errStopRun) {
		return nil
	}
	return err
}

// countSegment counts the set bits whose values fall into [start, stop].
// Interior bytes popcount directly; only bytes straddling a range bound
// are inspected bit by bit.
func countSegment(buf []byte, low, start, stop uint64) uint64 {
	var n uint64
	for i, b := range buf {
		if b == 0 {
			continue
		}
		base := low + 30*uint64(i)
		if base >= start && stop-base >= 29 {
			n += uint64(bits.OnesCount8(b))
			continue
		}
		for k := 0; b != 0; k++ {
			if b&1 != 0 {
				v := base + wheel.Residues[k]
				if v >= base && v >= start && v <= stop {
					n++
				}
			}
			b >>= 1
		}
	}
	return n
}

// decodeSegment converts set bits back to prime values in ascending order.
// It returns false as soon as visit does.
func decodeSegment(buf []byte, low, start, stop uint64, visit func(p uint64) bool) bool {
	for i, b := range buf {
		if b == 0 {
			continue
		}
		base := low + 30*uint64(i)
		bounded := base < start || stop-base < 29
		for k := 0; b != 0; k++ {
			if b&1 != 0 {
				v := base + wheel.Residues[k]
				if bounded && (v < base || v < start || v > stop) {
					b >>= 1
					continue
				}
				if !visit(v) {
					return false
				}
			}
			b >>= 1
		}
	}
	return true
}
