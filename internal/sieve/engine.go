// Package sieve drives the segmented sieve: it owns the segment buffer,
// dispatches sieving primes to the crossing-off tiers, runs the per-segment
// pipeline and decodes finished segments into counts or prime values.
//
// One Engine instance performs exactly one run over one range. It is not
// safe for concurrent use; parallel callers give each worker its own
// Engine over a disjoint sub-range and share only the read-only
// sieving-prime set.
package sieve

import (
	"context"
	"errors"
	"sort"

	"github.com/hupe1980/primego/internal/erat"
	"github.com/hupe1980/primego/internal/presieve"
	"github.com/hupe1980/primego/internal/wheel"
)

// MaxStop is the largest supported inclusive sieving bound.
const MaxStop = ^uint64(0) - 1

// ErrSegmentBuffer is returned when the segment buffer allocation is denied
// by the memory limit.
var ErrSegmentBuffer = errors.New("sieve: segment buffer allocation denied")

// errStopRun aborts the segment loop when the consumer has seen enough.
var errStopRun = errors.New("sieve: stop requested")

// Config parameterizes one sieve run.
type Config struct {
	// Start and Stop bound the run, both inclusive. Start <= Stop <= MaxStop.
	Start, Stop uint64
	// SegmentBytes is the segment buffer size. One byte covers 30 integers.
	SegmentBytes int
	// Gate accounts buffer and bucket memory. Nil means unlimited.
	Gate erat.MemoryGate
	// OnSegment, if set, is called after each finished segment with the
	// number of processed and total segments.
	OnSegment func(done, total uint64)
}

type bigPending struct {
	p, next uint64
	phase   uint8
}

// Engine is the per-range orchestrator.
type Engine struct {
	start, stop uint64
	base        uint64 // start rounded down to a multiple of 30
	segBytes    int
	span        uint64 // integers per full segment
	buf         []byte

	small  *erat.Small
	medium *erat.Medium
	big    *erat.Big

	// Big-tier primes wait here, sorted by first multiple, until the
	// bucket window of the advancing segment reaches them.
	pending []bigPending
	cursor  int

	gate      erat.MemoryGate
	onSegment func(done, total uint64)
	ran       bool
}

// NewEngine builds an engine over cfg using the given sieving primes.
// sievingPrimes must contain every prime in (17, sqrt(cfg.Stop)] in
// ascending order; larger entries are ignored.
func NewEngine(cfg Config, sievingPrimes []uint64) (*Engine, error) {
	if cfg.Start > cfg.Stop || cfg.Stop > MaxStop {
		return nil, errors.New("sieve: invalid range")
	}
	if cfg.SegmentBytes <= 0 {
		cfg.SegmentBytes = DefaultSegmentBytes
	}

	e := &Engine{
		start:     cfg.Start,
		stop:      cfg.Stop,
		base:      cfg.Start - cfg.Start%30,
		segBytes:  cfg.SegmentBytes,
		span:      30 * uint64(cfg.SegmentBytes),
		gate:      cfg.Gate,
		onSegment: cfg.OnSegment,
	}

	if e.gate != nil && !e.gate.TryAcquireMemory(int64(e.segBytes)) {
		return nil, ErrSegmentBuffer
	}
	e.buf = make([]byte, e.segBytes)

	e.small = erat.NewSmall(e.base)
	e.medium = erat.NewMedium(e.stop)

	smallMax := e.span / 30 // full wheel turn fits into one segment
	mediumMax := e.span / 6 // largest wheel gap fits into one segment

	var maxBig uint64
	for _, p := range sievingPrimes {
		if p <= presieve.MaxPrime {
			continue
		}
		n, phase, ok := wheel.FirstMultiple(p, e.start, e.stop)
		if !ok {
			continue
		}
		switch {
		case p <= smallMax:
			e.small.Register(p, n, phase)
		case p <= mediumMax:
			e.medium.Register(p, n, phase)
		default:
			e.pending = append(e.pending, bigPending{p: p, next: n, phase: phase})
			if p > maxBig {
				maxBig = p
			}
		}
	}
	sort.Slice(e.pending, func(i, j int) bool { return e.pending[i].next < e.pending[j].next })

	e.big = erat.NewBig(erat.BigConfig{
		Base:     e.base,
		Span:     e.span,
		Stop:     e.stop,
		MaxPrime: maxBig,
		Gate:     e.gate,
	})

	return e, nil
}

// TierSizes reports how many sieving primes each tier holds.
func (e *Engine) TierSizes() (small, medium, big int) {
	return e.small.Len(), e.medium.Len(), e.big.Len() + len(e.pending) - e.cursor
}

// SegmentBytes returns the effective segment buffer size.
func (e *Engine) SegmentBytes() int { return e.segBytes }

// Run drives the segment pipeline once: pre-sieve, tier crossing-off,
// bucket application, then emit. Cancellation is observed at segment
// boundaries only, so no segment is ever half-applied. Run must be called
// at most once.
func (e *Engine) Run(ctx context.Context, emit func(buf []byte, low uint64) error) error {
	if e.ran {
		return errors.New("sieve: engine already ran")
	}
	e.ran = true

	defer func() {
		e.big.Close()
		if e.gate != nil {
			e.gate.ReleaseMemory(int64(e.segBytes))
		}
		e.buf = nil
	}()

	total := (e.stop-e.base)/e.span + 1
	done := uint64(0)

	low := e.base
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		remaining := e.stop - low + 1
		nbytes := remaining / 30
		if remaining%30 != 0 {
			nbytes++
		}
		if nbytes > uint64(e.segBytes) {
			nbytes = uint64(e.segBytes)
		}
		buf := e.buf[:nbytes]

		presieve.Apply(buf, low)
		if low == 0 {
			// The pre-sieve template cannot know that 1 is not
			// prime and that its own primes are.
			buf[0] &^= wheel.BitMask[1]
			buf[0] |= wheel.BitMask[7] | wheel.BitMask[11] | wheel.BitMask[13] | wheel.BitMask[17]
		}

		e.small.CrossOff(buf)
		e.medium.CrossOff(buf, low)
		if err := e.registerPending(low); err != nil {
			return err
		}
		if err := e.big.CrossOff(buf, low); err != nil {
			return err
		}

		if err := emit(buf, low); err != nil {
			return err
		}

		done++
		if e.onSegment != nil {
			e.onSegment(done, total)
		}

		if e.span > e.stop-low {
			return nil
		}
		low += e.span
	}
}

// registerPending moves waiting big primes whose first multiple entered the
// bucket window into the Big tier.
func (e *Engine) registerPending(low uint64) error {
	windowEnd := low + e.big.Window()
	if windowEnd < low {
		// Saturated: the window reaches past the end of the range.
		windowEnd = ^uint64(0)
	}
	for e.cursor < len(e.pending) {
		pd := e.pending[e.cursor]
		if pd.next >= windowEnd {
			return nil
		}
		if err := e.big.Register(pd.p, pd.next, pd.phase); err != nil {
			return err
		}
		e.cursor++
	}
	return nil
}
