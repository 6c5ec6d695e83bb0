package erat

import (
	"math/bits"
	"unsafe"

	"github.com/hupe1980/primego/internal/wheel"
)

// blockEntries is the capacity of one bucket block. Blocks are the unit of
// allocation; entries never allocate individually.
const blockEntries = 1024

// entry is one deferred sieving prime: the prime, the absolute position of
// its next multiple and the wheel phase of the multiplier.
type entry struct {
	p     uint64
	next  uint64
	phase uint8
}

// block is a fixed-capacity chunk of entries. Blocks of one bucket are
// linked through next; the same link threads the free pool.
type block struct {
	next    *block
	used    int
	entries [blockEntries]entry
}

var blockBytes = int64(unsafe.Sizeof(block{}))

// BigConfig configures a Big tier.
type BigConfig struct {
	// Base is the low bound of segment 0, a multiple of 30.
	Base uint64
	// Span is the number of integers covered by one full segment.
	Span uint64
	// Stop is the inclusive sieving bound.
	Stop uint64
	// MaxPrime is the largest sieving prime that will be registered. It
	// sizes the circular bucket window so no advancement can wrap past a
	// pending bucket.
	MaxPrime uint64
	// Gate limits bucket pool growth. Nil means unlimited.
	Gate MemoryGate
}

// Big defers sieving primes whose next multiple may fall segments ahead.
// Entries live in buckets indexed by target segment; the bucket array is
// circular and sized to the worst-case wheel jump, so an entry's distance
// from the current segment can never alias another bucket.
//
// Memory is bounded by the number of live big primes, not by the number of
// segments processed: exhausted blocks return to a free pool and are
// reissued for future buckets.
type Big struct {
	buckets []*block
	mask    uint64
	free    *block

	base uint64
	span uint64
	stop uint64

	gate      MemoryGate
	allocated int64
	count     int // registered primes
}

// NewBig creates a Big tier.
func NewBig(cfg BigConfig) *Big {
	// Worst case forward jump is one wheel gap (6*p) from a position
	// inside the current segment, plus slack for partial segments.
	segs := 6*cfg.MaxPrime/cfg.Span + 3
	n := uint64(1) << bits.Len64(segs)
	return &Big{
		buckets: make([]*block, n),
		mask:    n - 1,
		base:    cfg.Base,
		span:    cfg.Span,
		stop:    cfg.Stop,
		gate:    cfg.Gate,
	}
}

// Len returns the number of registered primes.
func (b *Big) Len() int { return b.count }

// Window returns the distance (in integers) covered by the bucket window.
// The orchestrator must only register primes whose next multiple lies
// below low+Window for the current segment low.
func (b *Big) Window() uint64 {
	return uint64(len(b.buckets)-1) * b.span
}

// Register files the sieving prime p whose first candidate multiple is n
// at the given wheel phase. n must lie inside the bucket window of the
// segment currently being processed.
func (b *Big) Register(p, n uint64, phase uint8) error {
	if err := b.file(entry{p: p, next: n, phase: phase}); err != nil {
		return err
	}
	b.count++
	return nil
}

// CrossOff detaches the bucket of the segment [low, low+30*len(buf)),
// marks every entry's multiple, advances each entry through the wheel and
// re-files it into the bucket of its new target segment. Entries whose
// next multiple would pass stop are retired. Emptied blocks go back to the
// free pool.
func (b *Big) CrossOff(buf []byte, low uint64) error {
	covered := 30 * uint64(len(buf))
	idx := ((low - b.base) / b.span) & b.mask
	blk := b.buckets[idx]
	b.buckets[idx] = nil

	for blk != nil {
		for i := 0; i < blk.used; i++ {
			e := blk.entries[i]
			n, k := e.next, e.phase
			live := true
			for {
				buf[(n-low)/30] &^= wheel.BitMask[n%30]
				delta, next := wheel.Advance(e.p, k)
				if delta > b.stop-n {
					live = false
					b.count--
					break
				}
				n += delta
				k = next
				// Primes barely above the segment span can hit
				// the same segment more than once.
				if n-low >= covered {
					break
				}
			}
			if live {
				e.next, e.phase = n, k
				if err := b.file(e); err != nil {
					return err
				}
			}
		}
		next := blk.next
		b.recycle(blk)
		blk = next
	}
	return nil
}

func (b *Big) file(e entry) error {
	idx := ((e.next - b.base) / b.span) & b.mask
	head := b.buckets[idx]
	if head == nil || head.used == blockEntries {
		nb, err := b.getBlock()
		if err != nil {
			return err
		}
		nb.next = head
		b.buckets[idx] = nb
		head = nb
	}
	head.entries[head.used] = e
	head.used++
	return nil
}

func (b *Big) getBlock() (*block, error) {
	if blk := b.free; blk != nil {
		b.free = blk.next
		blk.next = nil
		blk.used = 0
		return blk, nil
	}
	if b.gate != nil && !b.gate.TryAcquireMemory(blockBytes) {
		return nil, ErrPoolExhausted
	}
	b.allocated += blockBytes
	return new(block), nil
}

func (b *Big) recycle(blk *block) {
	blk.used = 0
	blk.next = b.free
	b.free = blk
}

// Close releases the pool's memory accounting. The Big tier must not be
// used afterwards.
func (b *Big) Close() {
	if b.gate != nil && b.allocated > 0 {
		b.gate.ReleaseMemory(b.allocated)
	}
	b.allocated = 0
	b.free = nil
	for i := range b.buckets {
		b.buckets[i] = nil
	}
}
