package primego

import (
	"context"
	"fmt"
	"iter"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hupe1980/primego/cpuinfo"
	"github.com/hupe1980/primego/internal/sieve"
	"github.com/hupe1980/primego/primeset"
	"github.com/hupe1980/primego/resource"
)

// MaxStop is the largest usable (exclusive) stop value.
const MaxStop = math.MaxUint64

// progressInterval is the minimum spacing between progress callbacks.
const progressInterval = 100 * time.Millisecond

// Sieve is a configured prime sieve. It carries tuning (segment size,
// thread count, memory limit) and observability hooks; the sieve itself
// holds no state between operations and is safe for concurrent use.
type Sieve struct {
	segmentBytes int
	threads      int
	ctrl         *resource.Controller
	logger       *Logger
	metrics      MetricsCollector
	progressFunc func(percentDone float64)
}

// New creates a Sieve. Without options, tuning is derived from the CPU's
// cache topology and all observability hooks are disabled.
func New(optFns ...Option) (*Sieve, error) {
	o := applyOptions(optFns)

	cpu := o.cpu
	if cpu == nil {
		cpu = cpuinfo.Detect()
	}

	segmentBytes := sieve.ChooseSegmentBytes(cpu.SegmentSizeHint(), o.segmentBytes)
	if o.memoryLimit > 0 && o.memoryLimit < int64(segmentBytes) {
		// No run can start without at least one segment buffer.
		return nil, fmt.Errorf("%w: memory limit %d below segment size %d", ErrPoolExhausted, o.memoryLimit, segmentBytes)
	}

	threads := o.threads
	if threads <= 0 {
		threads = cpu.IdealThreadCount()
	}

	return &Sieve{
		segmentBytes: segmentBytes,
		threads:      threads,
		ctrl:         resource.NewController(resource.Config{MemoryLimitBytes: o.memoryLimit}),
		logger:       o.logger,
		metrics:      o.metricsCollector,
		progressFunc: o.progressFunc,
	}, nil
}

// SegmentBytes returns the effective segment buffer size in bytes.
func (s *Sieve) SegmentBytes() int { return s.segmentBytes }

// Threads returns the worker count used for parallel operations.
func (s *Sieve) Threads() int { return s.threads }

// MemoryUsage returns the sieve memory currently held by running
// operations, in bytes.
func (s *Sieve) MemoryUsage() int64 { return s.ctrl.MemoryUsage() }

// Count returns the number of primes in the half-open range [start, stop).
// Large ranges are counted in parallel across Threads() workers.
func (s *Sieve) Count(ctx context.Context, start, stop uint64) (uint64, error) {
	begin := time.Now()
	n, err := s.count(ctx, start, stop)
	err = translateError(err)

	s.metrics.RecordCount(time.Since(begin), err)
	s.logger.LogCount(ctx, start, stop, n, err)

	if err != nil {
		return 0, err
	}
	return n, nil
}

// Generate calls yield with every prime in [start, stop) in ascending
// order. A false return from yield ends the run early without error.
//
// In parallel mode each worker sieves a tile of the range and buffers its
// primes; tiles are emitted strictly in range order, so the caller still
// observes one ascending stream.
func (s *Sieve) Generate(ctx context.Context, start, stop uint64, yield func(p uint64) bool) error {
	begin := time.Now()
	err := translateError(s.generate(ctx, start, stop, yield))

	s.metrics.RecordGenerate(time.Since(begin), err)
	s.logger.LogGenerate(ctx, start, stop, err)

	return err
}

// Primes returns a lazy iterator over the primes in [start, stop) in
// ascending order. Errors cannot surface through the iterator; a failed
// run logs the error and ends the sequence early. Use Generate when the
// error matters.
func (s *Sieve) Primes(ctx context.Context, start, stop uint64) iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		if err := s.Generate(ctx, start, stop, yield); err != nil {
			s.logger.ErrorContext(ctx, "prime iteration aborted",
				"start", start,
				"stop", stop,
				"error", err,
			)
		}
	}
}

// NthPrime returns the nth prime greater than or equal to start, with n
// counted from 1: NthPrime(ctx, 1, 2) == 2. The search sieves forward
// from start using an analytic window guess and extends on shortfall.
func (s *Sieve) NthPrime(ctx context.Context, n uint64, start uint64) (uint64, error) {
	begin := time.Now()
	p, err := s.nthPrime(ctx, n, start)
	err = translateError(err)

	s.metrics.RecordNthPrime(time.Since(begin), err)
	s.logger.LogNthPrime(ctx, n, start, p, err)

	if err != nil {
		return 0, err
	}
	return p, nil
}

// CollectBitmap returns the primes in [start, stop) as a 64-bit Roaring
// bitmap. The ascending fill order keeps the bitmap's internal runs
// optimal.
func (s *Sieve) CollectBitmap(ctx context.Context, start, stop uint64) (*roaring64.Bitmap, error) {
	begin := time.Now()
	bm := roaring64.New()
	err := translateError(s.generate(ctx, start, stop, func(p uint64) bool {
		bm.Add(p)
		return true
	}))

	s.metrics.RecordGenerate(time.Since(begin), err)
	s.logger.LogGenerate(ctx, start, stop, err)

	if err != nil {
		return nil, err
	}
	return bm, nil
}

// PrimeSet returns the primes in [start, stop) as a primeset.Set, ready
// for set algebra or block-compressed serialization.
func (s *Sieve) PrimeSet(ctx context.Context, start, stop uint64) (*primeset.Set, error) {
	bm, err := s.CollectBitmap(ctx, start, stop)
	if err != nil {
		return nil, err
	}
	return primeset.FromBitmap(bm), nil
}

func (s *Sieve) count(ctx context.Context, start, stop uint64) (uint64, error) {
	if start > stop {
		return 0, &ErrInvalidRange{Start: start, Stop: stop}
	}
	if start == stop {
		return 0, nil
	}
	stopIncl := stop - 1

	primes, err := sieve.SievingPrimes(ctx, stopIncl)
	if err != nil {
		return 0, err
	}

	tiles := s.tiles(start, stopIncl)
	prog := s.newProgress(s.totalSegments(tiles))
	defer func() { s.metrics.RecordSegments(prog.segments()) }()

	if len(tiles) == 1 {
		eng, err := sieve.NewEngine(s.engineConfig(tiles[0], prog), primes)
		if err != nil {
			return 0, err
		}
		n, err := eng.Count(ctx)
		if err != nil {
			return 0, err
		}
		prog.finish()
		return n, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	var cursor atomic.Int64
	var total atomic.Uint64

	for w := 0; w < min(s.threads, len(tiles)); w++ {
		g.Go(func() error {
			for {
				i := int(cursor.Add(1)) - 1
				if i >= len(tiles) {
					return nil
				}
				eng, err := sieve.NewEngine(s.engineConfig(tiles[i], prog), primes)
				if err != nil {
					return err
				}
				n, err := eng.Count(gctx)
				if err != nil {
					return err
				}
				total.Add(n)
			}
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	prog.finish()
	return total.Load(), nil
}

func (s *Sieve) generate(ctx context.Context, start, stop uint64, yield func(p uint64) bool) error {
	if start > stop {
		return &ErrInvalidRange{Start: start, Stop: stop}
	}
	if start == stop {
		return nil
	}
	stopIncl := stop - 1

	primes, err := sieve.SievingPrimes(ctx, stopIncl)
	if err != nil {
		return err
	}

	tiles := s.tiles(start, stopIncl)
	prog := s.newProgress(s.totalSegments(tiles))
	defer func() { s.metrics.RecordSegments(prog.segments()) }()

	if len(tiles) == 1 {
		eng, err := sieve.NewEngine(s.engineConfig(tiles[0], prog), primes)
		if err != nil {
			return err
		}
		if err := eng.Generate(ctx, yield); err != nil {
			return err
		}
		prog.finish()
		return nil
	}

	// Ordered parallel delivery: sieve one batch of tiles concurrently,
	// then emit the buffered results in tile order before starting the
	// next batch.
	workers := min(s.threads, len(tiles))
	for base := 0; base < len(tiles); base += workers {
		end := min(base+workers, len(tiles))
		results := make([][]uint64, end-base)

		g, gctx := errgroup.WithContext(ctx)
		for i := base; i < end; i++ {
			g.Go(func() error {
				eng, err := sieve.NewEngine(s.engineConfig(tiles[i], prog), primes)
				if err != nil {
					return err
				}
				var buf []uint64
				err = eng.Generate(gctx, func(p uint64) bool {
					buf = append(buf, p)
					return true
				})
				if err != nil {
					return err
				}
				results[i-base] = buf
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for _, buf := range results {
			for _, p := range buf {
				if !yield(p) {
					return nil
				}
			}
		}
	}
	prog.finish()
	return nil
}

func (s *Sieve) nthPrime(ctx context.Context, n uint64, start uint64) (uint64, error) {
	if n == 0 {
		return 0, ErrInvalidN
	}

	remaining := n
	lo := start
	width := nthPrimeWidthGuess(n, start)

	for {
		hi := lo + width
		if hi < lo { // saturate at the top of the range
			hi = MaxStop
		}

		var last uint64
		err := s.generate(ctx, lo, hi, func(p uint64) bool {
			remaining--
			last = p
			return remaining > 0
		})
		if err != nil {
			return 0, err
		}
		if remaining == 0 {
			return last, nil
		}
		if hi == MaxStop {
			return 0, ErrOverflow
		}
		lo = hi
		width *= 2
	}
}

// nthPrimeWidthGuess estimates a window wide enough to hold the next n
// primes after start. The average prime gap near x is ln x; shortfalls
// are handled by the extension loop, so the guess only has to be sane.
func nthPrimeWidthGuess(n, start uint64) uint64 {
	f := float64(n)
	if f < 10 {
		f = 10
	}
	gap := math.Log(float64(start) + f*math.Log(f))
	if gap < 2 {
		gap = 2
	}
	return uint64(1.2*f*gap) + 1000
}

// tile is an inclusive sub-range handed to one engine.
type tile struct {
	start, stop uint64
}

// tiles cuts the inclusive range [start, stopIncl] into equal-width tiles
// for the worker pool. Oversubscription (more tiles than workers) lets
// the shared cursor absorb density imbalance between tiles. Ranges too
// small to amortize per-tile setup get a single tile.
func (s *Sieve) tiles(start, stopIncl uint64) []tile {
	width := stopIncl - start + 1
	span := 30 * uint64(s.segmentBytes)

	// A tile below a few segments spends more time bootstrapping its
	// engine than sieving.
	minTileWidth := 4 * span
	if s.threads <= 1 || width == 0 || width/2 < minTileWidth {
		return []tile{{start: start, stop: stopIncl}}
	}

	n := uint64(s.threads) * 4
	if maxTiles := width / minTileWidth; n > maxTiles {
		n = maxTiles
	}
	if n <= 1 {
		return []tile{{start: start, stop: stopIncl}}
	}

	tw := width / n
	ts := make([]tile, 0, n)
	lo := start
	for i := uint64(0); i < n; i++ {
		hi := lo + tw - 1
		if i == n-1 {
			hi = stopIncl
		}
		ts = append(ts, tile{start: lo, stop: hi})
		lo = hi + 1
	}
	return ts
}

func (s *Sieve) engineConfig(t tile, prog *progressTracker) sieve.Config {
	return sieve.Config{
		Start:        t.start,
		Stop:         t.stop,
		SegmentBytes: s.segmentBytes,
		Gate:         s.ctrl,
		OnSegment:    prog.onSegment,
	}
}

// totalSegments predicts the segment count of a run for progress scaling.
func (s *Sieve) totalSegments(tiles []tile) uint64 {
	span := 30 * uint64(s.segmentBytes)
	var n uint64
	for _, t := range tiles {
		base := t.start - t.start%30
		n += (t.stop-base)/span + 1
	}
	return n
}

// progressTracker counts finished segments across all workers of one run
// and forwards rate-limited percentages to the caller.
type progressTracker struct {
	fn        func(float64)
	total     uint64
	done      atomic.Uint64
	sometimes rate.Sometimes
}

func (s *Sieve) newProgress(total uint64) *progressTracker {
	if total == 0 {
		total = 1
	}
	return &progressTracker{
		fn:        s.progressFunc,
		total:     total,
		sometimes: rate.Sometimes{Interval: progressInterval},
	}
}

// onSegment is passed to every engine of the run. The per-engine counters
// are ignored; progress is global.
func (t *progressTracker) onSegment(done, total uint64) {
	d := t.done.Add(1)
	if t.fn == nil {
		return
	}
	t.sometimes.Do(func() {
		pct := 100 * float64(d) / float64(t.total)
		if pct > 100 {
			pct = 100
		}
		t.fn(pct)
	})
}

func (t *progressTracker) finish() {
	if t.fn != nil {
		t.fn(100)
	}
}

func (t *progressTracker) segments() uint64 { return t.done.Load() }

// Package-level convenience wrappers share one default Sieve.
var defaultSieve = sync.OnceValues(func() (*Sieve, error) {
	return New()
})

// Count counts the primes in [start, stop) using the default sieve.
func Count(ctx context.Context, start, stop uint64) (uint64, error) {
	s, err := defaultSieve()
	if err != nil {
		return 0, err
	}
	return s.Count(ctx, start, stop)
}

// Generate delivers the primes in [start, stop) using the default sieve.
func Generate(ctx context.Context, start, stop uint64, yield func(p uint64) bool) error {
	s, err := defaultSieve()
	if err != nil {
		return err
	}
	return s.Generate(ctx, start, stop, yield)
}

// Primes iterates the primes in [start, stop) using the default sieve.
func Primes(ctx context.Context, start, stop uint64) iter.Seq[uint64] {
	s, err := defaultSieve()
	if err != nil {
		return func(func(uint64) bool) {}
	}
	return s.Primes(ctx, start, stop)
}

// NthPrime finds the nth prime at or above start using the default sieve.
func NthPrime(ctx context.Context, n uint64, start uint64) (uint64, error) {
	s, err := defaultSieve()
	if err != nil {
		return 0, err
	}
	return s.NthPrime(ctx, n, start)
}
