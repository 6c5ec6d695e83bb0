package sieve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countRange(t *testing.T, start, stop uint64, segBytes int) uint64 {
	t.Helper()
	ctx := context.Background()
	primes, err := SievingPrimes(ctx, stop)
	require.NoError(t, err)
	eng, err := NewEngine(Config{Start: start, Stop: stop, SegmentBytes: segBytes}, primes)
	require.NoError(t, err)
	n, err := eng.Count(ctx)
	require.NoError(t, err)
	return n
}

func collectRange(t *testing.T, start, stop uint64, segBytes int) []uint64 {
	t.Helper()
	ctx := context.Background()
	primes, err := SievingPrimes(ctx, stop)
	require.NoError(t, err)
	eng, err := NewEngine(Config{Start: start, Stop: stop, SegmentBytes: segBytes}, primes)
	require.NoError(t, err)
	var out []uint64
	require.NoError(t, eng.Generate(ctx, func(p uint64) bool {
		out = append(out, p)
		return true
	}))
	return out
}

func isPrimeNaive(n uint64) bool {
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

func TestCountKnownValues(t *testing.T) {
	pi := map[uint64]uint64{
		0:       0,
		1:       0,
		2:       1,
		10:      4,
		100:     25,
		1000:    168,
		10000:   1229,
		100000:  9592,
		1000000: 78498,
	}
	for stop, want := range pi {
		assert.Equal(t, want, countRange(t, 0, stop, 4096), "pi(%d)", stop)
	}
}

func TestGenerateSmallRange(t *testing.T) {
	want := []uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47}
	assert.Equal(t, want, collectRange(t, 0, 47, 1024))
	assert.Equal(t, want, collectRange(t, 2, 49, 1024))
	assert.Equal(t, want[4:], collectRange(t, 8, 50, 1024))
}

func TestSegmentSizeInvariance(t *testing.T) {
	ranges := [][2]uint64{
		{0, 200000},
		{999000, 1200000},
		{17, 17},
		{1, 100},
	}
	sizes := []int{64, 256, 1024, 32768}

	for _, r := range ranges {
		ref := countRange(t, r[0], r[1], sizes[0])
		for _, size := range sizes[1:] {
			assert.Equal(t, ref, countRange(t, r[0], r[1], size),
				"count [%d,%d] changed at segment size %d", r[0], r[1], size)
		}
	}
}

func TestOffsetRangeAgainstTrialDivision(t *testing.T) {
	const start, stop = 1000000, 1030000
	got := collectRange(t, start, stop, 256)

	var want []uint64
	for n := uint64(start); n <= stop; n++ {
		if isPrimeNaive(n) {
			want = append(want, n)
		}
	}
	assert.Equal(t, want, got)
}

func TestHighRangeConsistency(t *testing.T) {
	const start = uint64(1) << 40
	const stop = start + 100000

	a := collectRange(t, start, stop, 1024)
	b := collectRange(t, start, stop, 64<<10)
	require.Equal(t, a, b, "segment size must not change output")

	for i := 1; i < len(a); i++ {
		require.Greater(t, a[i], a[i-1], "output must be strictly ascending")
	}
	assert.Equal(t, uint64(len(a)), countRange(t, start, stop, 1024))
}

func TestGenerateEarlyStop(t *testing.T) {
	ctx := context.Background()
	primes, err := SievingPrimes(ctx, 1000000)
	require.NoError(t, err)
	eng, err := NewEngine(Config{Start: 0, Stop: 1000000, SegmentBytes: 4096}, primes)
	require.NoError(t, err)

	var seen []uint64
	require.NoError(t, eng.Generate(ctx, func(p uint64) bool {
		seen = append(seen, p)
		return len(seen) < 10
	}))
	assert.Equal(t, []uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}, seen)
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	primes, err := SievingPrimes(context.Background(), 1000)
	require.NoError(t, err)
	eng, err := NewEngine(Config{Start: 0, Stop: 1000, SegmentBytes: 64}, primes)
	require.NoError(t, err)

	_, err = eng.Count(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngineRunsOnce(t *testing.T) {
	eng, err := NewEngine(Config{Start: 0, Stop: 100, SegmentBytes: 64}, nil)
	require.NoError(t, err)

	_, err = eng.Count(context.Background())
	require.NoError(t, err)

	_, err = eng.Count(context.Background())
	assert.Error(t, err)
}

func TestSievingPrimesBootstrap(t *testing.T) {
	ctx := context.Background()

	t.Run("SmallStop", func(t *testing.T) {
		primes, err := SievingPrimes(ctx, 100)
		require.NoError(t, err)
		// sqrt(100) = 10: every needed prime is wheel/pre-sieve covered.
		assert.Empty(t, primes)
	})

	t.Run("SimplePath", func(t *testing.T) {
		primes, err := SievingPrimes(ctx, 1000000)
		require.NoError(t, err)
		require.NotEmpty(t, primes)
		assert.Equal(t, uint64(19), primes[0])
		assert.Equal(t, uint64(997), primes[len(primes)-1])
		assert.Len(t, primes, 168-7) // pi(1000) minus the wheel/pre-sieve primes
	})

	t.Run("NestedPath", func(t *testing.T) {
		// sqrt(stop) > 2^16 forces the nested engine.
		stop := uint64(1) << 34
		primes, err := SievingPrimes(ctx, stop)
		require.NoError(t, err)
		require.NotEmpty(t, primes)
		assert.Equal(t, uint64(19), primes[0])
		root := ISqrt(stop)
		last := primes[len(primes)-1]
		assert.LessOrEqual(t, last, root)
		assert.True(t, isPrimeNaive(last))
		// The nested set must agree with a directly computed count.
		assert.Equal(t, countRange(t, 19, root, 4096), uint64(len(primes)))
	})
}

func TestChooseSegmentBytes(t *testing.T) {
	assert.Equal(t, DefaultSegmentBytes, ChooseSegmentBytes(0, 0))
	assert.Equal(t, 64<<10, ChooseSegmentBytes(64<<10, 0))
	assert.Equal(t, minAutoSegmentBytes, ChooseSegmentBytes(512, 0), "bogus topology reading is clamped")
	assert.Equal(t, MaxSegmentBytes, ChooseSegmentBytes(64<<20, 0))
	assert.Equal(t, 128, ChooseSegmentBytes(64<<10, 128), "override wins")
	assert.Equal(t, MinSegmentBytes, ChooseSegmentBytes(0, 1))
}

func TestISqrt(t *testing.T) {
	cases := map[uint64]uint64{
		0:         0,
		1:         1,
		3:         1,
		4:         2,
		15:        3,
		16:        4,
		1 << 32:   1 << 16,
		MaxStop:   (1 << 32) - 1,
		1<<62 - 1: 2147483647,
		99980001:  9999,
		99980000:  9998,
	}
	for n, want := range cases {
		assert.Equal(t, want, ISqrt(n), "isqrt(%d)", n)
	}
}

func TestProgressCallback(t *testing.T) {
	var calls int
	var lastDone, lastTotal uint64
	eng, err := NewEngine(Config{
		Start:        0,
		Stop:         100000,
		SegmentBytes: 256,
		OnSegment: func(done, total uint64) {
			calls++
			lastDone, lastTotal = done, total
		},
	}, mustPrimes(t, 100000))
	require.NoError(t, err)

	_, err = eng.Count(context.Background())
	require.NoError(t, err)
	assert.Positive(t, calls)
	assert.Equal(t, lastTotal, lastDone, "final callback reports completion")
}

func mustPrimes(t *testing.T, stop uint64) []uint64 {
	t.Helper()
	primes, err := SievingPrimes(context.Background(), stop)
	require.NoError(t, err)
	return primes
}
