package primeset

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var smallPrimes = []uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47}

func TestSetBasics(t *testing.T) {
	s := FromSlice(smallPrimes)

	assert.Equal(t, uint64(len(smallPrimes)), s.Cardinality())
	assert.True(t, s.Contains(29))
	assert.False(t, s.Contains(30))

	s.Add(53)
	assert.True(t, s.Contains(53))
}

func TestSetAlgebra(t *testing.T) {
	a := FromSlice([]uint64{2, 3, 5, 7, 11})
	b := FromSlice([]uint64{7, 11, 13, 17})

	inter := a.Intersect(b)
	assert.Equal(t, uint64(2), inter.Cardinality())
	assert.True(t, inter.Contains(7))
	assert.True(t, inter.Contains(11))

	union := a.Union(b)
	assert.Equal(t, uint64(7), union.Cardinality())
	assert.True(t, union.Contains(2))
	assert.True(t, union.Contains(17))
}

func TestSetAll(t *testing.T) {
	s := FromSlice([]uint64{13, 2, 7, 5, 3, 11})

	var got []uint64
	for p := range s.All() {
		got = append(got, p)
	}
	assert.Equal(t, []uint64{2, 3, 5, 7, 11, 13}, got)

	// Early break must not panic or loop forever.
	count := 0
	for range s.All() {
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(t, 3, count)
}

func TestRoundTrip(t *testing.T) {
	primes := make([]uint64, 0, 2048)
	for _, p := range smallPrimes {
		primes = append(primes, p)
		// Spread values over the uint64 range to exercise multiple
		// roaring containers.
		primes = append(primes, p+1<<32, p+1<<48)
	}
	s := FromSlice(primes)

	for _, tc := range []struct {
		name        string
		compression Compression
	}{
		{"none", CompressionNone},
		{"lz4", CompressionLZ4},
		{"zstd", CompressionZSTD},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			written, err := s.WriteTo(&buf, tc.compression)
			require.NoError(t, err)
			assert.Equal(t, int64(buf.Len()), written)

			got, read, err := ReadFrom(&buf)
			require.NoError(t, err)
			assert.Equal(t, written, read)

			assert.Equal(t, s.Cardinality(), got.Cardinality())
			for _, p := range primes {
				assert.True(t, got.Contains(p), "missing %d", p)
			}
		})
	}
}

func TestReadFromRejectsGarbage(t *testing.T) {
	_, _, err := ReadFrom(bytes.NewReader([]byte("not a primeset at all")))
	assert.ErrorIs(t, err, ErrFormat)
}
