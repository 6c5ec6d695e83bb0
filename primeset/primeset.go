// Package primeset provides a compact, serializable set of prime numbers.
//
// A Set wraps a 64-bit Roaring bitmap: membership tests, set algebra and
// iteration stay cheap even for millions of primes, and the serialized
// form is block-compressed for exchange or caching by the caller. The
// sieve engine itself keeps no state; a Set is an explicit artifact the
// caller chooses to build (see primego.PrimeSet).
package primeset

import (
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

var (
	// ErrFormat is returned when serialized data does not start with a
	// valid primeset header.
	ErrFormat = errors.New("primeset: invalid format")
	// ErrTooLarge is returned when a bitmap exceeds the 4 GiB payload
	// bound of the serialization format.
	ErrTooLarge = errors.New("primeset: serialized bitmap too large")
)

// Set is a set of uint64 primes. It is not safe for concurrent mutation.
type Set struct {
	bm *roaring64.Bitmap
}

// New creates an empty set.
func New() *Set {
	return &Set{bm: roaring64.New()}
}

// FromSlice creates a set holding the given values.
func FromSlice(primes []uint64) *Set {
	s := New()
	s.bm.AddMany(primes)
	return s
}

// FromBitmap wraps an existing bitmap without copying. The caller must not
// mutate bm afterwards.
func FromBitmap(bm *roaring64.Bitmap) *Set {
	if bm == nil {
		bm = roaring64.New()
	}
	return &Set{bm: bm}
}

// Add inserts p.
func (s *Set) Add(p uint64) { s.bm.Add(p) }

// Contains reports whether p is in the set.
func (s *Set) Contains(p uint64) bool { return s.bm.Contains(p) }

// Cardinality returns the number of primes in the set.
func (s *Set) Cardinality() uint64 { return s.bm.GetCardinality() }

// Bitmap exposes the underlying roaring bitmap. Treat it as read-only.
func (s *Set) Bitmap() *roaring64.Bitmap { return s.bm }

// Intersect returns the primes present in both sets.
func (s *Set) Intersect(other *Set) *Set {
	return &Set{bm: roaring64.And(s.bm, other.bm)}
}

// Union returns the primes present in either set.
func (s *Set) Union(other *Set) *Set {
	return &Set{bm: roaring64.Or(s.bm, other.bm)}
}

// All iterates the set in ascending order.
func (s *Set) All() iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		it := s.bm.Iterator()
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}

// Serialization format:
//
//	magic   [4]byte "PSET"
//	version uint8 (1)
//	block   compressed block (see compression.go) holding the roaring
//	        bitmap's standard binary form

var magic = [4]byte{'P', 'S', 'E', 'T'}

const formatVersion = 1

// WriteTo serializes the set with the given compression.
func (s *Set) WriteTo(w io.Writer, compression Compression) (int64, error) {
	payload, err := s.bm.MarshalBinary()
	if err != nil {
		return 0, fmt.Errorf("primeset: marshal bitmap: %w", err)
	}

	header := [5]byte{magic[0], magic[1], magic[2], magic[3], formatVersion}
	n, err := w.Write(header[:])
	written := int64(n)
	if err != nil {
		return written, err
	}

	bn, err := writeBlock(w, payload, compression)
	written += bn
	if err != nil {
		return written, err
	}
	return written, nil
}

// ReadFrom deserializes a set previously written with WriteTo.
func ReadFrom(r io.Reader) (*Set, int64, error) {
	var header [5]byte
	n, err := io.ReadFull(r, header[:])
	read := int64(n)
	if err != nil {
		return nil, read, err
	}
	if [4]byte(header[:4]) != magic || header[4] != formatVersion {
		return nil, read, ErrFormat
	}

	payload, bn, err := readBlock(r)
	read += bn
	if err != nil {
		return nil, read, err
	}

	bm := roaring64.New()
	if err := bm.UnmarshalBinary(payload); err != nil {
		return nil, read, fmt.Errorf("primeset: unmarshal bitmap: %w", err)
	}
	return &Set{bm: bm}, read, nil
}
