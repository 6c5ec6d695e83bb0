package primego

import (
	"errors"
	"fmt"

	"github.com/hupe1980/primego/internal/erat"
	"github.com/hupe1980/primego/internal/sieve"
)

var (
	// ErrInvalidN is returned when NthPrime is called with n == 0.
	ErrInvalidN = errors.New("n must be positive")

	// ErrPoolExhausted is returned when a run cannot obtain sieve memory
	// within the configured limit (see WithMemoryLimit).
	ErrPoolExhausted = errors.New("sieve memory budget exhausted")

	// ErrOverflow is returned when a result would exceed the supported
	// number range, e.g. an nth-prime search running past 2^64 - 1.
	ErrOverflow = errors.New("result exceeds the supported range")
)

// ErrInvalidRange indicates a range with start > stop.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidRange struct {
	Start uint64
	Stop  uint64
	cause error
}

func (e *ErrInvalidRange) Error() string {
	return fmt.Sprintf("invalid range: start %d > stop %d", e.Start, e.Stop)
}

func (e *ErrInvalidRange) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Resource exhaustion unification.
	if errors.Is(err, erat.ErrPoolExhausted) {
		return fmt.Errorf("%w: %w", ErrPoolExhausted, err)
	}
	if errors.Is(err, sieve.ErrSegmentBuffer) {
		return fmt.Errorf("%w: %w", ErrPoolExhausted, err)
	}

	return err
}
