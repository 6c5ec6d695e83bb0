package sieve

// Segment sizing policy. A sieve byte covers 30 integers, so a buffer that
// stays resident in L1 keeps the small/medium crossing loops cache-bound.
const (
	// MinSegmentBytes is the absolute lower clamp for explicit overrides.
	// Tiny segments are mainly useful in tests.
	MinSegmentBytes = 64
	// MaxSegmentBytes caps the buffer so a single segment never grows
	// past L2-sized working sets.
	MaxSegmentBytes = 4 << 20
	// DefaultSegmentBytes is used when no topology data is available.
	DefaultSegmentBytes = 32 << 10
	// minAutoSegmentBytes is the floor for topology-derived sizes;
	// implausibly small readings are treated as detection noise.
	minAutoSegmentBytes = 16 << 10
)

// ChooseSegmentBytes picks the segment buffer size. A positive override
// wins (clamped to the absolute bounds); otherwise the cache hint is used,
// falling back to a conservative default when the topology is unknown.
func ChooseSegmentBytes(cacheHint uint64, override int) int {
	if override > 0 {
		return clamp(override, MinSegmentBytes, MaxSegmentBytes)
	}
	if cacheHint > 0 {
		return clamp(int(cacheHint), minAutoSegmentBytes, MaxSegmentBytes)
	}
	return DefaultSegmentBytes
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
