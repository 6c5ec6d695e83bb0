// Package cpuinfo reports CPU cache and topology data used to tune the
// sieve: cache sizes pick the segment buffer size, thread counts pick the
// parallel worker count.
//
// Detection is strictly best effort. A field that cannot be determined is
// left zero and the consumers fall back to conservative defaults; Detect
// never fails.
package cpuinfo

import "runtime"

// CPUInfo is an immutable snapshot of the machine's cache topology.
// Construct it once via Detect and pass it by reference; there is no
// hidden process-wide singleton.
type CPUInfo struct {
	// Cache sizes in bytes. 0 means unknown.
	L1CacheSize uint64
	L2CacheSize uint64
	L3CacheSize uint64

	// Number of hardware threads sharing one cache instance. 0 means unknown.
	L2Sharing uint64
	L3Sharing uint64

	// Physical cores and hardware threads. 0 means unknown.
	Cores   int
	Threads int

	// TotalMemory is the machine's physical RAM in bytes. 0 means unknown.
	TotalMemory uint64
}

// Detect queries the platform backend and returns a fresh snapshot.
func Detect() *CPUInfo {
	c := detect()
	if c == nil {
		c = &CPUInfo{}
	}
	if c.Threads <= 0 {
		c.Threads = runtime.NumCPU()
	}
	return c
}

// hasL1 reports whether the L1 reading is plausible (4 KiB .. 1 GiB).
func (c *CPUInfo) hasL1() bool {
	return c.L1CacheSize >= 1<<12 && c.L1CacheSize <= 1<<30
}

// hasL2 reports whether the L2 reading is plausible.
func (c *CPUInfo) hasL2() bool {
	return c.L2CacheSize >= 1<<12 && c.L2CacheSize <= 1<<40
}

// SegmentSizeHint suggests a segment buffer size in bytes, or 0 when the
// topology is unknown. Sieving is fastest when the buffer stays resident
// in a fast private cache: L1 when known, otherwise each thread's share of
// the L2.
func (c *CPUInfo) SegmentSizeHint() uint64 {
	if c == nil {
		return 0
	}
	if c.hasL1() {
		return c.L1CacheSize
	}
	if c.hasL2() {
		if c.L2Sharing > 1 {
			return c.L2CacheSize / c.L2Sharing
		}
		return c.L2CacheSize
	}
	return 0
}

// IdealThreadCount suggests the worker count for a parallel run.
func (c *CPUInfo) IdealThreadCount() int {
	if c == nil || c.Threads <= 0 {
		return runtime.NumCPU()
	}
	return c.Threads
}
