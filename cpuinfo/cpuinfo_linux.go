//go:build linux

package cpuinfo

import (
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

const sysCPU = "/sys/devices/system/cpu"

func detect() *CPUInfo {
	c := &CPUInfo{}

	c.Threads = countThreads()
	c.Cores = countCores()

	// Cache levels of cpu0 stand in for the whole machine, as on any
	// common symmetric topology.
	base := sysCPU + "/cpu0/cache"
	entries, err := os.ReadDir(base)
	if err == nil {
		for _, e := range entries {
			if !strings.HasPrefix(e.Name(), "index") {
				continue
			}
			dir := base + "/" + e.Name()
			typ := readString(dir + "/type")
			if typ != "Data" && typ != "Unified" {
				continue
			}
			size := readSize(dir + "/size")
			sharing := sharedThreads(dir)
			switch readString(dir + "/level") {
			case "1":
				c.L1CacheSize = size
			case "2":
				c.L2CacheSize = size
				c.L2Sharing = sharing
			case "3":
				c.L3CacheSize = size
				c.L3Sharing = sharing
			}
		}
	}

	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err == nil {
		c.TotalMemory = uint64(si.Totalram) * uint64(si.Unit)
	}

	return c
}

// countThreads counts the online cpuN directories.
func countThreads() int {
	entries, err := os.ReadDir(sysCPU)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "cpu") {
			continue
		}
		if _, err := strconv.Atoi(name[3:]); err == nil {
			n++
		}
	}
	return n
}

// countCores counts distinct (package, core) pairs.
func countCores() int {
	entries, err := os.ReadDir(sysCPU)
	if err != nil {
		return 0
	}
	cores := make(map[string]struct{})
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "cpu") {
			continue
		}
		if _, err := strconv.Atoi(name[3:]); err != nil {
			continue
		}
		topo := sysCPU + "/" + name + "/topology"
		pkg := readString(topo + "/physical_package_id")
		core := readString(topo + "/core_id")
		if pkg == "" || core == "" {
			continue
		}
		cores[pkg+":"+core] = struct{}{}
	}
	return len(cores)
}

// sharedThreads counts the hardware threads sharing one cache instance,
// preferring the human-readable thread list over the hex thread map.
func sharedThreads(dir string) uint64 {
	if n := parseThreadList(readString(dir + "/shared_cpu_list")); n > 0 {
		return n
	}
	return parseThreadMap(readString(dir + "/shared_cpu_map"))
}

// parseThreadList parses a kernel cpulist such as "0-3,8-11".
func parseThreadList(s string) uint64 {
	if s == "" {
		return 0
	}
	var threads uint64
	for _, tok := range strings.Split(s, ",") {
		lo, hi, ok := strings.Cut(tok, "-")
		if !ok {
			if _, err := strconv.ParseUint(tok, 10, 64); err == nil {
				threads++
			}
			continue
		}
		l, err1 := strconv.ParseUint(lo, 10, 64)
		h, err2 := strconv.ParseUint(hi, 10, 64)
		if err1 != nil || err2 != nil || h < l {
			return 0
		}
		threads += h - l + 1
	}
	return threads
}

// parseThreadMap counts set bits in a kernel cpumask such as "ff,00000fff".
func parseThreadMap(s string) uint64 {
	var threads uint64
	for _, tok := range strings.Split(s, ",") {
		for _, ch := range tok {
			v, err := strconv.ParseUint(string(ch), 16, 8)
			if err != nil {
				return 0
			}
			for ; v > 0; threads++ {
				v &= v - 1
			}
		}
	}
	return threads
}

// readSize reads a cache size file; the value may carry a K/M/G suffix.
func readSize(path string) uint64 {
	s := readString(path)
	if s == "" {
		return 0
	}
	mult := uint64(1)
	switch s[len(s)-1] {
	case 'K':
		mult = 1 << 10
		s = s[:len(s)-1]
	case 'M':
		mult = 1 << 20
		s = s[:len(s)-1]
	case 'G':
		mult = 1 << 30
		s = s[:len(s)-1]
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return v * mult
}

func readString(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
