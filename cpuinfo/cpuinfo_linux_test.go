//go:build linux

package cpuinfo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseThreadList(t *testing.T) {
	assert.Equal(t, uint64(1), parseThreadList("0"))
	assert.Equal(t, uint64(4), parseThreadList("0-3"))
	assert.Equal(t, uint64(8), parseThreadList("0-3,8-11"))
	assert.Equal(t, uint64(3), parseThreadList("0,4,9"))
	assert.Zero(t, parseThreadList(""))
	assert.Zero(t, parseThreadList("3-1"))
}

func TestParseThreadMap(t *testing.T) {
	assert.Equal(t, uint64(8), parseThreadMap("ff"))
	assert.Equal(t, uint64(16), parseThreadMap("f,00000fff"))
	assert.Zero(t, parseThreadMap("zz"))
}

func TestReadSizeSuffixes(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	assert.Equal(t, uint64(32<<10), readSize(write("k", "32K\n")))
	assert.Equal(t, uint64(8<<20), readSize(write("m", "8M\n")))
	assert.Equal(t, uint64(1<<30), readSize(write("g", "1G\n")))
	assert.Equal(t, uint64(12345), readSize(write("raw", "12345")))
	assert.Zero(t, readSize(write("bad", "soon")))
	assert.Zero(t, readSize(filepath.Join(dir, "missing")))
}
