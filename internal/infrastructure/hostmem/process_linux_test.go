//go:build linux

package hostmem

import (
	"bufio"
	"os"
	"strings"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess_ReadsOwnMemory(t *testing.T) {
	proc, err := OpenProcess(os.Getpid())
	require.NoError(t, err)

	src := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	addr := uint64(uintptr(unsafe.Pointer(&src[0])))

	dst := make([]byte, len(src))
	if err := proc.ReadAt(dst, addr); err != nil {
		t.Skipf("process_vm_readv unavailable: %v", err)
	}
	assert.Equal(t, src, dst)

	require.NoError(t, proc.WriteAt([]byte{9, 9}, addr))
	assert.Equal(t, byte(9), src[0])
	assert.Equal(t, byte(9), src[1])
}

func TestParseModuleBase(t *testing.T) {
	maps := strings.Join([]string{
		"7f0000000000-7f0000001000 r--p 00000000 08:01 99 /usr/lib/libc.so.6",
		"55d0c000-55d0e000 r--p 00000000 08:01 1234 /usr/bin/host",
		"55d0e000-55d10000 r-xp 00002000 08:01 1234 /usr/bin/host",
		"7ffd0000-7ffd1000 rw-p 00000000 00:00 0 [stack]",
	}, "\n")

	base, err := parseModuleBase(bufio.NewScanner(strings.NewReader(maps)), "/usr/bin/host")
	require.NoError(t, err)
	assert.Equal(t, uint64(0x55d0c000), base)

	_, err = parseModuleBase(bufio.NewScanner(strings.NewReader(maps)), "/usr/bin/other")
	assert.Error(t, err)
}
