//go:build linux

package hostmem

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// Process is the address space of a live process, accessed with
// process_vm_readv/process_vm_writev. The caller needs ptrace access to pid.
type Process struct {
	pid int
}

// OpenProcess returns the address space of pid
func OpenProcess(pid int) (*Process, error) {
	if err := unix.Kill(pid, 0); err != nil {
		return nil, fmt.Errorf("process %d not reachable: %w", pid, err)
	}
	return &Process{pid: pid}, nil
}

// Pid returns the process id
func (p *Process) Pid() int {
	return p.pid
}

// ReadAt copies len(b) bytes at addr into b
func (p *Process) ReadAt(b []byte, addr uint64) error {
	if len(b) == 0 {
		return nil
	}
	local := []unix.Iovec{{Base: &b[0]}}
	local[0].SetLen(len(b))
	remote := []unix.RemoteIovec{{Base: uintptr(addr), Len: len(b)}}

	n, err := unix.ProcessVMReadv(p.pid, local, remote, 0)
	if err != nil {
		return fmt.Errorf("read %d bytes at %#x: %w", len(b), addr, err)
	}
	if n != len(b) {
		return fmt.Errorf("short read at %#x (%d of %d): %w", addr, n, len(b), ErrUnmapped)
	}
	return nil
}

// WriteAt copies b to addr
func (p *Process) WriteAt(b []byte, addr uint64) error {
	if len(b) == 0 {
		return nil
	}
	local := []unix.Iovec{{Base: &b[0]}}
	local[0].SetLen(len(b))
	remote := []unix.RemoteIovec{{Base: uintptr(addr), Len: len(b)}}

	n, err := unix.ProcessVMWritev(p.pid, local, remote, 0)
	if err != nil {
		return fmt.Errorf("write %d bytes at %#x: %w", len(b), addr, err)
	}
	if n != len(b) {
		return fmt.Errorf("short write at %#x (%d of %d): %w", addr, n, len(b), ErrUnmapped)
	}
	return nil
}

// MainModuleBase returns the lowest mapping of the process executable
func (p *Process) MainModuleBase() (uint64, error) {
	exe, err := os.Readlink(fmt.Sprintf("/proc/%d/exe", p.pid))
	if err != nil {
		return 0, fmt.Errorf("failed to resolve executable of %d: %w", p.pid, err)
	}

	f, err := os.Open(fmt.Sprintf("/proc/%d/maps", p.pid))
	if err != nil {
		return 0, fmt.Errorf("failed to open maps of %d: %w", p.pid, err)
	}
	defer func() { _ = f.Close() }()

	return parseModuleBase(bufio.NewScanner(f), exe)
}

// parseModuleBase finds the first mapping whose path is exe.
// Lines look like: 55d0c000-55d0e000 r--p 00000000 08:01 1234 /usr/bin/host
func parseModuleBase(sc *bufio.Scanner, exe string) (uint64, error) {
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 6 {
			continue
		}
		if filepath.Clean(fields[5]) != filepath.Clean(exe) {
			continue
		}
		start, _, ok := strings.Cut(fields[0], "-")
		if !ok {
			continue
		}
		base, err := strconv.ParseUint(start, 16, 64)
		if err != nil {
			return 0, fmt.Errorf("bad mapping %q: %w", fields[0], err)
		}
		return base, nil
	}
	if err := sc.Err(); err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("no mapping for %s", exe)
}
