//go:build amd64

package jit

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// codeBuffer is a pinned, executable memory region holding one compiled
// body's machine code (its address table is a separate Go slice the
// Compiler keeps). It is never unmapped: code addresses
// captured as immediates by earlier compilations (cell contents, call-site
// literals) must stay valid for the remainder of the process.
type codeBuffer struct {
	mem []byte
}

// allocExecutable maps size bytes read-write; finalize later copies the
// code in and flips the mapping to read-execute. Mapping write and execute
// permissions simultaneously is avoided throughout (W^X), matching the
// platform's hardened-memory expectations even though nothing here runs
// under dynamic code-signing enforcement.
func allocExecutable(size int) (*codeBuffer, error) {
	if size == 0 {
		size = 1
	}
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("jit: mmap %d bytes: %w", size, err)
	}
	return &codeBuffer{mem: mem}, nil
}

// finalize copies code into the buffer and switches it to read-execute.
// compile resolves the address table from base() after this call.
func (b *codeBuffer) finalize(code []byte) error {
	if len(code) > len(b.mem) {
		return fmt.Errorf("jit: compiled body (%d bytes) exceeds reserved buffer (%d bytes)", len(code), len(b.mem))
	}
	copy(b.mem, code)
	if err := unix.Mprotect(b.mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		return fmt.Errorf("jit: mprotect: %w", err)
	}
	return nil
}

// base returns the address of the buffer's first byte.
func (b *codeBuffer) base() uintptr {
	return uintptr(unsafe.Pointer(&b.mem[0]))
}
