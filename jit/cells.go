package jit

import (
	"reflect"
	"sync"
	"unsafe"
)

// cell is a pinned, never-moved, never-freed heap word holding the current
// entry address of a compiled definition. Emitted call sites capture a
// cell's address as an immediate rather than the function pointer it holds
// at emit time, so a forward reference, a self-call, or a later
// redefinition all resolve through the same indirection with no patching.
type cell struct {
	addr uintptr
}

// defTable maps a definition name to its stable indirection cell. Cell
// identity is preserved across Fill calls: Reserve only ever allocates a
// cell the first time a name is seen.
type defTable struct {
	mu    sync.Mutex
	cells map[string]*cell
}

func newDefTable() *defTable {
	return &defTable{cells: make(map[string]*cell)}
}

// Reserve ensures a cell exists for name, initialized to the fallback
// thunk, and returns its address for use as a call-site immediate.
func (t *defTable) Reserve(name string) uintptr {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reserveLocked(name)
}

func (t *defTable) reserveLocked(name string) uintptr {
	c, ok := t.cells[name]
	if !ok {
		c = &cell{addr: fallbackEntry()}
		t.cells[name] = c
	}
	return uintptr(unsafe.Pointer(c))
}

// Fill writes fn's native entry address into name's cell, reserving the
// cell first if this is the first time name has been compiled.
func (t *defTable) Fill(name string, fn uintptr) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reserveLocked(name)
	t.cells[name].addr = fn
}

// Current reports the entry address presently held by name's cell, and
// whether name has ever been compiled (as opposed to only reserved by a
// forward reference).
func (t *defTable) Current(name string) (uintptr, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.cells[name]
	if !ok {
		return 0, false
	}
	return c.addr, c.addr != fallbackEntry()
}

// funcEntry returns the raw native code address the Go compiler generated
// for fn - the address emitted machine code must CALL to reach it. fn must
// be a package-level (non-closure) function value.
func funcEntry(fn interface{}) uintptr {
	return reflect.ValueOf(fn).Pointer()
}
