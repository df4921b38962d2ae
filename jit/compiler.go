//go:build amd64

package jit

import (
	"fmt"
	"unsafe"

	"github.com/skx/clacjit/token"
	"github.com/skx/clacjit/vm"
)

// Compiler is the native-code generator: it turns a definition body into a
// pinned, executable function and registers it in the JIT definition table
// under the defining name. It implements vm.JITBackend.
type Compiler struct {
	defs *defTable

	// debug, when set, has Define print each compiled body's size to
	// standard output.
	debug bool

	// pinned keeps every code buffer, address table, and leaked name
	// string alive for the process lifetime; all of them are referenced
	// only via raw addresses baked into machine code, so the garbage
	// collector must never be allowed to reclaim them.
	pinned []*codeBuffer
	tables [][]uintptr
	names  []string
}

// New creates a Compiler with an empty JIT definition table.
func New() *Compiler {
	return &Compiler{defs: newDefTable()}
}

// SetDebug toggles compilation tracing.
func (c *Compiler) SetDebug(val bool) {
	c.debug = val
}

// Define compiles body and fills name's indirection cell with the result,
// satisfying vm.JITBackend.
func (c *Compiler) Define(name string, body []token.Token) error {
	fn, size, err := c.compile(body)
	if err != nil {
		return err
	}
	if c.debug {
		fmt.Printf("jit: compiled %s to %d bytes of machine code\n", name, size)
	}
	c.defs.Fill(name, fn)
	return nil
}

// Invoke calls name's currently-filled native code against s, satisfying
// vm.JITBackend. found is false if name has no compiled code: either it
// was never reserved, or it was only reserved by a forward reference from
// another body and never filled.
func (c *Compiler) Invoke(s *vm.State, name string) (bool, error) {
	addr, ok := c.defs.Current(name)
	if !ok {
		return false, nil
	}
	asNativeFunc(addr)(s)
	return true, nil
}

// gen holds the mutable state threaded through one compile call: the
// instruction encoder, the per-token offset list, the address table (known
// by address before it is known by content), and the defining Compiler
// (for cell reservation).
type gen struct {
	c        *Compiler
	asm      asm
	offsets  []int
	table    []uintptr
	tableLoc uintptr
}

// compile is the generator's entry point (§F): translate body into machine
// code honoring a state-pointer-in-rax calling convention, build the
// address table used by in-body `if`/`skip`, and return the finalized
// buffer's base address (the body's entry point) and its size in bytes.
func (c *Compiler) compile(body []token.Token) (uintptr, int, error) {
	for _, t := range body {
		if t.Kind == token.DefBegin || t.Kind == token.DefEnd {
			return 0, 0, fmt.Errorf("cannot compile definition token %v", t)
		}
	}

	// The table is allocated, and its address fixed, before codegen
	// begins: `if`/`skip` bake the table's base address in as an
	// immediate. Its contents are only known - and only written - after
	// the buffer's final address is assigned below.
	table := make([]uintptr, len(body)+1)

	g := &gen{
		c:        c,
		offsets:  make([]int, 0, len(body)),
		table:    table,
		tableLoc: uintptr(unsafe.Pointer(&table[0])),
	}

	// Prologue: establish a frame with 16 bytes of locals so every
	// outgoing call sees a 16-byte-aligned stack, and persist the
	// incoming State pointer (arg0, per Go's internal amd64 ABI: rax)
	// in r12 for the rest of the body.
	g.asm.pushRBP()
	g.asm.movRegReg(rbp, rsp)
	g.asm.subRegImm8(rsp, 16)
	g.asm.movRegReg(r12, rax)

	for i, t := range body {
		g.offsets = append(g.offsets, g.asm.offset())
		g.emit(t, i)
	}
	epilogueOffset := g.asm.offset()

	g.asm.movRegReg(rsp, rbp)
	g.asm.popRBP()
	g.asm.ret()

	buf, err := allocExecutable(len(g.asm.buf))
	if err != nil {
		return 0, 0, err
	}
	if err := buf.finalize(g.asm.buf); err != nil {
		return 0, 0, err
	}
	c.pinned = append(c.pinned, buf)
	c.tables = append(c.tables, table)

	base := buf.base()

	// The address table is resolved only now that the buffer's final
	// base address is known: slot i gets base+offset_i, and the
	// trailing slot gets the epilogue, so a `skip` that walks off the
	// end of the body lands cleanly on return.
	for i, off := range g.offsets {
		table[i] = base + uintptr(off)
	}
	table[len(body)] = base + uintptr(epilogueOffset)

	return base, len(g.asm.buf), nil
}
