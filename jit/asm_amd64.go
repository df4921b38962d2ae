//go:build amd64

// Package jit translates a definition body into native x86-64 machine code
// and wires it into the execution core through vm.JITBackend.
//
// Unlike an ahead-of-time compiler that emits assembly text for an external
// assembler, this generator writes raw instruction bytes directly into a
// pinned, executable memory region and hands back a callable Go function
// value pointing at it - there is no assembler, no linker, and no cgo
// involved anywhere in the pipeline.
package jit

import "encoding/binary"

// reg is an x86-64 general-purpose register encoding (low 3 bits of ModRM/
// opcode-extension forms; REX.B/R/X supply the 4th bit for r8-r15).
type reg uint8

const (
	rax reg = 0
	rcx reg = 1
	rdx reg = 2
	rbx reg = 3
	rsp reg = 4
	rbp reg = 5
	rsi reg = 6
	rdi reg = 7
	r8  reg = 8
	r9  reg = 9
	r10 reg = 10
	r11 reg = 11
	r12 reg = 12
	r13 reg = 13
	r14 reg = 14
	r15 reg = 15
)

// asm accumulates the instruction bytes for one compiled body. It is a
// write-only byte buffer plus a handful of encoders for the small
// instruction subset the generator needs - there is no general-purpose
// assembler here, only exactly what emitting this language's operators
// requires.
type asm struct {
	buf []byte
}

func (a *asm) offset() int { return len(a.buf) }

func (a *asm) byte(b byte) { a.buf = append(a.buf, b) }

func (a *asm) bytes(bs ...byte) { a.buf = append(a.buf, bs...) }

func (a *asm) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	a.buf = append(a.buf, b[:]...)
}

func (a *asm) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	a.buf = append(a.buf, b[:]...)
}

// rex builds a REX prefix: w selects a 64-bit operand size, r/x/b extend the
// ModRM reg/index/rm fields to reach r8-r15.
func rex(w bool, r, x, b reg) byte {
	p := byte(0x40)
	if w {
		p |= 1 << 3
	}
	if r&8 != 0 {
		p |= 1 << 2
	}
	if x&8 != 0 {
		p |= 1 << 1
	}
	if b&8 != 0 {
		p |= 1
	}
	return p
}

func modrm(mod, r, rm reg) byte {
	return byte(mod)<<6 | byte(r&7)<<3 | byte(rm&7)
}

// movRegImm64 emits `mov r64, imm64`.
func (a *asm) movRegImm64(r reg, v uint64) {
	a.byte(rex(true, 0, 0, r))
	a.byte(0xB8 + byte(r&7))
	a.u64(v)
}

// movRegImm32 emits `mov r32, imm32` (zero-extended into the 64-bit reg).
func (a *asm) movRegImm32(r reg, v uint32) {
	if r&8 != 0 {
		a.byte(rex(false, 0, 0, r))
	}
	a.byte(0xB8 + byte(r&7))
	a.u32(v)
}

// movRegReg emits `mov dst64, src64`.
func (a *asm) movRegReg(dst, src reg) {
	a.byte(rex(true, src, 0, dst))
	a.byte(0x89)
	a.byte(modrm(3, src, dst))
}

// movRegMem emits `mov dst64, [base]` (no index, no displacement). base must
// not be rsp, rbp, r12, or r13: rsp/r12 require a SIB byte and rbp/r13
// require a disp8 to address [reg] this way, neither of which this
// generator ever passes as base here.
func (a *asm) movRegMem(dst, base reg) {
	a.byte(rex(true, dst, 0, base))
	a.byte(0x8B)
	a.byte(modrm(0, dst, base))
}

// movRegMemIndexed emits `mov dst64, [base + index*8]`, used to read a slot
// out of the address table.
func (a *asm) movRegMemIndexed(dst, base, index reg) {
	a.byte(rex(true, dst, index, base))
	a.byte(0x8B)
	a.byte(modrm(0, dst, 4)) // rm=100 selects the SIB byte
	a.byte(byte(3)<<6 | byte(index&7)<<3 | byte(base&7))
}

func (a *asm) pushReg(r reg) {
	if r&8 != 0 {
		a.byte(rex(false, 0, 0, r))
	}
	a.byte(0x50 + byte(r&7))
}

func (a *asm) popReg(r reg) {
	if r&8 != 0 {
		a.byte(rex(false, 0, 0, r))
	}
	a.byte(0x58 + byte(r&7))
}

// addRegImm8/subRegImm8 emit `add/sub r64, imm8` (sign-extended); the
// prologue uses subRegImm8 to reserve its 16 bytes of locals.
func (a *asm) addRegImm8(r reg, v int8) {
	a.byte(rex(true, 0, 0, r))
	a.byte(0x83)
	a.byte(modrm(3, 0, r))
	a.byte(byte(v))
}

func (a *asm) subRegImm8(r reg, v int8) {
	a.byte(rex(true, 0, 0, r))
	a.byte(0x83)
	a.byte(modrm(3, 5, r))
	a.byte(byte(v))
}

// The remaining arithmetic operates on 32-bit operands to match the
// language's int32 value type; writing a 32-bit register implicitly zeroes
// the upper 32 bits of its parent 64-bit register, so these compose safely
// with the pointer-width push/pop/call sequences around them. An operand in
// r8-r15 gets a REX prefix (see rex32); any other operand pair gets none.

// rex32 emits the REX prefix a 32-bit reg/rm operand pair needs when either
// one is r8-r15, and nothing otherwise.
func (a *asm) rex32(r, rm reg) {
	if (r|rm)&8 != 0 {
		a.byte(rex(false, r, 0, rm))
	}
}

func (a *asm) addReg32Reg32(dst, src reg) {
	a.rex32(src, dst)
	a.byte(0x01)
	a.byte(modrm(3, src, dst))
}

func (a *asm) subReg32Reg32(dst, src reg) {
	a.rex32(src, dst)
	a.byte(0x29)
	a.byte(modrm(3, src, dst))
}

func (a *asm) imulReg32Reg32(dst, src reg) {
	a.rex32(dst, src)
	a.bytes(0x0F, 0xAF)
	a.byte(modrm(3, dst, src))
}

func (a *asm) cmpReg32Reg32(dst, src reg) {
	a.rex32(src, dst)
	a.byte(0x39)
	a.byte(modrm(3, src, dst))
}

func (a *asm) testReg32Reg32(r reg) {
	a.rex32(r, r)
	a.byte(0x85)
	a.byte(modrm(3, r, r))
}

// setlAl emits `setl al`; movzxReg32Al then zero-extends al into a 32-bit
// register.
func (a *asm) setlAl() {
	a.bytes(0x0F, 0x9C, 0xC0)
}

func (a *asm) movzxReg32Al(dst reg) {
	a.bytes(0x0F, 0xB6)
	a.byte(modrm(3, dst, 0))
}

// jmpReg emits `jmp r64` (register-indirect). Every jump to a token's code
// goes through it, resolved via the address table rather than a patched
// relative displacement; jccRel8 only hops over a few local bytes.
func (a *asm) jmpReg(r reg) {
	if r&8 != 0 {
		a.byte(rex(false, 0, 0, r))
	}
	a.byte(0xFF)
	a.byte(modrm(3, 4, r))
}

func (a *asm) callReg(r reg) {
	if r&8 != 0 {
		a.byte(rex(false, 0, 0, r))
	}
	a.byte(0xFF)
	a.byte(modrm(3, 2, r))
}

// Condition codes for jccRel8's one-byte opcode suffix.
const (
	ccE  = 0x4 // ZF=1 (equal / zero)
	ccNE = 0x5 // ZF=0 (not equal / not zero)
	ccGE = 0xD // SF=OF (signed >=)
)

// jccRel8 emits a short conditional jump with a placeholder displacement
// and returns the buffer index of that displacement byte, for patchRel8 to
// fill in once the jump's target offset is known. This is the only kind of
// control transfer the generator ever has to backpatch itself: every
// branch that depends on a body-relative target goes through the finalized
// address table instead (see jmpReg).
func (a *asm) jccRel8(cc byte) int {
	a.byte(0x70 | cc)
	a.byte(0)
	return len(a.buf) - 1
}

func (a *asm) patchRel8(placeholder int) {
	a.buf[placeholder] = byte(len(a.buf) - (placeholder + 1))
}

func (a *asm) pushRBP() { a.byte(0x55) }

func (a *asm) popRBP() { a.byte(0x5D) }

func (a *asm) ret() { a.byte(0xC3) }
