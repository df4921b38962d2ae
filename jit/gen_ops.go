//go:build amd64

package jit

import (
	"fmt"
	"unsafe"

	"github.com/skx/clacjit/token"
)

// emit appends the machine code for one token at body position i. The state
// pointer lives in r12 for the whole body (callee-saved across every call
// this generator emits, by construction: nothing here reassigns r12-r15
// except the dedicated scratch uses below, and every host callback is a
// small go:nosplit leaf the register allocator has no reason to spill
// through them). r13-r15 are the scratch registers operators use to carry a
// popped value across a second or third call to must_pop.
func (g *gen) emit(t token.Token, i int) {
	switch t.Kind {
	case token.Num:
		g.asm.movRegImm32(rbx, uint32(t.Value))
		g.loadState()
		g.callFunc(hostPush)

	case token.Plus:
		g.popTo(r13) // a
		g.popTo(rax) // b
		g.asm.addReg32Reg32(rax, r13) // b+a == a+b
		g.pushFromEax()

	case token.Minus:
		g.popTo(r13) // a
		g.popTo(rax) // b
		g.asm.subReg32Reg32(rax, r13) // b-a
		g.pushFromEax()

	case token.Star:
		g.popTo(r13) // a
		g.popTo(rax) // b
		g.asm.imulReg32Reg32(rax, r13) // b*a == a*b
		g.pushFromEax()

	case token.Slash:
		g.loadState()
		g.callFunc(hostDiv)

	case token.Percent:
		g.loadState()
		g.callFunc(hostMod)

	case token.Pow:
		g.loadState()
		g.callFunc(hostPow)

	case token.Less:
		g.popTo(r13) // a
		g.popTo(rax) // b
		g.asm.cmpReg32Reg32(rax, r13) // b-a, flags only
		g.asm.setlAl()
		g.asm.movzxReg32Al(rax)
		g.pushFromEax()

	case token.Swap:
		g.popTo(r13) // a
		g.popTo(r14) // b
		g.pushFrom(r13) // push a
		g.pushFrom(r14) // push b

	case token.Rot:
		g.popTo(r13) // a
		g.popTo(r14) // b
		g.popTo(r15) // c
		g.pushFrom(r14) // push b
		g.pushFrom(r13) // push a
		g.pushFrom(r15) // push c

	case token.Drop:
		g.loadState()
		g.callFunc(hostMustPop)

	case token.Pick:
		g.popTo(rax)
		g.asm.movRegReg(rbx, rax) // n -> arg1
		g.loadState()
		g.callFunc(hostMustPick)
		g.pushFromEax()

	case token.Print:
		g.loadState()
		g.callFunc(hostPrint)

	case token.Quit:
		g.asm.movRegImm64(r11, funcEntry(hostQuit))
		g.asm.callReg(r11)

	case token.If:
		g.emitIf(i)

	case token.Skip:
		g.emitSkip(i)

	case token.Custom:
		g.emitCustom(t.Name)

	case token.DefBegin, token.DefEnd:
		panic("jit: unreachable definition token in codegen: " + t.Kind.String())

	default:
		panic(fmt.Sprintf("jit: unhandled token in codegen: %v", t))
	}
}

// loadState emits `mov rax, r12`, staging the state pointer into arg0's
// register immediately ahead of a call.
func (g *gen) loadState() { g.asm.movRegReg(rax, r12) }

// callFunc emits a call to fn's real native entry address, resolved once at
// emit time via funcEntry.
func (g *gen) callFunc(fn interface{}) {
	g.asm.movRegImm64(r11, funcEntry(fn))
	g.asm.callReg(r11)
}

// popTo calls hostMustPop and leaves the result in dst (a plain register
// move out of rax when dst isn't rax itself).
func (g *gen) popTo(dst reg) {
	g.loadState()
	g.callFunc(hostMustPop)
	if dst != rax {
		g.asm.movRegReg(dst, rax)
	}
}

// pushFrom calls hostPush with src as the value argument.
func (g *gen) pushFrom(src reg) {
	if src != rbx {
		g.asm.movRegReg(rbx, src)
	}
	g.loadState()
	g.callFunc(hostPush)
}

// pushFromEax is pushFrom(rax), named for the common case of pushing a
// freshly computed arithmetic result.
func (g *gen) pushFromEax() { g.pushFrom(rax) }

// emitIf implements `if` (§4.F): pop the condition; a non-zero value falls
// straight through to the next token, a zero value jumps to the slot four
// positions ahead (past the 3-token guarded body), resolved through the
// address table rather than a patched displacement. The table slot's own
// address is fixed at emit time even though its contents - the target
// code address - are only written in once the buffer is finalized.
func (g *gen) emitIf(i int) {
	g.popTo(rax)
	g.asm.testReg32Reg32(rax)
	nonZero := g.asm.jccRel8(ccNE)

	slot := g.tableLoc + uintptr(i+4)*8
	g.asm.movRegImm64(r11, uint64(slot))
	g.asm.movRegMem(r11, r11)
	g.asm.jmpReg(r11)

	g.asm.patchRel8(nonZero)
}

// emitSkip implements `skip`: pop the count, fault if negative (the
// interpreter would catch this purely in Go; a compiled body has no unwind
// path so the guard calls out to a host fault instead), then jump through
// the address table to slot n+i+1. Unlike `if`, the target slot isn't
// known until runtime, so this indexes the table rather than baking in a
// fixed slot address.
func (g *gen) emitSkip(i int) {
	g.popTo(r13) // n

	g.asm.testReg32Reg32(r13)
	ok := g.asm.jccRel8(ccGE)
	g.asm.movRegReg(rbx, r13)
	g.loadState()
	g.callFunc(hostFatalNegativeSkip)
	g.asm.patchRel8(ok)

	g.asm.movRegReg(rax, r13)
	g.asm.movRegImm32(rcx, uint32(i+1))
	g.asm.addReg32Reg32(rax, rcx) // n+i+1

	g.asm.movRegImm64(rdx, uint64(g.tableLoc))
	g.asm.movRegMemIndexed(r11, rdx, rax)
	g.asm.jmpReg(r11)
}

// emitCustom implements a call to a user-defined word. Every custom call
// site passes the same three arguments - state, a pointer to the callee
// name's bytes, and its length - regardless of what the eventual callee
// actually needs: a compiled body's prologue only ever reads arg0, and
// the fallback thunk is the one callee that reads all three, to name the
// definition it couldn't find. The call target is always read indirectly
// through the name's indirection cell, so a forward reference, a
// recursive call, and a later redefinition all resolve the same way.
func (g *gen) emitCustom(name string) {
	cellAddr := g.c.defs.Reserve(name)
	g.c.names = append(g.c.names, name)

	namePtr := uintptr(unsafe.Pointer(unsafe.StringData(name)))
	nameLen := len(name)

	g.asm.movRegImm64(r11, uint64(cellAddr))
	g.asm.movRegMem(r11, r11) // r11 = current entry address held by the cell
	g.asm.movRegImm64(rbx, uint64(namePtr))
	g.asm.movRegImm64(rcx, uint64(nameLen))
	g.loadState()
	g.asm.callReg(r11)
}
