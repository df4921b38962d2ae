//go:build amd64

package jit

import (
	"os"
	"unsafe"

	"github.com/skx/clacjit/vm"
)

// The functions in this file are the only Go code emitted machine code
// ever calls into. Each is pinned to the exact parameter order a call site
// bakes in as register assignments (see gen_ops.go), is never inlined (so
// funcEntry sees its real body, not a caller's copy of it), and is nosplit:
// a raw native call frame carries none of the bookkeeping the usual
// stack-growth prologue needs to consult the goroutine's stack bounds.

//go:noinline
//go:nosplit
func hostPush(s *vm.State, v int32) {
	s.Push(v)
}

//go:noinline
//go:nosplit
func hostMustPop(s *vm.State) int32 {
	v, ok := s.Pop()
	if !ok {
		vm.FatalExit(vm.CategoryUnderflow, "value stack underflow")
	}
	return v
}

//go:noinline
//go:nosplit
func hostMustPick(s *vm.State, n int32) int32 {
	v, ok := s.Pick(int(n) - 1)
	if !ok {
		vm.FatalExit(vm.CategoryDomain, "pick index %d out of range", n)
	}
	return v
}

//go:noinline
//go:nosplit
func hostPrint(s *vm.State) {
	v, ok := s.Pop()
	if !ok {
		vm.FatalExit(vm.CategoryUnderflow, "value stack underflow")
	}
	s.PrintValue(v)
}

//go:noinline
//go:nosplit
func hostPow(s *vm.State) {
	exp, ok1 := s.Pop()
	base, ok2 := s.Pop()
	if !ok1 || !ok2 {
		vm.FatalExit(vm.CategoryUnderflow, "value stack underflow")
	}
	if exp < 0 {
		vm.FatalExit(vm.CategoryDomain, "negative exponent: %d", exp)
	}
	result := int32(1)
	for i := int32(0); i < exp; i++ {
		result *= base
	}
	s.Push(result)
}

//go:noinline
//go:nosplit
func hostQuit() {
	os.Exit(0)
}

// hostDiv and hostMod implement `/` and `%` entirely as callbacks rather
// than inline idiv sequences, by the same reasoning the code generator
// already applies to `**`: the zero-divisor and MinInt32/-1 overflow
// guards are ordinary Go branches here instead of hand-emitted ones, and
// the two paths can never disagree on when a division is a Domain fault.
//
//go:noinline
//go:nosplit
func hostDiv(s *vm.State) {
	a, ok1 := s.Pop()
	b, ok2 := s.Pop()
	if !ok1 || !ok2 {
		vm.FatalExit(vm.CategoryUnderflow, "value stack underflow")
	}
	if a == 0 {
		vm.FatalExit(vm.CategoryDomain, "division by zero")
	}
	if a == -1 && b == minInt32 {
		vm.FatalExit(vm.CategoryDomain, "division overflow: %d / -1", b)
	}
	s.Push(b / a)
}

//go:noinline
//go:nosplit
func hostMod(s *vm.State) {
	a, ok1 := s.Pop()
	b, ok2 := s.Pop()
	if !ok1 || !ok2 {
		vm.FatalExit(vm.CategoryUnderflow, "value stack underflow")
	}
	if a == 0 {
		vm.FatalExit(vm.CategoryDomain, "modulus by zero")
	}
	if a == -1 && b == minInt32 {
		vm.FatalExit(vm.CategoryDomain, "modulus overflow: %d %% -1", b)
	}
	s.Push(b % a)
}

const minInt32 = -1 << 31

// hostFatalNegativeSkip backs `skip`'s runtime guard: a compiled body can't
// inline-fault the way the interpreter does, so a negative count is
// reported here instead of corrupting the address-table lookup that
// follows it.
//
//go:noinline
//go:nosplit
func hostFatalNegativeSkip(s *vm.State, n int32) {
	_ = s
	vm.FatalExit(vm.CategoryDomain, "skip requires a non-negative count, got %d", n)
}

// hostFallback is the initial contents of every freshly reserved
// indirection cell. If a call site ever actually dereferences and invokes
// it, the callee name was never compiled - a structural fault.
//
//go:noinline
//go:nosplit
func hostFallback(s *vm.State, namePtr *byte, nameLen int) {
	_ = s
	name := unsafe.String(namePtr, nameLen)
	vm.FatalExit(vm.CategoryStructural, "reference to uncompiled definition: %s", name)
}

// funcval mirrors the Go runtime's internal func-value representation: a
// func is itself a pointer to a funcval struct whose first word is the
// code's entry address. Building a fresh funcval (rather than overwriting
// an existing closure in place) lets a raw mmap'd address be called as an
// ordinary Go function value without disturbing any other call site that
// happens to share the same zero-argument closure template.
type funcval struct {
	entry uintptr
}

// asNativeFunc returns a callable func(*vm.State) whose body is the machine
// code at entry - the bridge back from a compiled buffer into an ordinary
// Go call, with no cgo and no hand-written assembly trampoline.
func asNativeFunc(entry uintptr) func(*vm.State) {
	fv := &funcval{entry: entry}
	var fn func(*vm.State)
	*(*unsafe.Pointer)(unsafe.Pointer(&fn)) = unsafe.Pointer(fv)
	return fn
}

func fallbackEntry() uintptr { return funcEntry(hostFallback) }
