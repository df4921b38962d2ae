package vm

import (
	"github.com/skx/clacjit/queue"
	"github.com/skx/clacjit/token"
)

// Eval runs the evaluator until both the current queue and the return stack
// are empty, dispatching one token at a time per the interpreter's
// queue/return-stack control model.
//
// Fatal conditions panic a Fault; `quit` panics quitSignal. Callers
// normally wrap the top-level call in Run to turn both into a plain error.
func (s *State) Eval() {
	for {
		if s.queue.IsEmpty() {
			next, ok := s.returns.Pop()
			if !ok {
				return
			}
			s.queue = next
			continue
		}

		t, ok := s.queue.PopFront()
		if !ok {
			continue
		}
		s.step(t)
	}
}

func (s *State) step(t token.Token) {
	switch t.Kind {
	case token.Num:
		s.Push(t.Value)

	case token.Plus:
		a, b := s.MustPop(), s.MustPop()
		s.Push(a + b)

	case token.Minus:
		a, b := s.MustPop(), s.MustPop()
		s.Push(b - a)

	case token.Star:
		a, b := s.MustPop(), s.MustPop()
		s.Push(a * b)

	case token.Slash:
		a, b := s.MustPop(), s.MustPop()
		s.Push(mustDiv(a, b))

	case token.Percent:
		a, b := s.MustPop(), s.MustPop()
		s.Push(mustMod(a, b))

	case token.Pow:
		a, b := s.MustPop(), s.MustPop()
		s.Push(mustPow(b, a))

	case token.Less:
		a, b := s.MustPop(), s.MustPop()
		if b < a {
			s.Push(1)
		} else {
			s.Push(0)
		}

	case token.Swap:
		a, b := s.MustPop(), s.MustPop()
		s.Push(a)
		s.Push(b)

	case token.Rot:
		a, b, c := s.MustPop(), s.MustPop(), s.MustPop()
		s.Push(b)
		s.Push(a)
		s.Push(c)

	case token.Drop:
		s.MustPop()

	case token.Pick:
		n := s.MustPop()
		if n <= 0 {
			fatalf(CategoryDomain, "pick requires a positive index, got %d", n)
		}
		s.Push(s.MustPick(int(n) - 1))

	case token.Print:
		s.PrintValue(s.MustPop())

	case token.Quit:
		panic(quitSignal{})

	case token.If:
		cond := s.MustPop()
		if cond == 0 {
			for i := 0; i < 3; i++ {
				if _, ok := s.queue.PopFront(); !ok {
					fatalf(CategoryUnderflow, "token queue underflow skipping `if` body")
				}
			}
		}

	case token.Skip:
		n := s.MustPop()
		if n < 0 {
			fatalf(CategoryDomain, "skip requires a non-negative count, got %d", n)
		}
		for i := int32(0); i < n; i++ {
			if _, ok := s.queue.PopFront(); !ok {
				fatalf(CategoryUnderflow, "token queue underflow during skip")
			}
		}

	case token.DefBegin:
		s.beginDefinition()

	case token.DefEnd:
		fatalf(CategoryStructural, "unexpected `;` outside a definition")

	case token.Custom:
		s.callCustom(t.Name)

	default:
		fatalf(CategoryStructural, "unhandled token %v", t)
	}
}

// beginDefinition implements `:`: read queue tokens into a buffer until `;`,
// pull the name off the front, and register the remaining body either with
// the interpreted table or the JIT backend.
func (s *State) beginDefinition() {
	var buf []token.Token
	for {
		t, ok := s.queue.PopFront()
		if !ok {
			fatalf(CategoryStructural, "token queue underflow before `;`")
		}
		if t.Kind == token.DefEnd {
			break
		}
		buf = append(buf, t)
	}

	if len(buf) == 0 {
		fatalf(CategoryStructural, "empty definition")
	}

	head := buf[0]
	if head.Kind != token.Custom {
		fatalf(CategoryStructural, "definition must begin with a name, got %v", head)
	}
	name := head.Name
	body := buf[1:]

	if s.jit {
		s.tracef("compiling %s...", name)
		if err := s.backend.Define(name, body); err != nil {
			fatalf(CategoryCompiler, "compiling %s: %v", name, err)
		}
	} else {
		s.defs[name] = body
	}
	s.tracef("defined %s", name)
}

// callCustom implements dispatch for a Custom(name) token: interpreted
// definitions take priority, then the JIT backend, then it's a fatal
// unknown name.
func (s *State) callCustom(name string) {
	if body, ok := s.defs[name]; ok {
		s.returns.Push(s.queue.Take())
		s.queue = queue.Over(body)
		return
	}

	if s.jit && s.backend != nil {
		found, err := s.backend.Invoke(s, name)
		if err != nil {
			fatalf(CategoryStructural, "invoking %s: %v", name, err)
		}
		if found {
			return
		}
	}

	fatalf(CategoryStructural, "unknown definition: %s", name)
}

func mustDiv(a, b int32) int32 {
	if a == 0 {
		fatalf(CategoryDomain, "division by zero")
	}
	if a == -1 && b == minInt32 {
		fatalf(CategoryDomain, "division overflow: %d / -1", b)
	}
	return b / a
}

func mustMod(a, b int32) int32 {
	if a == 0 {
		fatalf(CategoryDomain, "modulus by zero")
	}
	if a == -1 && b == minInt32 {
		fatalf(CategoryDomain, "modulus overflow: %d %% -1", b)
	}
	return b % a
}

func mustPow(base, exp int32) int32 {
	if exp < 0 {
		fatalf(CategoryDomain, "negative exponent: %d", exp)
	}
	result := int32(1)
	for i := int32(0); i < exp; i++ {
		result *= base
	}
	return result
}

const minInt32 = -1 << 31
