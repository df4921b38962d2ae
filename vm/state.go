// Package vm implements the execution core's aggregate state and its
// interpreted evaluator: the value stack, return stack, current queue, and
// the interpreted definition table, plus the dispatch loop that drives them.
//
// JIT compilation lives in the sibling jit package. The two are decoupled
// through the JITBackend interface below so that vm never needs to import
// jit: a *jit.Compiler is handed in as a JITBackend by whoever constructs a
// JIT-enabled State (normally the driver in the root main package).
package vm

import (
	"fmt"
	"io"

	"github.com/skx/clacjit/queue"
	"github.com/skx/clacjit/stack"
	"github.com/skx/clacjit/token"
)

// JITBackend is the seam between the interpreter and the JIT compiler.
// Define compiles a captured definition body and registers it under name;
// Invoke calls the currently-filled code for name against the live State,
// reporting found=false if name has never been defined in JIT mode.
type JITBackend interface {
	Define(name string, body []token.Token) error
	Invoke(s *State, name string) (found bool, err error)
}

// State is the aggregate the evaluator and any JIT callback operate on: the
// value stack, the return stack of saved queues, the queue currently being
// consumed, and the interpreted definition table. A State is exclusively
// owned by one driver for the lifetime of one program instance.
type State struct {
	Values  *stack.Stack[int32]
	returns *stack.Stack[*queue.Queue]
	queue   *queue.Queue
	defs    map[string][]token.Token

	backend JITBackend
	jit     bool

	out  io.Writer
	logf func(mess string, args ...interface{})
}

// Option configures a State at construction time.
type Option interface{ apply(*State) }

type optionFunc func(*State)

func (f optionFunc) apply(s *State) { f(s) }

// WithOutput directs print and print_stack output to w.
func WithOutput(w io.Writer) Option {
	return optionFunc(func(s *State) { s.out = w })
}

// WithLogf installs a printf-style trace logger, used to narrate definition
// compilation; nil (the default) disables tracing.
func WithLogf(fn func(mess string, args ...interface{})) Option {
	return optionFunc(func(s *State) { s.logf = fn })
}

// WithJIT enables JIT mode, using backend to compile and invoke
// user-defined words instead of storing their bodies for interpretation.
func WithJIT(backend JITBackend) Option {
	return optionFunc(func(s *State) {
		s.backend = backend
		s.jit = true
	})
}

// New constructs a State ready to Parse and Eval.
func New(opts ...Option) *State {
	s := &State{
		Values:  stack.New[int32](),
		returns: stack.New[*queue.Queue](),
		queue:   queue.New(),
		defs:    make(map[string][]token.Token),
		out:     io.Discard,
	}
	for _, o := range opts {
		o.apply(s)
	}
	return s
}

// JITMode reports whether this State was constructed WithJIT.
func (s *State) JITMode() bool { return s.jit }

func (s *State) tracef(mess string, args ...interface{}) {
	if s.logf != nil {
		s.logf(mess, args...)
	}
}

// Push pushes v onto the value stack.
func (s *State) Push(v int32) { s.Values.Push(v) }

// Pop removes and returns the top of the value stack, reporting ok=false on
// underflow. This is the non-panicking form JIT callbacks use, since they
// run beneath a raw machine-code frame that panic/recover cannot unwind
// through.
func (s *State) Pop() (int32, bool) { return s.Values.Pop() }

// MustPop is Pop, but a fatal Fault is panicked on underflow. Only the
// pure-Go interpreted evaluator may call this.
func (s *State) MustPop() int32 {
	v, ok := s.Pop()
	if !ok {
		fatalf(CategoryUnderflow, "value stack underflow")
	}
	return v
}

// Pick returns the element n positions below the top, reporting ok=false if
// n is out of range. The non-panicking JIT-callback form.
func (s *State) Pick(n int) (int32, bool) { return s.Values.Pick(n) }

// MustPick is Pick, but a fatal Fault is panicked on an invalid or
// out-of-range index. Only the interpreted evaluator may call this.
func (s *State) MustPick(n int) int32 {
	v, ok := s.Pick(n)
	if !ok {
		fatalf(CategoryDomain, "pick index %d out of range", n)
	}
	return v
}

// PrintStack emits the value stack's contents, bottom to top, space
// separated - the driver contract's print_stack.
func (s *State) PrintStack() {
	io.WriteString(s.out, s.Values.String())
	io.WriteString(s.out, "\n")
}

// PrintValue formats v the way the `print` token does: decimal, then a
// newline. Shared between the interpreted evaluator and the JIT runtime
// callback so the two paths can never drift in output formatting.
func (s *State) PrintValue(v int32) {
	fmt.Fprintf(s.out, "%d\n", v)
}

// Parse appends already-lexed tokens to the tail of the current queue - the
// driver contract's parse.
func (s *State) Parse(tokens []token.Token) {
	for _, t := range tokens {
		s.queue.PushBack(t)
	}
}
