//go:build amd64

package jit

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skx/clacjit/lexer"
	"github.com/skx/clacjit/token"
	"github.com/skx/clacjit/vm"
)

func runJIT(t *testing.T, input string) (*vm.State, string) {
	t.Helper()
	var out bytes.Buffer
	s := vm.New(vm.WithOutput(&out), vm.WithJIT(New()))
	s.Parse(lexer.Tokenize(input))
	require.NoError(t, vm.Run(s.Eval))
	return s, out.String()
}

func TestJITAddition(t *testing.T) {
	s, _ := runJIT(t, ": add2 3 4 + ; add2")
	require.Equal(t, []int32{7}, s.Values.Items())
}

func TestJITSubtractionOperandOrder(t *testing.T) {
	s, _ := runJIT(t, ": sub10 10 3 - ; sub10")
	require.Equal(t, []int32{7}, s.Values.Items())
}

func TestJITStar(t *testing.T) {
	s, _ := runJIT(t, ": mul 5 7 * ; mul")
	require.Equal(t, []int32{35}, s.Values.Items())
}

func TestJITLess(t *testing.T) {
	s, _ := runJIT(t, ": lt 3 5 < ; lt")
	require.Equal(t, []int32{1}, s.Values.Items())
}

func TestJITDivision(t *testing.T) {
	s, _ := runJIT(t, ": d 17 5 / ; d")
	require.Equal(t, []int32{3}, s.Values.Items())
}

func TestJITModulus(t *testing.T) {
	s, _ := runJIT(t, ": m 17 5 % ; m")
	require.Equal(t, []int32{2}, s.Values.Items())
}

func TestJITPower(t *testing.T) {
	s, _ := runJIT(t, ": p 2 10 ** ; p")
	require.Equal(t, []int32{1024}, s.Values.Items())
}

func TestJITSwapSwapIsIdentity(t *testing.T) {
	s, _ := runJIT(t, ": noop 1 2 swap swap ; noop")
	require.Equal(t, []int32{1, 2}, s.Values.Items())
}

func TestJITRot(t *testing.T) {
	s, _ := runJIT(t, ": r 1 2 3 rot ; r")
	require.Equal(t, []int32{2, 3, 1}, s.Values.Items())
}

func TestJITDrop(t *testing.T) {
	s, _ := runJIT(t, ": d 1 2 drop ; d")
	require.Equal(t, []int32{1}, s.Values.Items())
}

func TestJITPickDuplicatesTop(t *testing.T) {
	// Grounded on the spec's canonical `sq` example (§8, scenario 5),
	// defined and invoked entirely against a JIT-compiled body.
	s, _ := runJIT(t, ": sq 1 pick * ; 5 sq")
	require.Equal(t, []int32{25}, s.Values.Items())
}

func TestJITIfTruePathFallsThrough(t *testing.T) {
	s, out := runJIT(t, ": w 1 if 10 20 30 99 print ; w")
	require.Equal(t, []int32{10, 20, 30}, s.Values.Items())
	require.Equal(t, "99\n", out)
}

func TestJITIfFalsePathSkipsThree(t *testing.T) {
	s, out := runJIT(t, ": w 0 if 10 20 30 99 print ; w")
	require.Empty(t, s.Values.Items())
	require.Equal(t, "99\n", out)
}

func TestJITSkip(t *testing.T) {
	s, _ := runJIT(t, ": w 2 skip 10 20 30 ; w")
	require.Equal(t, []int32{30}, s.Values.Items())
}

func TestJITForwardReference(t *testing.T) {
	// Exercises the property from spec §8: defining `f` before `g`
	// succeeds in JIT mode because the call site resolves through g's
	// indirection cell, not a direct address captured at compile time.
	c := New()
	require.NoError(t, c.Define("f", []token.Token{token.Ident("g")}))
	require.NoError(t, c.Define("g", []token.Token{token.Int32(42)}))

	s := vm.New()
	found, err := c.Invoke(s, "f")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []int32{42}, s.Values.Items())
}

func TestJITRedefinitionIsObservedByExistingCallers(t *testing.T) {
	c := New()
	require.NoError(t, c.Define("g", []token.Token{token.Int32(1)}))
	require.NoError(t, c.Define("f", []token.Token{token.Ident("g")}))

	require.NoError(t, c.Define("g", []token.Token{token.Int32(2)}))

	s := vm.New()
	found, err := c.Invoke(s, "f")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []int32{2}, s.Values.Items())
}

func TestJITUnreservedNameNotFound(t *testing.T) {
	c := New()
	s := vm.New()
	found, err := c.Invoke(s, "nope")
	require.NoError(t, err)
	require.False(t, found)
}

func TestCompileRejectsDefinitionTokens(t *testing.T) {
	c := New()
	err := c.Define("bad", []token.Token{token.Word(token.DefEnd)})
	require.Error(t, err)
}
