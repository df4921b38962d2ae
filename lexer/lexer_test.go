package lexer

import (
	"testing"

	"github.com/skx/clacjit/token"
)

func TestTokenizeLiteralsAndOperators(t *testing.T) {
	got := Tokenize("3 -4 + swap : foo ; if skip")

	want := []token.Token{
		token.Int32(3),
		token.Int32(-4),
		token.Word(token.Plus),
		token.Word(token.Swap),
		token.Word(token.DefBegin),
		token.Ident("foo"),
		token.Word(token.DefEnd),
		token.Word(token.If),
		token.Word(token.Skip),
	}

	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("token[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTokenizeCustomNames(t *testing.T) {
	got := Tokenize("loop sq")
	want := []token.Token{token.Ident("loop"), token.Ident("sq")}

	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("token[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTokenizeEmpty(t *testing.T) {
	if got := Tokenize("   \n\t  "); len(got) != 0 {
		t.Errorf("expected no tokens from blank input, got %v", got)
	}
}
