package token

import "testing"

// TestLookup exercises every keyword, then confirms a non-keyword misses.
func TestLookup(t *testing.T) {
	for lexeme, want := range keywords {
		got, ok := Lookup(lexeme)
		if !ok {
			t.Errorf("Lookup of %s failed", lexeme)
		}
		if got != want {
			t.Errorf("Lookup(%s) = %v, want %v", lexeme, got, want)
		}
	}

	if _, ok := Lookup("frobnicate"); ok {
		t.Errorf("Lookup of a non-keyword unexpectedly succeeded")
	}
}

// TestEqual exercises the payload-sensitive equality cases.
func TestEqual(t *testing.T) {
	tests := []struct {
		a, b Token
		want bool
	}{
		{Int32(3), Int32(3), true},
		{Int32(3), Int32(4), false},
		{Ident("foo"), Ident("foo"), true},
		{Ident("foo"), Ident("bar"), false},
		{Word(Plus), Word(Plus), true},
		{Word(Plus), Word(Minus), false},
		{Int32(0), Word(Drop), false},
	}

	for _, tt := range tests {
		if got := tt.a.Equal(tt.b); got != tt.want {
			t.Errorf("%v.Equal(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
