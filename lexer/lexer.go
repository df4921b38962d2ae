// Package lexer implements the trivial textual tokenizer described as an
// external collaborator of the execution core: split on whitespace, map each
// lexeme to a keyword token, a 32-bit signed literal, or a Custom name.
//
// There are no comments, no escapes, and no multi-character lookahead beyond
// a single lexeme - the entire job is a whitespace split followed by an
// exact-match/parse-int/fallback decision per field.
package lexer

import (
	"strconv"
	"strings"

	"github.com/skx/clacjit/token"
)

// Lexer holds our object-state: the whitespace-delimited fields of the
// source text, and our position within them.
type Lexer struct {
	fields []string
	pos    int
}

// New creates a Lexer over the given input text.
func New(input string) *Lexer {
	return &Lexer{fields: strings.Fields(input)}
}

// More reports whether any lexemes remain.
func (l *Lexer) More() bool {
	return l.pos < len(l.fields)
}

// NextToken returns the next token, advancing past it.
//
// It is only valid to call this while More() reports true.
func (l *Lexer) NextToken() token.Token {
	lexeme := l.fields[l.pos]
	l.pos++
	return classify(lexeme)
}

// classify maps a single whitespace-delimited lexeme to a Token, per the
// fixed precedence: keyword, then signed 32-bit integer, then Custom.
func classify(lexeme string) token.Token {
	if kind, ok := token.Lookup(lexeme); ok {
		return token.Word(kind)
	}
	if v, err := strconv.ParseInt(lexeme, 10, 32); err == nil {
		return token.Int32(int32(v))
	}
	return token.Ident(lexeme)
}

// Tokenize lexes an entire string into a token slice, a convenience wrapper
// around repeatedly calling NextToken, used by the driver and by tests to
// produce the tokens handed to State.Parse.
func Tokenize(input string) []token.Token {
	l := New(input)
	out := make([]token.Token, 0, len(l.fields))
	for l.More() {
		out = append(out, l.NextToken())
	}
	return out
}
