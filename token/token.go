// Package token contains the tagged token type produced by the lexer and
// consumed by both the interpreter and the JIT code generator.
//
// Unlike a conventional expression compiler's token stream, a Token here is
// not merely a lexical artifact: tokens are pushed onto and popped from the
// running queue at evaluation time (a `:` definition is captured by reading
// tokens back off the queue), so Token must be cheap to copy and must compare
// by value.
package token

import "fmt"

// Kind identifies the case of a Token.
type Kind int

// The complete set of token kinds understood by the core.
const (
	// Num carries a 32-bit signed literal in Token.Value.
	Num Kind = iota

	// Arithmetic operators.
	Plus    // +
	Minus   // -
	Star    // *
	Slash   // /
	Percent // %
	Pow     // **
	Less    // <

	// Definition delimiters.
	DefBegin // :
	DefEnd   // ;

	// Control words.
	If
	Skip

	// Output / termination.
	Print
	Quit

	// Stack manipulation.
	Swap
	Rot
	Pick
	Drop

	// Custom carries an identifier in Token.Name.
	Custom
)

var kindNames = map[Kind]string{
	Num:      "NUM",
	Plus:     "+",
	Minus:    "-",
	Star:     "*",
	Slash:    "/",
	Percent:  "%",
	Pow:      "**",
	Less:     "<",
	DefBegin: ":",
	DefEnd:   ";",
	If:       "if",
	Skip:     "skip",
	Print:    "print",
	Quit:     "quit",
	Swap:     "swap",
	Rot:      "rot",
	Pick:     "pick",
	Drop:     "drop",
	Custom:   "CUSTOM",
}

// String renders a Kind by its canonical lexeme, for diagnostics.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// keywords maps every lexeme with a fixed meaning to its Kind. Anything not
// present here is either a Num or a Custom, decided by the lexer.
var keywords = map[string]Kind{
	"+":     Plus,
	"-":     Minus,
	"*":     Star,
	"/":     Slash,
	"%":     Percent,
	"**":    Pow,
	"<":     Less,
	":":     DefBegin,
	";":     DefEnd,
	"if":    If,
	"skip":  Skip,
	"print": Print,
	"quit":  Quit,
	"swap":  Swap,
	"rot":   Rot,
	"pick":  Pick,
	"drop":  Drop,
}

// Lookup returns the Kind for a keyword lexeme, and false if the lexeme is
// not one of the fixed keywords (so the caller should try a numeric literal,
// falling back to Custom).
func Lookup(lexeme string) (Kind, bool) {
	k, ok := keywords[lexeme]
	return k, ok
}

// Token is a tagged, value-comparable union of every case the core can
// dispatch on. Only one of Value/Name is meaningful, depending on Kind.
type Token struct {
	Kind  Kind
	Value int32  // meaningful iff Kind == Num
	Name  string // meaningful iff Kind == Custom
}

// Int32 returns a Num token.
func Int32(v int32) Token { return Token{Kind: Num, Value: v} }

// Word returns the token for a fixed keyword.
func Word(k Kind) Token { return Token{Kind: k} }

// Ident returns a Custom token naming an identifier.
func Ident(name string) Token { return Token{Kind: Custom, Name: name} }

// Equal reports whether two tokens have the same case and the same payload.
func (t Token) Equal(o Token) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case Num:
		return t.Value == o.Value
	case Custom:
		return t.Name == o.Name
	default:
		return true
	}
}

// String renders a token for diagnostics and trace logging.
func (t Token) String() string {
	switch t.Kind {
	case Num:
		return fmt.Sprintf("%d", t.Value)
	case Custom:
		return t.Name
	default:
		return t.Kind.String()
	}
}
