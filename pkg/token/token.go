// Package token defines the lexical tokens shared by the script and markup
// scanners of the ack compiler.
package token

import (
	"fmt"
	"strings"
)

// Kind represents the type of a lexical token.
type Kind int

const (
	// Special tokens
	EOF Kind = iota
	ILLEGAL
	COMMENT // line or block comment, text includes delimiters

	// Literals
	IDENT    // count, $store, _tmp
	KEYWORD  // let, var, import, ...
	NUMBER   // 42, 3.14, 0xff, 1e10
	STRING   // 'a' or "a", literal includes quotes
	TEMPLATE // a chunk of a `template ${literal}`
	REGEX    // /pattern/flags

	// Markup
	TAG_OPEN  // <div
	TAG_CLOSE // </div>

	// Assignment
	ASSIGN          // =
	COMPOUND_ASSIGN // += -= *= /= %= **= &&= ||= ??= <<= >>= >>>= &= |= ^=
	INCREMENT       // ++
	DECREMENT       // --

	// Comparison and logic
	EQ       // == or ===
	NE       // != or !==
	LT       // <
	GT       // >
	LE       // <=
	GE       // >=
	AND      // &&
	OR       // ||
	NOT      // !
	NULLISH  // ??
	QUESTION // ?
	ARROW    // =>

	// Arithmetic and bitwise
	PLUS     // +
	MINUS    // -
	STAR     // *
	SLASH    // /
	PERCENT  // %
	POWER    // **
	AMP      // &
	PIPE     // |
	CARET    // ^
	TILDE    // ~
	SHIFT    // << >> >>>
	OPTCHAIN // ?.

	// Punctuation
	DOT       // .
	SPREAD    // ...
	COMMA     // ,
	SEMICOLON // ;
	COLON     // :
	AT        // @
	HASH      // #
	LPAREN    // (
	RPAREN    // )
	LBRACKET  // [
	RBRACKET  // ]
	LBRACE    // {
	RBRACE    // }
)

var kindNames = map[Kind]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",
	COMMENT: "COMMENT",

	IDENT:    "IDENT",
	KEYWORD:  "KEYWORD",
	NUMBER:   "NUMBER",
	STRING:   "STRING",
	TEMPLATE: "TEMPLATE",
	REGEX:    "REGEX",

	TAG_OPEN:  "TAG_OPEN",
	TAG_CLOSE: "TAG_CLOSE",

	ASSIGN:          "=",
	COMPOUND_ASSIGN: "op=",
	INCREMENT:       "++",
	DECREMENT:       "--",

	EQ:       "==",
	NE:       "!=",
	LT:       "<",
	GT:       ">",
	LE:       "<=",
	GE:       ">=",
	AND:      "&&",
	OR:       "||",
	NOT:      "!",
	NULLISH:  "??",
	QUESTION: "?",
	ARROW:    "=>",

	PLUS:     "+",
	MINUS:    "-",
	STAR:     "*",
	SLASH:    "/",
	PERCENT:  "%",
	POWER:    "**",
	AMP:      "&",
	PIPE:     "|",
	CARET:    "^",
	TILDE:    "~",
	SHIFT:    "<<",
	OPTCHAIN: "?.",

	DOT:       ".",
	SPREAD:    "...",
	COMMA:     ",",
	SEMICOLON: ";",
	COLON:     ":",
	AT:        "@",
	HASH:      "#",
	LPAREN:    "(",
	RPAREN:    ")",
	LBRACKET:  "[",
	RBRACKET:  "]",
	LBRACE:    "{",
	RBRACE:    "}",
}

// String returns a human-readable representation of the token kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", k)
}

// IsAssignment reports whether the kind writes to its left operand.
func (k Kind) IsAssignment() bool {
	switch k {
	case ASSIGN, COMPOUND_ASSIGN, INCREMENT, DECREMENT:
		return true
	}
	return false
}

// Token is a single lexical token.
type Token struct {
	Kind    Kind
	Literal string
	Pos     Position
}

// End returns the byte offset just past the token.
func (t Token) End() int {
	return t.Pos.Offset + len(t.Literal)
}

// Is reports whether the token has the given kind and literal.
func (t Token) Is(kind Kind, literal string) bool {
	return t.Kind == kind && t.Literal == literal
}

func (t Token) String() string {
	if t.Literal == "" {
		return t.Kind.String()
	}
	return fmt.Sprintf("%s(%q)", t.Kind, t.Literal)
}

// EndsExpression reports whether tok can be the last token of an
// operand. A '/' after such a token divides; anywhere else it starts a
// regular expression literal.
func EndsExpression(tok Token) bool {
	switch tok.Kind {
	case IDENT, NUMBER, STRING, REGEX, RPAREN, RBRACKET, RBRACE, INCREMENT, DECREMENT:
		return true
	case TEMPLATE:
		return strings.HasSuffix(tok.Literal, "`")
	case KEYWORD:
		switch tok.Literal {
		case "true", "false", "null", "undefined", "this", "super":
			return true
		}
	}
	return false
}

// keywords holds the reserved words that never name a reactive variable.
var keywords = map[string]struct{}{
	"await": {}, "break": {}, "case": {}, "catch": {}, "class": {},
	"const": {}, "continue": {}, "debugger": {}, "default": {}, "delete": {},
	"do": {}, "else": {}, "export": {}, "extends": {}, "false": {},
	"finally": {}, "for": {}, "from": {}, "function": {}, "if": {},
	"import": {}, "in": {}, "instanceof": {}, "let": {}, "new": {},
	"null": {}, "of": {}, "return": {}, "super": {}, "switch": {},
	"this": {}, "throw": {}, "true": {}, "try": {}, "typeof": {},
	"undefined": {}, "var": {}, "void": {}, "while": {}, "with": {},
	"yield": {},
}

// IsKeyword reports whether ident is a reserved word.
func IsKeyword(ident string) bool {
	_, ok := keywords[ident]
	return ok
}
