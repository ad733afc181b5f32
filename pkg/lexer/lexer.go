// Package lexer converts component source text into a token stream.
//
// It knows enough JavaScript to separate identifiers from comments, strings
// and template literals, and enough markup to recognise opening and closing
// tags. Tokenizing never fails; unknown characters become ILLEGAL tokens.
package lexer

import (
	"unicode"
	"unicode/utf8"

	"github.com/acklang/ack/pkg/token"
)

// Mode selects how '<' is interpreted.
type Mode int

const (
	// ModeScript treats '<' as a comparison operator.
	ModeScript Mode = iota
	// ModeMarkup treats '<name' and '</name>' as tags.
	ModeMarkup
)

// Lexer tokenizes script or markup input.
type Lexer struct {
	input string
	pos   int // offset of the current byte
	line  int // current line number (1-based)
	col   int // current column number (1-based)
	mode  Mode

	// Template literal nesting. Each entry is the brace depth at which a
	// ${ interpolation was opened.
	templateStack []int
	braceDepth    int

	// last significant token, used to tell regex literals from division
	prev token.Token
}

// New creates a script-mode lexer for the given input.
func New(input string) *Lexer {
	return NewWithMode(input, ModeScript)
}

// NewWithMode creates a lexer in the given mode.
func NewWithMode(input string, mode Mode) *Lexer {
	return &Lexer{
		input: input,
		line:  1,
		col:   1,
		mode:  mode,
	}
}

// Tokenize lexes the whole input. The last token is always EOF.
func (l *Lexer) Tokenize() []token.Token {
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			return tokens
		}
	}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() token.Token {
	tok := l.scan()
	if tok.Kind != token.COMMENT {
		l.prev = tok
	}
	return tok
}

func (l *Lexer) scan() token.Token {
	l.skipWhitespace()

	start := l.position()
	if l.pos >= len(l.input) {
		return token.Token{Kind: token.EOF, Pos: start}
	}

	ch := l.input[l.pos]
	switch {
	case ch == '/' && l.peek(1) == '/':
		return l.readLineComment(start)
	case ch == '/' && l.peek(1) == '*':
		return l.readBlockComment(start)
	case ch == '/' && l.mode == ModeScript && !token.EndsExpression(l.prev):
		return l.readRegex(start)
	case ch == '\'' || ch == '"':
		return l.readString(start, ch)
	case ch == '`':
		return l.readTemplateChunk(start)
	case ch == '<' && l.mode == ModeMarkup && l.atTag():
		return l.readTag(start)
	case isDigit(ch) || (ch == '.' && isDigit(l.peek(1))):
		return l.readNumber(start)
	case l.atIdentStart():
		return l.readIdent(start)
	}

	return l.readOperator(start)
}

// operators is ordered longest first so the first prefix match wins.
var operators = []struct {
	lit  string
	kind token.Kind
}{
	{">>>=", token.COMPOUND_ASSIGN},
	{"...", token.SPREAD},
	{"===", token.EQ},
	{"!==", token.NE},
	{"**=", token.COMPOUND_ASSIGN},
	{"<<=", token.COMPOUND_ASSIGN},
	{">>=", token.COMPOUND_ASSIGN},
	{"&&=", token.COMPOUND_ASSIGN},
	{"||=", token.COMPOUND_ASSIGN},
	{"??=", token.COMPOUND_ASSIGN},
	{">>>", token.SHIFT},
	{"=>", token.ARROW},
	{"==", token.EQ},
	{"!=", token.NE},
	{"<=", token.LE},
	{">=", token.GE},
	{"&&", token.AND},
	{"||", token.OR},
	{"??", token.NULLISH},
	{"?.", token.OPTCHAIN},
	{"++", token.INCREMENT},
	{"--", token.DECREMENT},
	{"+=", token.COMPOUND_ASSIGN},
	{"-=", token.COMPOUND_ASSIGN},
	{"*=", token.COMPOUND_ASSIGN},
	{"/=", token.COMPOUND_ASSIGN},
	{"%=", token.COMPOUND_ASSIGN},
	{"&=", token.COMPOUND_ASSIGN},
	{"|=", token.COMPOUND_ASSIGN},
	{"^=", token.COMPOUND_ASSIGN},
	{"**", token.POWER},
	{"<<", token.SHIFT},
	{">>", token.SHIFT},
	{"=", token.ASSIGN},
	{"<", token.LT},
	{">", token.GT},
	{"!", token.NOT},
	{"?", token.QUESTION},
	{"+", token.PLUS},
	{"-", token.MINUS},
	{"*", token.STAR},
	{"/", token.SLASH},
	{"%", token.PERCENT},
	{"&", token.AMP},
	{"|", token.PIPE},
	{"^", token.CARET},
	{"~", token.TILDE},
	{".", token.DOT},
	{",", token.COMMA},
	{";", token.SEMICOLON},
	{":", token.COLON},
	{"@", token.AT},
	{"#", token.HASH},
	{"(", token.LPAREN},
	{")", token.RPAREN},
	{"[", token.LBRACKET},
	{"]", token.RBRACKET},
	{"{", token.LBRACE},
	{"}", token.RBRACE},
}

func (l *Lexer) readOperator(start token.Position) token.Token {
	rest := l.input[l.pos:]
	for _, op := range operators {
		if len(rest) < len(op.lit) || rest[:len(op.lit)] != op.lit {
			continue
		}
		// a?.5:1 is a conditional, not optional chaining
		if op.kind == token.OPTCHAIN && isDigit(l.peek(2)) {
			continue
		}
		switch op.kind {
		case token.LBRACE:
			l.braceDepth++
		case token.RBRACE:
			if l.closesInterpolation() {
				return l.readTemplateChunk(start)
			}
			if l.braceDepth > 0 {
				l.braceDepth--
			}
		}
		l.advanceN(len(op.lit))
		return token.Token{Kind: op.kind, Literal: op.lit, Pos: start}
	}

	_, size := utf8.DecodeRuneInString(rest)
	l.advanceN(size)
	return token.Token{Kind: token.ILLEGAL, Literal: rest[:size], Pos: start}
}

// closesInterpolation reports whether the '}' at the current position ends
// a ${...} section of a template literal.
func (l *Lexer) closesInterpolation() bool {
	n := len(l.templateStack)
	return n > 0 && l.templateStack[n-1] == l.braceDepth-1
}

func (l *Lexer) readLineComment(start token.Position) token.Token {
	begin := l.pos
	for l.pos < len(l.input) && l.input[l.pos] != '\n' {
		l.advance()
	}
	return token.Token{Kind: token.COMMENT, Literal: l.input[begin:l.pos], Pos: start}
}

func (l *Lexer) readBlockComment(start token.Position) token.Token {
	begin := l.pos
	l.advanceN(2)
	for l.pos < len(l.input) {
		if l.input[l.pos] == '*' && l.peek(1) == '/' {
			l.advanceN(2)
			break
		}
		l.advance()
	}
	return token.Token{Kind: token.COMMENT, Literal: l.input[begin:l.pos], Pos: start}
}

// readString reads a quoted string. An unterminated string ends at the
// line break.
func (l *Lexer) readString(start token.Position, quote byte) token.Token {
	begin := l.pos
	l.advance()
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '\\' {
			l.advanceN(2)
			continue
		}
		if ch == '\n' {
			break
		}
		l.advance()
		if ch == quote {
			break
		}
	}
	return token.Token{Kind: token.STRING, Literal: l.input[begin:l.pos], Pos: start}
}

// readRegex reads a regular expression literal and its flags. The closing
// '/' is the first unescaped one outside a character class. An
// unterminated literal ends at the line break.
func (l *Lexer) readRegex(start token.Position) token.Token {
	begin := l.pos
	l.advance()
	inClass := false
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '\\' {
			l.advanceN(2)
			continue
		}
		if ch == '\n' {
			break
		}
		l.advance()
		if ch == '[' {
			inClass = true
		} else if ch == ']' {
			inClass = false
		} else if ch == '/' && !inClass {
			for l.pos < len(l.input) && l.atIdentPart() {
				l.advance()
			}
			break
		}
	}
	return token.Token{Kind: token.REGEX, Literal: l.input[begin:l.pos], Pos: start}
}

// readTemplateChunk reads template literal text starting at '`' or at the
// '}' that closes an interpolation, up to and including the closing '`' or
// the next '${'.
func (l *Lexer) readTemplateChunk(start token.Position) token.Token {
	begin := l.pos
	if l.input[l.pos] == '}' {
		l.templateStack = l.templateStack[:len(l.templateStack)-1]
		l.braceDepth--
	}
	l.advance()

	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '\\' {
			l.advanceN(2)
			continue
		}
		if ch == '`' {
			l.advance()
			break
		}
		if ch == '$' && l.peek(1) == '{' {
			l.advanceN(2)
			l.templateStack = append(l.templateStack, l.braceDepth)
			l.braceDepth++
			break
		}
		l.advance()
	}
	return token.Token{Kind: token.TEMPLATE, Literal: l.input[begin:l.pos], Pos: start}
}

func (l *Lexer) readNumber(start token.Position) token.Token {
	begin := l.pos
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if isDigit(ch) || isLetter(ch) || ch == '.' || ch == '_' {
			l.advance()
			continue
		}
		// exponent sign: 1e-5
		if (ch == '+' || ch == '-') && l.pos > begin && (l.input[l.pos-1] == 'e' || l.input[l.pos-1] == 'E') {
			l.advance()
			continue
		}
		break
	}
	return token.Token{Kind: token.NUMBER, Literal: l.input[begin:l.pos], Pos: start}
}

func (l *Lexer) readIdent(start token.Position) token.Token {
	begin := l.pos
	for l.pos < len(l.input) && l.atIdentPart() {
		_, size := utf8.DecodeRuneInString(l.input[l.pos:])
		l.advanceN(size)
	}
	lit := l.input[begin:l.pos]
	kind := token.IDENT
	if token.IsKeyword(lit) {
		kind = token.KEYWORD
	}
	return token.Token{Kind: kind, Literal: lit, Pos: start}
}

// atTag reports whether the '<' at the current position starts a tag.
func (l *Lexer) atTag() bool {
	next := l.peek(1)
	if isLetter(next) {
		return true
	}
	return next == '/' && isLetter(l.peek(2))
}

func (l *Lexer) readTag(start token.Position) token.Token {
	begin := l.pos
	if l.peek(1) == '/' {
		for l.pos < len(l.input) {
			ch := l.input[l.pos]
			l.advance()
			if ch == '>' {
				break
			}
		}
		return token.Token{Kind: token.TAG_CLOSE, Literal: l.input[begin:l.pos], Pos: start}
	}

	l.advance()
	for l.pos < len(l.input) && isTagNameChar(l.input[l.pos]) {
		l.advance()
	}
	return token.Token{Kind: token.TAG_OPEN, Literal: l.input[begin:l.pos], Pos: start}
}

// Helper methods

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			l.advance()
		default:
			return
		}
	}
}

// peek returns the byte n positions ahead, or 0 past the end.
func (l *Lexer) peek(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

// advance moves past the current byte, updating line and column.
func (l *Lexer) advance() {
	if l.pos >= len(l.input) {
		return
	}
	if l.input[l.pos] == '\n' {
		l.line++
		l.col = 1
	} else if l.input[l.pos] < utf8.RuneSelf || utf8.RuneStart(l.input[l.pos]) {
		l.col++
	}
	l.pos++
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n; i++ {
		l.advance()
	}
}

func (l *Lexer) position() token.Position {
	return token.Position{Line: l.line, Column: l.col, Offset: l.pos}
}

func (l *Lexer) atIdentStart() bool {
	ch := l.input[l.pos]
	if ch < utf8.RuneSelf {
		return isLetter(ch) || ch == '_' || ch == '$'
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return unicode.IsLetter(r)
}

func (l *Lexer) atIdentPart() bool {
	ch := l.input[l.pos]
	if ch < utf8.RuneSelf {
		return isLetter(ch) || isDigit(ch) || ch == '_' || ch == '$'
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isTagNameChar(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '-'
}
