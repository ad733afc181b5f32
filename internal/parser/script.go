package parser

import (
	"strings"

	"github.com/acklang/ack/pkg/core"
	"github.com/acklang/ack/pkg/lexer"
	"github.com/acklang/ack/pkg/token"
)

// ScriptScan is the result of scanning a script block.
type ScriptScan struct {
	Variables []core.ReactiveVariable
	Imports   []core.ImportStatement
}

// scanner walks the significant (non-comment) tokens of a script.
type scanner struct {
	src  string
	toks []token.Token
	pos  int
}

// ScanScript extracts top-level let/var declarations and import statements
// from script content. Declarations nested in blocks or functions are not
// reactive and are ignored, as are destructuring declarations and dynamic
// import() calls.
func ScanScript(content string) ScriptScan {
	s := &scanner{src: content}
	for _, tok := range lexer.New(content).Tokenize() {
		if tok.Kind != token.COMMENT {
			s.toks = append(s.toks, tok)
		}
	}

	var out ScriptScan
	seen := make(map[string]bool)
	depth := 0

	for s.pos < len(s.toks) {
		tok := s.toks[s.pos]
		if tok.Kind == token.EOF {
			break
		}

		if depth == 0 && !s.afterDot() {
			switch {
			case tok.Is(token.KEYWORD, "let"), tok.Is(token.KEYWORD, "var"):
				for _, v := range s.scanDeclaration() {
					// a redeclared var keeps its first declaration
					if !seen[v.Name] {
						seen[v.Name] = true
						out.Variables = append(out.Variables, v)
					}
				}
				continue
			case tok.Is(token.KEYWORD, "import") && !s.peekIs(1, token.LPAREN) && !s.peekIs(1, token.DOT):
				if imp, ok := s.scanImport(); ok {
					out.Imports = append(out.Imports, imp)
				}
				continue
			}
		}

		depth += depthDelta(tok.Kind)
		if depth < 0 {
			depth = 0
		}
		s.pos++
	}

	return out
}

// scanDeclaration consumes one let/var statement starting at the keyword.
func (s *scanner) scanDeclaration() []core.ReactiveVariable {
	kw := s.toks[s.pos]
	kind := core.DeclarationKind(kw.Literal)
	s.pos++

	var vars []core.ReactiveVariable
	last := kw

	for s.pos < len(s.toks) {
		name := s.toks[s.pos]
		if name.Kind != token.IDENT {
			// destructuring or malformed: skip the rest of the statement
			last = s.skipExpression(last)
			break
		}
		s.pos++
		last = name

		v := core.ReactiveVariable{
			Name:            name.Literal,
			Kind:            kind,
			InitialValue:    "undefined",
			DeclarationLine: name.Pos.Line,
			NameOffset:      name.Pos.Offset,
		}

		if s.peekIs(0, token.ASSIGN) {
			s.pos++
			start := s.current().Pos.Offset
			end := s.skipExpression(s.toks[s.pos-1])
			if end.End() > start {
				v.InitialValue = strings.TrimSpace(s.src[start:end.End()])
				last = end
			}
		}
		vars = append(vars, v)

		if s.peekIs(0, token.COMMA) {
			last = s.current()
			s.pos++
			continue
		}
		break
	}

	if s.peekIs(0, token.SEMICOLON) {
		last = s.current()
		s.pos++
	}

	span := token.Span{Start: kw.Pos, End: endPosition(last)}
	for i := range vars {
		vars[i].Span = span
	}
	return vars
}

// skipExpression advances over one expression and returns the last token
// consumed, or prev if nothing was consumed. It stops before a top-level
// ';' or ',', an unbalanced closer, or a line break that starts a new
// statement.
func (s *scanner) skipExpression(prev token.Token) token.Token {
	depth := 0
	last := prev
	consumed := false

	for s.pos < len(s.toks) {
		tok := s.toks[s.pos]
		if tok.Kind == token.EOF {
			break
		}
		if depth == 0 {
			switch tok.Kind {
			case token.SEMICOLON, token.COMMA, token.RPAREN, token.RBRACKET, token.RBRACE:
				return last
			}
			if consumed && tok.Pos.Line > last.Pos.Line && token.EndsExpression(last) && startsStatement(tok) {
				return last
			}
		}
		depth += depthDelta(tok.Kind)
		last = tok
		consumed = true
		s.pos++
	}
	return last
}

// scanImport consumes one static import statement starting at the keyword.
func (s *scanner) scanImport() (core.ImportStatement, bool) {
	kw := s.toks[s.pos]
	s.pos++

	imp := core.ImportStatement{}

	if s.peekIs(0, token.STRING) {
		imp.Source = unquote(s.current().Literal)
		return s.finishImport(imp, kw), true
	}

	if tok := s.current(); tok.Kind == token.IDENT {
		imp.Specifiers = append(imp.Specifiers, core.ImportSpecifier{
			Local:    tok.Literal,
			Imported: "default",
			Kind:     core.ImportDefault,
		})
		s.pos++
		if s.peekIs(0, token.COMMA) {
			s.pos++
		}
	}

	switch {
	case s.peekIs(0, token.STAR):
		s.pos++
		if !s.current().Is(token.IDENT, "as") || !s.peekIs(1, token.IDENT) {
			return core.ImportStatement{}, false
		}
		s.pos++
		imp.Specifiers = append(imp.Specifiers, core.ImportSpecifier{
			Local:    s.current().Literal,
			Imported: "*",
			Kind:     core.ImportNamed,
		})
		s.pos++
	case s.peekIs(0, token.LBRACE):
		s.pos++
		for s.pos < len(s.toks) && !s.peekIs(0, token.RBRACE) {
			name := s.current()
			if name.Kind != token.IDENT && name.Kind != token.KEYWORD {
				return core.ImportStatement{}, false
			}
			s.pos++
			specifier := core.ImportSpecifier{Local: name.Literal, Imported: name.Literal, Kind: core.ImportNamed}
			if s.current().Is(token.IDENT, "as") {
				s.pos++
				specifier.Local = s.current().Literal
				s.pos++
			}
			imp.Specifiers = append(imp.Specifiers, specifier)
			if s.peekIs(0, token.COMMA) {
				s.pos++
			}
		}
		s.pos++ // }
	}

	if !s.current().Is(token.KEYWORD, "from") || !s.peekIs(1, token.STRING) {
		return core.ImportStatement{}, false
	}
	s.pos++
	imp.Source = unquote(s.current().Literal)
	return s.finishImport(imp, kw), true
}

// finishImport consumes the source string and an optional ';'.
func (s *scanner) finishImport(imp core.ImportStatement, kw token.Token) core.ImportStatement {
	last := s.current()
	s.pos++
	if s.peekIs(0, token.SEMICOLON) {
		last = s.current()
		s.pos++
	}
	imp.Span = token.Span{Start: kw.Pos, End: endPosition(last)}
	return imp
}

// Helper methods

func (s *scanner) current() token.Token {
	if s.pos >= len(s.toks) {
		return token.Token{Kind: token.EOF}
	}
	return s.toks[s.pos]
}

func (s *scanner) peekIs(n int, kind token.Kind) bool {
	if s.pos+n >= len(s.toks) {
		return false
	}
	return s.toks[s.pos+n].Kind == kind
}

// afterDot reports whether the current token follows '.', as in obj.let.
func (s *scanner) afterDot() bool {
	if s.pos == 0 {
		return false
	}
	k := s.toks[s.pos-1].Kind
	return k == token.DOT || k == token.OPTCHAIN
}

func depthDelta(k token.Kind) int {
	switch k {
	case token.LPAREN, token.LBRACKET, token.LBRACE:
		return 1
	case token.RPAREN, token.RBRACKET, token.RBRACE:
		return -1
	}
	return 0
}

func startsStatement(tok token.Token) bool {
	switch tok.Kind {
	case token.IDENT, token.NUMBER, token.STRING, token.REGEX, token.INCREMENT, token.DECREMENT, token.AT, token.HASH:
		return true
	case token.TEMPLATE:
		return strings.HasPrefix(tok.Literal, "`")
	case token.KEYWORD:
		switch tok.Literal {
		case "in", "instanceof", "of":
			return false
		}
		return true
	}
	return false
}

// endPosition returns the position just past tok.
func endPosition(tok token.Token) token.Position {
	end := tok.Pos
	end.Offset = tok.End()
	if nl := strings.LastIndexByte(tok.Literal, '\n'); nl >= 0 {
		end.Line += strings.Count(tok.Literal, "\n")
		end.Column = len(tok.Literal) - nl
	} else {
		end.Column += len(tok.Literal)
	}
	return end
}

func unquote(lit string) string {
	if len(lit) >= 2 && (lit[0] == '"' || lit[0] == '\'') && lit[len(lit)-1] == lit[0] {
		return lit[1 : len(lit)-1]
	}
	return strings.Trim(lit, `"'`)
}
