package codegen

import (
	"sort"
	"strings"

	"github.com/acklang/ack/pkg/core"
	"github.com/acklang/ack/pkg/lexer"
	"github.com/acklang/ack/pkg/token"
)

// invalidateFn is called by rewritten code after every assignment to a
// reactive variable. It returns its second argument.
const invalidateFn = "__invalidate"

// initialObj holds the initial values passed to a component factory.
const initialObj = "__initial"

// edit replaces src[start:end] with text. Insertions have start == end.
type edit struct {
	start, end int
	text       string
	closing    bool
}

// rewriter applies reactive instrumentation to a piece of script.
type rewriter struct {
	src   string
	toks  []token.Token
	names map[string]bool
	decls map[int]bool // offsets of declaration name tokens
	edits []edit
}

func newRewriter(src string, names map[string]bool) *rewriter {
	r := &rewriter{src: src, names: names, decls: make(map[int]bool)}
	for _, tok := range lexer.New(src).Tokenize() {
		if tok.Kind != token.COMMENT && tok.Kind != token.EOF {
			r.toks = append(r.toks, tok)
		}
	}
	return r
}

// instrumentScript rewrites a component script for inlining into the
// factory body: imports are removed, export modifiers are dropped,
// reactive initializers read from the initial values object first, and
// assignments to reactive variables notify the component.
func instrumentScript(script core.ScriptBlock) string {
	r := newRewriter(script.Content, variableSet(script.ReactiveVariables))

	for _, imp := range script.Imports {
		r.edits = append(r.edits, edit{start: imp.Span.Start.Offset, end: imp.Span.End.Offset})
	}
	r.dropExports()
	for _, v := range script.ReactiveVariables {
		r.seedInitializer(v)
	}
	r.wrapAssignments()

	return r.apply()
}

// instrumentExpression wraps assignments to reactive names in expr.
func instrumentExpression(expr string, names map[string]bool) string {
	r := newRewriter(expr, names)
	r.wrapAssignments()
	return r.apply()
}

// dropExports removes top-level export syntax, which is not valid inside
// the factory body. Modifiers before declarations are dropped, export
// lists and re-exports are removed whole, and "export default" keeps its
// declaration or becomes a discarded expression.
func (r *rewriter) dropExports() {
	depth := 0
	for i := 0; i < len(r.toks); i++ {
		tok := r.toks[i]
		if depth != 0 || !tok.Is(token.KEYWORD, "export") {
			depth += depthDelta(tok.Kind)
			continue
		}
		next := r.next(i)
		switch {
		case isDeclaringKeyword(next) || next.Is(token.IDENT, "async"):
			r.edits = append(r.edits, edit{start: tok.Pos.Offset, end: next.Pos.Offset})
		case next.Is(token.KEYWORD, "default"):
			after := r.next(i + 1)
			if after.Kind == token.EOF {
				r.edits = append(r.edits, edit{start: tok.Pos.Offset, end: next.End()})
			} else if after.Is(token.KEYWORD, "function") || after.Is(token.KEYWORD, "class") {
				r.edits = append(r.edits, edit{start: tok.Pos.Offset, end: after.Pos.Offset})
			} else {
				r.edits = append(r.edits, edit{start: tok.Pos.Offset, end: after.Pos.Offset, text: "void "})
			}
			i++
		case next.Kind == token.LBRACE || next.Kind == token.STAR:
			end := r.exportClauseEnd(i + 1)
			r.edits = append(r.edits, edit{start: tok.Pos.Offset, end: r.toks[end].End()})
			i = end
		}
	}
}

// exportClauseEnd returns the index of the last token of an export list
// or re-export starting at token i: "{ a, b as c }" or "* [as ns]",
// then an optional 'from "mod"' and ';'.
func (r *rewriter) exportClauseEnd(i int) int {
	j := i
	if r.toks[j].Kind == token.LBRACE {
		for j+1 < len(r.toks) && r.toks[j].Kind != token.RBRACE {
			j++
		}
	} else if r.next(j).Is(token.IDENT, "as") && r.next(j+1).Kind == token.IDENT {
		j += 2
	}
	if r.next(j).Is(token.KEYWORD, "from") && r.next(j+1).Kind == token.STRING {
		j += 2
	}
	if r.next(j).Kind == token.SEMICOLON {
		j++
	}
	return j
}

// seedInitializer rewrites "let x = init" to read x from the initial
// values first.
func (r *rewriter) seedInitializer(v core.ReactiveVariable) {
	for i, tok := range r.toks {
		if !v.DeclaresAt(tok.Pos.Offset) || tok.Kind != token.IDENT || tok.Literal != v.Name {
			continue
		}
		r.decls[tok.Pos.Offset] = true

		seed := quote(v.Name) + " in " + initialObj + " ? " + initialObj + "[" + quote(v.Name) + "] : "
		hasInit := i+2 < len(r.toks) && r.toks[i+1].Kind == token.ASSIGN
		switch {
		case hasInit && v.InitialValue != "undefined":
			start := r.toks[i+2].Pos.Offset
			end := start + len(v.InitialValue)
			r.edits = append(r.edits,
				edit{start: start, end: start, text: seed + "("},
				edit{start: end, end: end, text: ")", closing: true},
			)
		case hasInit && r.toks[i+2].Is(token.KEYWORD, "undefined"):
			start := r.toks[i+2].Pos.Offset
			r.edits = append(r.edits, edit{start: start, end: start, text: seed})
		case !hasInit:
			r.edits = append(r.edits, edit{start: tok.End(), end: tok.End(), text: " = " + seed + "undefined"})
		}
		return
	}
}

// wrapAssignments turns "x = v", "x += v", "x++" and "++x" into
// __invalidate("x", ...).
func (r *rewriter) wrapAssignments() {
	for i, tok := range r.toks {
		if tok.Kind != token.IDENT || !r.names[tok.Literal] || r.decls[tok.Pos.Offset] {
			continue
		}
		if p := r.prev(i); p.Kind == token.DOT || p.Kind == token.OPTCHAIN || isDeclaringKeyword(p) {
			continue
		}

		open := invalidateFn + "(" + quote(tok.Literal) + ", "
		next := r.next(i)
		switch {
		case (next.Kind == token.INCREMENT || next.Kind == token.DECREMENT) && next.Pos.Line == tok.Pos.Line:
			r.wrap(tok.Pos.Offset, next.End(), open)
		case next.Kind == token.ASSIGN || next.Kind == token.COMPOUND_ASSIGN:
			r.wrap(tok.Pos.Offset, r.expressionEnd(i+2), open)
		case r.isPrefixUpdate(i):
			r.wrap(r.toks[i-1].Pos.Offset, tok.End(), open)
		}
	}
}

func (r *rewriter) wrap(start, end int, open string) {
	r.edits = append(r.edits,
		edit{start: start, end: start, text: open},
		edit{start: end, end: end, text: ")", closing: true},
	)
}

// expressionEnd returns the offset just past the expression starting at
// token i. The expression ends before a top-level ';' or ',', an
// unbalanced closer, or a line break that starts a new statement.
func (r *rewriter) expressionEnd(i int) int {
	if i >= len(r.toks) {
		return len(r.src)
	}
	depth := 0
	last := r.toks[i]
	for j := i; j < len(r.toks); j++ {
		tok := r.toks[j]
		if depth == 0 {
			switch tok.Kind {
			case token.SEMICOLON, token.COMMA, token.RPAREN, token.RBRACKET, token.RBRACE:
				if j == i {
					return tok.Pos.Offset
				}
				return last.End()
			}
			if j > i && tok.Pos.Line > last.Pos.Line && token.EndsExpression(last) && startsStatement(tok) {
				return last.End()
			}
		}
		depth += depthDelta(tok.Kind)
		last = tok
	}
	return last.End()
}

func (r *rewriter) isPrefixUpdate(i int) bool {
	p := r.prev(i)
	if p.Kind != token.INCREMENT && p.Kind != token.DECREMENT {
		return false
	}
	if i >= 2 && r.toks[i-2].Pos.Line == p.Pos.Line && token.EndsExpression(r.toks[i-2]) {
		return false
	}
	return true
}

func (r *rewriter) prev(i int) token.Token {
	if i == 0 {
		return token.Token{Kind: token.EOF}
	}
	return r.toks[i-1]
}

func (r *rewriter) next(i int) token.Token {
	if i+1 >= len(r.toks) {
		return token.Token{Kind: token.EOF}
	}
	return r.toks[i+1]
}

// apply returns src with all edits applied.
func (r *rewriter) apply() string {
	if len(r.edits) == 0 {
		return r.src
	}
	sort.SliceStable(r.edits, func(i, j int) bool {
		a, b := r.edits[i], r.edits[j]
		if a.start != b.start {
			return a.start < b.start
		}
		return a.closing && !b.closing
	})

	var sb strings.Builder
	last := 0
	for _, e := range r.edits {
		if e.start < last {
			// overlaps a removed range
			continue
		}
		sb.WriteString(r.src[last:e.start])
		sb.WriteString(e.text)
		last = e.end
	}
	sb.WriteString(r.src[last:])
	return sb.String()
}

// isDeclaringKeyword reports whether tok introduces a binding name.
func isDeclaringKeyword(tok token.Token) bool {
	if tok.Kind != token.KEYWORD {
		return false
	}
	switch tok.Literal {
	case "let", "var", "const", "function", "class":
		return true
	}
	return false
}

func variableSet(vars []core.ReactiveVariable) map[string]bool {
	names := make(map[string]bool, len(vars))
	for _, v := range vars {
		names[v.Name] = true
	}
	return names
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
	case token.IDENT, token.NUMBER, token.STRING, token.REGEX, token.INCREMENT, token.DECREMENT:
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
