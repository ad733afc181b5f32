// Package reactivity finds references to reactive variables in a script
// and resolves the dependencies between them.
//
// Analysis runs over lexer tokens, so identifiers inside strings and
// comments never count as references or dependencies.
package reactivity

import (
	"log/slog"

	"github.com/acklang/ack/pkg/core"
	"github.com/acklang/ack/pkg/lexer"
	"github.com/acklang/ack/pkg/token"
)

// ReferenceKind classifies a reference to a variable.
type ReferenceKind string

// Reference kinds.
const (
	ReferenceRead       ReferenceKind = "read"
	ReferenceAssignment ReferenceKind = "assignment"
)

// Reference is one use of a variable in the script.
type Reference struct {
	Name   string
	Kind   ReferenceKind
	Line   int
	Column int
}

// Analyzer analyzes one script block. Create one per compile.
type Analyzer struct {
	tokens       []token.Token
	templateVars map[string]bool
	declSites    map[int]bool // offsets of declaration names
	variables    []core.ReactiveVariable
	logger       *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithTemplateVariables marks names referenced by the template.
func WithTemplateVariables(names []string) Option {
	return func(a *Analyzer) {
		for _, n := range names {
			a.templateVars[n] = true
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) { a.logger = logger }
}

// NewAnalyzer creates an analyzer for script content.
func NewAnalyzer(script string, opts ...Option) *Analyzer {
	a := &Analyzer{
		tokens:       significantTokens(script),
		templateVars: make(map[string]bool),
		declSites:    make(map[int]bool),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.New(slog.DiscardHandler)
	}
	return a
}

// Analyze returns a copy of declared with UsedInTemplate and Dependencies
// filled in. Input order is preserved.
func (a *Analyzer) Analyze(declared []core.ReactiveVariable) []core.ReactiveVariable {
	a.markDeclarationSites(declared)

	names := make(map[string]bool, len(declared))
	for _, v := range declared {
		names[v.Name] = true
	}

	out := make([]core.ReactiveVariable, len(declared))
	for i, v := range declared {
		v.UsedInTemplate = a.templateVars[v.Name] || len(a.References(v.Name)) > 0
		v.Dependencies = Dependencies(v.InitialValue, v.Name, names)
		out[i] = v

		a.logger.Debug("analyzed variable",
			"variable", v.Name,
			"dependencies", v.Dependencies,
			"used", v.UsedInTemplate,
		)
	}

	a.variables = out
	return out
}

// Variables returns the result of the last Analyze call.
func (a *Analyzer) Variables() []core.ReactiveVariable {
	return a.variables
}

// References returns every use of name in the script, excluding its
// declaration and property accesses such as obj.name.
func (a *Analyzer) References(name string) []Reference {
	var refs []Reference
	for i, tok := range a.tokens {
		if tok.Kind != token.IDENT || tok.Literal != name {
			continue
		}
		if a.declSites[tok.Pos.Offset] || isDeclarationName(a.tokens, i) || !isReference(a.tokens, i) {
			continue
		}

		kind := ReferenceRead
		if next(a.tokens, i).Kind.IsAssignment() || isPrefixUpdate(a.tokens, i) {
			kind = ReferenceAssignment
		}
		refs = append(refs, Reference{
			Name:   name,
			Kind:   kind,
			Line:   tok.Pos.Line,
			Column: tok.Pos.Column,
		})
	}
	return refs
}

// HasCircularDependency reports whether the last analyzed variable set
// contains a dependency cycle.
func (a *Analyzer) HasCircularDependency() bool {
	return HasCircularDependency(a.variables)
}

// UnusedVariables returns analyzed variables that are neither referenced
// in the script nor in the template.
func (a *Analyzer) UnusedVariables() []core.ReactiveVariable {
	var unused []core.ReactiveVariable
	for _, v := range a.variables {
		if !v.UsedInTemplate {
			unused = append(unused, v)
		}
	}
	return unused
}

// markDeclarationSites records the offset of each variable's name token.
func (a *Analyzer) markDeclarationSites(declared []core.ReactiveVariable) {
	for _, v := range declared {
		if v.DeclaresAt(v.NameOffset) {
			a.declSites[v.NameOffset] = true
		}
	}
}

// Dependencies returns the declared names read by expr, in order of first
// appearance. self is never reported.
func Dependencies(expr, self string, declared map[string]bool) []string {
	toks := significantTokens(expr)

	var deps []string
	seen := make(map[string]bool)
	for i, tok := range toks {
		if tok.Kind != token.IDENT || tok.Literal == self || !declared[tok.Literal] || seen[tok.Literal] {
			continue
		}
		if !isReference(toks, i) {
			continue
		}
		seen[tok.Literal] = true
		deps = append(deps, tok.Literal)
	}
	return deps
}

// HasCircularDependency runs a recursion-stack DFS over the Dependencies
// edges of vars and reports whether any cycle exists.
func HasCircularDependency(vars []core.ReactiveVariable) bool {
	deps := make(map[string][]string, len(vars))
	for _, v := range vars {
		deps[v.Name] = v.Dependencies
	}

	visited := make(map[string]bool)
	recStack := make(map[string]bool)

	var dfs func(name string) bool
	dfs = func(name string) bool {
		visited[name] = true
		recStack[name] = true

		for _, dep := range deps[name] {
			if recStack[dep] {
				return true
			}
			if !visited[dep] && dfs(dep) {
				return true
			}
		}

		recStack[name] = false
		return false
	}

	for _, v := range vars {
		if !visited[v.Name] && dfs(v.Name) {
			return true
		}
	}
	return false
}

// Token helpers

func significantTokens(src string) []token.Token {
	var toks []token.Token
	for _, tok := range lexer.New(src).Tokenize() {
		if tok.Kind != token.COMMENT && tok.Kind != token.EOF {
			toks = append(toks, tok)
		}
	}
	return toks
}

func prev(toks []token.Token, i int) token.Token {
	if i == 0 {
		return token.Token{Kind: token.EOF}
	}
	return toks[i-1]
}

func next(toks []token.Token, i int) token.Token {
	if i+1 >= len(toks) {
		return token.Token{Kind: token.EOF}
	}
	return toks[i+1]
}

// isReference rejects property accesses (obj.x, obj?.x) and object
// literal keys ({x: 1}).
func isReference(toks []token.Token, i int) bool {
	switch prev(toks, i).Kind {
	case token.DOT, token.OPTCHAIN:
		return false
	case token.LBRACE, token.COMMA:
		if next(toks, i).Kind == token.COLON {
			return false
		}
	}
	return true
}

// isDeclarationName reports whether toks[i] directly follows a declaring
// keyword, as in "let x" or "function x".
func isDeclarationName(toks []token.Token, i int) bool {
	p := prev(toks, i)
	if p.Kind != token.KEYWORD {
		return false
	}
	switch p.Literal {
	case "let", "var", "const", "function", "class":
		return true
	}
	return false
}

func isPrefixUpdate(toks []token.Token, i int) bool {
	k := prev(toks, i).Kind
	if k != token.INCREMENT && k != token.DECREMENT {
		return false
	}
	// a++ b: the operator belongs to the previous operand on the same line
	if i >= 2 && toks[i-1].Pos.Line == toks[i-2].Pos.Line && endsOperand(toks[i-2]) {
		return false
	}
	return true
}

func endsOperand(tok token.Token) bool {
	switch tok.Kind {
	case token.IDENT, token.NUMBER, token.STRING, token.REGEX, token.RPAREN, token.RBRACKET:
		return true
	}
	return false
}
