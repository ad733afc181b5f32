// Package template parses the <template> region of a component into a tree
// of elements, text and {interpolations}.
//
// The parser is total: malformed markup never produces an error, only a
// best-effort partial tree.
package template

import (
	"regexp"
	"strings"

	"github.com/acklang/ack/pkg/core"
	"github.com/acklang/ack/pkg/token"
)

// identPattern matches anything that looks like a JavaScript identifier.
// Keywords and property names match too.
var identPattern = regexp.MustCompile(`[a-zA-Z_$][a-zA-Z0-9_$]*`)

// Parser is a recursive-descent parser over template markup.
// A Parser is single use; create one per template.
type Parser struct {
	input string
	pos   int
	line  int
	col   int

	used   []string
	seen   map[string]bool
	events []core.EventBinding
}

// NewParser creates a parser for the given template text.
func NewParser(input string) *Parser {
	return &Parser{
		input: input,
		line:  1,
		col:   1,
		seen:  make(map[string]bool),
	}
}

// Parse parses template text into a TemplateBlock.
func Parse(input string) core.TemplateBlock {
	return NewParser(input).Parse()
}

// Parse runs the parser. The returned AST root is an element with an empty
// tag whose children are the top-level nodes.
func (p *Parser) Parse() core.TemplateBlock {
	root := core.NewElementNode(p.position(), "")
	root.Children = p.parseNodes(nil)

	return core.TemplateBlock{
		Content:       p.input,
		AST:           root,
		UsedVariables: p.used,
		Events:        p.events,
	}
}

// parseNodes parses sibling nodes until the closing tag of parent or EOF.
// A nil parent means top level, where stray closing tags are skipped.
func (p *Parser) parseNodes(parent *core.ElementNode) []core.TemplateNode {
	var nodes []core.TemplateNode

	for p.pos < len(p.input) {
		switch {
		case p.hasPrefix("</"):
			p.skipClosingTag()
			if parent != nil {
				return nodes
			}
		case p.hasPrefix("<!--"):
			p.skipComment()
		case p.peek() == '<' && isTagNameChar(p.peekAt(1)):
			nodes = append(nodes, p.parseElement())
		case p.peek() == '{':
			nodes = append(nodes, p.parseInterpolation())
		default:
			if text := p.parseText(); text != nil {
				nodes = append(nodes, text)
			}
		}
	}

	return nodes
}

func (p *Parser) parseElement() *core.ElementNode {
	pos := p.position()
	p.advance() // <

	start := p.pos
	for p.pos < len(p.input) && isTagNameChar(p.peek()) {
		p.advance()
	}
	el := core.NewElementNode(pos, p.input[start:p.pos])

	selfClosed := p.parseAttributes(el)
	if selfClosed || core.SelfClosingTags[strings.ToLower(el.Tag)] {
		return el
	}

	el.Children = p.parseNodes(el)
	return el
}

// parseAttributes reads attributes up to and including '>' or '/>'.
// It reports whether the tag was explicitly self-closed.
func (p *Parser) parseAttributes(el *core.ElementNode) bool {
	for p.pos < len(p.input) {
		p.skipWhitespace()

		switch {
		case p.pos >= len(p.input):
			return false
		case p.peek() == '>':
			p.advance()
			return false
		case p.hasPrefix("/>"):
			p.advanceN(2)
			return true
		}

		start := p.pos
		for p.pos < len(p.input) && isAttrNameChar(p.peek()) {
			p.advance()
		}
		name := p.input[start:p.pos]
		if name == "" {
			// unexpected character inside a tag
			p.advance()
			continue
		}

		attr := core.TemplateAttribute{
			Name:           name,
			IsEventBinding: strings.HasPrefix(name, "@"),
		}

		p.skipWhitespace()
		if p.peek() == '=' {
			p.advance()
			p.skipWhitespace()
			attr.Value, attr.IsInterpolation = p.parseAttrValue()
		}

		p.collectIdentifiers(attr.Value)
		el.Attributes = append(el.Attributes, attr)

		if attr.IsEventBinding {
			p.events = append(p.events, core.EventBinding{
				ElementTag:        el.Tag,
				EventName:         strings.TrimPrefix(name, "@"),
				HandlerExpression: attr.Value,
				SourceLine:        p.line,
			})
		}
	}
	return false
}

// parseAttrValue reads "quoted", 'quoted', {braced} or bare values.
func (p *Parser) parseAttrValue() (string, bool) {
	switch ch := p.peek(); ch {
	case '"', '\'':
		p.advance()
		start := p.pos
		for p.pos < len(p.input) && p.peek() != ch {
			p.advance()
		}
		value := p.input[start:p.pos]
		p.advance() // closing quote
		trimmed := strings.TrimSpace(value)
		if len(trimmed) >= 2 && trimmed[0] == '{' && trimmed[len(trimmed)-1] == '}' {
			return strings.TrimSpace(trimmed[1 : len(trimmed)-1]), true
		}
		return value, false
	case '{':
		return p.readBraced(), true
	default:
		start := p.pos
		for p.pos < len(p.input) {
			c := p.peek()
			if c == '>' || isSpace(c) || (c == '/' && p.peekAt(1) == '>') {
				break
			}
			p.advance()
		}
		return p.input[start:p.pos], false
	}
}

func (p *Parser) parseInterpolation() *core.InterpolationNode {
	pos := p.position()
	expr := p.readBraced()
	p.collectIdentifiers(expr)
	return core.NewInterpolationNode(pos, expr)
}

// readBraced reads a brace-balanced {...} section starting at '{' and
// returns its trimmed contents. Unterminated sections run to EOF.
func (p *Parser) readBraced() string {
	p.advance() // {
	start := p.pos
	depth := 1
	for p.pos < len(p.input) {
		switch p.peek() {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				expr := p.input[start:p.pos]
				p.advance()
				return strings.TrimSpace(expr)
			}
		}
		p.advance()
	}
	return strings.TrimSpace(p.input[start:])
}

// parseText reads text up to the next '<' or '{'. Whitespace-only runs
// produce no node.
func (p *Parser) parseText() *core.TextNode {
	pos := p.position()
	start := p.pos
	// a '<' that does not start a tag is literal text
	p.advance()
	for p.pos < len(p.input) && p.peek() != '<' && p.peek() != '{' {
		p.advance()
	}
	content := p.input[start:p.pos]
	if strings.TrimSpace(content) == "" {
		return nil
	}
	return core.NewTextNode(pos, content)
}

func (p *Parser) skipClosingTag() {
	for p.pos < len(p.input) {
		ch := p.peek()
		p.advance()
		if ch == '>' {
			return
		}
	}
}

func (p *Parser) skipComment() {
	end := strings.Index(p.input[p.pos:], "-->")
	if end < 0 {
		p.advanceN(len(p.input) - p.pos)
		return
	}
	p.advanceN(end + len("-->"))
}

func (p *Parser) collectIdentifiers(s string) {
	for _, ident := range identPattern.FindAllString(s, -1) {
		if !p.seen[ident] {
			p.seen[ident] = true
			p.used = append(p.used, ident)
		}
	}
}

// Helper methods

func (p *Parser) peek() byte {
	return p.peekAt(0)
}

func (p *Parser) peekAt(n int) byte {
	if p.pos+n >= len(p.input) {
		return 0
	}
	return p.input[p.pos+n]
}

func (p *Parser) hasPrefix(s string) bool {
	return strings.HasPrefix(p.input[p.pos:], s)
}

func (p *Parser) advance() {
	if p.pos >= len(p.input) {
		return
	}
	if p.input[p.pos] == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
	p.pos++
}

func (p *Parser) advanceN(n int) {
	for i := 0; i < n; i++ {
		p.advance()
	}
}

func (p *Parser) skipWhitespace() {
	for p.pos < len(p.input) && isSpace(p.peek()) {
		p.advance()
	}
}

func (p *Parser) position() token.Position {
	return token.Position{Line: p.line, Column: p.col, Offset: p.pos}
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isTagNameChar(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '-'
}

func isAttrNameChar(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') ||
		ch == '@' || ch == ':' || ch == '-' || ch == '_' || ch == '.'
}
