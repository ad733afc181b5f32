// Package style parses the <style> region of a component into rules and
// scopes its selectors to the component.
package style

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/acklang/ack/pkg/core"
	"github.com/google/uuid"
)

// ScopePrefix starts every generated scope ID.
const ScopePrefix = "ack-"

// scopeIDLength is the number of base36 characters after the prefix.
const scopeIDLength = 9

// ScopeIDFunc produces a CSS-selector-safe scope token.
type ScopeIDFunc func() string

// NewScopeID returns "ack-" followed by 9 random base36 characters.
// It draws from uuid's random source and keeps no state of its own, so it
// is safe to call from concurrent compiles.
func NewScopeID() string {
	id := uuid.New()
	n := binary.BigEndian.Uint64(id[:8])
	s := strconv.FormatUint(n, 36)
	if len(s) < scopeIDLength {
		s = strings.Repeat("0", scopeIDLength-len(s)) + s
	}
	return ScopePrefix + s[len(s)-scopeIDLength:]
}

// Parser parses CSS text. The zero value uses NewScopeID.
type Parser struct {
	ScopeID ScopeIDFunc
}

// NewParser creates a parser. A nil fn selects NewScopeID.
func NewParser(fn ScopeIDFunc) *Parser {
	return &Parser{ScopeID: fn}
}

// Parse parses css into a StyleBlock. When scoped is true every top-level
// selector gets a "[scopeId]" suffix. Declarations without ':' are dropped
// and a rule whose body is never closed is discarded.
func (p *Parser) Parse(css string, scoped bool) core.StyleBlock {
	gen := p.ScopeID
	if gen == nil {
		gen = NewScopeID
	}

	block := core.StyleBlock{
		Content: css,
		Scoped:  scoped,
		ScopeID: gen(),
	}

	src := stripComments(css)
	var selector strings.Builder
	i := 0
	for i < len(src) {
		ch := src[i]
		switch {
		case ch == '\\' && i+1 < len(src):
			selector.WriteByte(ch)
			selector.WriteByte(src[i+1])
			i += 2
			continue
		case ch == '{':
			body, next, ok := readBody(src, i+1)
			if !ok {
				return block
			}
			sel := strings.TrimSpace(selector.String())
			selector.Reset()
			i = next
			if sel == "" {
				continue
			}
			if scoped {
				sel = ScopeSelector(sel, block.ScopeID)
			}
			block.Rules = append(block.Rules, core.StyleRule{
				Selector:     sel,
				Declarations: strings.TrimSpace(body),
				Properties:   parseDeclarations(body),
			})
			continue
		case ch == '}':
			// stray closing brace
			selector.Reset()
		default:
			selector.WriteByte(ch)
		}
		i++
	}

	return block
}

// readBody reads a brace-balanced body starting just after '{'. It returns
// the body, the offset after the matching '}', and false if unterminated.
func readBody(src string, start int) (string, int, bool) {
	depth := 1
	for i := start; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return src[start:i], i + 1, true
			}
		}
	}
	return "", len(src), false
}

func parseDeclarations(body string) []core.CSSProperty {
	var props []core.CSSProperty
	for _, decl := range strings.Split(body, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		props = append(props, core.CSSProperty{Name: name, Value: strings.TrimSpace(value)})
	}
	return props
}

// ScopeSelector appends "[scopeID]" to each comma-separated part of
// selector. At-rules are returned unchanged.
func ScopeSelector(selector, scopeID string) string {
	if strings.HasPrefix(selector, "@") {
		return selector
	}
	parts := strings.Split(selector, ",")
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		parts[i] = part + "[" + scopeID + "]"
	}
	return strings.Join(parts, ", ")
}

// Render prints the rules of a block back to CSS.
func Render(block core.StyleBlock) string {
	var sb strings.Builder
	for i, rule := range block.Rules {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(rule.Selector)
		sb.WriteString(" { ")
		sb.WriteString(rule.Declarations)
		sb.WriteString(" }")
	}
	return sb.String()
}

func stripComments(css string) string {
	if !strings.Contains(css, "/*") {
		return css
	}
	var sb strings.Builder
	for {
		start := strings.Index(css, "/*")
		if start < 0 {
			sb.WriteString(css)
			return sb.String()
		}
		sb.WriteString(css[:start])
		end := strings.Index(css[start+2:], "*/")
		if end < 0 {
			return sb.String()
		}
		css = css[start+2+end+2:]
	}
}
